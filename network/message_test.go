package network

import (
	"net/netip"
	"strings"
	"testing"

	"github.com/kostaleonard/leocoin/blockchain"
	"github.com/kostaleonard/leocoin/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderLayout(t *testing.T) {
	h := NewHeader(CommandSendBlockchain, 0x0102)
	assert.Equal(t, []byte{'L', 'E', 'O', 0, 0, 0, 0, 4, 0, 0, 0, 0, 0, 0, 1, 2}, h.Encode())

	got, err := DecodeHeader(h.Encode())
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestDecodeHeaderBadPrefix(t *testing.T) {
	raw := NewHeader(CommandOk, 0).Encode()
	raw[0] = 'X'
	_, err := DecodeHeader(raw)
	assert.ErrorIs(t, err, errors.ErrInvalidCommandPrefix)

	_, err = DecodeHeader(raw[:5])
	assert.ErrorIs(t, err, errors.ErrBufferTooSmall)
}

func TestSerializeDeserialize(t *testing.T) {
	addr := SockAddrFrom(netip.MustParseAddrPort("[2001:db8::1]:8333"))
	tests := []struct {
		name string
		msg  Message
	}{
		{"ok", &Ok{}},
		{"error", &ErrorMessage{Text: "bad chain"}},
		{"register peer", &RegisterPeer{Addr: addr}},
		{"peer list", &SendPeerList{Peers: []PeerEntry{
			{Addr: addr, LastConnected: 1700000000},
			{Addr: SockAddrFrom(netip.MustParseAddrPort("127.0.0.1:9000")), LastConnected: 5},
		}}},
		{"empty peer list", &SendPeerList{Peers: []PeerEntry{}}},
		{"blockchain", NewSendBlockchain(blockchain.New(2))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := Serialize(tt.msg)
			require.NoError(t, err)

			h, err := DecodeHeader(frame)
			require.NoError(t, err)
			assert.Equal(t, tt.msg.Command(), h.Command)
			assert.Equal(t, uint64(len(frame)-HeaderSize), h.PayloadLen)

			got, err := Deserialize(frame)
			require.NoError(t, err)
			assert.Equal(t, tt.msg, got)
		})
	}
}

func TestPayloadSizes(t *testing.T) {
	frame, err := Serialize(&RegisterPeer{})
	require.NoError(t, err)
	assert.Len(t, frame, HeaderSize+SockAddrSize)

	frame, err = Serialize(&ErrorMessage{Text: strings.Repeat("x", 1000)})
	require.NoError(t, err)
	assert.Len(t, frame, HeaderSize+ErrorMessageSize)

	c := blockchain.New(1)
	frame, err = Serialize(NewSendBlockchain(c))
	require.NoError(t, err)
	assert.Equal(t, c.Encode(), frame[HeaderSize:], "payload is exactly the chain encoding")
}

func TestSerializeWithHeaderChecks(t *testing.T) {
	_, err := SerializeWithHeader(Header{Prefix: [4]byte{'B', 'A', 'D', 0}, Command: CommandOk}, &Ok{})
	assert.ErrorIs(t, err, errors.ErrInvalidCommandPrefix)

	_, err = SerializeWithHeader(NewHeader(CommandRegisterPeer, 0), &SendBlockchain{})
	assert.ErrorIs(t, err, errors.ErrInvalidCommand)

	_, err = SerializeWithHeader(NewHeader(CommandOk, 0), nil)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestDeserializeRejects(t *testing.T) {
	ok, err := Serialize(&RegisterPeer{})
	require.NoError(t, err)

	t.Run("unknown command", func(t *testing.T) {
		_, err := Deserialize(NewHeader(Command(99), 0).Encode())
		assert.ErrorIs(t, err, errors.ErrInvalidCommand)
	})
	t.Run("short payload", func(t *testing.T) {
		_, err := Deserialize(ok[:len(ok)-1])
		assert.ErrorIs(t, err, errors.ErrBufferTooSmall)
	})
	t.Run("extra payload", func(t *testing.T) {
		_, err := Deserialize(append(append([]byte{}, ok...), 0))
		assert.ErrorIs(t, err, errors.ErrInvalidCommandLength)
	})
	t.Run("wrong fixed length", func(t *testing.T) {
		frame := append(NewHeader(CommandRegisterPeer, 4).Encode(), 0, 0, 0, 0)
		_, err := Deserialize(frame)
		assert.ErrorIs(t, err, errors.ErrInvalidCommandLength)
	})
	t.Run("peer list count too large", func(t *testing.T) {
		frame := append(NewHeader(CommandSendPeerList, 8).Encode(), 0, 0, 0, 0, 0, 0, 0, 9)
		_, err := Deserialize(frame)
		assert.ErrorIs(t, err, errors.ErrBufferTooSmall)
	})
}

func TestSockAddrConversion(t *testing.T) {
	for _, s := range []string{"[::1]:8333", "127.0.0.1:80", "[fe80::2]:1"} {
		ap := netip.MustParseAddrPort(s)
		sa := SockAddrFrom(ap)
		assert.Equal(t, uint16(AddressFamilyIPv6), sa.Family)
		assert.Equal(t, ap, sa.AddrPort())
	}
}

func TestExpectCommand(t *testing.T) {
	assert.NoError(t, ExpectCommand(&Ok{}, CommandOk))
	assert.ErrorIs(t, ExpectCommand(&Ok{}, CommandSendBlockchain), errors.ErrInvalidCommand)

	err := ExpectCommand(&ErrorMessage{Text: "nope"}, CommandSendBlockchain)
	assert.ErrorIs(t, err, errors.ErrNetworkFunction)
	assert.Contains(t, err.Error(), "nope")
}
