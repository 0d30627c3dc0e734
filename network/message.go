package network

import (
	"bytes"
	"fmt"
	"net/netip"

	"github.com/kostaleonard/leocoin/blockchain"
	"github.com/kostaleonard/leocoin/codec"
	"github.com/kostaleonard/leocoin/errors"
)

type Command uint32

const (
	CommandOk Command = iota
	CommandError
	CommandRegisterPeer
	CommandSendPeerList
	CommandSendBlockchain
)

func (c Command) String() string {
	switch c {
	case CommandOk:
		return "Ok"
	case CommandError:
		return "Error"
	case CommandRegisterPeer:
		return "RegisterPeer"
	case CommandSendPeerList:
		return "SendPeerList"
	case CommandSendBlockchain:
		return "SendBlockchain"
	default:
		return fmt.Sprintf("Command(%d)", uint32(c))
	}
}

type Header struct {
	Prefix     [4]byte
	Command    Command
	PayloadLen uint64
}

func NewHeader(cmd Command, payloadLen uint64) Header {
	return Header{Prefix: Prefix, Command: cmd, PayloadLen: payloadLen}
}

func (h Header) Encode() []byte {
	w := codec.NewWriter(HeaderSize)
	w.Bytes(h.Prefix[:])
	w.Uint32(uint32(h.Command))
	w.Uint64(h.PayloadLen)
	return w.Result()
}

// DecodeHeader parses the fixed header and checks its prefix.
func DecodeHeader(buf []byte) (Header, error) {
	var h Header
	r := codec.NewReader(buf)
	if err := r.Fixed(h.Prefix[:]); err != nil {
		return h, err
	}
	if h.Prefix != Prefix {
		return h, errors.Newf(errors.CodeInvalidCommandPrefix, "bad prefix %q", h.Prefix[:])
	}
	cmd, err := r.Uint32()
	if err != nil {
		return h, err
	}
	h.Command = Command(cmd)
	if h.PayloadLen, err = r.Uint64(); err != nil {
		return h, err
	}
	return h, nil
}

// Message is one of the frame payload kinds below.
type Message interface {
	Command() Command
	encodePayload(w *codec.Writer)
}

type Ok struct{}

// ErrorMessage carries up to ErrorMessageSize bytes of text.
type ErrorMessage struct {
	Text string
}

type RegisterPeer struct {
	Addr SockAddr
}

type SendPeerList struct {
	Peers []PeerEntry
}

// SendBlockchain carries an encoded chain.
type SendBlockchain struct {
	Data []byte
}

func (*Ok) Command() Command             { return CommandOk }
func (*ErrorMessage) Command() Command   { return CommandError }
func (*RegisterPeer) Command() Command   { return CommandRegisterPeer }
func (*SendPeerList) Command() Command   { return CommandSendPeerList }
func (*SendBlockchain) Command() Command { return CommandSendBlockchain }

func (*Ok) encodePayload(*codec.Writer) {}

func (m *ErrorMessage) encodePayload(w *codec.Writer) {
	var buf [ErrorMessageSize]byte
	copy(buf[:ErrorMessageSize-1], m.Text)
	w.Bytes(buf[:])
}

func (m *RegisterPeer) encodePayload(w *codec.Writer) {
	m.Addr.encode(w)
}

func (m *SendPeerList) encodePayload(w *codec.Writer) {
	w.Uint64(uint64(len(m.Peers)))
	for _, p := range m.Peers {
		p.Addr.encode(w)
		w.Uint64(uint64(p.LastConnected))
	}
}

func (m *SendBlockchain) encodePayload(w *codec.Writer) {
	w.Bytes(m.Data)
}

// NewSendBlockchain encodes c into a SendBlockchain message.
func NewSendBlockchain(c *blockchain.Blockchain) *SendBlockchain {
	return &SendBlockchain{Data: c.Encode()}
}

// Blockchain decodes the carried chain.
func (m *SendBlockchain) Blockchain() (*blockchain.Blockchain, error) {
	return blockchain.Decode(m.Data)
}

// SockAddr is the IPv6 socket address layout used on the wire.
type SockAddr struct {
	Family   uint16
	Port     uint16
	FlowInfo uint32
	Addr     [16]byte
	ScopeID  uint32
}

// SockAddrFrom converts an address; IPv4 addresses are stored IPv4-mapped.
func SockAddrFrom(ap netip.AddrPort) SockAddr {
	return SockAddr{
		Family: AddressFamilyIPv6,
		Port:   ap.Port(),
		Addr:   ap.Addr().As16(),
	}
}

// AddrPort converts back, unmapping IPv4-mapped addresses.
func (s SockAddr) AddrPort() netip.AddrPort {
	return netip.AddrPortFrom(netip.AddrFrom16(s.Addr).Unmap(), s.Port)
}

func (s SockAddr) String() string {
	return s.AddrPort().String()
}

func (s SockAddr) encode(w *codec.Writer) {
	w.Uint16(s.Family)
	w.Uint16(s.Port)
	w.Uint32(s.FlowInfo)
	w.Bytes(s.Addr[:])
	w.Uint32(s.ScopeID)
}

func decodeSockAddr(r *codec.Reader) (SockAddr, error) {
	var s SockAddr
	var err error
	if s.Family, err = r.Uint16(); err != nil {
		return s, err
	}
	if s.Port, err = r.Uint16(); err != nil {
		return s, err
	}
	if s.FlowInfo, err = r.Uint32(); err != nil {
		return s, err
	}
	if err = r.Fixed(s.Addr[:]); err != nil {
		return s, err
	}
	if s.ScopeID, err = r.Uint32(); err != nil {
		return s, err
	}
	return s, nil
}

// PeerEntry is one element of a SendPeerList payload.
type PeerEntry struct {
	Addr          SockAddr
	LastConnected int64
}

// Serialize builds the frame for msg.
func Serialize(msg Message) ([]byte, error) {
	return SerializeWithHeader(NewHeader(msg.Command(), 0), msg)
}

// SerializeWithHeader builds the frame for msg using a caller-supplied header.
// The header must carry the protocol prefix and msg's command; its
// PayloadLen is recomputed.
func SerializeWithHeader(h Header, msg Message) ([]byte, error) {
	if msg == nil {
		return nil, errors.NewError(errors.CodeInvalidInput, "nil message")
	}
	if h.Prefix != Prefix {
		return nil, errors.Newf(errors.CodeInvalidCommandPrefix, "bad prefix %q", h.Prefix[:])
	}
	if h.Command != msg.Command() {
		return nil, errors.Newf(errors.CodeInvalidCommand, "header command %s does not match %s payload", h.Command, msg.Command())
	}
	w := codec.NewWriter(HeaderSize)
	w.Bytes(make([]byte, HeaderSize))
	msg.encodePayload(w)
	frame := w.Result()
	h.PayloadLen = uint64(len(frame) - HeaderSize)
	copy(frame, h.Encode())
	return frame, nil
}

// Deserialize parses a complete frame.
func Deserialize(frame []byte) (Message, error) {
	h, err := DecodeHeader(frame)
	if err != nil {
		return nil, err
	}
	payload := frame[min(len(frame), HeaderSize):]
	if uint64(len(payload)) != h.PayloadLen {
		if uint64(len(payload)) < h.PayloadLen {
			return nil, errors.Newf(errors.CodeBufferTooSmall, "payload has %d bytes, header says %d", len(payload), h.PayloadLen)
		}
		return nil, errors.Newf(errors.CodeInvalidCommandLength, "payload has %d bytes, header says %d", len(payload), h.PayloadLen)
	}
	return DecodePayload(h, payload)
}

// DecodePayload interprets payload according to h.Command.
func DecodePayload(h Header, payload []byte) (Message, error) {
	fixed := func(size int) error {
		if len(payload) != size {
			return errors.Newf(errors.CodeInvalidCommandLength, "%s payload has %d bytes, want %d", h.Command, len(payload), size)
		}
		return nil
	}
	r := codec.NewReader(payload)

	switch h.Command {
	case CommandOk:
		if err := fixed(0); err != nil {
			return nil, err
		}
		return &Ok{}, nil

	case CommandError:
		if err := fixed(ErrorMessageSize); err != nil {
			return nil, err
		}
		text := payload
		if i := bytes.IndexByte(text, 0); i >= 0 {
			text = text[:i]
		}
		return &ErrorMessage{Text: string(text)}, nil

	case CommandRegisterPeer:
		if err := fixed(SockAddrSize); err != nil {
			return nil, err
		}
		addr, err := decodeSockAddr(r)
		if err != nil {
			return nil, err
		}
		return &RegisterPeer{Addr: addr}, nil

	case CommandSendPeerList:
		count, err := r.Count(PeerEntrySize)
		if err != nil {
			return nil, err
		}
		if err := fixed(8 + count*PeerEntrySize); err != nil {
			return nil, err
		}
		msg := &SendPeerList{Peers: make([]PeerEntry, 0, count)}
		for i := 0; i < count; i++ {
			addr, err := decodeSockAddr(r)
			if err != nil {
				return nil, err
			}
			last, err := r.Uint64()
			if err != nil {
				return nil, err
			}
			msg.Peers = append(msg.Peers, PeerEntry{Addr: addr, LastConnected: int64(last)})
		}
		return msg, nil

	case CommandSendBlockchain:
		data := make([]byte, len(payload))
		copy(data, payload)
		return &SendBlockchain{Data: data}, nil

	default:
		return nil, errors.Newf(errors.CodeInvalidCommand, "unknown command %d", uint32(h.Command))
	}
}

// ExpectCommand returns an error unless msg is of kind cmd. A received Error
// frame is reported with its text.
func ExpectCommand(msg Message, cmd Command) error {
	if msg.Command() == cmd {
		return nil
	}
	if e, ok := msg.(*ErrorMessage); ok {
		return errors.Newf(errors.CodeNetworkFunction, "peer replied with error: %s", e.Text)
	}
	return errors.Newf(errors.CodeInvalidCommand, "expected %s, got %s", cmd, msg.Command())
}
