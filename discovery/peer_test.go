package discovery

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var (
	addrA = netip.MustParseAddrPort("[::1]:8001")
	addrB = netip.MustParseAddrPort("[::1]:8002")
	addrC = netip.MustParseAddrPort("127.0.0.1:8003")
)

func TestUpsertPrependsNewPeers(t *testing.T) {
	l := NewPeerList()
	t0 := time.Unix(100, 0)

	assert.True(t, l.Upsert(addrA, t0))
	assert.True(t, l.Upsert(addrB, t0))
	assert.False(t, l.Upsert(addrA, t0.Add(time.Second)))

	peers := l.Snapshot()
	assert.Equal(t, []netip.AddrPort{addrB, addrA}, []netip.AddrPort{peers[0].ListenAddr, peers[1].ListenAddr})
	assert.Equal(t, t0.Add(time.Second), peers[1].LastConnected)
}

func TestSnapshotIsACopy(t *testing.T) {
	l := NewPeerList(PeerInfo{ListenAddr: addrA})
	snap := l.Snapshot()
	snap[0].ListenAddr = addrB

	assert.Equal(t, addrA, l.Snapshot()[0].ListenAddr)
}

func TestEvict(t *testing.T) {
	l := NewPeerList()
	l.Upsert(addrA, time.Unix(10, 0))
	l.Upsert(addrB, time.Unix(50, 0))
	l.Upsert(addrC, time.Unix(60, 0))

	assert.Equal(t, 1, l.Evict(time.Unix(50, 0)))
	assert.Equal(t, 2, l.Len())
	for _, p := range l.Snapshot() {
		assert.NotEqual(t, addrA, p.ListenAddr)
	}
}

func TestReplaceExcludesSelfAndDuplicates(t *testing.T) {
	l := NewPeerList(PeerInfo{ListenAddr: addrC})
	l.Replace([]PeerInfo{{ListenAddr: addrA}, {ListenAddr: addrB}, {ListenAddr: addrA}}, addrB)

	peers := l.Snapshot()
	assert.Len(t, peers, 1)
	assert.Equal(t, addrA, peers[0].ListenAddr)
}

func TestEntriesRoundTrip(t *testing.T) {
	peers := []PeerInfo{
		{ListenAddr: addrA, LastConnected: time.Unix(1700000000, 0)},
		{ListenAddr: addrC, LastConnected: time.Unix(5, 0)},
	}
	got := FromEntries(ToEntries(peers))
	for i := range peers {
		assert.True(t, peers[i].SameAs(got[i]))
		assert.True(t, peers[i].LastConnected.Equal(got[i].LastConnected))
	}
}
