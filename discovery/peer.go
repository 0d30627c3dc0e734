package discovery

import (
	"net/netip"
	"sync"
	"time"

	"github.com/kostaleonard/leocoin/monitoring"
	"github.com/kostaleonard/leocoin/network"
)

// PeerInfo is a known node. Two entries are the same peer when their listen
// addresses match.
type PeerInfo struct {
	ListenAddr    netip.AddrPort `json:"listen_addr"`
	LastConnected time.Time      `json:"last_connected"`
}

func (p PeerInfo) SameAs(o PeerInfo) bool {
	return p.ListenAddr == o.ListenAddr
}

// PeerList is a mutex-guarded, ordered collection of peers, most recently
// registered first.
type PeerList struct {
	mu    sync.Mutex
	peers []PeerInfo
}

func NewPeerList(peers ...PeerInfo) *PeerList {
	l := &PeerList{}
	for _, p := range peers {
		l.Upsert(p.ListenAddr, p.LastConnected)
	}
	return l
}

// Snapshot returns a copy the caller may use without holding any lock.
func (l *PeerList) Snapshot() []PeerInfo {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]PeerInfo, len(l.peers))
	copy(out, l.peers)
	return out
}

func (l *PeerList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.peers)
}

// Upsert records that addr was seen at now. New peers go to the front.
// It reports whether addr was new.
func (l *PeerList) Upsert(addr netip.AddrPort, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.peers {
		if l.peers[i].ListenAddr == addr {
			l.peers[i].LastConnected = now
			return false
		}
	}
	l.peers = append([]PeerInfo{{ListenAddr: addr, LastConnected: now}}, l.peers...)
	monitoring.SetPeerCount(len(l.peers))
	return true
}

// Replace swaps in peers, dropping exclude (normally the node itself) and
// duplicate addresses.
func (l *PeerList) Replace(peers []PeerInfo, exclude netip.AddrPort) {
	next := make([]PeerInfo, 0, len(peers))
	seen := make(map[netip.AddrPort]struct{}, len(peers))
	for _, p := range peers {
		if p.ListenAddr == exclude {
			continue
		}
		if _, dup := seen[p.ListenAddr]; dup {
			continue
		}
		seen[p.ListenAddr] = struct{}{}
		next = append(next, p)
	}
	l.mu.Lock()
	l.peers = next
	l.mu.Unlock()
	monitoring.SetPeerCount(len(next))
}

// Evict removes peers not seen since cutoff and returns how many it removed.
func (l *PeerList) Evict(cutoff time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.peers[:0]
	for _, p := range l.peers {
		if !p.LastConnected.Before(cutoff) {
			kept = append(kept, p)
		}
	}
	removed := len(l.peers) - len(kept)
	for i := len(kept); i < len(l.peers); i++ {
		l.peers[i] = PeerInfo{}
	}
	l.peers = kept
	if removed > 0 {
		monitoring.SetPeerCount(len(kept))
	}
	return removed
}

// ToEntries converts peers to their wire form.
func ToEntries(peers []PeerInfo) []network.PeerEntry {
	out := make([]network.PeerEntry, len(peers))
	for i, p := range peers {
		out[i] = network.PeerEntry{
			Addr:          network.SockAddrFrom(p.ListenAddr),
			LastConnected: p.LastConnected.Unix(),
		}
	}
	return out
}

// FromEntries converts wire entries back to peers.
func FromEntries(entries []network.PeerEntry) []PeerInfo {
	out := make([]PeerInfo, len(entries))
	for i, e := range entries {
		out[i] = PeerInfo{
			ListenAddr:    e.Addr.AddrPort(),
			LastConnected: time.Unix(e.LastConnected, 0),
		}
	}
	return out
}
