package bootstrap

import (
	"net/netip"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kostaleonard/leocoin/discovery"
	"github.com/kostaleonard/leocoin/network"
	"github.com/kostaleonard/leocoin/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T, cfg Config, now func() time.Time) *Server {
	t.Helper()
	cfg.PollTimeout = 10 * time.Millisecond
	cfg.IOTimeout = time.Second
	s, err := NewServer("127.0.0.1:0", cfg)
	require.NoError(t, err)
	if now != nil {
		s.now = now
	}
	task := s.Start()
	t.Cleanup(func() {
		_, ok := task.StopAndJoin(time.Second)
		assert.True(t, ok)
	})
	return s
}

func registrar(s *Server, self string) *discovery.Registrar {
	return &discovery.Registrar{
		BootstrapAddr: s.Addr().String(),
		Self:          netip.MustParseAddrPort(self),
		Peers:         discovery.NewPeerList(),
		DialTimeout:   time.Second,
		IOTimeout:     time.Second,
	}
}

func TestRegistrationSharesPeers(t *testing.T) {
	s := startServer(t, Config{}, nil)

	a := registrar(s, "[::1]:9001")
	b := registrar(s, "[::1]:9002")

	require.NoError(t, a.RegisterOnce())
	assert.Zero(t, a.Peers.Len(), "a node never lists itself")

	require.NoError(t, b.RegisterOnce())
	require.Equal(t, 1, b.Peers.Len())
	assert.Equal(t, a.Self, b.Peers.Snapshot()[0].ListenAddr)

	require.NoError(t, a.RegisterOnce())
	require.Equal(t, 1, a.Peers.Len())
	assert.Equal(t, b.Self, a.Peers.Snapshot()[0].ListenAddr)

	assert.Equal(t, 2, s.Peers().Len())
}

func TestStalePeersEvicted(t *testing.T) {
	var clock atomic.Int64
	clock.Store(1000)
	s := startServer(t, Config{Keepalive: time.Minute}, func() time.Time {
		return time.Unix(clock.Load(), 0)
	})

	a := registrar(s, "[::1]:9001")
	b := registrar(s, "[::1]:9002")
	require.NoError(t, a.RegisterOnce())

	clock.Add(120)
	require.NoError(t, b.RegisterOnce())
	assert.Zero(t, b.Peers.Len())
	assert.Equal(t, 1, s.Peers().Len())
}

func TestWrongCommandGetsError(t *testing.T) {
	s := startServer(t, Config{}, nil)

	conn, err := network.Dial(s.Addr().String(), time.Second, time.Second, 0)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Request(&network.Ok{}, network.CommandSendPeerList)
	assert.Error(t, err)
}

func TestRateLimitedHostIsRefused(t *testing.T) {
	limiter := ratelimit.New(ratelimit.Config{MaxRequests: 1, WindowSize: time.Hour})
	s := startServer(t, Config{Limiter: limiter}, nil)
	r := registrar(s, "[::1]:9100")

	require.NoError(t, r.RegisterOnce())
	assert.Error(t, r.RegisterOnce())
	assert.Equal(t, 1, s.Peers().Len())
}
