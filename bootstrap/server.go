package bootstrap

import (
	"net"
	"time"

	"github.com/kostaleonard/leocoin/discovery"
	"github.com/kostaleonard/leocoin/logx"
	"github.com/kostaleonard/leocoin/monitoring"
	"github.com/kostaleonard/leocoin/network"
	"github.com/kostaleonard/leocoin/ratelimit"
	"github.com/kostaleonard/leocoin/worker"
)

// MaxPeers caps the list a bootstrap server hands out.
const MaxPeers = 100

type Config struct {
	Keepalive   time.Duration
	IOTimeout   time.Duration
	PollTimeout time.Duration
	// Limiter refuses hosts that register too often. Nil disables it.
	Limiter *ratelimit.Limiter
}

// Server is the rendezvous point nodes register with to learn about each
// other.
type Server struct {
	listener *net.TCPListener
	peers    *discovery.PeerList
	cfg      Config
	now      func() time.Time
}

func NewServer(addr string, cfg Config) (*Server, error) {
	if cfg.Keepalive <= 0 {
		cfg.Keepalive = discovery.DefaultKeepalive
	}
	l, err := network.Listen(addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: l,
		peers:    discovery.NewPeerList(),
		cfg:      cfg,
		now:      time.Now,
	}, nil
}

func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

func (s *Server) Peers() *discovery.PeerList {
	return s.peers
}

func (s *Server) Start() *worker.Task {
	logx.Info("BOOTSTRAP NODE", "listening on ", s.Addr())
	return worker.Start("bootstrap", func(t *worker.Task) error {
		defer s.listener.Close()
		for !t.ShouldStop() {
			conn, err := network.AcceptWithPoll(s.listener, s.cfg.PollTimeout)
			if err != nil {
				logx.Warn("BOOTSTRAP NODE", "accept failed: ", err)
				t.Sleep(network.DefaultPollTimeout)
				continue
			}
			if conn != nil {
				s.handle(conn)
			} else if s.cfg.Limiter != nil {
				s.cfg.Limiter.Sweep()
			}
		}
		return nil
	})
}

func (s *Server) handle(c net.Conn) {
	conn := network.NewConn(c, s.cfg.IOTimeout, network.DefaultMaxMessageSize)
	defer conn.Close()

	if s.cfg.Limiter != nil && !s.cfg.Limiter.AllowAddr(c.RemoteAddr()) {
		monitoring.IncreaseRateLimited("bootstrap")
		_ = conn.Send(&network.ErrorMessage{Text: "rate limited"})
		return
	}

	msg, err := conn.ReceiveExpect(network.CommandRegisterPeer)
	if err != nil {
		logx.Warn("BOOTSTRAP NODE", "bad registration from ", c.RemoteAddr(), ": ", err)
		_ = conn.Send(&network.ErrorMessage{Text: err.Error()})
		return
	}
	addr := msg.(*network.RegisterPeer).Addr.AddrPort()
	now := s.now()
	if s.peers.Upsert(addr, now) {
		logx.Info("BOOTSTRAP NODE", "new peer ", addr)
	}
	if n := s.peers.Evict(now.Add(-s.cfg.Keepalive)); n > 0 {
		logx.Info("BOOTSTRAP NODE", "evicted ", n, " stale peers")
	}

	peers := s.peers.Snapshot()
	if len(peers) > MaxPeers {
		peers = peers[:MaxPeers]
	}
	if err := conn.Send(&network.SendPeerList{Peers: discovery.ToEntries(peers)}); err != nil {
		logx.Warn("BOOTSTRAP NODE", "reply to ", addr, " failed: ", err)
	}
}
