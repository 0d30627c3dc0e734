package consensus

import (
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/kostaleonard/leocoin/logx"
	"github.com/kostaleonard/leocoin/monitoring"
	"github.com/kostaleonard/leocoin/network"
	"github.com/kostaleonard/leocoin/transaction"
	"github.com/kostaleonard/leocoin/worker"
)

// Server answers chain exchanges: it evaluates the peer's chain and replies
// with its best chain after that evaluation.
type Server struct {
	listener *net.TCPListener
	chain    *SynchronizedChain
	verifier transaction.Verifier
	cfg      Config
}

// NewServer binds addr immediately so Addr is valid before Start.
func NewServer(addr string, chain *SynchronizedChain, cfg Config) (*Server, error) {
	l, err := network.Listen(addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: l,
		chain:    chain,
		verifier: transaction.Ed25519Verifier{},
		cfg:      cfg.withDefaults(),
	}, nil
}

func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Start runs the accept loop on a new task. The listener is closed when the
// task stops.
func (s *Server) Start() *worker.Task {
	logx.Info("CONSENSUS", "server listening on ", s.Addr())
	return worker.Start("consensus-server", func(t *worker.Task) error {
		defer s.listener.Close()
		for !t.ShouldStop() {
			conn, err := network.AcceptWithPoll(s.listener, s.cfg.PollTimeout)
			if err != nil {
				logx.Warn("CONSENSUS", "accept failed: ", err)
				t.Sleep(s.cfg.PollTimeout)
				continue
			}
			if conn == nil {
				if s.cfg.Limiter != nil {
					s.cfg.Limiter.Sweep()
				}
				continue
			}
			s.HandleConn(conn)
		}
		logx.Info("CONSENSUS", "server stopped")
		return nil
	})
}

// HandleConn serves one exchange and closes conn.
func (s *Server) HandleConn(c net.Conn) {
	id := uuid.NewString()
	start := time.Now()
	conn := network.NewConn(c, s.cfg.IOTimeout, s.cfg.MaxPayload)
	defer conn.Close()

	if s.cfg.Limiter != nil && !s.cfg.Limiter.AllowAddr(c.RemoteAddr()) {
		monitoring.IncreaseRateLimited("consensus")
		_ = conn.Send(&network.ErrorMessage{Text: "rate limited"})
		monitoring.RecordPeerExchange("server", "rate_limited", time.Since(start))
		return
	}

	result, err := s.handle(conn)
	if err != nil {
		logx.Warn("CONSENSUS", "exchange ", id, " from ", c.RemoteAddr(), " failed: ", err)
	} else {
		logx.Info("CONSENSUS", "exchange ", id, " from ", c.RemoteAddr(), ": ", result)
	}
	monitoring.RecordPeerExchange("server", result, time.Since(start))
}

func (s *Server) handle(conn *network.Conn) (string, error) {
	msg, err := conn.ReceiveExpect(network.CommandSendBlockchain)
	if err != nil {
		_ = conn.Send(&network.ErrorMessage{Text: err.Error()})
		return "error", err
	}

	decision, evalErr := evaluate(s.chain, s.verifier, msg.(*network.SendBlockchain))
	if evalErr != nil {
		logx.Warn("CONSENSUS", "discarding chain from ", conn.RemoteAddr(), ": ", evalErr)
	}

	data, _ := s.chain.Encoded()
	if err := conn.Send(&network.SendBlockchain{Data: data}); err != nil {
		return "error", err
	}
	return decision.String(), nil
}
