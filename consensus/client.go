package consensus

import (
	"time"

	"github.com/google/uuid"
	"github.com/kostaleonard/leocoin/discovery"
	"github.com/kostaleonard/leocoin/logx"
	"github.com/kostaleonard/leocoin/monitoring"
	"github.com/kostaleonard/leocoin/network"
	"github.com/kostaleonard/leocoin/transaction"
	"github.com/kostaleonard/leocoin/worker"
)

// PeerSource yields a point-in-time copy of the known peers.
type PeerSource interface {
	Snapshot() []discovery.PeerInfo
}

// Client periodically offers the node's chain to every known peer and
// adopts any better chain they answer with.
type Client struct {
	chain    *SynchronizedChain
	peers    PeerSource
	verifier transaction.Verifier
	cfg      Config
}

func NewClient(chain *SynchronizedChain, peers PeerSource, cfg Config) *Client {
	return &Client{
		chain:    chain,
		peers:    peers,
		verifier: transaction.Ed25519Verifier{},
		cfg:      cfg.withDefaults(),
	}
}

// ExchangeWithPeer sends the current chain to addr and evaluates the reply.
func (c *Client) ExchangeWithPeer(addr string) (Decision, error) {
	id := uuid.NewString()
	start := time.Now()
	decision, err := c.exchange(addr)
	result := decision.String()
	if err != nil {
		result = "error"
		logx.Warn("CONSENSUS", "exchange ", id, " with ", addr, " failed: ", err)
	} else {
		logx.Info("CONSENSUS", "exchange ", id, " with ", addr, ": ", decision)
	}
	monitoring.RecordPeerExchange("client", result, time.Since(start))
	return decision, err
}

func (c *Client) exchange(addr string) (Decision, error) {
	conn, err := network.Dial(addr, c.cfg.DialTimeout, c.cfg.IOTimeout, c.cfg.MaxPayload)
	if err != nil {
		return RejectedInvalid, err
	}
	defer conn.Close()

	data, _ := c.chain.Encoded()
	reply, err := conn.Request(&network.SendBlockchain{Data: data}, network.CommandSendBlockchain)
	if err != nil {
		return RejectedInvalid, err
	}
	return evaluate(c.chain, c.verifier, reply.(*network.SendBlockchain))
}

// RunOnce exchanges with each peer in list order, checking shouldStop
// before each one. It returns how many peers caused an adoption.
func (c *Client) RunOnce(shouldStop func() bool) int {
	adopted := 0
	for _, peer := range c.peers.Snapshot() {
		if shouldStop != nil && shouldStop() {
			break
		}
		decision, err := c.ExchangeWithPeer(peer.ListenAddr.String())
		if err == nil && decision == Adopted {
			adopted++
		}
	}
	return adopted
}

// Start runs rounds on a new task until stopped, or once if RunOnce is set.
func (c *Client) Start() *worker.Task {
	return worker.Start("consensus-client", func(t *worker.Task) error {
		for !t.ShouldStop() {
			c.RunOnce(t.ShouldStop)
			if c.cfg.RunOnce {
				break
			}
			t.Sleep(c.cfg.Interval)
		}
		logx.Info("CONSENSUS", "client stopped")
		return nil
	})
}
