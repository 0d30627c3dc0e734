package consensus

import (
	"time"

	"github.com/kostaleonard/leocoin/blockchain"
	"github.com/kostaleonard/leocoin/errors"
	"github.com/kostaleonard/leocoin/monitoring"
	"github.com/kostaleonard/leocoin/network"
	"github.com/kostaleonard/leocoin/ratelimit"
	"github.com/kostaleonard/leocoin/transaction"
)

// Config holds the socket limits shared by the client and the server.
type Config struct {
	DialTimeout time.Duration
	IOTimeout   time.Duration
	PollTimeout time.Duration
	MaxPayload  uint64
	// Interval is the pause between client rounds.
	Interval time.Duration
	// RunOnce makes the client stop after a single pass over its peers.
	RunOnce bool
	// Limiter caps inbound exchanges per host on the server. Nil disables it.
	Limiter *ratelimit.Limiter
}

func (c Config) withDefaults() Config {
	if c.DialTimeout <= 0 {
		c.DialTimeout = network.DefaultDialTimeout
	}
	if c.IOTimeout <= 0 {
		c.IOTimeout = network.DefaultIOTimeout
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = network.DefaultPollTimeout
	}
	if c.MaxPayload == 0 {
		c.MaxPayload = network.DefaultMaxMessageSize
	}
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	return c
}

// DefaultInterval is the pause between client rounds.
const DefaultInterval = 20 * time.Second

// evaluate decodes and verifies an offered chain outside any lock, then
// applies the adoption rule.
func evaluate(chain *SynchronizedChain, verifier transaction.Verifier, msg *network.SendBlockchain) (Decision, error) {
	candidate, err := msg.Blockchain()
	if err != nil {
		monitoring.RecordRejectedChain(monitoring.ChainUndecodable)
		return RejectedInvalid, err
	}
	return offer(chain, verifier, candidate, monitoring.SourcePeer)
}

func offer(chain *SynchronizedChain, verifier transaction.Verifier, candidate *blockchain.Blockchain, source monitoring.ChainSource) (Decision, error) {
	if ok, idx := candidate.Verify(verifier); !ok {
		monitoring.RecordRejectedChain(monitoring.ChainInvalid)
		return RejectedInvalid, errors.Newf(errors.CodeInvalidBlockchain, "invalid block at index %d", idx)
	}
	return chain.TryAdopt(candidate, source), nil
}

// Offer verifies a locally produced chain and applies the adoption rule.
func Offer(chain *SynchronizedChain, candidate *blockchain.Blockchain, source monitoring.ChainSource) (Decision, error) {
	return offer(chain, transaction.Ed25519Verifier{}, candidate, source)
}
