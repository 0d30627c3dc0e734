package consensus

import (
	"sync"

	"github.com/kostaleonard/leocoin/block"
	"github.com/kostaleonard/leocoin/blockchain"
	"github.com/kostaleonard/leocoin/monitoring"
)

// Decision is the outcome of offering a candidate chain.
type Decision int

const (
	Adopted Decision = iota
	RejectedNotLonger
	RejectedDifficultyMismatch
	RejectedInvalid
)

func (d Decision) String() string {
	switch d {
	case Adopted:
		return "adopted"
	case RejectedNotLonger:
		return "not_longer"
	case RejectedDifficultyMismatch:
		return "difficulty_mismatch"
	case RejectedInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// ShouldAdopt is the longest-chain rule restricted to equal difficulty.
func ShouldAdopt(current, candidate *blockchain.Blockchain) Decision {
	if candidate.Difficulty != current.Difficulty {
		return RejectedDifficultyMismatch
	}
	if candidate.Len() <= current.Len() {
		return RejectedNotLonger
	}
	return Adopted
}

// SynchronizedChain is the node's best chain shared by the miner, the peer
// client and the peer server. version increases by one exactly when the
// chain is replaced.
type SynchronizedChain struct {
	mu      sync.Mutex
	chain   *blockchain.Blockchain
	version uint64
}

// Summary describes the current chain without copying it.
type Summary struct {
	Length     int        `json:"length"`
	Difficulty uint64     `json:"difficulty"`
	Version    uint64     `json:"version"`
	TipHash    block.Hash `json:"tip_hash"`
}

// NewSynchronizedChain takes ownership of c.
func NewSynchronizedChain(c *blockchain.Blockchain) *SynchronizedChain {
	monitoring.SetChainState(c.Len(), 0)
	return &SynchronizedChain{chain: c}
}

func (s *SynchronizedChain) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Snapshot returns a deep copy of the chain and the version it belongs to.
func (s *SynchronizedChain) Snapshot() (*blockchain.Blockchain, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chain.Clone(), s.version
}

// Encoded returns the chain encoding and its version.
func (s *SynchronizedChain) Encoded() ([]byte, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chain.Encode(), s.version
}

func (s *SynchronizedChain) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summary{
		Length:     s.chain.Len(),
		Difficulty: s.chain.Difficulty,
		Version:    s.version,
		TipHash:    s.chain.TipHash(),
	}
}

// TryAdopt replaces the chain with candidate if it is strictly longer and
// has the same difficulty. The comparison and the swap happen in one
// critical section. candidate must already be verified and must not be
// modified by the caller afterwards.
func (s *SynchronizedChain) TryAdopt(candidate *blockchain.Blockchain, source monitoring.ChainSource) Decision {
	s.mu.Lock()
	decision := ShouldAdopt(s.chain, candidate)
	if decision == Adopted {
		s.chain = candidate
		s.version++
	}
	length, version := s.chain.Len(), s.version
	s.mu.Unlock()

	if decision == Adopted {
		monitoring.RecordAdoptedChain(source)
		monitoring.SetChainState(length, version)
	} else {
		monitoring.RecordRejectedChain(monitoring.ChainRejectedReason(decision.String()))
	}
	return decision
}
