package miner

import (
	stderrors "errors"
	"time"

	"github.com/kostaleonard/leocoin/block"
	"github.com/kostaleonard/leocoin/consensus"
	"github.com/kostaleonard/leocoin/errors"
	"github.com/kostaleonard/leocoin/logx"
	"github.com/kostaleonard/leocoin/monitoring"
	"github.com/kostaleonard/leocoin/transaction"
	"github.com/kostaleonard/leocoin/worker"
)

// Miner extends the shared chain with blocks that pay Reward to Recipient.
// Whenever the shared chain is replaced it abandons the block in progress
// and starts over on the new tip.
type Miner struct {
	Chain     *consensus.SynchronizedChain
	Recipient transaction.PublicKey
	Reward    uint32
	// Now is overridable for tests.
	Now func() time.Time
}

func New(chain *consensus.SynchronizedChain, recipient transaction.PublicKey, reward uint32) *Miner {
	if reward == 0 {
		reward = transaction.MintingAmount
	}
	return &Miner{Chain: chain, Recipient: recipient, Reward: reward, Now: time.Now}
}

// MineOne tries to add one block. It returns ErrStoppedEarly if stop fired
// or the shared chain changed before a proof of work was found.
func (m *Miner) MineOne(stop func() bool) (consensus.Decision, error) {
	chain, version := m.Chain.Snapshot()
	now := m.Now()
	b := block.New(chain.TipHash(), []*transaction.Transaction{
		transaction.NewMinting(m.Recipient, m.Reward, now),
	}, now)

	checks := uint64(0)
	abandon := func() bool {
		checks++
		monitoring.AddHashAttempts(block.StopCheckInterval)
		return (stop != nil && stop()) || m.Chain.Version() != version
	}
	if err := b.Mine(chain.Difficulty, abandon); err != nil {
		return consensus.RejectedInvalid, err
	}

	decision, err := consensus.Offer(m.Chain, chain.Extend(b), monitoring.SourceMiner)
	if err != nil {
		return decision, err
	}
	if decision == consensus.Adopted {
		monitoring.IncreaseBlocksMined()
		logx.Info("MINER", "mined block ", chain.Len(), " hash ", b.Hash().Short(), " after ~", checks*block.StopCheckInterval, " attempts")
	}
	return decision, nil
}

// Start mines until stopped.
func (m *Miner) Start() *worker.Task {
	return worker.Start("miner", func(t *worker.Task) error {
		for !t.ShouldStop() {
			_, err := m.MineOne(t.ShouldStop)
			switch {
			case err == nil:
			case stderrors.Is(err, errors.ErrStoppedEarly):
				logx.Debug("MINER", "restarting on new tip")
			default:
				logx.Error("MINER", "mining failed: ", err)
				return err
			}
		}
		return nil
	})
}
