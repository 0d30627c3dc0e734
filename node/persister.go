package node

import (
	"time"

	"github.com/kostaleonard/leocoin/blockchain"
	"github.com/kostaleonard/leocoin/consensus"
	"github.com/kostaleonard/leocoin/logx"
	"github.com/kostaleonard/leocoin/store"
	"github.com/kostaleonard/leocoin/worker"
)

const defaultPersistInterval = 500 * time.Millisecond

// Persister writes the shared chain to disk each time its version changes.
type Persister struct {
	Chain     *consensus.SynchronizedChain
	ChainFile string
	Archive   *store.ChainArchive
	Interval  time.Duration

	saved    uint64
	hasSaved bool
	// base offsets chain versions so archive keys keep growing across
	// restarts, where the in-memory version starts again at zero.
	base uint64
}

// resume picks the archive offset and reports whether the archive already
// holds c.
func (p *Persister) resume(c *blockchain.Blockchain) (bool, error) {
	versions, err := p.Archive.Versions()
	if err != nil {
		return false, err
	}
	if len(versions) == 0 {
		return false, nil
	}
	p.base = versions[len(versions)-1] + 1
	tip, found, err := p.Archive.LatestTipHash()
	if err != nil {
		return false, err
	}
	return found && tip == c.TipHash(), nil
}

// Flush saves the chain if its version differs from the last save.
func (p *Persister) Flush() error {
	c, version := p.Chain.Snapshot()
	if p.hasSaved && version == p.saved {
		return nil
	}
	if p.ChainFile != "" {
		if err := blockchain.WriteFile(p.ChainFile, c); err != nil {
			return err
		}
	}
	if p.Archive != nil {
		archived := false
		if !p.hasSaved {
			var err error
			if archived, err = p.resume(c); err != nil {
				return err
			}
		}
		if !archived {
			if err := p.Archive.Save(p.base+version, c); err != nil {
				return err
			}
		}
	}
	p.saved, p.hasSaved = version, true
	logx.Debug("NODE", "persisted chain version ", version, " with ", c.Len(), " blocks")
	return nil
}

// Start flushes every Interval and once more on stop.
func (p *Persister) Start() *worker.Task {
	interval := p.Interval
	if interval <= 0 {
		interval = defaultPersistInterval
	}
	return worker.Start("persister", func(t *worker.Task) error {
		for {
			if err := p.Flush(); err != nil {
				logx.Error("NODE", "persist failed: ", err)
			}
			if !t.Sleep(interval) {
				return p.Flush()
			}
		}
	})
}
