package node

import (
	"fmt"
	"os"

	"github.com/kostaleonard/leocoin/blockchain"
	"github.com/kostaleonard/leocoin/logx"
	"github.com/kostaleonard/leocoin/store"
)

// LoadChain picks the chain a node starts from: the chain file if present,
// else the newest archived chain, else a fresh genesis chain. A chain file
// that cannot be decoded or verified is an error rather than a silent
// restart from genesis.
func LoadChain(chainFile string, archive *store.ChainArchive, difficulty uint64) (*blockchain.Blockchain, error) {
	if _, err := os.Stat(chainFile); err == nil {
		c, err := blockchain.ReadFile(chainFile)
		if err != nil {
			return nil, fmt.Errorf("load chain file: %w", err)
		}
		if err := checkLoaded(c, difficulty); err != nil {
			return nil, fmt.Errorf("chain file %s: %w", chainFile, err)
		}
		logx.Info("NODE", "loaded ", c.Len(), " blocks from ", chainFile)
		return c, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat chain file: %w", err)
	}

	if archive != nil {
		c, version, found, err := archive.Latest()
		if err != nil {
			return nil, fmt.Errorf("load archived chain: %w", err)
		}
		if found {
			if err := checkLoaded(c, difficulty); err != nil {
				return nil, fmt.Errorf("archived chain version %d: %w", version, err)
			}
			logx.Info("NODE", "loaded ", c.Len(), " blocks from archive version ", version)
			return c, nil
		}
	}

	logx.Info("NODE", "starting from genesis at difficulty ", difficulty)
	return blockchain.New(difficulty), nil
}

func checkLoaded(c *blockchain.Blockchain, difficulty uint64) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Difficulty != difficulty {
		return fmt.Errorf("difficulty %d does not match configured difficulty %d", c.Difficulty, difficulty)
	}
	return nil
}
