package store

import (
	"encoding/binary"
	"fmt"

	"github.com/kostaleonard/leocoin/block"
	"github.com/kostaleonard/leocoin/blockchain"
	"github.com/kostaleonard/leocoin/db"
	"github.com/kostaleonard/leocoin/logx"
	"github.com/pkg/errors"
)

// ChainArchive keeps every published version of the node's chain, keyed by
// the SynchronizedChain version that produced it.
type ChainArchive struct {
	provider db.DatabaseProvider
	keep     int
}

func NewChainArchive(provider db.DatabaseProvider, keep int) *ChainArchive {
	return &ChainArchive{provider: provider, keep: keep}
}

func chainKey(version uint64) []byte {
	key := make([]byte, len(PrefixChain)+8)
	copy(key, PrefixChain)
	binary.BigEndian.PutUint64(key[len(PrefixChain):], version)
	return key
}

func metaKey(name string) []byte {
	return []byte(PrefixChainMeta + name)
}

// Save stores the encoded chain for version and marks it latest.
func (a *ChainArchive) Save(version uint64, c *blockchain.Blockchain) error {
	var v [8]byte
	binary.BigEndian.PutUint64(v[:], version)
	tip := c.TipHash()

	batch := a.provider.Batch()
	batch.Put(chainKey(version), c.Encode())
	batch.Put(metaKey(ChainMetaKeyLatest), v[:])
	batch.Put(metaKey(ChainMetaKeyTipHash), tip[:])
	if err := batch.Write(); err != nil {
		return errors.Wrapf(err, "archive chain version %d", version)
	}
	if a.keep > 0 && version >= uint64(a.keep) {
		if _, err := a.Prune(version - uint64(a.keep) + 1); err != nil {
			logx.Warn("STORE", "prune failed: ", err)
		}
	}
	return nil
}

// Latest returns the most recently saved chain. found is false when the
// archive is empty.
func (a *ChainArchive) Latest() (c *blockchain.Blockchain, version uint64, found bool, err error) {
	raw, err := a.provider.Get(metaKey(ChainMetaKeyLatest))
	if err != nil {
		return nil, 0, false, errors.Wrap(err, "read latest version")
	}
	if raw == nil {
		return nil, 0, false, nil
	}
	if len(raw) != 8 {
		return nil, 0, false, fmt.Errorf("invalid latest version length: got %d", len(raw))
	}
	version = binary.BigEndian.Uint64(raw)
	c, err = a.Get(version)
	if err != nil {
		return nil, 0, false, err
	}
	return c, version, c != nil, nil
}

// Get returns the chain saved for version, or nil if there is none.
func (a *ChainArchive) Get(version uint64) (*blockchain.Blockchain, error) {
	raw, err := a.provider.Get(chainKey(version))
	if err != nil {
		return nil, errors.Wrapf(err, "read chain version %d", version)
	}
	if raw == nil {
		return nil, nil
	}
	c, err := blockchain.Decode(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "decode archived chain version %d", version)
	}
	return c, nil
}

// LatestTipHash returns the tip hash recorded with the latest chain.
func (a *ChainArchive) LatestTipHash() (block.Hash, bool, error) {
	var h block.Hash
	raw, err := a.provider.Get(metaKey(ChainMetaKeyTipHash))
	if err != nil || raw == nil {
		return h, false, err
	}
	copy(h[:], raw)
	return h, true, nil
}

// Versions lists archived versions in ascending order.
func (a *ChainArchive) Versions() ([]uint64, error) {
	var out []uint64
	err := a.provider.IteratePrefix([]byte(PrefixChain), func(key, _ []byte) bool {
		if len(key) == len(PrefixChain)+8 {
			out = append(out, binary.BigEndian.Uint64(key[len(PrefixChain):]))
		}
		return true
	})
	return out, err
}

// Prune deletes versions below minVersion and returns how many it removed.
func (a *ChainArchive) Prune(minVersion uint64) (int, error) {
	versions, err := a.Versions()
	if err != nil {
		return 0, err
	}
	batch := a.provider.Batch()
	n := 0
	for _, v := range versions {
		if v < minVersion {
			batch.Delete(chainKey(v))
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return n, batch.Write()
}

func (a *ChainArchive) Close() error {
	return a.provider.Close()
}
