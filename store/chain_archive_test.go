package store

import (
	"testing"

	"github.com/kostaleonard/leocoin/blockchain"
	"github.com/kostaleonard/leocoin/blockchain/blockchaintest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     StoreConfig
		wantErr bool
	}{
		{"leveldb", StoreConfig{Type: LevelDBStoreType, Directory: "x"}, false},
		{"bolt", StoreConfig{Type: BoltStoreType, Directory: "x"}, false},
		{"no type", StoreConfig{Directory: "x"}, true},
		{"no dir", StoreConfig{Type: BoltStoreType}, true},
		{"unknown", StoreConfig{Type: "rocksdb", Directory: "x"}, true},
		{"negative keep", StoreConfig{Type: BoltStoreType, Directory: "x", Keep: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestChainArchive(t *testing.T) {
	for _, typ := range []StoreType{LevelDBStoreType, BoltStoreType} {
		t.Run(string(typ), func(t *testing.T) {
			archive, err := CreateChainArchive(&StoreConfig{Type: typ, Directory: t.TempDir(), Keep: 2})
			require.NoError(t, err)
			defer archive.Close()

			_, _, found, err := archive.Latest()
			require.NoError(t, err)
			assert.False(t, found)

			c, signer := blockchaintest.Chain(t, 1, 2)
			longer := blockchaintest.Extend(t, c, signer, 1)
			longest := blockchaintest.Extend(t, longer, signer, 1)

			require.NoError(t, archive.Save(0, blockchain.New(1)))
			require.NoError(t, archive.Save(1, c))
			require.NoError(t, archive.Save(2, longer))
			require.NoError(t, archive.Save(3, longest))

			got, version, found, err := archive.Latest()
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, uint64(3), version)
			assert.Equal(t, longest, got)

			tip, ok, err := archive.LatestTipHash()
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, longest.TipHash(), tip)

			versions, err := archive.Versions()
			require.NoError(t, err)
			assert.Equal(t, []uint64{2, 3}, versions, "keep=2 prunes older versions")

			old, err := archive.Get(1)
			require.NoError(t, err)
			assert.Nil(t, old)
		})
	}
}
