package blockchain_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	fuzz "github.com/google/gofuzz"
	"github.com/kostaleonard/leocoin/block"
	"github.com/kostaleonard/leocoin/blockchain"
	"github.com/kostaleonard/leocoin/blockchain/blockchaintest"
	"github.com/kostaleonard/leocoin/errors"
	"github.com/kostaleonard/leocoin/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var verifier = transaction.Ed25519Verifier{}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c, _ := blockchaintest.Chain(t, 1, 4)

	got, err := blockchain.Decode(c.Encode())
	require.NoError(t, err)
	assert.Equal(t, c, got)
	assert.Len(t, c.Encode(), c.EncodedSize())
}

func TestDecodeTruncated(t *testing.T) {
	c, _ := blockchaintest.Chain(t, 1, 3)
	enc := c.Encode()

	for k := 1; k <= len(enc); k++ {
		_, err := blockchain.Decode(enc[:len(enc)-k])
		if !assert.ErrorIs(t, err, errors.ErrBufferTooSmall, "truncated by %d", k) {
			return
		}
	}
}

func TestDecodeRejects(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		_, err := blockchain.Decode(nil)
		assert.ErrorIs(t, err, errors.ErrInvalidInput)
	})
	t.Run("trailing bytes", func(t *testing.T) {
		enc := append(blockchain.New(1).Encode(), 0)
		_, err := blockchain.Decode(enc)
		assert.ErrorIs(t, err, errors.ErrInvalidInput)
	})
	t.Run("huge block count", func(t *testing.T) {
		enc := []byte{0, 0, 0, 0, 0, 0, 0, 1, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
		_, err := blockchain.Decode(enc)
		assert.ErrorIs(t, err, errors.ErrBufferTooSmall)
	})
}

func TestVerifyValid(t *testing.T) {
	c, _ := blockchaintest.Chain(t, 1, 4)
	ok, idx := c.Verify(verifier)
	assert.True(t, ok)
	assert.Equal(t, -1, idx)
	assert.NoError(t, c.Validate())

	ok, _ = blockchain.New(2).Verify(verifier)
	assert.True(t, ok, "genesis-only chain is valid")
}

func TestVerifyFailures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *blockchain.Blockchain)
		wantIdx int
	}{
		{
			name:    "empty",
			mutate:  func(c *blockchain.Blockchain) { c.Blocks = nil },
			wantIdx: 0,
		},
		{
			name:    "genesis with previous hash",
			mutate:  func(c *blockchain.Blockchain) { c.Blocks[0].PreviousBlockHash[0] = 1 },
			wantIdx: 0,
		},
		{
			name:    "genesis content changed",
			mutate:  func(c *blockchain.Blockchain) { c.Blocks[0].CreatedAt++ },
			wantIdx: 1,
		},
		{
			name:    "broken link",
			mutate:  func(c *blockchain.Blockchain) { c.Blocks[2].PreviousBlockHash[5] ^= 0xff },
			wantIdx: 2,
		},
		{
			name:    "tampered signature",
			mutate:  func(c *blockchain.Blockchain) { c.Blocks[3].Transactions[1].Signature[0] ^= 0xff },
			wantIdx: 3,
		},
		{
			name:    "difficulty raised",
			mutate:  func(c *blockchain.Blockchain) { c.Difficulty = block.HashSize },
			wantIdx: 1,
		},
	}

	base, _ := blockchaintest.Chain(t, 1, 4)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base.Clone()
			tt.mutate(c)
			ok, idx := c.Verify(verifier)
			assert.False(t, ok)
			assert.Equal(t, tt.wantIdx, idx)
			assert.ErrorIs(t, c.Validate(), errors.ErrInvalidBlockchain)
		})
	}

	ok, _ := base.Verify(verifier)
	assert.True(t, ok, "mutations must not leak into the original")
}

func TestExtendDoesNotAlias(t *testing.T) {
	c := blockchain.New(0)
	b := block.New(c.TipHash(), nil, time.Unix(1, 0))

	extended := c.Extend(b)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 2, extended.Len())
	assert.Same(t, b, extended.Tip())

	ok, _ := extended.Verify(verifier)
	assert.True(t, ok, "difficulty 0 accepts any hash")
}

func TestWriteReadFile(t *testing.T) {
	c, _ := blockchaintest.Chain(t, 1, 3)
	path := filepath.Join(t.TempDir(), "nested", blockchain.DefaultFilename)

	require.NoError(t, blockchain.WriteFile(path, c))
	got, err := blockchain.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, c.Encode(), raw, "file is exactly the chain encoding")
}

func TestReadFileCorrupt(t *testing.T) {
	c, _ := blockchaintest.Chain(t, 1, 2)
	path := filepath.Join(t.TempDir(), blockchain.DefaultFilename)
	enc := c.Encode()
	require.NoError(t, os.WriteFile(path, enc[:len(enc)-3], 0o644))

	_, err := blockchain.ReadFile(path)
	assert.ErrorIs(t, err, errors.ErrBufferTooSmall)

	_, err = blockchain.ReadFile(filepath.Join(t.TempDir(), "missing.bin"))
	assert.ErrorIs(t, err, errors.ErrFileIO)
}

func TestDecodeArbitraryBytes(t *testing.T) {
	f := fuzz.NewWithSeed(11).NilChance(0).NumElements(0, 512)
	for i := 0; i < 500; i++ {
		var data []byte
		f.Fuzz(&data)
		assert.NotPanics(t, func() {
			if c, err := blockchain.Decode(data); err == nil {
				assert.Equal(t, data, c.Encode())
			}
		})
	}
}

func TestDecodeCorruptedChain(t *testing.T) {
	c, _ := blockchaintest.Chain(t, 1, 3)
	encoded := c.Encode()
	f := fuzz.NewWithSeed(3)
	for i := 0; i < 300; i++ {
		var pos uint16
		var flip byte
		f.Fuzz(&pos)
		f.Fuzz(&flip)
		corrupted := append([]byte(nil), encoded...)
		corrupted[int(pos)%len(corrupted)] ^= flip | 1

		assert.NotPanics(t, func() {
			got, err := blockchain.Decode(corrupted)
			if err == nil {
				assert.NotEqual(t, c, got)
			}
		})
	}
}
