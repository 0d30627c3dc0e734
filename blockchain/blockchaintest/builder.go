// Package blockchaintest builds small valid chains for tests.
package blockchaintest

import (
	"testing"
	"time"

	"github.com/kostaleonard/leocoin/block"
	"github.com/kostaleonard/leocoin/blockchain"
	"github.com/kostaleonard/leocoin/transaction"
	"github.com/stretchr/testify/require"
)

// Extend mines n more blocks onto c. Each block carries a minting reward for
// the signer and a signed transfer from the signer to a fresh key.
func Extend(tb testing.TB, c *blockchain.Blockchain, signer *transaction.Ed25519Signer, n int) *blockchain.Blockchain {
	tb.Helper()
	out := c.Clone()
	for i := 0; i < n; i++ {
		recipient, err := transaction.GenerateEd25519Signer()
		require.NoError(tb, err)

		now := time.Unix(int64(1700000000+out.Len()), 0)
		transfer := &transaction.Transaction{
			CreatedAt: now.Unix(),
			Recipient: recipient.PublicKey(),
			Amount:    1,
		}
		require.NoError(tb, transfer.Sign(signer))
		txs := []*transaction.Transaction{
			transaction.NewMinting(signer.PublicKey(), transaction.MintingAmount, now),
			transfer,
		}

		b := block.New(out.TipHash(), txs, now)
		require.NoError(tb, b.Mine(out.Difficulty, nil))
		out.Append(b)
	}
	return out
}

// Chain returns a valid chain of length blocks, genesis included.
func Chain(tb testing.TB, difficulty uint64, length int) (*blockchain.Blockchain, *transaction.Ed25519Signer) {
	tb.Helper()
	signer, err := transaction.GenerateEd25519Signer()
	require.NoError(tb, err)
	return Extend(tb, blockchain.New(difficulty), signer, length-1), signer
}
