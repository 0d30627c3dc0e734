package ledger

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/kostaleonard/leocoin/blockchain/blockchaintest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalances(t *testing.T) {
	c, signer := blockchaintest.Chain(t, 1, 4)
	accounts := Balances(c)

	miner, ok := accounts[signer.PublicKey()]
	require.True(t, ok)
	assert.Equal(t, uint256.NewInt(3), miner.Received)
	assert.Equal(t, uint256.NewInt(3), miner.Minted)
	assert.Equal(t, uint256.NewInt(3), miner.Sent)

	balance, overdrawn := miner.Balance()
	assert.False(t, overdrawn)
	assert.True(t, balance.IsZero())

	assert.Len(t, accounts, 4, "miner plus three recipients")
	assert.Len(t, Sorted(accounts), 4)
	assert.Equal(t, uint256.NewInt(3), TotalMinted(c))
}

func TestOverdrawn(t *testing.T) {
	a := &Account{Received: uint256.NewInt(1), Sent: uint256.NewInt(4), Minted: new(uint256.Int)}
	balance, overdrawn := a.Balance()
	assert.True(t, overdrawn)
	assert.Equal(t, uint256.NewInt(3), balance)
}
