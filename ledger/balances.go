package ledger

import (
	"sort"

	"github.com/holiman/uint256"
	"github.com/kostaleonard/leocoin/blockchain"
	"github.com/kostaleonard/leocoin/transaction"
)

// Account totals every transfer touching one key.
type Account struct {
	Key      transaction.PublicKey `json:"key"`
	Received *uint256.Int          `json:"received"`
	Sent     *uint256.Int          `json:"sent"`
	Minted   *uint256.Int          `json:"minted"`
}

// Balance is Received minus Sent. overdrawn is true when the key spent more
// than it received, which the chain rules do not prevent.
func (a *Account) Balance() (balance *uint256.Int, overdrawn bool) {
	if a.Sent.Gt(a.Received) {
		return new(uint256.Int).Sub(a.Sent, a.Received), true
	}
	return new(uint256.Int).Sub(a.Received, a.Sent), false
}

// Balances replays every transaction in c.
func Balances(c *blockchain.Blockchain) map[transaction.PublicKey]*Account {
	accounts := make(map[transaction.PublicKey]*Account)
	get := func(k transaction.PublicKey) *Account {
		a, ok := accounts[k]
		if !ok {
			a = &Account{Key: k, Received: new(uint256.Int), Sent: new(uint256.Int), Minted: new(uint256.Int)}
			accounts[k] = a
		}
		return a
	}
	for _, b := range c.Blocks {
		for _, tx := range b.Transactions {
			amount := uint256.NewInt(uint64(tx.Amount))
			recipient := get(tx.Recipient)
			recipient.Received.Add(recipient.Received, amount)
			if tx.IsMinting() {
				recipient.Minted.Add(recipient.Minted, amount)
				continue
			}
			sender := get(tx.Sender)
			sender.Sent.Add(sender.Sent, amount)
		}
	}
	return accounts
}

// Sorted returns accounts ordered by key text.
func Sorted(accounts map[transaction.PublicKey]*Account) []*Account {
	out := make([]*Account, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key.String() < out[j].Key.String()
	})
	return out
}

// TotalMinted is the coin supply created by c.
func TotalMinted(c *blockchain.Blockchain) *uint256.Int {
	total := new(uint256.Int)
	for _, b := range c.Blocks {
		for _, tx := range b.Transactions {
			if tx.IsMinting() {
				total.Add(total, uint256.NewInt(uint64(tx.Amount)))
			}
		}
	}
	return total
}
