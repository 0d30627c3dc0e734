package block

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/kostaleonard/leocoin/codec"
	"github.com/kostaleonard/leocoin/transaction"
)

const (
	HashSize = sha256.Size

	// createdAt, prevHash, proofOfWork, txCount
	headerSize = 8 + HashSize + 8 + 8
	// byte offset of the proof of work inside the encoding
	powOffset = 8 + HashSize
)

type Hash [HashSize]byte

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// shortHashLength is how many hex characters Short keeps.
const shortHashLength = 16

// Short abbreviates the hex form for log lines.
func (h Hash) Short() string {
	full := h.String()
	cut := shortHashLength / 2
	return full[:cut] + "..." + full[len(full)-cut:]
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h Hash) IsZero() bool {
	return h == Hash{}
}

type Block struct {
	CreatedAt         int64                      `json:"created_at"`
	PreviousBlockHash Hash                       `json:"previous_block_hash"`
	ProofOfWork       uint64                     `json:"proof_of_work"`
	Transactions      []*transaction.Transaction `json:"transactions"`
}

// New assembles an unmined block on top of prev.
func New(prev Hash, txs []*transaction.Transaction, now time.Time) *Block {
	return &Block{
		CreatedAt:         now.Unix(),
		PreviousBlockHash: prev,
		Transactions:      txs,
	}
}

// Genesis returns the fixed first block of every chain.
func Genesis() *Block {
	return &Block{}
}

// IsGenesisShaped reports whether b has the content required at index 0.
func (b *Block) IsGenesisShaped() bool {
	return b.PreviousBlockHash.IsZero() && len(b.Transactions) == 0
}

func (b *Block) EncodedSize() int {
	n := headerSize
	for _, tx := range b.Transactions {
		n += tx.EncodedSize()
	}
	return n
}

// Encode appends createdAt:u64 prevHash:32 pow:u64 txCount:u64 Transaction*.
func (b *Block) Encode(w *codec.Writer) {
	w.Uint64(uint64(b.CreatedAt))
	w.Bytes(b.PreviousBlockHash[:])
	w.Uint64(b.ProofOfWork)
	w.Uint64(uint64(len(b.Transactions)))
	for _, tx := range b.Transactions {
		tx.Encode(w)
	}
}

func (b *Block) Bytes() []byte {
	w := codec.NewWriter(b.EncodedSize())
	b.Encode(w)
	return w.Result()
}

// MinEncodedSize is the size of a block with no transactions.
func MinEncodedSize() int {
	return headerSize
}

func Decode(r *codec.Reader) (*Block, error) {
	b := &Block{}
	createdAt, err := r.Uint64()
	if err != nil {
		return nil, err
	}
	b.CreatedAt = int64(createdAt)
	if err := r.Fixed(b.PreviousBlockHash[:]); err != nil {
		return nil, err
	}
	if b.ProofOfWork, err = r.Uint64(); err != nil {
		return nil, err
	}
	count, err := r.Count(transaction.MinEncodedSize())
	if err != nil {
		return nil, err
	}
	if count > 0 {
		b.Transactions = make([]*transaction.Transaction, 0, count)
	}
	for i := 0; i < count; i++ {
		tx, err := transaction.Decode(r)
		if err != nil {
			return nil, err
		}
		b.Transactions = append(b.Transactions, tx)
	}
	return b, nil
}

// Hash is the SHA-256 of the block's canonical encoding.
func (b *Block) Hash() Hash {
	return sha256.Sum256(b.Bytes())
}

func (b *Block) Clone() *Block {
	out := *b
	if b.Transactions != nil {
		out.Transactions = make([]*transaction.Transaction, len(b.Transactions))
		for i, tx := range b.Transactions {
			out.Transactions[i] = tx.Clone()
		}
	}
	return &out
}
