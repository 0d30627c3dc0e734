package blockchain

import (
	"github.com/kostaleonard/leocoin/block"
	"github.com/kostaleonard/leocoin/codec"
	"github.com/kostaleonard/leocoin/errors"
	"github.com/kostaleonard/leocoin/transaction"
)

const headerSize = 8 + 8

// Blockchain is an ordered list of blocks sharing one difficulty. Index 0 is
// the genesis block.
type Blockchain struct {
	Difficulty uint64         `json:"difficulty"`
	Blocks     []*block.Block `json:"blocks"`
}

// New returns a chain holding only the genesis block.
func New(difficulty uint64) *Blockchain {
	return &Blockchain{
		Difficulty: difficulty,
		Blocks:     []*block.Block{block.Genesis()},
	}
}

func (c *Blockchain) Len() int {
	return len(c.Blocks)
}

// Tip returns the last block, or nil for an empty chain.
func (c *Blockchain) Tip() *block.Block {
	if len(c.Blocks) == 0 {
		return nil
	}
	return c.Blocks[len(c.Blocks)-1]
}

func (c *Blockchain) TipHash() block.Hash {
	tip := c.Tip()
	if tip == nil {
		return block.Hash{}
	}
	return tip.Hash()
}

// Append adds b without any checks. Callers mine b against TipHash first.
func (c *Blockchain) Append(b *block.Block) {
	c.Blocks = append(c.Blocks, b)
}

// Clone returns a deep copy that shares no mutable state with c.
func (c *Blockchain) Clone() *Blockchain {
	out := &Blockchain{
		Difficulty: c.Difficulty,
		Blocks:     make([]*block.Block, len(c.Blocks)),
	}
	for i, b := range c.Blocks {
		out.Blocks[i] = b.Clone()
	}
	return out
}

func (c *Blockchain) EncodedSize() int {
	n := headerSize
	for _, b := range c.Blocks {
		n += b.EncodedSize()
	}
	return n
}

// Encode returns difficulty:u64 blockCount:u64 Block*.
func (c *Blockchain) Encode() []byte {
	w := codec.NewWriter(c.EncodedSize())
	w.Uint64(c.Difficulty)
	w.Uint64(uint64(len(c.Blocks)))
	for _, b := range c.Blocks {
		b.Encode(w)
	}
	return w.Result()
}

// Decode parses a whole encoded chain. Trailing bytes are rejected.
func Decode(data []byte) (*Blockchain, error) {
	if data == nil {
		return nil, errors.NewError(errors.CodeInvalidInput, "nil chain buffer")
	}
	r := codec.NewReader(data)
	difficulty, err := r.Uint64()
	if err != nil {
		return nil, err
	}
	count, err := r.Count(block.MinEncodedSize())
	if err != nil {
		return nil, err
	}
	c := &Blockchain{
		Difficulty: difficulty,
		Blocks:     make([]*block.Block, 0, count),
	}
	for i := 0; i < count; i++ {
		b, err := block.Decode(r)
		if err != nil {
			return nil, err
		}
		c.Blocks = append(c.Blocks, b)
	}
	if r.Remaining() != 0 {
		return nil, errors.Newf(errors.CodeInvalidInput, "%d trailing bytes after chain", r.Remaining())
	}
	return c, nil
}

// Verify checks every chain rule and reports the index of the first block
// that breaks one. badIndex is -1 when the chain is valid.
func (c *Blockchain) Verify(v transaction.Verifier) (valid bool, badIndex int) {
	if len(c.Blocks) == 0 || !c.Blocks[0].IsGenesisShaped() {
		return false, 0
	}
	prevHash := c.Blocks[0].Hash()
	for i := 1; i < len(c.Blocks); i++ {
		b := c.Blocks[i]
		if b.PreviousBlockHash != prevHash {
			return false, i
		}
		h := b.Hash()
		if !block.IsValidHash(h, c.Difficulty) {
			return false, i
		}
		for _, tx := range b.Transactions {
			if !tx.Verify(v) {
				return false, i
			}
		}
		prevHash = h
	}
	return true, -1
}

// Validate is Verify with ed25519 signatures, returning ErrInvalidBlockchain
// on failure.
func (c *Blockchain) Validate() error {
	if ok, idx := c.Verify(transaction.Ed25519Verifier{}); !ok {
		return errors.Newf(errors.CodeInvalidBlockchain, "invalid block at index %d", idx)
	}
	return nil
}

// Extend returns a copy of c with b appended.
func (c *Blockchain) Extend(b *block.Block) *Blockchain {
	out := &Blockchain{
		Difficulty: c.Difficulty,
		Blocks:     make([]*block.Block, len(c.Blocks), len(c.Blocks)+1),
	}
	copy(out.Blocks, c.Blocks)
	out.Blocks = append(out.Blocks, b)
	return out
}
