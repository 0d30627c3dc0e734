package transaction

import (
	"crypto/ed25519"
	"math"
	"time"

	"github.com/kostaleonard/leocoin/codec"
	"github.com/kostaleonard/leocoin/common"
	"github.com/kostaleonard/leocoin/errors"
)

const (
	// KeySize is the fixed on-wire size of a public key.
	KeySize = ed25519.PublicKeySize
	// MaxSignatureLength bounds the signature bytes a transaction may carry.
	MaxSignatureLength = 128
	// MintingAmount is the reward paid by a minting transaction.
	MintingAmount uint32 = 1

	// createdAt, sender, recipient, amount, sigLen
	minEncodedSize = 8 + KeySize + KeySize + 8 + 8
)

// PublicKey identifies an account. The all-zero key is reserved for minting.
type PublicKey [KeySize]byte

func (k PublicKey) IsZero() bool {
	return k == PublicKey{}
}

func (k PublicKey) String() string {
	return common.EncodeBytesToBase58(k[:])
}

func (k PublicKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *PublicKey) UnmarshalText(text []byte) error {
	raw, err := common.DecodeKeyText(string(text), KeySize)
	if err != nil {
		return errors.NewError(errors.CodeInvalidInput, err.Error())
	}
	copy(k[:], raw)
	return nil
}

// ParsePublicKey decodes a key written as base58 or hex.
func ParsePublicKey(text string) (PublicKey, error) {
	var k PublicKey
	err := k.UnmarshalText([]byte(text))
	return k, err
}

type Transaction struct {
	CreatedAt int64     `json:"created_at"`
	Sender    PublicKey `json:"sender"`
	Recipient PublicKey `json:"recipient"`
	Amount    uint32    `json:"amount"`
	Signature []byte    `json:"signature"`
}

// NewMinting creates the reward transaction a miner puts in its block.
func NewMinting(recipient PublicKey, amount uint32, now time.Time) *Transaction {
	return &Transaction{
		CreatedAt: now.Unix(),
		Recipient: recipient,
		Amount:    amount,
	}
}

// IsMinting reports whether the transaction creates coins. Minting
// transactions are exempt from signature checks.
func (tx *Transaction) IsMinting() bool {
	return tx.Sender.IsZero()
}

// SigningBytes is the message covered by the sender's signature.
func (tx *Transaction) SigningBytes() []byte {
	w := codec.NewWriter(8 + KeySize + KeySize + 8)
	w.Uint64(uint64(tx.CreatedAt))
	w.Bytes(tx.Sender[:])
	w.Bytes(tx.Recipient[:])
	w.Uint64(uint64(tx.Amount))
	return w.Result()
}

func (tx *Transaction) EncodedSize() int {
	return minEncodedSize + len(tx.Signature)
}

// Encode appends the canonical form:
// createdAt:u64 sender recipient amount:u64 sigLen:u64 sig.
func (tx *Transaction) Encode(w *codec.Writer) {
	w.Uint64(uint64(tx.CreatedAt))
	w.Bytes(tx.Sender[:])
	w.Bytes(tx.Recipient[:])
	w.Uint64(uint64(tx.Amount))
	w.Uint64(uint64(len(tx.Signature)))
	w.Bytes(tx.Signature)
}

// MinEncodedSize is the size of a transaction with an empty signature.
func MinEncodedSize() int {
	return minEncodedSize
}

func Decode(r *codec.Reader) (*Transaction, error) {
	tx := &Transaction{}
	createdAt, err := r.Uint64()
	if err != nil {
		return nil, err
	}
	tx.CreatedAt = int64(createdAt)
	if err := r.Fixed(tx.Sender[:]); err != nil {
		return nil, err
	}
	if err := r.Fixed(tx.Recipient[:]); err != nil {
		return nil, err
	}
	amount, err := r.Uint64()
	if err != nil {
		return nil, err
	}
	if amount > math.MaxUint32 {
		return nil, errors.Newf(errors.CodeInvalidInput, "amount %d out of range", amount)
	}
	tx.Amount = uint32(amount)
	sigLen, err := r.Uint64()
	if err != nil {
		return nil, err
	}
	if sigLen > MaxSignatureLength {
		return nil, errors.Newf(errors.CodeSignatureTooLong, "signature length %d exceeds %d", sigLen, MaxSignatureLength)
	}
	sig, err := r.Bytes(int(sigLen))
	if err != nil {
		return nil, err
	}
	if len(sig) > 0 {
		tx.Signature = sig
	}
	return tx, nil
}

func (tx *Transaction) Clone() *Transaction {
	out := *tx
	if tx.Signature != nil {
		out.Signature = append([]byte(nil), tx.Signature...)
	}
	return &out
}
