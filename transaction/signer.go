package transaction

import (
	"crypto/ed25519"
	"crypto/rand"

	"github.com/kostaleonard/leocoin/errors"
)

// Signer produces signatures for a single sender key.
type Signer interface {
	PublicKey() PublicKey
	Sign(message []byte) ([]byte, error)
}

// Verifier checks a signature against a sender key.
type Verifier interface {
	Verify(key PublicKey, message, signature []byte) bool
}

type Ed25519Signer struct {
	priv ed25519.PrivateKey
	pub  PublicKey
}

func NewEd25519Signer(priv ed25519.PrivateKey) (*Ed25519Signer, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, errors.Newf(errors.CodeInvalidInput, "private key has %d bytes, want %d", len(priv), ed25519.PrivateKeySize)
	}
	s := &Ed25519Signer{priv: priv}
	copy(s.pub[:], priv.Public().(ed25519.PublicKey))
	return s, nil
}

// GenerateEd25519Signer creates a signer with a fresh random key.
func GenerateEd25519Signer() (*Ed25519Signer, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return NewEd25519Signer(priv)
}

func (s *Ed25519Signer) PublicKey() PublicKey {
	return s.pub
}

func (s *Ed25519Signer) PrivateKey() ed25519.PrivateKey {
	return s.priv
}

func (s *Ed25519Signer) Sign(message []byte) ([]byte, error) {
	return ed25519.Sign(s.priv, message), nil
}

type Ed25519Verifier struct{}

func (Ed25519Verifier) Verify(key PublicKey, message, signature []byte) bool {
	if len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(key[:], message, signature)
}

// Sign fills in the transaction's sender and signature.
func (tx *Transaction) Sign(signer Signer) error {
	tx.Sender = signer.PublicKey()
	sig, err := signer.Sign(tx.SigningBytes())
	if err != nil {
		return err
	}
	if len(sig) > MaxSignatureLength {
		return errors.Newf(errors.CodeSignatureTooLong, "signature length %d exceeds %d", len(sig), MaxSignatureLength)
	}
	tx.Signature = sig
	return nil
}

// Verify checks the signature. Minting transactions always pass.
func (tx *Transaction) Verify(v Verifier) bool {
	if tx.IsMinting() {
		return true
	}
	return v.Verify(tx.Sender, tx.SigningBytes(), tx.Signature)
}
