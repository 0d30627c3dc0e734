package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	encryptedKeyPrefix = "argon2id:"
	keySaltLen         = 16
	keyEncLen          = 32

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

func isEncryptedKey(text string) bool {
	return strings.HasPrefix(text, encryptedKeyPrefix)
}

func deriveKeyFileKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, argonTime, argonMemory, argonThreads, keyEncLen)
}

func newKeyFileAEAD(passphrase, salt []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(deriveKeyFileKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// SaveEncryptedEd25519PrivKey writes key sealed with AES-GCM under an
// argon2id key derived from passphrase.
func SaveEncryptedEd25519PrivKey(path string, key ed25519.PrivateKey, passphrase []byte) error {
	if len(passphrase) == 0 {
		return fmt.Errorf("empty passphrase")
	}
	salt := make([]byte, keySaltLen)
	if _, err := rand.Read(salt); err != nil {
		return err
	}
	gcm, err := newKeyFileAEAD(passphrase, salt)
	if err != nil {
		return err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return err
	}

	// salt || nonce || ciphertext
	sealed := append(append(salt, nonce...), gcm.Seal(nil, nonce, key.Seed(), nil)...)
	return os.WriteFile(path, []byte(encryptedKeyPrefix+hex.EncodeToString(sealed)), 0o600)
}

func decryptPrivKey(text string, passphrase []byte) (ed25519.PrivateKey, error) {
	data, err := hex.DecodeString(strings.TrimPrefix(text, encryptedKeyPrefix))
	if err != nil {
		return nil, fmt.Errorf("encrypted key is not hex: %w", err)
	}
	if len(data) < keySaltLen {
		return nil, fmt.Errorf("encrypted key too short")
	}
	salt := data[:keySaltLen]
	gcm, err := newKeyFileAEAD(passphrase, salt)
	if err != nil {
		return nil, err
	}
	rest := data[keySaltLen:]
	if len(rest) < gcm.NonceSize() {
		return nil, fmt.Errorf("encrypted key too short")
	}
	seed, err := gcm.Open(nil, rest[:gcm.NonceSize()], rest[gcm.NonceSize():], nil)
	if err != nil {
		return nil, fmt.Errorf("wrong passphrase or corrupted key file")
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("decrypted key has %d bytes, want %d", len(seed), ed25519.SeedSize)
	}
	return ed25519.NewKeyFromSeed(seed), nil
}
