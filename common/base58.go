package common

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// EncodeBytesToBase58 encodes bytes directly to base58
func EncodeBytesToBase58(bytes []byte) string {
	return base58.Encode(bytes)
}

// DecodeBase58ToBytes decodes base58 string to bytes
func DecodeBase58ToBytes(base58Str string) ([]byte, error) {
	bytes, err := base58.Decode(base58Str)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base58 string: %w", err)
	}
	return bytes, nil
}

// DecodeFixedBase58 decodes base58 text that must hold exactly size bytes.
func DecodeFixedBase58(base58Str string, size int) ([]byte, error) {
	bytes, err := DecodeBase58ToBytes(strings.TrimSpace(base58Str))
	if err != nil {
		return nil, err
	}
	if len(bytes) != size {
		return nil, fmt.Errorf("decoded key has %d bytes, want %d", len(bytes), size)
	}
	return bytes, nil
}

// DecodeKeyText accepts a key written either as hex (optionally 0x-prefixed)
// or as base58 and returns its raw bytes.
func DecodeKeyText(text string, size int) ([]byte, error) {
	text = strings.TrimSpace(text)
	hexText := strings.TrimPrefix(text, "0x")
	if len(hexText) == size*2 {
		if raw, err := hex.DecodeString(hexText); err == nil {
			return raw, nil
		}
	}
	if !IsValidBase58(text) {
		return nil, fmt.Errorf("key text is neither %d-byte hex nor base58", size)
	}
	return DecodeFixedBase58(text, size)
}

// IsValidBase58 checks if a string is valid base58
func IsValidBase58(str string) bool {
	decoded, err := base58.Decode(str)
	return err == nil && len(decoded) > 0
}
