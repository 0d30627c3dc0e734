package block

import (
	"crypto/sha256"
	"encoding/binary"
	"math"

	"github.com/kostaleonard/leocoin/errors"
)

// DefaultDifficulty is the number of leading zero bytes a block hash needs.
const DefaultDifficulty uint64 = 3

// StopCheckInterval is how many attempts Mine makes between stop checks.
const StopCheckInterval = 4096

// IsValidHash reports whether the first difficulty bytes of h are zero.
func IsValidHash(h Hash, difficulty uint64) bool {
	if difficulty > HashSize {
		return false
	}
	for _, v := range h[:difficulty] {
		if v != 0 {
			return false
		}
	}
	return true
}

// Mine searches proof-of-work values from 0 upward until the block hash
// satisfies difficulty and stores the winning value in b. stop may be nil;
// otherwise it is polled every StopCheckInterval attempts and a true result
// aborts with ErrStoppedEarly.
func (b *Block) Mine(difficulty uint64, stop func() bool) error {
	if difficulty > HashSize {
		return errors.Newf(errors.CodeCouldNotFindValidProofOfWork, "difficulty %d exceeds hash size", difficulty)
	}
	buf := b.Bytes()
	slot := buf[powOffset : powOffset+8]
	for pow := uint64(0); ; pow++ {
		binary.BigEndian.PutUint64(slot, pow)
		if IsValidHash(sha256.Sum256(buf), difficulty) {
			b.ProofOfWork = pow
			return nil
		}
		if pow == math.MaxUint64 {
			break
		}
		if stop != nil && pow%StopCheckInterval == StopCheckInterval-1 && stop() {
			return errors.Newf(errors.CodeStoppedEarly, "mining stopped after %d attempts", pow+1)
		}
	}
	return errors.NewError(errors.CodeCouldNotFindValidProofOfWork, "proof of work space exhausted")
}
