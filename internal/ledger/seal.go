package ledger

import (
	"context"
	"crypto/sha256"
	"errors"
	"strings"
)

// DefaultDifficulty is the number of leading zero hex characters a sealed
// digest must carry when no difficulty is configured.
const DefaultDifficulty = 2

// maxDifficulty is the length of a hex-encoded SHA-256 digest. A target
// longer than the digest itself can never be satisfied.
const maxDifficulty = sha256.Size * 2

// ctxCheckInterval is the number of nonce attempts between context checks.
const ctxCheckInterval = 4096

// ErrSealExhausted is returned when a bounded seal search runs out of
// attempts before finding a digest that satisfies the difficulty target.
var ErrSealExhausted = errors.New("sealing exhausted: no valid nonce within attempt budget")

// ErrInvalidDifficulty is returned for a difficulty outside [0, 64].
var ErrInvalidDifficulty = errors.New("difficulty out of range: must be between 0 and 64")

// Seal searches for a nonce, starting at zero, such that the digest over the
// given record fields meets the difficulty target. It returns the winning
// digest and nonce.
//
// maxAttempts == 0 selects an unbounded search. The search terminates almost
// surely but carries no guarantee; callers for whom that liveness risk is
// unacceptable should pass an attempt budget or a cancellable context. The
// context is observed every few thousand attempts.
//
// A difficulty below 0 or above 64 is rejected with ErrInvalidDifficulty: a
// negative target is meaningless, and one longer than the digest can never
// be met, so an unbounded search would never return.
func Seal(ctx context.Context, index, timestamp uint64, payload, prevDigest string, difficulty int, maxAttempts uint64) (string, uint64, error) {
	if difficulty < 0 || difficulty > maxDifficulty {
		return "", 0, ErrInvalidDifficulty
	}
	target := strings.Repeat("0", difficulty)
	for nonce := uint64(0); ; nonce++ {
		if nonce%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return "", 0, err
			}
		}
		if maxAttempts > 0 && nonce >= maxAttempts {
			return "", 0, ErrSealExhausted
		}
		digest := ComputeDigest(index, timestamp, payload, prevDigest, nonce)
		if strings.HasPrefix(digest, target) {
			return digest, nonce, nil
		}
	}
}

// meetsDifficulty reports whether digest carries at least difficulty leading
// zero hex characters.
func meetsDifficulty(digest string, difficulty int) bool {
	if difficulty <= 0 {
		return true
	}
	if len(digest) < difficulty {
		return false
	}
	for i := 0; i < difficulty; i++ {
		if digest[i] != '0' {
			return false
		}
	}
	return true
}
