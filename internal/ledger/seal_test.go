package ledger

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestSeal_meetsDifficultyTarget(t *testing.T) {
	digest, nonce, err := Seal(context.Background(), 1, 1700000000, "payload", "0abc", 1, 0)
	if err != nil {
		t.Fatalf("Seal() failed: %v", err)
	}
	if !strings.HasPrefix(digest, "0") {
		t.Errorf("digest %q does not start with the difficulty prefix", digest)
	}
	if got := ComputeDigest(1, 1700000000, "payload", "0abc", nonce); got != digest {
		t.Errorf("recomputation mismatch: got %q, want %q", got, digest)
	}
}

func TestSeal_deterministic(t *testing.T) {
	d1, n1, err := Seal(context.Background(), 3, 1700000000, "same input", "00ff", 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	d2, n2, err := Seal(context.Background(), 3, 1700000000, "same input", "00ff", 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if d1 != d2 || n1 != n2 {
		t.Errorf("same inputs produced (%q, %d) and (%q, %d)", d1, n1, d2, n2)
	}
}

func TestSeal_zeroDifficulty(t *testing.T) {
	_, nonce, err := Seal(context.Background(), 0, 0, "x", GenesisPrevDigest, 0, 0)
	if err != nil {
		t.Fatalf("Seal() failed: %v", err)
	}
	if nonce != 0 {
		t.Errorf("zero difficulty should accept the first nonce, got %d", nonce)
	}
}

func TestSeal_exhaustsBudget(t *testing.T) {
	// Eight leading zeros within four attempts is effectively impossible.
	_, _, err := Seal(context.Background(), 1, 1700000000, "payload", "0abc", 8, 4)
	if !errors.Is(err, ErrSealExhausted) {
		t.Errorf("expected ErrSealExhausted, got %v", err)
	}
}

func TestSeal_rejectsOutOfRangeDifficulty(t *testing.T) {
	// A negative target must not panic, and one longer than a hex-encoded
	// SHA-256 digest must not loop forever; both are rejected up front.
	for _, difficulty := range []int{-1, 65} {
		_, _, err := Seal(context.Background(), 1, 1700000000, "payload", "0abc", difficulty, 0)
		if !errors.Is(err, ErrInvalidDifficulty) {
			t.Errorf("Seal(difficulty=%d): expected ErrInvalidDifficulty, got %v", difficulty, err)
		}
	}
}

func TestSeal_maxDifficultyBoundedSearch(t *testing.T) {
	// Difficulty 64 is in range; a bounded search must exhaust rather than
	// be rejected.
	_, _, err := Seal(context.Background(), 1, 1700000000, "payload", "0abc", 64, 2)
	if !errors.Is(err, ErrSealExhausted) {
		t.Errorf("expected ErrSealExhausted, got %v", err)
	}
}

func TestSeal_cancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Seal(ctx, 1, 1700000000, "payload", "0abc", 6, 0)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestMeetsDifficulty(t *testing.T) {
	cases := []struct {
		digest     string
		difficulty int
		want       bool
	}{
		{"00ab12", 2, true},
		{"00ab12", 3, false},
		{"0ab", 1, true},
		{"ab", 1, false},
		{"ab", 0, true},
		{"0", 2, false},
	}
	for _, c := range cases {
		if got := meetsDifficulty(c.digest, c.difficulty); got != c.want {
			t.Errorf("meetsDifficulty(%q, %d) = %v, want %v", c.digest, c.difficulty, got, c.want)
		}
	}
}
