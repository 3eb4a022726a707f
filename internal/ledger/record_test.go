package ledger

import (
	"encoding/hex"
	"testing"
)

func TestComputeDigest_shape(t *testing.T) {
	digest := ComputeDigest(0, 1700000000, GenesisPayload, GenesisPrevDigest, 0)
	if len(digest) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(digest))
	}
	if _, err := hex.DecodeString(digest); err != nil {
		t.Fatalf("digest is not valid hex: %v", err)
	}
}

func TestComputeDigest_everyFieldMatters(t *testing.T) {
	base := ComputeDigest(1, 1700000000, "payload", "0abc", 42)

	variants := map[string]string{
		"index":       ComputeDigest(2, 1700000000, "payload", "0abc", 42),
		"timestamp":   ComputeDigest(1, 1700000001, "payload", "0abc", 42),
		"payload":     ComputeDigest(1, 1700000000, "Payload", "0abc", 42),
		"prev digest": ComputeDigest(1, 1700000000, "payload", "0abd", 42),
		"nonce":       ComputeDigest(1, 1700000000, "payload", "0abc", 43),
	}
	for field, digest := range variants {
		if digest == base {
			t.Errorf("changing the %s field did not change the digest", field)
		}
	}
}

func TestComputeDigest_deterministic(t *testing.T) {
	a := ComputeDigest(7, 1700000000, "same", "00aa", 9)
	b := ComputeDigest(7, 1700000000, "same", "00aa", 9)
	if a != b {
		t.Errorf("identical fields produced %q and %q", a, b)
	}
}
