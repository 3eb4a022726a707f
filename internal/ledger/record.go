package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// GenesisPrevDigest is the sentinel previous-digest of the genesis record.
const GenesisPrevDigest = "0"

// GenesisPayload is the fixed payload of the genesis record.
const GenesisPayload = "Genesis Record"

// Record is a single sealed entry in the ledger. All fields are write-once:
// Index, Timestamp, Payload and PrevDigest are fixed at construction, and
// Nonce and Digest are frozen when sealing succeeds.
type Record struct {
	Index      uint64 `json:"index"`
	Timestamp  uint64 `json:"timestamp"`
	Payload    string `json:"payload"`
	PrevDigest string `json:"prev_digest"`
	Digest     string `json:"digest"`
	Nonce      uint64 `json:"nonce"`
}

// ComputeDigest returns the hex-encoded SHA-256 digest over the canonical
// record encoding: index, timestamp and nonce in base 10, joined with the
// payload and previous digest by '|', in that order.
//
// This layout is a compatibility contract. Verification recomputes it
// bit-for-bit, so any change invalidates every previously sealed record.
func ComputeDigest(index, timestamp uint64, payload, prevDigest string, nonce uint64) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%d|%s|%s|%d", index, timestamp, payload, prevDigest, nonce)
	return hex.EncodeToString(h.Sum(nil))
}

// recompute returns the digest of r's stored fields.
func (r Record) recompute() string {
	return ComputeDigest(r.Index, r.Timestamp, r.Payload, r.PrevDigest, r.Nonce)
}
