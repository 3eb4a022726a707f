// Package ledger implements an append-only, tamper-evident chain of
// proof-of-work sealed records.
//
// The chain begins with a genesis record whose previous digest is the
// sentinel GenesisPrevDigest ("0"). Every subsequent record stores the
// SHA-256 digest of its predecessor, and every record, genesis included,
// is sealed by a nonce search until its own digest carries the configured
// number of leading zero hex characters. Any later modification of a stored
// field is detectable via Verify.
//
// Payloads are opaque UTF-8 text; the package imposes no schema on them.
// A single Ledger is the sole writer of its chain: Append serialises behind
// an internal lock so at most one seal observes the tail at a time, and all
// read accessors return copies rather than handles into internal storage.
package ledger
