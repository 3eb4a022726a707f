package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// ErrInvalidPayload is returned by Append when the payload is not valid
// UTF-8 and therefore cannot enter the canonical digest encoding.
var ErrInvalidPayload = errors.New("invalid payload encoding: not valid UTF-8")

// VerifyError reports the first record that failed chain verification and
// which check it failed. Index is the record's position in the chain, which
// survives tampering with the stored index field itself.
type VerifyError struct {
	Index  uint64
	Reason string
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("record %d: %s", e.Index, e.Reason)
}

// Config holds Ledger construction parameters. The zero value selects the
// package defaults.
type Config struct {
	// Difficulty is the required number of leading zero hex characters in
	// every sealed digest. Defaults to DefaultDifficulty. Values below 0 or
	// above 64 are rejected by NewWithConfig.
	Difficulty int
	// MaxSealAttempts bounds the proof-of-work search per record; 0 means
	// unbounded, matching the default blocking behaviour.
	MaxSealAttempts uint64
	// Clock supplies record timestamps. Defaults to time.Now. Inject a fixed
	// clock to reproduce exact digests in tests.
	Clock func() time.Time
	// Logger receives append diagnostics. Defaults to zap.NewNop().
	Logger *zap.Logger
}

// Ledger is the append-only, tamper-evident chain of sealed records.
//
// A single mutex serialises appends so that at most one in-flight seal
// observes the chain tail, and readers always see a consistent point-in-time
// snapshot. No delete or reorder operation exists.
type Ledger struct {
	mu              sync.RWMutex
	records         []Record
	difficulty      int
	maxSealAttempts uint64
	clock           func() time.Time
	logger          *zap.Logger
}

// New creates a ledger with default configuration and seals the genesis
// record. The default search is unbounded, so construction cannot fail.
func New() *Ledger {
	l, err := NewWithConfig(Config{})
	if err != nil {
		// Unreachable: only a bounded search can exhaust.
		panic(err)
	}
	return l
}

// NewWithConfig creates a ledger and seals its genesis record under cfg.
// A difficulty outside [0, 64] is rejected with an error wrapping
// ErrInvalidDifficulty. With a bounded MaxSealAttempts the genesis seal
// itself can exhaust, in which case the error wraps ErrSealExhausted.
func NewWithConfig(cfg Config) (*Ledger, error) {
	if cfg.Difficulty == 0 {
		cfg.Difficulty = DefaultDifficulty
	}
	if cfg.Difficulty < 0 || cfg.Difficulty > maxDifficulty {
		return nil, fmt.Errorf("difficulty %d: %w", cfg.Difficulty, ErrInvalidDifficulty)
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	l := &Ledger{
		difficulty:      cfg.Difficulty,
		maxSealAttempts: cfg.MaxSealAttempts,
		clock:           cfg.Clock,
		logger:          cfg.Logger,
	}

	genesis, err := l.sealRecord(context.Background(), 0, GenesisPayload, GenesisPrevDigest)
	if err != nil {
		return nil, fmt.Errorf("seal genesis record: %w", err)
	}
	l.records = append(l.records, genesis)
	return l, nil
}

// Append validates the payload, seals the next record against the current
// tail, and appends it. It blocks for the full proof-of-work search; the
// returned Record is a copy the caller may hold freely.
func (l *Ledger) Append(ctx context.Context, payload string) (Record, error) {
	if !utf8.ValidString(payload) {
		return Record{}, ErrInvalidPayload
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tail := l.records[len(l.records)-1]
	rec, err := l.sealRecord(ctx, tail.Index+1, payload, tail.Digest)
	if err != nil {
		return Record{}, fmt.Errorf("seal record %d: %w", tail.Index+1, err)
	}
	l.records = append(l.records, rec)

	l.logger.Debug("record appended",
		zap.Uint64("index", rec.Index),
		zap.Uint64("nonce", rec.Nonce),
		zap.String("digest", rec.Digest),
	)
	return rec, nil
}

// sealRecord constructs and seals one record. Callers must hold the write
// lock, except during genesis construction when the ledger is not yet shared.
func (l *Ledger) sealRecord(ctx context.Context, index uint64, payload, prevDigest string) (Record, error) {
	ts := uint64(l.clock().Unix())
	digest, nonce, err := Seal(ctx, index, ts, payload, prevDigest, l.difficulty, l.maxSealAttempts)
	if err != nil {
		return Record{}, err
	}
	return Record{
		Index:      index,
		Timestamp:  ts,
		Payload:    payload,
		PrevDigest: prevDigest,
		Digest:     digest,
		Nonce:      nonce,
	}, nil
}

// Verify walks the whole chain and returns nil if it is intact, or a
// *VerifyError naming the first offending position and failed check.
//
// For every record after genesis it checks, in order, that the stored digest
// matches a recomputation over the stored fields, that the digest meets the
// difficulty target, that the previous-digest links to the predecessor, and
// that the index increases by exactly one. The genesis record's own digest,
// sentinel previous-digest and difficulty are checked first. Verification is
// read-only and idempotent.
func (l *Ledger) Verify(ctx context.Context) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	genesis := l.records[0]
	if genesis.Index != 0 {
		return &VerifyError{Index: 0, Reason: "genesis record has nonzero index"}
	}
	if genesis.PrevDigest != GenesisPrevDigest {
		return &VerifyError{Index: 0, Reason: "genesis previous digest is not the sentinel"}
	}
	if genesis.Digest != genesis.recompute() {
		return &VerifyError{Index: 0, Reason: "digest does not match recomputation"}
	}
	if !meetsDifficulty(genesis.Digest, l.difficulty) {
		return &VerifyError{Index: 0, Reason: "digest misses the difficulty target"}
	}

	for i := 1; i < len(l.records); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		curr, prev := l.records[i], l.records[i-1]

		if curr.Digest != curr.recompute() {
			return &VerifyError{Index: uint64(i), Reason: "digest does not match recomputation"}
		}
		if !meetsDifficulty(curr.Digest, l.difficulty) {
			return &VerifyError{Index: uint64(i), Reason: "digest misses the difficulty target"}
		}
		if curr.PrevDigest != prev.Digest {
			return &VerifyError{Index: uint64(i), Reason: "previous digest does not link to predecessor"}
		}
		if curr.Index != prev.Index+1 {
			return &VerifyError{Index: uint64(i), Reason: "index is not monotonic"}
		}
	}
	return nil
}

// Len returns the number of records, genesis included.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Tip returns a copy of the most recent record.
func (l *Ledger) Tip() Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.records[len(l.records)-1]
}

// Get returns a copy of the record at the given zero-based index.
func (l *Ledger) Get(index uint64) (Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if index >= uint64(len(l.records)) {
		return Record{}, fmt.Errorf("index %d out of range", index)
	}
	return l.records[index], nil
}

// Records returns a copy of the full ordered chain.
func (l *Ledger) Records() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Payloads returns the payload-only projection of the chain, in order.
func (l *Ledger) Payloads() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, len(l.records))
	for i, r := range l.records {
		out[i] = r.Payload
	}
	return out
}

// Difficulty returns the configured difficulty.
func (l *Ledger) Difficulty() int {
	return l.difficulty
}
