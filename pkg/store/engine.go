package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/decikv/decikv/pkg/codec"
	"github.com/decikv/decikv/pkg/decimal"
	"github.com/decikv/decikv/pkg/storage"
)

// Engine is the record engine: atomic create/read/update/delete of decimal
// values over a durable byte backend. Values are persisted as checksummed
// records of their canonical string form, so integrity failures surface as
// ErrCorrupted on the next read rather than as silently wrong numbers.
//
// All methods are safe for concurrent use.
type Engine struct {
	cfg     Config
	backend Backend
	backoff Backoff
}

// NewEngine validates cfg and prepares an engine. Open acquires the backend.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("store: data directory is required")
	}
	if cfg.MaxUpdateRetries <= 0 {
		cfg.MaxUpdateRetries = DefaultMaxUpdateRetries
	}
	return &Engine{
		cfg:     cfg,
		backoff: NewBackoff(cfg.RetryBaseDelay, cfg.RetryMaxDelay, DefaultRetryJitter),
	}, nil
}

// Open opens the embedded store under the configured data directory.
func (e *Engine) Open() error {
	backend, err := storage.Open(e.cfg.DataDir)
	if err != nil {
		return err
	}
	e.backend = backend
	return nil
}

// Close releases the backend.
func (e *Engine) Close() error {
	if e.backend == nil {
		return nil
	}
	return e.backend.Close()
}

// Create stores value under key. It fails with ErrAlreadyExists when the key
// already holds a record, leaving the stored record untouched.
func (e *Engine) Create(key string, value decimal.Decimal) error {
	if key == "" {
		return ErrInvalidKey
	}

	err := e.backend.CompareAndSwap(key, nil, encodeValue(value))
	if err == nil {
		return nil
	}

	var mismatch *storage.CASMismatchError
	if errors.As(err, &mismatch) {
		// The key exists. A corrupt occupant is reported as corruption, not
		// as a plain existence conflict.
		if _, derr := decodeValue(key, mismatch.Current); derr != nil {
			return derr
		}
		return ErrAlreadyExists
	}
	return err
}

// Read returns the value stored under key. Records that fail integrity
// checks are reported (ErrCorrupted, or codec.ErrTruncated for short
// records) and never silently repaired.
func (e *Engine) Read(key string) (decimal.Decimal, error) {
	if key == "" {
		return decimal.Decimal{}, ErrInvalidKey
	}

	raw, err := e.backend.Get(key)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return decimal.Decimal{}, ErrNotFound
		}
		return decimal.Decimal{}, err
	}
	return decodeValue(key, raw)
}

// Update atomically replaces the value under key with fn(current) and
// returns the stored result. The read-modify-write runs as an optimistic
// compare-and-swap loop: a lost race retries with exponential backoff, up to
// MaxUpdateRetries attempts before giving up with ErrConflict. Errors from
// fn abort the update and pass through unchanged.
func (e *Engine) Update(ctx context.Context, key string, fn Transform) (decimal.Decimal, error) {
	if key == "" {
		return decimal.Decimal{}, ErrInvalidKey
	}

	for attempt := 0; ; attempt++ {
		raw, err := e.backend.Get(key)
		if err != nil {
			if errors.Is(err, storage.ErrKeyNotFound) {
				return decimal.Decimal{}, ErrNotFound
			}
			return decimal.Decimal{}, err
		}

		current, err := decodeValue(key, raw)
		if err != nil {
			return decimal.Decimal{}, err
		}

		next, err := fn(current)
		if err != nil {
			return decimal.Decimal{}, err
		}

		err = e.backend.CompareAndSwap(key, raw, encodeValue(next))
		if err == nil {
			return next, nil
		}

		var mismatch *storage.CASMismatchError
		if !errors.As(err, &mismatch) {
			return decimal.Decimal{}, err
		}

		// Lost the race. A concurrently deleted key is NotFound, a corrupt
		// replacement surfaces as such, anything else retries.
		if mismatch.Current == nil {
			return decimal.Decimal{}, ErrNotFound
		}
		if _, derr := decodeValue(key, mismatch.Current); derr != nil {
			return decimal.Decimal{}, derr
		}

		if attempt+1 >= e.cfg.MaxUpdateRetries {
			return decimal.Decimal{}, ErrConflict
		}

		select {
		case <-ctx.Done():
			return decimal.Decimal{}, ctx.Err()
		case <-time.After(e.backoff.ForAttempt(attempt)):
		}
	}
}

// Delete removes the record under key, failing with ErrNotFound when absent.
// The stored bytes are not decoded, so deleting a corrupted record succeeds.
func (e *Engine) Delete(key string) error {
	if key == "" {
		return ErrInvalidKey
	}

	existed, err := e.backend.Delete(key)
	if err != nil {
		return err
	}
	if !existed {
		return ErrNotFound
	}
	return nil
}

// CompareAndSwap atomically replaces the value under key when the current
// state matches expected. nil expected requires the key to be absent; nil
// next deletes it. Equality is over the canonical encoding, so scale is
// significant: a stored "1.50" does not match an expected "1.5". On mismatch
// it fails with ErrConflict, except that a corrupt current record is
// reported as corruption.
func (e *Engine) CompareAndSwap(key string, expected, next *decimal.Decimal) error {
	if key == "" {
		return ErrInvalidKey
	}

	var expectedBytes, nextBytes []byte
	if expected != nil {
		expectedBytes = encodeValue(*expected)
	}
	if next != nil {
		nextBytes = encodeValue(*next)
	}

	err := e.backend.CompareAndSwap(key, expectedBytes, nextBytes)
	if err == nil {
		return nil
	}

	var mismatch *storage.CASMismatchError
	if errors.As(err, &mismatch) {
		if mismatch.Current != nil {
			if _, derr := decodeValue(key, mismatch.Current); derr != nil {
				return derr
			}
		}
		return ErrConflict
	}
	return err
}

// encodeValue builds the stored record for a decimal: the canonical string
// bytes plus their checksum trailer.
func encodeValue(d decimal.Decimal) []byte {
	return codec.EncodeRecord([]byte(d.String()))
}

// decodeValue decodes and verifies a stored record. Bytes that pass the
// checksum but do not parse as a decimal are still corruption: the engine
// only ever writes canonical decimal strings.
func decodeValue(key string, raw []byte) (decimal.Decimal, error) {
	rec, err := codec.DecodeRecord(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("record under %q: %w", key, err)
	}
	if !rec.Verify() {
		return decimal.Decimal{}, fmt.Errorf("record under %q: %w", key, ErrCorrupted)
	}

	d, err := decimal.Parse(string(rec.Value))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("record under %q holds %q: %w", key, rec.Value, ErrCorrupted)
	}
	return d, nil
}
