// Package storage wraps the embedded pebble store behind the byte-level
// primitives the record engine builds on: durable reads, deletes, and an
// atomic compare-and-swap.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/gofrs/flock"
)

// lockStripes is the number of per-key mutex stripes serializing writers.
const lockStripes = 64

var (
	// ErrKeyNotFound indicates a read of an absent key.
	ErrKeyNotFound = errors.New("storage: key not found")

	// ErrDatabaseInUse indicates the data directory is locked by another process.
	ErrDatabaseInUse = errors.New("storage: data directory in use by another process")

	// ErrCASMismatch is the target for errors.Is on CASMismatchError values.
	ErrCASMismatch = errors.New("storage: compare and swap mismatch")
)

// CASMismatchError reports a failed compare-and-swap. Current holds a copy of
// the bytes stored under the key when the mismatch was observed, nil when the
// key was absent.
type CASMismatchError struct {
	Key     string
	Current []byte
}

func (e *CASMismatchError) Error() string {
	if e.Current == nil {
		return fmt.Sprintf("storage: compare and swap mismatch on %q: key absent", e.Key)
	}
	return fmt.Sprintf("storage: compare and swap mismatch on %q", e.Key)
}

// Is lets errors.Is(err, ErrCASMismatch) match without losing the payload.
func (e *CASMismatchError) Is(target error) bool {
	return target == ErrCASMismatch
}

// Store is a pebble-backed byte store. One Store owns its data directory for
// the lifetime of the process; a second open of the same directory fails with
// ErrDatabaseInUse. All writes are synced before returning.
type Store struct {
	db    *pebble.DB
	flock *flock.Flock
	locks [lockStripes]sync.Mutex
}

// Open creates the data directory if needed, takes the directory lock, and
// opens the pebble store inside it.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("storage: create data directory: %w", err)
	}

	// Own lock file, separate from pebble's LOCK, so contention surfaces as
	// a typed error instead of a pebble internal one.
	fl := flock.New(filepath.Join(dir, "flock"))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("storage: acquire directory lock: %w", err)
	}
	if !locked {
		return nil, ErrDatabaseInUse
	}

	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		_ = fl.Unlock()
		return nil, fmt.Errorf("storage: open pebble: %w", err)
	}

	return &Store{db: db, flock: fl}, nil
}

// Get returns a copy of the bytes stored under key, or ErrKeyNotFound.
func (s *Store) Get(key string) ([]byte, error) {
	data, closer, err := s.db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("storage: get %q: %w", key, err)
	}

	// The buffer is only valid until closer.Close, copy before releasing.
	value := make([]byte, len(data))
	copy(value, data)

	if err := closer.Close(); err != nil {
		return nil, fmt.Errorf("storage: get %q: %w", key, err)
	}
	return value, nil
}

// CompareAndSwap atomically replaces the bytes under key.
//
// oldValue == nil requires the key to be absent; newValue == nil deletes the
// key. Equality is byte-level over the stored representation. On mismatch a
// *CASMismatchError carrying the current bytes is returned and the store is
// unchanged. The swap is durable before CompareAndSwap returns.
func (s *Store) CompareAndSwap(key string, oldValue, newValue []byte) error {
	stripe := &s.locks[stripeFor(key)]
	stripe.Lock()
	defer stripe.Unlock()

	current, closer, err := s.db.Get([]byte(key))
	switch {
	case errors.Is(err, pebble.ErrNotFound):
		if oldValue != nil {
			return &CASMismatchError{Key: key}
		}
	case err != nil:
		return fmt.Errorf("storage: cas %q: %w", key, err)
	default:
		if oldValue == nil || !bytes.Equal(current, oldValue) {
			mismatch := &CASMismatchError{Key: key, Current: make([]byte, len(current))}
			copy(mismatch.Current, current)
			_ = closer.Close()
			return mismatch
		}
		if err := closer.Close(); err != nil {
			return fmt.Errorf("storage: cas %q: %w", key, err)
		}
	}

	if newValue == nil {
		if err := s.db.Delete([]byte(key), pebble.Sync); err != nil {
			return fmt.Errorf("storage: cas delete %q: %w", key, err)
		}
		return nil
	}
	if err := s.db.Set([]byte(key), newValue, pebble.Sync); err != nil {
		return fmt.Errorf("storage: cas set %q: %w", key, err)
	}
	return nil
}

// Delete removes key unconditionally and reports whether it existed.
// The removal is durable before Delete returns.
func (s *Store) Delete(key string) (bool, error) {
	stripe := &s.locks[stripeFor(key)]
	stripe.Lock()
	defer stripe.Unlock()

	_, closer, err := s.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("storage: delete %q: %w", key, err)
	}
	if err := closer.Close(); err != nil {
		return false, fmt.Errorf("storage: delete %q: %w", key, err)
	}

	if err := s.db.Delete([]byte(key), pebble.Sync); err != nil {
		return false, fmt.Errorf("storage: delete %q: %w", key, err)
	}
	return true, nil
}

// Close shuts down pebble and releases the directory lock.
func (s *Store) Close() error {
	err := s.db.Close()
	if uerr := s.flock.Unlock(); err == nil {
		err = uerr
	}
	return err
}

func stripeFor(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32() % lockStripes
}
