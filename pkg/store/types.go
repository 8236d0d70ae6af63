package store

import (
	"time"

	"github.com/decikv/decikv/pkg/decimal"
)

// Defaults for Config fields left zero.
const (
	DefaultMaxUpdateRetries = 16
	DefaultRetryBaseDelay   = 2 * time.Millisecond
	DefaultRetryMaxDelay    = 50 * time.Millisecond
	DefaultRetryJitter      = 0.5
)

// Config holds configuration for the record engine.
type Config struct {
	DataDir          string        // Directory for the embedded store
	MaxUpdateRetries int           // CAS attempts per Update before Conflict (0 = default)
	RetryBaseDelay   time.Duration // First retry backoff step (0 = default)
	RetryMaxDelay    time.Duration // Retry backoff cap (0 = default)
}

// Transform maps a stored value to its replacement inside Update. It may
// run more than once when the write races another writer, so it must be
// free of side effects.
type Transform func(decimal.Decimal) (decimal.Decimal, error)

// Backend is the byte-level store the engine runs on. storage.Store is the
// production implementation; the engine relies on its CompareAndSwap being
// atomic and on all writes being durable before they return.
type Backend interface {
	Get(key string) ([]byte, error)
	CompareAndSwap(key string, oldValue, newValue []byte) error
	Delete(key string) (bool, error)
	Close() error
}

// Errors
var (
	ErrNotFound      = &KVError{"key not found"}
	ErrAlreadyExists = &KVError{"key already exists"}
	ErrConflict      = &KVError{"concurrent modification conflict"}
	ErrCorrupted     = &KVError{"data corruption detected"}
	ErrInvalidKey    = &KVError{"invalid key"}
)

// KVError represents a record engine error
type KVError struct {
	Message string
}

func (e *KVError) Error() string {
	return e.Message
}
