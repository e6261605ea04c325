package ports

import (
	"context"
	"errors"
	"time"
)

// ErrIdempotencyConflict indicates the same key was used with a different cart.
var ErrIdempotencyConflict = errors.New("idempotency conflict")

// IdempotencyRecord ties a client supplied key to the order it created.
type IdempotencyRecord struct {
	Key         string
	RequestHash string
	OrderID     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IdempotencyStore persists idempotency keys so order retries can be replayed safely.
type IdempotencyStore interface {
	// Get returns the stored record for the key, or nil when unknown.
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	// Save persists the record. When the key already exists with a different
	// hash, ErrIdempotencyConflict is returned along with the stored record.
	Save(ctx context.Context, record IdempotencyRecord) (*IdempotencyRecord, error)
}
