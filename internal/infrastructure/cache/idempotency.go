package cache

import (
	"context"
	"time"
)

// DefaultIdempotencyTTL is how long a replayable response is kept
const DefaultIdempotencyTTL = 24 * time.Hour

// IdempotencyRecord is the state stored under an Idempotency-Key.
// A pending record marks a request that is still being processed.
type IdempotencyRecord struct {
	Pending     bool   `json:"pending,omitempty"`
	RequestHash string `json:"request_hash"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// IdempotencyStore persists Idempotency-Key records so a retried POST
// replays the first response instead of writing a second row.
type IdempotencyStore interface {
	// Claim atomically stores a pending record for key. It returns false
	// when a record already exists.
	Claim(ctx context.Context, key, requestHash string, ttl time.Duration) (bool, error)

	// Get returns the record for key, or nil, nil if there is none.
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)

	// Complete replaces the pending record with the final response
	Complete(ctx context.Context, key string, record IdempotencyRecord, ttl time.Duration) error

	// Release removes the record so the request may be retried
	Release(ctx context.Context, key string) error
}
