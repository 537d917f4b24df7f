// Package cache implements the two-tier translation result cache: a
// capacity-bounded in-memory tier in front of an unbounded disk-backed tier.
package cache

import (
	"context"
	"errors"

	"github.com/voxlate/voxlate/internal/event"
)

// ErrDurableUnavailable marks a durable-tier failure. The hierarchy absorbs
// it and degrades to memory-only operation; it is never fatal.
var ErrDurableUnavailable = errors.New("durable cache unavailable")

// Tier is a single cache level addressed by translation key. Reads and
// writes for distinct keys may proceed in parallel.
type Tier interface {
	// Get returns the stored result and whether the key was present.
	Get(ctx context.Context, key event.Key) (event.Result, bool, error)

	// Put stores the result for the key, replacing any previous value.
	Put(ctx context.Context, key event.Key, res event.Result) error
}
