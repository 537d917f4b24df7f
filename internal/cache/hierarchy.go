package cache

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/voxlate/voxlate/internal/event"
)

// Hierarchy composes the memory and durable tiers. Lookup order is memory
// then durable, promoting durable hits into memory; writes go through to both
// tiers. A failing durable tier degrades the hierarchy to memory-only
// operation with a warning, never an error to the caller.
type Hierarchy struct {
	memory  Tier
	durable Tier // nil when the durable tier is disabled

	hits   atomic.Int64
	misses atomic.Int64
}

// NewHierarchy builds the two-tier cache. durable may be nil.
func NewHierarchy(memory, durable Tier) *Hierarchy {
	return &Hierarchy{memory: memory, durable: durable}
}

// Get returns the cached result for the key with Cached set, or ok=false on
// a miss in both tiers. The returned result inherits the confidence of the
// originally resolved translation.
func (h *Hierarchy) Get(ctx context.Context, key event.Key) (event.Result, bool) {
	if res, ok, err := h.memory.Get(ctx, key); err == nil && ok {
		h.hits.Add(1)
		res.Cached = true
		return res, true
	}

	if h.durable != nil {
		res, ok, err := h.durable.Get(ctx, key)
		switch {
		case err != nil:
			slog.Warn("durable cache read failed, continuing memory-only", "error", err)
		case ok:
			h.hits.Add(1)
			// Promote so the next lookup is served from memory.
			if err := h.memory.Put(ctx, key, res); err != nil {
				slog.Warn("memory cache promotion failed", "error", err)
			}
			res.Cached = true
			return res, true
		}
	}

	h.misses.Add(1)
	return event.Result{}, false
}

// Put writes the resolved result through both tiers. The stored value keeps
// Cached=false; the flag is set on the way out of Get.
func (h *Hierarchy) Put(ctx context.Context, key event.Key, res event.Result) {
	res.Cached = false
	if err := h.memory.Put(ctx, key, res); err != nil {
		slog.Warn("memory cache write failed", "error", err)
	}
	if h.durable != nil {
		if err := h.durable.Put(ctx, key, res); err != nil {
			slog.Warn("durable cache write failed, continuing memory-only", "error", err)
		}
	}
}

// Stats returns the cumulative hit and miss counters.
func (h *Hierarchy) Stats() (hits, misses int64) {
	return h.hits.Load(), h.misses.Load()
}
