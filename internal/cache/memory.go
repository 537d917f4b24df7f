package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/voxlate/voxlate/internal/event"
)

// DefaultMemoryCapacity bounds the in-memory tier.
const DefaultMemoryCapacity = 500

// Memory is the volatile tier: an LRU over key hashes. Ultra-fast repeated
// lookups, least-recently-used entries evicted at capacity.
type Memory struct {
	lru *lru.Cache[string, event.Result]
}

// NewMemory creates the memory tier with the given capacity
// (DefaultMemoryCapacity when non-positive).
func NewMemory(capacity int) (*Memory, error) {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	l, err := lru.New[string, event.Result](capacity)
	if err != nil {
		return nil, err
	}
	return &Memory{lru: l}, nil
}

// Get looks up the key, refreshing its recency.
func (m *Memory) Get(_ context.Context, key event.Key) (event.Result, bool, error) {
	res, ok := m.lru.Get(key.Hash())
	return res, ok, nil
}

// Put stores the result, evicting the least-recently-used entry at capacity.
func (m *Memory) Put(_ context.Context, key event.Key, res event.Result) error {
	m.lru.Add(key.Hash(), res)
	return nil
}

// Len returns the number of resident entries.
func (m *Memory) Len() int { return m.lru.Len() }
