// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

package livemap

import (
	"context"
	"sync"
	"time"
)

// MemoryBackend keeps entries in process memory. Nothing is evicted; reads
// filter on expiry.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]Entry
	limit   int
}

// NewMemoryBackend creates an empty backend. limit <= 0 means DefaultListLimit.
func NewMemoryBackend(limit int) *MemoryBackend {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	return &MemoryBackend{entries: make(map[string]Entry), limit: limit}
}

func (b *MemoryBackend) Put(_ context.Context, key string, value []byte, expiresAt time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.entries[key]; ok {
		return ErrKeyExists
	}

	b.entries[key] = Entry{
		Key:       key,
		Value:     append([]byte(nil), value...),
		ExpiresAt: expiresAt,
	}

	return nil
}

func (b *MemoryBackend) Get(_ context.Context, key string, asOf time.Time) (*Entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.entries[key]
	if !ok || !e.ExpiresAt.After(asOf) {
		return nil, nil
	}

	return &e, nil
}

func (b *MemoryBackend) List(_ context.Context, asOf time.Time) (*Page, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	page := &Page{}

	for _, e := range b.entries {
		if !e.ExpiresAt.After(asOf) {
			continue
		}

		if len(page.Entries) == b.limit {
			page.Truncated = true

			break
		}

		page.Entries = append(page.Entries, e)
	}

	return page, nil
}

// Len returns the number of entries held, expired or not.
func (b *MemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.entries)
}
