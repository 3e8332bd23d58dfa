// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cache provides the exact-match response cache.
//
// Keys are trimmed input strings - no further normalization, so case and
// punctuation variants are distinct entries. Entries live for the process
// lifetime: no eviction, no size bound, no persistence. The map is mutex
// guarded so overlapping requests from different surfaces stay safe even
// though the engine normally has one request in flight at a time.
package cache

import (
	"strings"
	"sync"
)

// ResponseCache is a synchronized exact-match cache of final answers.
type ResponseCache struct {
	mu      sync.RWMutex
	entries map[string]string

	hits   int
	misses int
}

// Stats holds cache counters for status displays.
type Stats struct {
	Entries int
	Hits    int
	Misses  int
}

// New creates an empty response cache.
func New() *ResponseCache {
	return &ResponseCache{entries: make(map[string]string)}
}

// Get returns the cached response for an input, if present.
func (c *ResponseCache) Get(key string) (string, bool) {
	key = strings.TrimSpace(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

// Put stores the final response for an input.
func (c *ResponseCache) Put(key, value string) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

// Len returns the number of cached entries.
func (c *ResponseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *ResponseCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
}

// Clear drops every entry. Counters are preserved.
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]string)
}
