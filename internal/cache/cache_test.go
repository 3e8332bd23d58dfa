// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPut(t *testing.T) {
	c := New()

	_, ok := c.Get("what is 2+2")
	require.False(t, ok)

	c.Put("what is 2+2", "4")
	got, ok := c.Get("what is 2+2")
	require.True(t, ok)
	assert.Equal(t, "4", got)
}

func TestKeysAreTrimmed(t *testing.T) {
	c := New()
	c.Put("  hello  ", "hi there")

	got, ok := c.Get("hello")
	require.True(t, ok)
	assert.Equal(t, "hi there", got)

	got, ok = c.Get("\thello\n")
	require.True(t, ok)
	assert.Equal(t, "hi there", got)
}

func TestCaseVariantsAreDistinct(t *testing.T) {
	c := New()
	c.Put("Hello", "a")

	_, ok := c.Get("hello")
	assert.False(t, ok)
}

func TestEmptyKeyNotStored(t *testing.T) {
	c := New()
	c.Put("   ", "ignored")
	assert.Equal(t, 0, c.Len())
}

func TestStats(t *testing.T) {
	c := New()
	c.Put("a", "1")

	c.Get("a")
	c.Get("a")
	c.Get("missing")

	s := c.Stats()
	assert.Equal(t, 1, s.Entries)
	assert.Equal(t, 2, s.Hits)
	assert.Equal(t, 1, s.Misses)
}

func TestClear(t *testing.T) {
	c := New()
	c.Put("a", "1")
	c.Clear()

	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestConcurrentAccess(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Put("shared", "value")
				c.Get("shared")
			}
		}()
	}
	wg.Wait()

	got, ok := c.Get("shared")
	require.True(t, ok)
	assert.Equal(t, "value", got)
}
