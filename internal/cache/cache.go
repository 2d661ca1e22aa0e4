// Package cache memoizes classifier provider replies so identical text is
// never paid for twice. Keys are content-addressed: a stable 64-bit hash of
// the UTF-8 bytes of the input text, independent of item identity.
package cache

import (
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// ReplyCache is the contract shared by all cache backends.
// Get returns the cached raw reply for text, or ok=false on a miss.
// Put stores the reply; concurrent puts for the same key serialize with
// last-writer-wins, which is acceptable because replies for identical
// text are expected to be identical.
type ReplyCache interface {
	Get(text string) (reply string, ok bool)
	Put(text, reply string)
}

// Key returns the content-addressed cache key for text.
func Key(text string) string {
	return strconv.FormatUint(xxhash.Sum64String(text), 16)
}

// Memory is the default in-process ReplyCache. It lives for the process
// lifetime and is bounded by one run's distinct texts, so it carries no
// eviction policy.
type Memory struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewMemory creates an empty in-memory reply cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]string)}
}

// Get returns the cached reply for text, if any.
func (m *Memory) Get(text string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reply, ok := m.entries[Key(text)]
	return reply, ok
}

// Put stores the raw reply for text.
func (m *Memory) Put(text, reply string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[Key(text)] = reply
}

// Len returns the number of cached replies.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
