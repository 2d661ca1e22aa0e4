package cache

import (
	"fmt"
	"sync"
	"testing"
)

func TestKey(t *testing.T) {
	if Key("same text") != Key("same text") {
		t.Error("identical text hashed to different keys")
	}
	if Key("one text") == Key("another text") {
		t.Error("distinct texts hashed to the same key")
	}
	if Key("") == "" {
		t.Error("empty text must still produce a key")
	}
}

func TestMemoryGetPut(t *testing.T) {
	m := NewMemory()

	if _, ok := m.Get("missing"); ok {
		t.Error("hit on an empty cache")
	}

	m.Put("some comment text", "Not sponsored.")
	reply, ok := m.Get("some comment text")
	if !ok {
		t.Fatal("miss after put")
	}
	if reply != "Not sponsored." {
		t.Errorf("reply = %q", reply)
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}
}

func TestMemoryOverwrite(t *testing.T) {
	m := NewMemory()
	m.Put("text", "first")
	m.Put("text", "second")

	reply, _ := m.Get("text")
	if reply != "second" {
		t.Errorf("reply = %q, want last write", reply)
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}
}

func TestMemoryConcurrentAccess(t *testing.T) {
	m := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				text := fmt.Sprintf("text-%d", j)
				m.Put(text, fmt.Sprintf("reply-%d-%d", n, j))
				m.Get(text)
			}
		}(i)
	}
	wg.Wait()

	if m.Len() != 100 {
		t.Errorf("Len = %d, want 100", m.Len())
	}
}
