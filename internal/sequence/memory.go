package sequence

import (
	"context"
	"sync"
)

// MemoryAllocator : compteurs en mémoire pour les tests et le dev local.
// Mêmes garanties d'unicité et de monotonie que l'implémentation Scylla.
type MemoryAllocator struct {
	mu       sync.Mutex
	counters map[string]int64
}

func NewMemoryAllocator() *MemoryAllocator {
	return &MemoryAllocator{counters: make(map[string]int64)}
}

func (a *MemoryAllocator) Next(_ context.Context, name string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.counters[name]++
	return Format(name, a.counters[name]), nil
}

var _ Allocator = (*MemoryAllocator)(nil)
