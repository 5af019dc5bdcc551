package numerator

import (
	"context"
	"fmt"
	"sync"
)

// MemoryAllocator is an in-process Admin used by tests and the memory profile.
type MemoryAllocator struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewMemoryAllocator creates an empty allocator.
func NewMemoryAllocator() *MemoryAllocator {
	return &MemoryAllocator{counters: make(map[string]int64)}
}

func memoryKey(kind Kind, year int) string {
	return fmt.Sprintf("%s:%d", kind, year)
}

// Allocate implements Allocator.
func (m *MemoryAllocator) Allocate(_ context.Context, kind Kind, year int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := memoryKey(kind, year)
	m.counters[key]++
	return m.counters[key], nil
}

// Current implements Admin.
func (m *MemoryAllocator) Current(_ context.Context, kind Kind, year int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[memoryKey(kind, year)], nil
}

// Set implements Admin.
func (m *MemoryAllocator) Set(_ context.Context, kind Kind, year int, value int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[memoryKey(kind, year)] = value
	return nil
}

// MockAllocator lets tests script allocation results.
type MockAllocator struct {
	AllocateFunc func(ctx context.Context, kind Kind, year int) (int64, error)
}

// Allocate implements Allocator.
func (m *MockAllocator) Allocate(ctx context.Context, kind Kind, year int) (int64, error) {
	if m.AllocateFunc != nil {
		return m.AllocateFunc(ctx, kind, year)
	}
	return 1, nil
}

var (
	_ Admin     = (*MemoryAllocator)(nil)
	_ Allocator = (*MockAllocator)(nil)
)
