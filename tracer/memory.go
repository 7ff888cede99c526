package tracer

import (
	"fmt"
	"sort"
)

// An Allocator backed by host memory. It is used when no device is
// available and as a test double.
type MemoryAllocator struct {
	live map[*MemoryStorage]struct{}

	// Total number of allocations.
	Allocations int
}

// Host memory storage.
type MemoryStorage struct {
	Name string
	Data []byte

	owner    *MemoryAllocator
	released bool
}

// Create a new memory allocator.
func NewMemoryAllocator() *MemoryAllocator {
	return &MemoryAllocator{
		live: make(map[*MemoryStorage]struct{}),
	}
}

// Allocate storage of the given size.
func (a *MemoryAllocator) Allocate(name string, size int) (Storage, error) {
	if size <= 0 {
		return nil, fmt.Errorf("memory allocator: invalid size %d for buffer %s", size, name)
	}

	s := &MemoryStorage{
		Name:  name,
		Data:  make([]byte, size),
		owner: a,
	}
	a.live[s] = struct{}{}
	a.Allocations++
	return s, nil
}

// Get the names of all storages that have not been released.
func (a *MemoryAllocator) Live() []string {
	names := make([]string, 0, len(a.live))
	for s := range a.live {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}

// Get the live storage with the given name or nil.
func (a *MemoryAllocator) Lookup(name string) *MemoryStorage {
	for s := range a.live {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Copy data to the start of the storage.
func (s *MemoryStorage) Write(data []byte) error {
	if s.released {
		return fmt.Errorf("%w: %s", ErrNotAllocated, s.Name)
	}
	if len(data) > len(s.Data) {
		return fmt.Errorf("memory allocator: insufficient space (%d) in %s for data of length %d", len(s.Data), s.Name, len(data))
	}
	copy(s.Data, data)
	return nil
}

// Release storage.
func (s *MemoryStorage) Release() {
	if s.released {
		return
	}
	s.released = true
	delete(s.owner.live, s)
}
