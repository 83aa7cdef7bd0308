package storage

import "sync"

// MemoryStorage keeps slots in process memory. Used by tests and when no storage
// directory is configured.
type MemoryStorage struct {
	mu    sync.Mutex
	areas map[string]map[string]string
}

// NewMemoryStorage constructs an empty store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{areas: make(map[string]map[string]string)}
}

// Namespace returns the slot area for ns.
func (m *MemoryStorage) Namespace(ns string) Slots {
	return &memorySlots{parent: m, ns: ns}
}

type memorySlots struct {
	parent *MemoryStorage
	ns     string
}

func (s *memorySlots) Get(name string) (string, bool, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	value, ok := s.parent.areas[s.ns][name]
	return value, ok, nil
}

func (s *memorySlots) Set(name, value string) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	area, ok := s.parent.areas[s.ns]
	if !ok {
		area = make(map[string]string)
		s.parent.areas[s.ns] = area
	}
	area[name] = value
	return nil
}

func (s *memorySlots) Remove(name string) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	delete(s.parent.areas[s.ns], name)
	return nil
}
