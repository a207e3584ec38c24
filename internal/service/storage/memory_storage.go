package storage

import (
	"sync"
	"time"
)

// MemoryStorage - universal in-memory object storage
// K - key type, V - stored object type
type MemoryStorage[K comparable, V any] struct {
	data       map[K]V
	mutex      sync.RWMutex
	lastUpdate map[K]time.Time
	now        func() time.Time
}

// NewMemoryStorage creates a new storage
func NewMemoryStorage[K comparable, V any]() *MemoryStorage[K, V] {
	return &MemoryStorage[K, V]{
		data:       make(map[K]V),
		lastUpdate: make(map[K]time.Time),
		now:        time.Now,
	}
}

// Set adds or updates an object
func (s *MemoryStorage[K, V]) Set(key K, value V) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data[key] = value
	s.lastUpdate[key] = s.now()
}

// Get returns an object by key
func (s *MemoryStorage[K, V]) Get(key K) (V, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	value, exists := s.data[key]
	return value, exists
}

// GetOrSet returns the stored object, storing value first when the key is
// absent. The boolean reports whether the object already existed.
func (s *MemoryStorage[K, V]) GetOrSet(key K, value V) (V, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if existing, exists := s.data[key]; exists {
		return existing, true
	}
	s.data[key] = value
	s.lastUpdate[key] = s.now()
	return value, false
}

// Touch refreshes the last update time of an object
func (s *MemoryStorage[K, V]) Touch(key K) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.data[key]; !exists {
		return false
	}
	s.lastUpdate[key] = s.now()
	return true
}

// Delete removes an object by key
func (s *MemoryStorage[K, V]) Delete(key K) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.data[key]; !exists {
		return false
	}

	delete(s.data, key)
	delete(s.lastUpdate, key)
	return true
}

// GetAllValues returns all values as a slice
func (s *MemoryStorage[K, V]) GetAllValues() []V {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	result := make([]V, 0, len(s.data))
	for _, v := range s.data {
		result = append(result, v)
	}
	return result
}

// DeleteIdle removes objects not updated since cutoff and returns their keys
func (s *MemoryStorage[K, V]) DeleteIdle(cutoff time.Time) []K {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var removed []K
	for k, ts := range s.lastUpdate {
		if ts.Before(cutoff) {
			delete(s.data, k)
			delete(s.lastUpdate, k)
			removed = append(removed, k)
		}
	}
	return removed
}

// ForEach executes a function for each object
func (s *MemoryStorage[K, V]) ForEach(fn func(key K, value V) bool) {
	// Copy data under lock for subsequent processing
	s.mutex.RLock()
	items := make(map[K]V, len(s.data))
	for k, v := range s.data {
		items[k] = v
	}
	s.mutex.RUnlock()

	// Process copied data without locking
	for k, v := range items {
		if !fn(k, v) {
			break
		}
	}
}

// Count returns the number of objects
func (s *MemoryStorage[K, V]) Count() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.data)
}
