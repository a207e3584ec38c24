package storage

import (
	"fmt"
	"sync"
	"time"
)

// ShardedMemoryStorage - sharded object storage
type ShardedMemoryStorage[K comparable, V any] struct {
	shards     []*shardData[K, V]
	shardCount int
	keyToShard func(K) int // Shard distribution function
	now        func() time.Time
}

// shardData - single shard data
type shardData[K comparable, V any] struct {
	data       map[K]V
	mutex      sync.RWMutex
	lastUpdate map[K]time.Time
}

// NewShardedMemoryStorage creates a new sharded storage
func NewShardedMemoryStorage[K comparable, V any](shardCount int, keyToShardFunc func(K) int) *ShardedMemoryStorage[K, V] {
	// Round up to power of two
	realShardCount := 1
	for realShardCount < shardCount {
		realShardCount *= 2
	}

	shards := make([]*shardData[K, V], realShardCount)
	for i := 0; i < realShardCount; i++ {
		shards[i] = &shardData[K, V]{
			data:       make(map[K]V),
			lastUpdate: make(map[K]time.Time),
		}
	}

	// If no distribution function provided, use standard one for string and numeric keys
	if keyToShardFunc == nil {
		keyToShardFunc = func(key K) int {
			switch k := any(key).(type) {
			case string:
				return int(fnv1a(k)) & (realShardCount - 1)
			case int:
				return k & (realShardCount - 1)
			case int64:
				return int(k) & (realShardCount - 1)
			case uint64:
				return int(k) & (realShardCount - 1)
			default:
				hash := fnv1a(fmt.Sprintf("%v", key))
				return int(hash) & (realShardCount - 1)
			}
		}
	}

	return &ShardedMemoryStorage[K, V]{
		shards:     shards,
		shardCount: realShardCount,
		keyToShard: keyToShardFunc,
		now:        time.Now,
	}
}

// FNV-1a hash function
func fnv1a(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

// getShard returns shard for key
func (s *ShardedMemoryStorage[K, V]) getShard(key K) *shardData[K, V] {
	return s.shards[s.keyToShard(key)]
}

// Set adds or updates an object
func (s *ShardedMemoryStorage[K, V]) Set(key K, value V) {
	shard := s.getShard(key)

	shard.mutex.Lock()
	defer shard.mutex.Unlock()

	shard.data[key] = value
	shard.lastUpdate[key] = s.now()
}

// Get returns object by key
func (s *ShardedMemoryStorage[K, V]) Get(key K) (V, bool) {
	shard := s.getShard(key)

	shard.mutex.RLock()
	defer shard.mutex.RUnlock()

	value, exists := shard.data[key]
	return value, exists
}

// GetOrSet returns the stored object, storing value first when absent
func (s *ShardedMemoryStorage[K, V]) GetOrSet(key K, value V) (V, bool) {
	shard := s.getShard(key)

	shard.mutex.Lock()
	defer shard.mutex.Unlock()

	if existing, exists := shard.data[key]; exists {
		return existing, true
	}
	shard.data[key] = value
	shard.lastUpdate[key] = s.now()
	return value, false
}

// Touch refreshes the last update time of an object
func (s *ShardedMemoryStorage[K, V]) Touch(key K) bool {
	shard := s.getShard(key)

	shard.mutex.Lock()
	defer shard.mutex.Unlock()

	if _, exists := shard.data[key]; !exists {
		return false
	}
	shard.lastUpdate[key] = s.now()
	return true
}

// Delete removes an object
func (s *ShardedMemoryStorage[K, V]) Delete(key K) bool {
	shard := s.getShard(key)

	shard.mutex.Lock()
	defer shard.mutex.Unlock()

	if _, exists := shard.data[key]; !exists {
		return false
	}

	delete(shard.data, key)
	delete(shard.lastUpdate, key)
	return true
}

// GetAllValues returns all values as a slice
func (s *ShardedMemoryStorage[K, V]) GetAllValues() []V {
	result := make([]V, 0, s.Count())

	for _, shard := range s.shards {
		shard.mutex.RLock()
		for _, v := range shard.data {
			result = append(result, v)
		}
		shard.mutex.RUnlock()
	}

	return result
}

// DeleteIdle removes objects not updated since cutoff from all shards
func (s *ShardedMemoryStorage[K, V]) DeleteIdle(cutoff time.Time) []K {
	var removed []K

	for _, shard := range s.shards {
		shard.mutex.Lock()
		for k, ts := range shard.lastUpdate {
			if ts.Before(cutoff) {
				delete(shard.data, k)
				delete(shard.lastUpdate, k)
				removed = append(removed, k)
			}
		}
		shard.mutex.Unlock()
	}

	return removed
}

// ForEach executes a function for each object
func (s *ShardedMemoryStorage[K, V]) ForEach(fn func(key K, value V) bool) {
	// Process each shard separately
	for _, shard := range s.shards {
		shard.mutex.RLock()
		items := make(map[K]V, len(shard.data))
		for k, v := range shard.data {
			items[k] = v
		}
		shard.mutex.RUnlock()

		for k, v := range items {
			if !fn(k, v) {
				return
			}
		}
	}
}

// Count returns total number of objects
func (s *ShardedMemoryStorage[K, V]) Count() int {
	count := 0
	for _, shard := range s.shards {
		shard.mutex.RLock()
		count += len(shard.data)
		shard.mutex.RUnlock()
	}
	return count
}
