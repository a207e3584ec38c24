package storage

import "time"

// Storage defines interface for any object storage
type Storage[K comparable, V any] interface {
	Set(key K, value V)
	Get(key K) (V, bool)
	GetOrSet(key K, value V) (V, bool)
	Touch(key K) bool
	Delete(key K) bool
	GetAllValues() []V
	DeleteIdle(cutoff time.Time) []K
	ForEach(fn func(key K, value V) bool)
	Count() int
}
