package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageImplementations(t *testing.T) {
	impls := map[string]func() Storage[string, int]{
		"memory":  func() Storage[string, int] { return NewMemoryStorage[string, int]() },
		"sharded": func() Storage[string, int] { return NewShardedMemoryStorage[string, int](4, nil) },
	}

	for name, build := range impls {
		t.Run(name, func(t *testing.T) {
			s := build()

			s.Set("a", 1)
			v, ok := s.Get("a")
			require.True(t, ok)
			assert.Equal(t, 1, v)

			v, existed := s.GetOrSet("a", 2)
			assert.True(t, existed)
			assert.Equal(t, 1, v)

			v, existed = s.GetOrSet("b", 3)
			assert.False(t, existed)
			assert.Equal(t, 3, v)
			assert.Equal(t, 2, s.Count())
			assert.ElementsMatch(t, []int{1, 3}, s.GetAllValues())

			assert.True(t, s.Delete("a"))
			assert.False(t, s.Delete("a"))
			assert.False(t, s.Touch("a"))
			assert.True(t, s.Touch("b"))
		})
	}
}

func TestMemoryStorageDeleteIdle(t *testing.T) {
	s := NewMemoryStorage[string, int]()
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	s.Set("old", 1)
	clock = clock.Add(time.Hour)
	s.Set("fresh", 2)

	removed := s.DeleteIdle(clock.Add(-time.Minute))
	assert.Equal(t, []string{"old"}, removed)
	_, ok := s.Get("old")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Count())
}

func TestShardedStorageDeleteIdleRespectsTouch(t *testing.T) {
	s := NewShardedMemoryStorage[string, int](8, nil)
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	s.Set("a", 1)
	s.Set("b", 2)
	clock = clock.Add(30 * time.Minute)
	s.Touch("b")

	removed := s.DeleteIdle(clock.Add(-10 * time.Minute))
	assert.Equal(t, []string{"a"}, removed)
	_, ok := s.Get("b")
	assert.True(t, ok)
}

func TestShardCountRoundsUpToPowerOfTwo(t *testing.T) {
	s := NewShardedMemoryStorage[string, int](5, nil)
	assert.Equal(t, 8, s.shardCount)
}
