package gallery

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"atlas/internal/service/storage"

	"go.uber.org/zap"
)

var (
	// ErrFetchInFlight is returned when a page is already being fetched for
	// the entity. The request is ignored and the provider is not called.
	ErrFetchInFlight = errors.New("page fetch already in flight")

	// ErrStaleResult is returned when the collection was reset while the page
	// was being fetched. The fetched items are dropped.
	ErrStaleResult = errors.New("page result is stale")
)

// FetchFunc loads one 1-indexed page of items for an entity
type FetchFunc[T any] func(ctx context.Context, entity string, page int) ([]T, error)

// Snapshot is a point-in-time copy of an entity's collection
type Snapshot[T any] struct {
	Items     []T  `json:"items"`
	NextPage  int  `json:"next_page"`
	Fetching  bool `json:"fetching"`
	Exhausted bool `json:"exhausted"`
}

type collection[T any] struct {
	mu         sync.Mutex
	items      []T
	nextPage   int
	fetching   bool
	exhausted  bool
	generation uint64
	cancel     context.CancelFunc
}

func newCollection[T any]() *collection[T] {
	return &collection[T]{nextPage: 1}
}

// clear must be called with mu held
func (c *collection[T]) clear() {
	c.generation++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.items = nil
	c.nextPage = 1
	c.fetching = false
	c.exhausted = false
}

func (c *collection[T]) snapshot() Snapshot[T] {
	items := make([]T, len(c.items))
	copy(items, c.items)
	return Snapshot[T]{
		Items:     items,
		NextPage:  c.nextPage,
		Fetching:  c.fetching,
		Exhausted: c.exhausted,
	}
}

// Accumulator grows append-only paged collections, one per entity. At most
// one page request per entity is outstanding at any time, so pages are
// applied in request order.
type Accumulator[T any] struct {
	fetch       FetchFunc[T]
	collections storage.Storage[string, *collection[T]]
	logger      *zap.Logger
}

func NewAccumulator[T any](fetch FetchFunc[T], logger *zap.Logger) *Accumulator[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Accumulator[T]{
		fetch:       fetch,
		collections: storage.NewMemoryStorage[string, *collection[T]](),
		logger:      logger,
	}
}

// RequestNextPage fetches the next page for entity and appends it. On
// failure the page cursor is left where it was so the next call retries the
// same page. The returned slice holds only the newly appended items.
func (a *Accumulator[T]) RequestNextPage(ctx context.Context, entity string) ([]T, error) {
	c, _ := a.collections.GetOrSet(entity, newCollection[T]())

	c.mu.Lock()
	if c.fetching {
		c.mu.Unlock()
		return nil, ErrFetchInFlight
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	c.fetching = true
	c.cancel = cancel
	gen := c.generation
	page := c.nextPage
	c.mu.Unlock()

	items, err := a.fetch(fetchCtx, entity, page)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != gen {
		a.logger.Debug("dropping stale page",
			zap.String("entity", entity),
			zap.Int("page", page),
			zap.Int("items", len(items)),
		)
		return nil, ErrStaleResult
	}

	c.fetching = false
	c.cancel = nil

	if err != nil {
		a.logger.Warn("page fetch failed",
			zap.String("entity", entity),
			zap.Int("page", page),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to fetch page %d for %s: %w", page, entity, err)
	}

	c.items = append(c.items, items...)
	c.nextPage++
	c.exhausted = len(items) == 0

	return items, nil
}

// Reset empties the entity's collection and rewinds it to page 1. A fetch in
// flight is cancelled and its result will be discarded.
func (a *Accumulator[T]) Reset(entity string) {
	c, ok := a.collections.Get(entity)
	if !ok {
		return
	}
	c.mu.Lock()
	c.clear()
	c.mu.Unlock()
}

// Discard drops the entity's collection entirely
func (a *Accumulator[T]) Discard(entity string) {
	c, ok := a.collections.Get(entity)
	if !ok {
		return
	}
	c.mu.Lock()
	c.clear()
	c.mu.Unlock()
	a.collections.Delete(entity)
}

// Snapshot returns a copy of the entity's collection. Unknown entities report
// an empty collection positioned at page 1.
func (a *Accumulator[T]) Snapshot(entity string) Snapshot[T] {
	c, ok := a.collections.Get(entity)
	if !ok {
		return Snapshot[T]{Items: []T{}, NextPage: 1}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Len returns the number of tracked collections
func (a *Accumulator[T]) Len() int {
	return a.collections.Count()
}
