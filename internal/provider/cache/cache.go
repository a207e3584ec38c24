package cache

import (
	"context"
	"strconv"
	"time"

	"atlas/internal/metrics"
	"atlas/internal/model"

	"go.uber.org/zap"
)

// Store is a JSON key-value store with expiry
type Store interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
}

// Source is everything the page engine reads from upstream providers
type Source interface {
	CountryDetails(ctx context.Context, name string) (*model.CountryDetails, error)
	ContinentDetails(ctx context.Context, name string) (*model.ContinentDetails, error)
	Members(ctx context.Context, continent string) ([]string, error)
	AllCountries(ctx context.Context) ([]string, error)
}

// ImageSource supplies image pages
type ImageSource interface {
	ImagePage(ctx context.Context, query string, page int) ([]model.Image, error)
}

const (
	nsCountry   = "country"
	nsContinent = "continent"
	nsMembers   = "members"
	nsAll       = "countries"
	nsImages    = "images"
)

// lookup returns the cached value for key or loads and stores it. Cache
// failures are logged and treated as misses.
func lookup[T any](ctx context.Context, store Store, logger *zap.Logger, ns, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	fullKey := ns + ":" + key

	var cached T
	found, err := store.GetJSON(ctx, fullKey, &cached)
	if err != nil {
		logger.Warn("cache read failed", zap.String("key", fullKey), zap.Error(err))
	}
	if found {
		metrics.CacheHitsTotal.WithLabelValues(ns).Inc()
		return cached, nil
	}
	metrics.CacheMissesTotal.WithLabelValues(ns).Inc()

	v, err := load()
	if err != nil {
		return v, err
	}

	if err := store.SetJSON(ctx, fullKey, v, ttl); err != nil {
		logger.Warn("cache write failed", zap.String("key", fullKey), zap.Error(err))
	}
	return v, nil
}

// Metadata caches country, continent and membership lookups
type Metadata struct {
	next   Source
	store  Store
	ttl    time.Duration
	logger *zap.Logger
}

func NewMetadata(next Source, store Store, ttl time.Duration, logger *zap.Logger) *Metadata {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Metadata{next: next, store: store, ttl: ttl, logger: logger}
}

func (m *Metadata) CountryDetails(ctx context.Context, name string) (*model.CountryDetails, error) {
	return lookup(ctx, m.store, m.logger, nsCountry, name, m.ttl, func() (*model.CountryDetails, error) {
		return m.next.CountryDetails(ctx, name)
	})
}

func (m *Metadata) ContinentDetails(ctx context.Context, name string) (*model.ContinentDetails, error) {
	return lookup(ctx, m.store, m.logger, nsContinent, model.ContinentKey(name), m.ttl, func() (*model.ContinentDetails, error) {
		return m.next.ContinentDetails(ctx, name)
	})
}

// Members caches non-empty membership lists only, so a continent added to
// the store later is picked up.
func (m *Metadata) Members(ctx context.Context, continent string) ([]string, error) {
	key := nsMembers + ":" + model.ContinentKey(continent)

	var cached []string
	found, err := m.store.GetJSON(ctx, key, &cached)
	if err != nil {
		m.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}
	if found {
		metrics.CacheHitsTotal.WithLabelValues(nsMembers).Inc()
		return cached, nil
	}
	metrics.CacheMissesTotal.WithLabelValues(nsMembers).Inc()

	members, err := m.next.Members(ctx, continent)
	if err != nil || len(members) == 0 {
		return members, err
	}
	if err := m.store.SetJSON(ctx, key, members, m.ttl); err != nil {
		m.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return members, nil
}

func (m *Metadata) AllCountries(ctx context.Context) ([]string, error) {
	return lookup(ctx, m.store, m.logger, nsAll, "all", m.ttl, func() ([]string, error) {
		return m.next.AllCountries(ctx)
	})
}

// Images caches image pages per query and page number
type Images struct {
	next   ImageSource
	store  Store
	ttl    time.Duration
	logger *zap.Logger
}

func NewImages(next ImageSource, store Store, ttl time.Duration, logger *zap.Logger) *Images {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Images{next: next, store: store, ttl: ttl, logger: logger}
}

func (i *Images) ImagePage(ctx context.Context, query string, page int) ([]model.Image, error) {
	key := query + ":" + strconv.Itoa(page)
	return lookup(ctx, i.store, i.logger, nsImages, key, i.ttl, func() ([]model.Image, error) {
		return i.next.ImagePage(ctx, query, page)
	})
}
