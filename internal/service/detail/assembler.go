package detail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"atlas/internal/config"
	"atlas/internal/metrics"
	"atlas/internal/model"
	"atlas/internal/service/gallery"
	"atlas/internal/service/selector"
	"atlas/internal/service/viewport"
	"atlas/internal/util"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// ErrNoEntity is returned by queries made before any entity was activated
var ErrNoEntity = errors.New("no active entity")

// MetadataProvider supplies descriptive data for entity pages
type MetadataProvider interface {
	CountryDetails(ctx context.Context, name string) (*model.CountryDetails, error)
	ContinentDetails(ctx context.Context, name string) (*model.ContinentDetails, error)
}

// MembershipProvider supplies the country names belonging to a continent
type MembershipProvider interface {
	Members(ctx context.Context, continent string) ([]string, error)
}

// ImageProvider supplies one 1-indexed page of images for a query
type ImageProvider interface {
	ImagePage(ctx context.Context, query string, page int) ([]model.Image, error)
}

// Dependencies are shared by every assembler
type Dependencies struct {
	Selector   *selector.Selector
	Fitter     *viewport.Fitter
	Metadata   MetadataProvider
	Membership MembershipProvider
	Images     ImageProvider
	Logger     *zap.Logger
}

// State is what the assembler knows about its active entity
type State struct {
	Entity     model.EntityRef       `json:"entity"`
	Generation uint64                `json:"generation"`
	Resolved   bool                  `json:"resolved"`
	Found      bool                  `json:"found"`
	Metadata   *model.EntityMetadata `json:"metadata,omitempty"`
}

type viewportKey struct {
	generation    uint64
	width, height float64
}

// Assembler drives one page instance: it turns an explicit entity change into
// a fresh selection, metadata and image collection, and frames the selection
// for whatever viewport size the client reports.
type Assembler struct {
	deps   Dependencies
	images *gallery.Accumulator[model.Image]
	logger *zap.Logger

	mu         sync.RWMutex
	generation uint64
	active     model.EntityRef
	resolved   bool
	features   []*model.Feature
	markers    []model.Marker
	metadata   *model.EntityMetadata

	viewportKey viewportKey
	viewport    *model.ViewportConfig
}

func NewAssembler(deps Dependencies) *Assembler {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	a := &Assembler{deps: deps, logger: deps.Logger}
	a.images = gallery.NewAccumulator(a.fetchImages, deps.Logger)
	return a
}

func (a *Assembler) fetchImages(ctx context.Context, entity string, page int) ([]model.Image, error) {
	if a.deps.Images == nil {
		return []model.Image{}, nil
	}
	return a.deps.Images.ImagePage(ctx, entity, page)
}

// Activate switches the page to ref. Activating the entity that is already
// active does nothing. Otherwise the image collection is reset, the cached
// viewport is dropped, and selection and metadata are resolved concurrently.
// If another activation starts before this one finishes, this one's results
// are dropped.
func (a *Assembler) Activate(ctx context.Context, ref model.EntityRef) error {
	ref.Name = strings.TrimSpace(ref.Name)
	if ref.Name == "" {
		return fmt.Errorf("entity name is empty")
	}
	if _, err := model.ParseEntityKind(string(ref.Kind)); err != nil {
		return err
	}

	a.mu.Lock()
	if a.active == ref {
		a.mu.Unlock()
		return nil
	}
	previous := a.active
	a.generation++
	gen := a.generation
	a.active = ref
	a.resolved = false
	a.features = nil
	a.markers = nil
	a.metadata = nil
	a.viewport = nil
	a.mu.Unlock()

	if !previous.IsZero() {
		a.images.Discard(previous.Name)
	}
	a.images.Reset(ref.Name)

	ctx, cancel := context.WithTimeout(ctx, config.ActivationTimeout)
	defer cancel()

	var (
		features []*model.Feature
		metadata *model.EntityMetadata
		wg       conc.WaitGroup
	)
	wg.Go(func() { features = a.resolveSelection(ctx, ref) })
	wg.Go(func() { metadata = a.resolveMetadata(ctx, ref) })
	wg.Wait()

	markers := make([]model.Marker, 0, len(features))
	for _, f := range features {
		markers = append(markers, model.Marker{
			Name:     f.Name,
			Centroid: util.CentroidOf(f),
			AreaKm2:  util.AreaKm2(f),
		})
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.generation != gen {
		a.logger.Debug("dropping superseded activation",
			zap.String("entity", ref.String()),
			zap.Uint64("generation", gen),
			zap.Uint64("current", a.generation),
		)
		return nil
	}

	a.features = features
	a.markers = markers
	a.metadata = metadata
	a.resolved = true

	a.logger.Info("entity activated",
		zap.String("entity", ref.String()),
		zap.Int("features", len(features)),
		zap.Bool("metadata", metadata != nil),
	)
	return nil
}

func (a *Assembler) resolveSelection(ctx context.Context, ref model.EntityRef) []*model.Feature {
	var members []string
	if ref.Kind == model.EntityKindContinent && a.deps.Membership != nil {
		m, err := a.deps.Membership.Members(ctx, ref.Name)
		if err != nil {
			a.logger.Warn("membership lookup failed, matching by name",
				zap.String("continent", ref.Name),
				zap.Error(err),
			)
		}
		members = m
	}
	return a.deps.Selector.Select(ref.Kind, ref.Name, members)
}

func (a *Assembler) resolveMetadata(ctx context.Context, ref model.EntityRef) *model.EntityMetadata {
	if a.deps.Metadata == nil {
		return nil
	}

	switch ref.Kind {
	case model.EntityKindCountry:
		details, err := a.deps.Metadata.CountryDetails(ctx, ref.Name)
		if err != nil {
			a.logger.Warn("country metadata unavailable", zap.String("country", ref.Name), zap.Error(err))
			return nil
		}
		return &model.EntityMetadata{Country: details}
	case model.EntityKindContinent:
		details, err := a.deps.Metadata.ContinentDetails(ctx, ref.Name)
		if err != nil {
			a.logger.Warn("continent metadata unavailable", zap.String("continent", ref.Name), zap.Error(err))
			return nil
		}
		return &model.EntityMetadata{Continent: details}
	}
	return nil
}

// Entity returns the active entity, zero when none
func (a *Assembler) Entity() model.EntityRef {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.active
}

// State reports the active entity and resolution progress
func (a *Assembler) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return State{
		Entity:     a.active,
		Generation: a.generation,
		Resolved:   a.resolved,
		Found:      len(a.features) > 0,
		Metadata:   a.metadata,
	}
}

// Viewport frames the current selection in a width x height viewport. The
// result is cached until the entity or the dimensions change.
func (a *Assembler) Viewport(width, height float64) (model.ViewportConfig, error) {
	a.mu.RLock()
	if a.active.IsZero() {
		a.mu.RUnlock()
		return model.ViewportConfig{}, ErrNoEntity
	}
	key := viewportKey{generation: a.generation, width: width, height: height}
	if a.viewport != nil && a.viewportKey == key {
		vc := *a.viewport
		a.mu.RUnlock()
		return vc, nil
	}
	features := a.features
	resolved := a.resolved
	a.mu.RUnlock()

	vc := a.deps.Fitter.Fit(features, width, height, a.deps.Fitter.MarginFactor)

	// Only a resolved selection is worth caching
	if resolved {
		a.mu.Lock()
		if a.generation == key.generation {
			a.viewportKey = key
			a.viewport = &vc
		}
		a.mu.Unlock()
	}
	return vc, nil
}

// Features returns the current selection
func (a *Assembler) Features() ([]*model.Feature, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.active.IsZero() {
		return nil, ErrNoEntity
	}
	out := make([]*model.Feature, len(a.features))
	copy(out, a.features)
	return out, nil
}

// Markers returns one centroid marker per selected feature
func (a *Assembler) Markers() ([]model.Marker, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.active.IsZero() {
		return nil, ErrNoEntity
	}
	out := make([]model.Marker, len(a.markers))
	copy(out, a.markers)
	return out, nil
}

// Metadata returns the entity's descriptive data; nil when it could not be fetched
func (a *Assembler) Metadata() (*model.EntityMetadata, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.active.IsZero() {
		return nil, ErrNoEntity
	}
	return a.metadata, nil
}

// LoadMoreImages requests the next image page for the active entity
func (a *Assembler) LoadMoreImages(ctx context.Context) ([]model.Image, error) {
	ref := a.Entity()
	if ref.IsZero() {
		return nil, ErrNoEntity
	}

	items, err := a.images.RequestNextPage(ctx, ref.Name)
	switch {
	case err == nil:
		metrics.ImagePagesTotal.WithLabelValues("ok").Inc()
	case errors.Is(err, gallery.ErrFetchInFlight):
		metrics.ImagePagesTotal.WithLabelValues("in_flight").Inc()
	case errors.Is(err, gallery.ErrStaleResult):
		metrics.ImagePagesTotal.WithLabelValues("stale").Inc()
	default:
		metrics.ImagePagesTotal.WithLabelValues("error").Inc()
	}
	return items, err
}

// Images returns the accumulated image collection of the active entity
func (a *Assembler) Images() (gallery.Snapshot[model.Image], error) {
	ref := a.Entity()
	if ref.IsZero() {
		return gallery.Snapshot[model.Image]{}, ErrNoEntity
	}
	return a.images.Snapshot(ref.Name), nil
}

// Close discards all per-page state. In-flight work finishing afterwards is
// dropped.
func (a *Assembler) Close() {
	a.mu.Lock()
	previous := a.active
	a.generation++
	a.active = model.EntityRef{}
	a.resolved = false
	a.features = nil
	a.markers = nil
	a.metadata = nil
	a.viewport = nil
	a.mu.Unlock()

	if !previous.IsZero() {
		a.images.Discard(previous.Name)
	}
}
