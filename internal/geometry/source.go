package geometry

import (
	"fmt"
	"os"
	"time"

	"atlas/internal/model"
	"atlas/internal/util"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

var (
	nameKeys      = []string{"name", "NAME", "ADMIN", "name_long", "NAME_LONG"}
	continentKeys = []string{"continent", "CONTINENT"}
	regionKeys    = []string{"region_un", "REGION_UN", "region", "REGION"}
	subregionKeys = []string{"subregion", "SUBREGION"}
	isoA2Keys     = []string{"iso_a2", "ISO_A2"}
	isoA3Keys     = []string{"iso_a3", "ISO_A3", "id"}
)

// Source is the immutable collection of boundary features. It is built once
// at startup and shared by every session without locking.
type Source struct {
	features  []*model.Feature
	byName    map[string]int
	centroids []model.Centroid
	index     *rtreego.Rtree
}

// LoadSource reads a GeoJSON FeatureCollection from disk
func LoadSource(path, nameProperty string, logger *zap.Logger) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read geometry %s: %w", path, err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse geometry %s: %w", path, err)
	}

	return NewSource(fc, nameProperty, logger), nil
}

// NewSource indexes the polygonal features of fc. Features without a name or
// without polygon geometry are skipped. When several features share a name
// the first one wins lookups.
func NewSource(fc *geojson.FeatureCollection, nameProperty string, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	start := time.Now()

	keys := nameKeys
	if nameProperty != "" {
		keys = append([]string{nameProperty}, nameKeys...)
	}

	s := &Source{byName: make(map[string]int)}
	skipped, duplicates := 0, 0

	for _, gf := range fc.Features {
		f, ok := toFeature(gf, keys)
		if !ok {
			skipped++
			continue
		}
		if _, exists := s.byName[f.Name]; exists {
			duplicates++
		} else {
			s.byName[f.Name] = len(s.features)
		}
		s.features = append(s.features, f)
		s.centroids = append(s.centroids, util.CentroidOf(f))
	}

	s.buildIndex()

	logger.Info("geometry source loaded",
		zap.Int("features", len(s.features)),
		zap.Int("skipped", skipped),
		zap.Int("duplicate_names", duplicates),
		zap.Duration("took", time.Since(start)),
	)
	return s
}

func toFeature(gf *geojson.Feature, nameKeys []string) (*model.Feature, bool) {
	if gf == nil {
		return nil, false
	}

	var geom orb.Geometry
	switch g := gf.Geometry.(type) {
	case orb.Polygon:
		if len(g) == 0 {
			return nil, false
		}
		geom = g
	case orb.MultiPolygon:
		if len(g) == 0 {
			return nil, false
		}
		geom = g
	default:
		return nil, false
	}

	name := firstString(gf.Properties, nameKeys)
	if name == "" {
		return nil, false
	}

	return &model.Feature{
		Name:      name,
		Continent: firstString(gf.Properties, continentKeys),
		Region:    firstString(gf.Properties, regionKeys),
		Subregion: firstString(gf.Properties, subregionKeys),
		ISOA2:     firstString(gf.Properties, isoA2Keys),
		ISOA3:     firstString(gf.Properties, isoA3Keys),
		Geometry:  geom,
		Bound:     geom.Bound(),
	}, true
}

func firstString(props geojson.Properties, keys []string) string {
	for _, k := range keys {
		if v, ok := props[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// Features returns every feature in dataset order. The slice is a copy; the
// features themselves must not be modified.
func (s *Source) Features() []*model.Feature {
	out := make([]*model.Feature, len(s.features))
	copy(out, s.features)
	return out
}

// Lookup returns the first feature with exactly the given name
func (s *Source) Lookup(name string) (*model.Feature, bool) {
	i, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return s.features[i], true
}

// Names returns the distinct feature names in dataset order
func (s *Source) Names() []string {
	names := make([]string, 0, len(s.byName))
	for i, f := range s.features {
		if s.byName[f.Name] == i {
			names = append(names, f.Name)
		}
	}
	return names
}

// Len returns the number of features
func (s *Source) Len() int {
	return len(s.features)
}
