package selector

import (
	"strings"

	"atlas/internal/model"
)

// FeatureSource is the read-only view of the geometry dataset used for selection
type FeatureSource interface {
	Features() []*model.Feature
	Lookup(name string) (*model.Feature, bool)
}

// Selector picks the features that belong to an entity. It never mutates
// the underlying source.
type Selector struct {
	source FeatureSource
}

func NewSelector(source FeatureSource) *Selector {
	return &Selector{source: source}
}

// SelectCountry returns the feature named exactly name, or an empty slice
func (s *Selector) SelectCountry(name string) []*model.Feature {
	f, ok := s.source.Lookup(name)
	if !ok {
		return []*model.Feature{}
	}
	return []*model.Feature{f}
}

// SelectContinent returns the features listed in members, in source order.
// With no membership list, features whose continent, region or subregion
// property matches name (case-insensitively) are returned instead.
func (s *Selector) SelectContinent(name string, members []string) []*model.Feature {
	all := s.source.Features()
	out := make([]*model.Feature, 0)

	if len(members) == 0 {
		for _, f := range all {
			if matchesContinent(f, name) {
				out = append(out, f)
			}
		}
		return out
	}

	wanted := make(map[string]struct{}, len(members))
	for _, m := range members {
		wanted[m] = struct{}{}
	}

	seen := make(map[string]struct{}, len(wanted))
	for _, f := range all {
		if _, ok := wanted[f.Name]; !ok {
			continue
		}
		// Only the first feature carrying a name counts
		if _, dup := seen[f.Name]; dup {
			continue
		}
		seen[f.Name] = struct{}{}
		out = append(out, f)
	}
	return out
}

// Select dispatches on the entity kind
func (s *Selector) Select(kind model.EntityKind, name string, members []string) []*model.Feature {
	switch kind {
	case model.EntityKindCountry:
		return s.SelectCountry(name)
	case model.EntityKindContinent:
		return s.SelectContinent(name, members)
	}
	return []*model.Feature{}
}

func matchesContinent(f *model.Feature, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	return strings.EqualFold(f.Continent, name) ||
		strings.EqualFold(f.Region, name) ||
		strings.EqualFold(f.Subregion, name)
}
