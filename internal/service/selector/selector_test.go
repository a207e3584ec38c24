package selector

import (
	"fmt"
	"testing"

	"atlas/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	features []*model.Feature
}

func (f *fakeSource) Features() []*model.Feature {
	out := make([]*model.Feature, len(f.features))
	copy(out, f.features)
	return out
}

func (f *fakeSource) Lookup(name string) (*model.Feature, bool) {
	for _, feat := range f.features {
		if feat.Name == name {
			return feat, true
		}
	}
	return nil, false
}

func TestSelectCountry(t *testing.T) {
	src := &fakeSource{features: []*model.Feature{{Name: "Japan"}, {Name: "France"}}}
	sel := NewSelector(src)

	got := sel.SelectCountry("Japan")
	require.Len(t, got, 1)
	assert.Equal(t, "Japan", got[0].Name)

	assert.Empty(t, sel.SelectCountry("japan"))
	assert.NotNil(t, sel.SelectCountry("Atlantis"), "not found is an empty slice, not nil")
}

func TestSelectContinentMembership(t *testing.T) {
	// 195 features, 47 of them Asian, with one duplicated Asian name
	var features []*model.Feature
	var asia []string
	for i := 0; i < 195; i++ {
		name := fmt.Sprintf("Country-%03d", i)
		features = append(features, &model.Feature{Name: name, Region: "Other"})
		if i%4 == 0 && len(asia) < 47 {
			asia = append(asia, name)
		}
	}
	features = append(features, &model.Feature{Name: asia[0], Region: "Duplicate"})
	require.Len(t, asia, 47)

	src := &fakeSource{features: features}
	sel := NewSelector(src)

	// Input order is irrelevant
	reversed := make([]string, len(asia))
	for i, n := range asia {
		reversed[len(asia)-1-i] = n
	}

	got := sel.SelectContinent("Asia", reversed)
	require.Len(t, got, 47)
	for i, f := range got {
		assert.Equal(t, asia[i], f.Name)
		assert.Equal(t, "Other", f.Region, "first match only")
	}

	assert.Len(t, src.features, 196, "source untouched")
}

func TestSelectContinentDuplicateMembers(t *testing.T) {
	src := &fakeSource{features: []*model.Feature{{Name: "Kenya"}, {Name: "Chad"}}}
	got := NewSelector(src).SelectContinent("Africa", []string{"Kenya", "Kenya", "Chad", "Atlantis"})
	assert.Len(t, got, 2)
}

func TestSelectContinentByName(t *testing.T) {
	src := &fakeSource{features: []*model.Feature{
		{Name: "Peru", Continent: "South America"},
		{Name: "Fiji", Continent: "Oceania", Subregion: "Melanesia"},
		{Name: "Japan", Continent: "Asia"},
	}}
	sel := NewSelector(src)

	got := sel.SelectContinent("south america", nil)
	require.Len(t, got, 1)
	assert.Equal(t, "Peru", got[0].Name)

	got = sel.SelectContinent("Melanesia", nil)
	require.Len(t, got, 1)
	assert.Equal(t, "Fiji", got[0].Name)

	assert.Empty(t, sel.SelectContinent("  ", nil))
}

func TestSelect(t *testing.T) {
	src := &fakeSource{features: []*model.Feature{{Name: "Japan", Continent: "Asia"}}}
	sel := NewSelector(src)

	assert.Len(t, sel.Select(model.EntityKindCountry, "Japan", nil), 1)
	assert.Len(t, sel.Select(model.EntityKindContinent, "Asia", nil), 1)
	assert.Empty(t, sel.Select(model.EntityKind("planet"), "Earth", nil))
}
