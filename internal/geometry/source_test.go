package geometry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(minLng, minLat, size float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{minLng, minLat},
		{minLng + size, minLat},
		{minLng + size, minLat + size},
		{minLng, minLat + size},
		{minLng, minLat},
	}}
}

func testCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	alpha := geojson.NewFeature(square(0, 0, 10))
	alpha.Properties["name"] = "Alpha"
	alpha.Properties["continent"] = "Europe"
	alpha.Properties["iso_a3"] = "ALP"
	fc.Append(alpha)

	beta := geojson.NewFeature(orb.MultiPolygon{square(20, 0, 5), square(30, 0, 5)})
	beta.Properties["NAME"] = "Beta"
	beta.Properties["CONTINENT"] = "Asia"
	fc.Append(beta)

	// Same name as the first feature; lookups must keep the first one
	dup := geojson.NewFeature(square(50, 50, 1))
	dup.Properties["name"] = "Alpha"
	fc.Append(dup)

	line := geojson.NewFeature(orb.LineString{{0, 0}, {1, 1}})
	line.Properties["name"] = "Road"
	fc.Append(line)

	anon := geojson.NewFeature(square(60, 60, 1))
	fc.Append(anon)

	return fc
}

func TestNewSource(t *testing.T) {
	src := NewSource(testCollection(), "", nil)

	assert.Equal(t, 3, src.Len())
	assert.Equal(t, []string{"Alpha", "Beta"}, src.Names())

	alpha, ok := src.Lookup("Alpha")
	require.True(t, ok)
	assert.Equal(t, "Europe", alpha.Continent)
	assert.Equal(t, "ALP", alpha.ISOA3)
	assert.Equal(t, 0.0, alpha.Bound.Min[0], "first duplicate wins")

	beta, ok := src.Lookup("Beta")
	require.True(t, ok)
	assert.Equal(t, "Asia", beta.Continent)

	_, ok = src.Lookup("alpha")
	assert.False(t, ok, "lookups are case-sensitive")

	_, ok = src.Lookup("Road")
	assert.False(t, ok, "non-polygonal features are skipped")
}

func TestNewSourceCustomNameProperty(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	f := geojson.NewFeature(square(0, 0, 1))
	f.Properties["sovereignt"] = "Gamma"
	f.Properties["name"] = "Ignored"
	fc.Append(f)

	src := NewSource(fc, "sovereignt", nil)
	_, ok := src.Lookup("Gamma")
	assert.True(t, ok)
}

func TestFeaturesReturnsCopy(t *testing.T) {
	src := NewSource(testCollection(), "", nil)

	features := src.Features()
	features[0] = nil

	assert.NotNil(t, src.Features()[0])
}

func TestLoadSource(t *testing.T) {
	data, err := testCollection().MarshalJSON()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "world.geojson")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	src, err := LoadSource(path, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, src.Len())

	_, err = LoadSource(filepath.Join(t.TempDir(), "missing.geojson"), "", nil)
	assert.Error(t, err)
}

func TestLocate(t *testing.T) {
	src := NewSource(testCollection(), "", nil)

	t.Run("inside polygon", func(t *testing.T) {
		f, exact := src.Locate(5, 5)
		require.NotNil(t, f)
		assert.True(t, exact)
		assert.Equal(t, "Alpha", f.Name)
	})

	t.Run("inside second part of multipolygon", func(t *testing.T) {
		f, exact := src.Locate(2, 32)
		require.NotNil(t, f)
		assert.True(t, exact)
		assert.Equal(t, "Beta", f.Name)
	})

	t.Run("gap between parts falls back to nearest", func(t *testing.T) {
		f, exact := src.Locate(2, 27)
		require.NotNil(t, f)
		assert.False(t, exact)
		assert.Equal(t, "Beta", f.Name)
	})

	t.Run("open sea", func(t *testing.T) {
		f, exact := src.Locate(-20, 3)
		require.NotNil(t, f)
		assert.False(t, exact)
		assert.Equal(t, "Alpha", f.Name)
	})

	t.Run("empty source", func(t *testing.T) {
		empty := NewSource(geojson.NewFeatureCollection(), "", nil)
		f, exact := empty.Locate(0, 0)
		assert.Nil(t, f)
		assert.False(t, exact)
	})
}
