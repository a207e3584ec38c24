package viewport

import (
	"math"
	"testing"

	"atlas/internal/model"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rect(name string, minLng, minLat, maxLng, maxLat float64) *model.Feature {
	poly := orb.Polygon{orb.Ring{
		{minLng, minLat}, {maxLng, minLat}, {maxLng, maxLat}, {minLng, maxLat}, {minLng, minLat},
	}}
	return &model.Feature{Name: name, Geometry: poly, Bound: poly.Bound()}
}

func newTestFitter() *Fitter {
	return NewFitter(model.ViewportConfig{Scale: 200, Center: [2]float64{10, 20}}, 100, 30)
}

func assertUsable(t *testing.T, vc model.ViewportConfig) {
	t.Helper()
	assert.Greater(t, vc.Scale, 0.0)
	assert.False(t, math.IsInf(vc.Scale, 0) || math.IsNaN(vc.Scale))
	for _, c := range vc.Center {
		assert.False(t, math.IsInf(c, 0) || math.IsNaN(c))
	}
}

func TestFitJapan(t *testing.T) {
	japan := rect("Japan", 130, 30, 135, 38)

	vc := newTestFitter().Fit([]*model.Feature{japan}, 800, 600, 30)

	assert.InDelta(t, 2250, vc.Scale, 1e-6)
	assert.InDelta(t, 132.5, vc.Center[0], 1e-9)
	assert.InDelta(t, 34, vc.Center[1], 1e-9)
}

func TestFitEmptySelection(t *testing.T) {
	f := newTestFitter()

	assert.Equal(t, f.Default, f.Fit(nil, 800, 600, 30))
	assert.Equal(t, f.Default, f.Fit([]*model.Feature{}, 800, 600, 30))
}

func TestFitDegenerate(t *testing.T) {
	point := &model.Feature{Name: "Dot", Geometry: orb.Polygon{orb.Ring{{5, 5}, {5, 5}, {5, 5}, {5, 5}}}}

	vc := newTestFitter().Fit([]*model.Feature{point}, 800, 600, 30)

	assertUsable(t, vc)
	assert.Equal(t, 100.0, vc.Scale)
	assert.Equal(t, [2]float64{5, 5}, vc.Center)
}

func TestFitInvalidViewport(t *testing.T) {
	f := newTestFitter()
	japan := rect("Japan", 130, 30, 135, 38)

	assert.Equal(t, f.Default, f.Fit([]*model.Feature{japan}, 0, 600, 30))
	assert.Equal(t, f.Default, f.Fit([]*model.Feature{japan}, 800, -1, 30))
	assert.Equal(t, f.Default, f.Fit([]*model.Feature{japan}, math.NaN(), 600, 30))
}

func TestFitFallsBackToDefaultMargin(t *testing.T) {
	japan := rect("Japan", 130, 30, 135, 38)

	vc := newTestFitter().Fit([]*model.Feature{japan}, 800, 600, 0)
	assert.InDelta(t, 2250, vc.Scale, 1e-6)
}

func TestFitUnionWeightsCenterByArea(t *testing.T) {
	big := rect("Big", 0, 0, 10, 10)
	small := rect("Small", 20, 0, 21, 1)

	vc := newTestFitter().Fit([]*model.Feature{big, small}, 420, 200, 30)

	assertUsable(t, vc)
	// spans 21 x 10 -> max(21/420, 10/200) = 0.05
	assert.InDelta(t, 600, vc.Scale, 1e-6)
	// area weighting pulls the center toward the big square
	assert.InDelta(t, (5*100+20.5*1)/101.0, vc.Center[0], 1e-9)
}

func TestFitAcrossAntimeridian(t *testing.T) {
	east := rect("Fiji-east", 177, -19, 180, -16)
	west := rect("Fiji-west", -180, -19, -179, -16)

	vc := newTestFitter().Fit([]*model.Feature{east, west}, 400, 400, 30)

	assertUsable(t, vc)
	// 4 degrees of longitude, not 360
	assert.InDelta(t, 30/(4.0/400), vc.Scale, 1e-6)
	assert.True(t, vc.Center[0] > 178 || vc.Center[0] < -178)
}

func TestNewFitterSanitises(t *testing.T) {
	f := NewFitter(model.ViewportConfig{Scale: math.Inf(1), Center: [2]float64{math.NaN(), 0}}, -5, 0)

	require.NotNil(t, f)
	assert.Equal(t, 200.0, f.Default.Scale)
	assert.Equal(t, [2]float64{0, 0}, f.Default.Center)
	assert.Equal(t, 200.0, f.MinScale)
	assert.Equal(t, 30.0, f.MarginFactor)
}
