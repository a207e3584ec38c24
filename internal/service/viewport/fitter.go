package viewport

import (
	"math"

	"atlas/internal/metrics"
	"atlas/internal/model"
	"atlas/internal/util"
)

const (
	outcomeFitted          = "fitted"
	outcomeEmpty           = "default"
	outcomeDegenerate      = "degenerate"
	outcomeInvalidViewport = "invalid_viewport"
)

// Fitter computes projection parameters that frame a feature selection
// inside a pixel viewport.
type Fitter struct {
	Default      model.ViewportConfig
	MinScale     float64
	MarginFactor float64
}

// NewFitter builds a fitter, replacing unusable settings with the world view
func NewFitter(def model.ViewportConfig, minScale, marginFactor float64) *Fitter {
	if !validScale(def.Scale) {
		def.Scale = 200
	}
	if !util.IsFinite(def.Center[0]) || !util.IsFinite(def.Center[1]) {
		def.Center = [2]float64{0, 0}
	}
	if !validScale(minScale) {
		minScale = def.Scale
	}
	if !validScale(marginFactor) {
		marginFactor = 30
	}
	return &Fitter{Default: def, MinScale: minScale, MarginFactor: marginFactor}
}

// Fit returns a scale and center such that the union bounding box of features
// fills widthPx x heightPx with the given margin factor. It never returns a
// non-finite or non-positive scale.
func (f *Fitter) Fit(features []*model.Feature, widthPx, heightPx, margin float64) model.ViewportConfig {
	if !validScale(margin) {
		margin = f.MarginFactor
	}

	if !validScale(widthPx) || !validScale(heightPx) {
		metrics.ViewportFitsTotal.WithLabelValues(outcomeInvalidViewport).Inc()
		return f.Default
	}

	box, ok := util.UnionBounds(features)
	if !ok {
		metrics.ViewportFitsTotal.WithLabelValues(outcomeEmpty).Inc()
		return f.Default
	}

	center := f.center(features, box)

	spanX, spanY := box.SpanX(), box.SpanY()
	ratio := math.Max(spanX/widthPx, spanY/heightPx)
	if !(ratio > 0) || !util.IsFinite(ratio) {
		metrics.ViewportFitsTotal.WithLabelValues(outcomeDegenerate).Inc()
		return model.ViewportConfig{Scale: f.MinScale, Center: center}
	}

	scale := margin / ratio
	if !validScale(scale) {
		metrics.ViewportFitsTotal.WithLabelValues(outcomeDegenerate).Inc()
		return model.ViewportConfig{Scale: f.MinScale, Center: center}
	}

	metrics.ViewportFitsTotal.WithLabelValues(outcomeFitted).Inc()
	return model.ViewportConfig{Scale: scale, Center: center}
}

func (f *Fitter) center(features []*model.Feature, box model.BoundingBox) [2]float64 {
	c, ok := util.UnionCentroid(features)
	if ok && util.IsFinite(c.Lng) && util.IsFinite(c.Lat) {
		return [2]float64{c.Lng, c.Lat}
	}

	lng := (box.MinX + box.MaxX) / 2
	if lng > 180 {
		lng -= 360
	}
	lat := (box.MinY + box.MaxY) / 2
	if !util.IsFinite(lng) || !util.IsFinite(lat) {
		return f.Default.Center
	}
	return [2]float64{lng, lat}
}

func validScale(v float64) bool {
	return v > 0 && util.IsFinite(v)
}
