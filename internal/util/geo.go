package util

import (
	"math"
	"sort"

	"atlas/internal/model"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

const earthRadiusMeters = 6371000.0

func HaversineDistance(lat1, lng1, lat2, lng2 float64) float64 {
	// Convert coordinates from degrees to S2 points
	point1 := s2.PointFromLatLng(s2.LatLngFromDegrees(lat1, lng1))
	point2 := s2.PointFromLatLng(s2.LatLngFromDegrees(lat2, lng2))

	// Calculate angle between points
	angle := s1.Angle(s2.ChordAngleBetweenPoints(point1, point2).Angle())

	return angle.Radians() * earthRadiusMeters
}

type lonInterval struct {
	min, max float64
}

// UnionBounds returns the box covering every feature. Longitudes are treated
// as a circle, so a selection straddling the antimeridian (Fiji, Russia)
// reports MaxX past 180 instead of spanning the whole globe.
func UnionBounds(features []*model.Feature) (model.BoundingBox, bool) {
	var intervals []lonInterval
	minY, maxY := math.Inf(1), math.Inf(-1)

	for _, f := range features {
		if f == nil {
			continue
		}
		for _, b := range partBounds(f.Geometry) {
			intervals = append(intervals, lonInterval{min: b.Min[0], max: b.Max[0]})
			minY = math.Min(minY, b.Min[1])
			maxY = math.Max(maxY, b.Max[1])
		}
	}

	if len(intervals) == 0 {
		return model.BoundingBox{}, false
	}

	x0, x1 := coveringArc(intervals)
	return model.BoundingBox{MinX: x0, MinY: minY, MaxX: x1, MaxY: maxY}, true
}

// partBounds returns one bound per polygon part
func partBounds(g orb.Geometry) []orb.Bound {
	switch geom := g.(type) {
	case nil:
		return nil
	case orb.MultiPolygon:
		bounds := make([]orb.Bound, 0, len(geom))
		for _, p := range geom {
			if len(p) == 0 || len(p[0]) == 0 {
				continue
			}
			bounds = append(bounds, p.Bound())
		}
		return bounds
	case orb.Polygon:
		if len(geom) == 0 || len(geom[0]) == 0 {
			return nil
		}
		return []orb.Bound{geom.Bound()}
	default:
		b := g.Bound()
		if b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] {
			return nil
		}
		return []orb.Bound{b}
	}
}

// coveringArc finds the shortest longitude arc containing all intervals by
// dropping the widest gap between them.
func coveringArc(intervals []lonInterval) (float64, float64) {
	sorted := make([]lonInterval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].min < sorted[j].min })

	merged := []lonInterval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if iv.min <= last.max {
			if iv.max > last.max {
				last.max = iv.max
			}
			continue
		}
		merged = append(merged, iv)
	}

	n := len(merged)
	gapAfter := n - 1
	widest := merged[0].min + 360 - merged[n-1].max
	for i := 0; i < n-1; i++ {
		if gap := merged[i+1].min - merged[i].max; gap > widest {
			widest = gap
			gapAfter = i
		}
	}

	if gapAfter == n-1 {
		return merged[0].min, merged[n-1].max
	}
	return merged[gapAfter+1].min, merged[gapAfter].max + 360
}

// CentroidOf returns the area-weighted centroid of a single feature
func CentroidOf(f *model.Feature) model.Centroid {
	c, _ := UnionCentroid([]*model.Feature{f})
	return c
}

// UnionCentroid returns the area-weighted centroid of all features. Each
// polygon part contributes proportionally to its planar area; holes subtract.
// Geometry without area falls back to the center of the bounding box.
func UnionCentroid(features []*model.Feature) (model.Centroid, bool) {
	box, ok := UnionBounds(features)
	if !ok {
		return model.Centroid{}, false
	}
	wraps := box.MaxX > 180

	var sumX, sumY, total float64
	for _, f := range features {
		if f == nil || f.Geometry == nil {
			continue
		}
		g := f.Geometry
		if wraps {
			g = unwrapLongitudes(g, box.MinX)
		}
		c, area := planar.CentroidArea(g)
		area = math.Abs(area)
		if area == 0 || !IsFinite(c[0]) || !IsFinite(c[1]) {
			continue
		}
		sumX += c[0] * area
		sumY += c[1] * area
		total += area
	}

	if total == 0 {
		return model.Centroid{
			Lng: normalizeLng((box.MinX + box.MaxX) / 2),
			Lat: (box.MinY + box.MaxY) / 2,
		}, true
	}
	return model.Centroid{Lng: normalizeLng(sumX / total), Lat: sumY / total}, true
}

// AreaKm2 returns the geodesic area of the feature in square kilometres
func AreaKm2(f *model.Feature) float64 {
	if f == nil || f.Geometry == nil {
		return 0
	}
	return math.Abs(geo.Area(f.Geometry)) / 1e6
}

// unwrapLongitudes copies the geometry moving every vertex west of minX one
// turn east so the shape is contiguous across the antimeridian.
func unwrapLongitudes(g orb.Geometry, minX float64) orb.Geometry {
	switch geom := g.(type) {
	case orb.Polygon:
		return unwrapPolygon(geom, minX)
	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, len(geom))
		for i, p := range geom {
			out[i] = unwrapPolygon(p, minX)
		}
		return out
	}
	return g
}

func unwrapPolygon(p orb.Polygon, minX float64) orb.Polygon {
	out := make(orb.Polygon, len(p))
	for i, ring := range p {
		r := make(orb.Ring, len(ring))
		for j, pt := range ring {
			if pt[0] < minX {
				pt[0] += 360
			}
			r[j] = pt
		}
		out[i] = r
	}
	return out
}

func normalizeLng(lng float64) float64 {
	for lng > 180 {
		lng -= 360
	}
	for lng < -180 {
		lng += 360
	}
	return lng
}

// IsFinite reports whether v is neither NaN nor infinite
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
