package geometry

import (
	"math"
	"sort"

	"atlas/internal/model"
	"atlas/internal/util"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// minRectSide keeps degenerate bounds acceptable to rtreego, which rejects
// zero-length sides.
const minRectSide = 1e-9

// featureSpatial wraps a feature for R-tree indexing
type featureSpatial struct {
	idx  int
	rect rtreego.Rect
}

// Bounds implements the rtreego.Spatial interface
func (f *featureSpatial) Bounds() rtreego.Rect {
	return f.rect
}

func boundToRect(b orb.Bound) (rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{b.Min[0], b.Min[1]},
		[]float64{
			math.Max(b.Max[0]-b.Min[0], minRectSide),
			math.Max(b.Max[1]-b.Min[1], minRectSide),
		},
	)
}

func (s *Source) buildIndex() {
	objs := make([]rtreego.Spatial, 0, len(s.features))
	for i, f := range s.features {
		rect, err := boundToRect(f.Bound)
		if err != nil {
			continue
		}
		objs = append(objs, &featureSpatial{idx: i, rect: rect})
	}
	// 2D index with min 25, max 50 entries per node
	s.index = rtreego.NewTree(2, 25, 50, objs...)
}

// Locate returns the feature containing the point. When the point lies
// outside every polygon (open sea) the feature with the nearest centroid is
// returned and exact is false.
func (s *Source) Locate(lat, lng float64) (feature *model.Feature, exact bool) {
	if len(s.features) == 0 {
		return nil, false
	}

	point := orb.Point{lng, lat}
	searchRect, err := rtreego.NewRect(rtreego.Point{lng, lat}, []float64{minRectSide, minRectSide})
	if err == nil {
		candidates := s.index.SearchIntersect(searchRect)
		hits := make([]int, 0, len(candidates))
		for _, c := range candidates {
			fs := c.(*featureSpatial)
			if contains(s.features[fs.idx].Geometry, point) {
				hits = append(hits, fs.idx)
			}
		}
		if len(hits) > 0 {
			// Dataset order decides between overlapping claims
			sort.Ints(hits)
			return s.features[hits[0]], true
		}
	}

	best, bestDist := -1, math.Inf(1)
	for i, c := range s.centroids {
		d := util.HaversineDistance(lat, lng, c.Lat, c.Lng)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return nil, false
	}
	return s.features[best], false
}

func contains(g orb.Geometry, p orb.Point) bool {
	switch geom := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(geom, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(geom, p)
	}
	return false
}
