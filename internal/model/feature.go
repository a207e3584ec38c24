package model

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
)

// EntityKind distinguishes the two kinds of page subjects
type EntityKind string

const (
	EntityKindCountry   EntityKind = "country"
	EntityKindContinent EntityKind = "continent"
)

// ParseEntityKind converts a route segment into an EntityKind
func ParseEntityKind(s string) (EntityKind, error) {
	switch EntityKind(strings.ToLower(strings.TrimSpace(s))) {
	case EntityKindCountry:
		return EntityKindCountry, nil
	case EntityKindContinent:
		return EntityKindContinent, nil
	}
	return "", fmt.Errorf("unknown entity kind %q", s)
}

// EntityRef identifies the subject of a page view
type EntityRef struct {
	Kind EntityKind `json:"kind"`
	Name string     `json:"name"`
}

func (r EntityRef) String() string {
	return string(r.Kind) + ":" + r.Name
}

// IsZero reports whether no entity is set
func (r EntityRef) IsZero() bool {
	return r.Kind == "" && r.Name == ""
}

// Feature is a named political boundary loaded from the geometry dataset.
// Features are shared read-only between all sessions.
type Feature struct {
	Name      string
	Continent string
	Region    string
	Subregion string
	ISOA2     string
	ISOA3     string

	Geometry orb.Geometry // orb.Polygon or orb.MultiPolygon, [lng, lat]
	Bound    orb.Bound
}

// BoundingBox is expressed in degrees. MaxX can exceed 180 when the box
// crosses the antimeridian.
type BoundingBox struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// SpanX returns the longitudinal extent in degrees
func (b BoundingBox) SpanX() float64 { return b.MaxX - b.MinX }

// SpanY returns the latitudinal extent in degrees
func (b BoundingBox) SpanY() float64 { return b.MaxY - b.MinY }

// Centroid is a marker position
type Centroid struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// Point returns the centroid as an orb point ([lng, lat])
func (c Centroid) Point() orb.Point {
	return orb.Point{c.Lng, c.Lat}
}

// ViewportConfig frames a projection: Center is [lng, lat]
type ViewportConfig struct {
	Scale  float64    `json:"scale"`
	Center [2]float64 `json:"center"`
}

// Marker pairs a selected feature with its centroid for the renderer
type Marker struct {
	Name     string   `json:"name"`
	Centroid Centroid `json:"centroid"`
	AreaKm2  float64  `json:"area_km2"`
}
