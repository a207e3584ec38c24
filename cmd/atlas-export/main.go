package main

import (
	"encoding/json"
	"flag"
	"log"
	"math"
	"os"
	"strings"

	"atlas/internal/geometry"
	"atlas/internal/model"
	"atlas/internal/service/selector"
	"atlas/internal/service/viewport"
	"atlas/internal/util"

	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

// Command line flags
var (
	geometryPath string
	nameProperty string
	entityKind   string
	entityName   string
	members      string
	width        float64
	height       float64
	margin       float64
	outputFile   string
)

func init() {
	flag.StringVar(&geometryPath, "geometry", "data/world.geojson", "Path to the boundary GeoJSON FeatureCollection")
	flag.StringVar(&nameProperty, "name-property", "name", "Feature property holding the country name")
	flag.StringVar(&entityKind, "kind", "country", "Entity kind: country or continent")
	flag.StringVar(&entityName, "name", "", "Entity name, e.g. Japan or South America")
	flag.StringVar(&members, "members", "", "Comma-separated member countries for a continent (default: match by property)")
	flag.Float64Var(&width, "width", 800, "Viewport width in pixels")
	flag.Float64Var(&height, "height", 600, "Viewport height in pixels")
	flag.Float64Var(&margin, "margin", 30, "Margin factor")
	flag.StringVar(&outputFile, "output", "selection.geojson", "Output GeoJSON file")
}

func main() {
	flag.Parse()

	if entityName == "" {
		log.Fatal("-name is required")
	}
	kind, err := model.ParseEntityKind(entityKind)
	if err != nil {
		log.Fatalf("Invalid -kind: %v", err)
	}

	zl, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	src, err := geometry.LoadSource(geometryPath, nameProperty, zl)
	if err != nil {
		zl.Fatal("failed to load geometry", zap.Error(err))
	}

	fitter := viewport.NewFitter(model.ViewportConfig{Scale: 200}, 100, margin)
	fc, vc := exportSelection(src, fitter, kind, entityName, splitMembers(members), width, height)

	zl.Info("selection framed",
		zap.String("entity", entityName),
		zap.Int("features", len(fc.Features)),
		zap.Float64("scale", vc.Scale),
		zap.Float64s("center", vc.Center[:]),
	)

	jsonData, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		zl.Fatal("failed to marshal geojson", zap.Error(err))
	}
	if err := os.WriteFile(outputFile, jsonData, 0o644); err != nil {
		zl.Fatal("failed to write geojson file", zap.Error(err))
	}

	zl.Info("exported selection", zap.String("output", outputFile))
}

func splitMembers(s string) []string {
	var out []string
	for _, m := range strings.Split(s, ",") {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}

// exportSelection selects the entity's features and returns them with a
// centroid marker per feature and a viewport marker at the projection center
func exportSelection(src selector.FeatureSource, fitter *viewport.Fitter, kind model.EntityKind, name string, members []string, w, h float64) (*geojson.FeatureCollection, model.ViewportConfig) {
	features := selector.NewSelector(src).Select(kind, name, members)
	vc := fitter.Fit(features, w, h, fitter.MarginFactor)

	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		feature := geojson.NewFeature(f.Geometry)
		feature.Properties["name"] = f.Name
		feature.Properties["type"] = "boundary"
		feature.Properties["area_km2"] = roundTo(util.AreaKm2(f), 1)
		fc.Append(feature)
	}

	for _, f := range features {
		c := util.CentroidOf(f)
		marker := geojson.NewFeature(c.Point())
		marker.Properties["name"] = f.Name
		marker.Properties["type"] = "marker"
		fc.Append(marker)
	}

	center := geojson.NewFeature(model.Centroid{Lng: vc.Center[0], Lat: vc.Center[1]}.Point())
	center.Properties["name"] = name
	center.Properties["type"] = "viewport"
	center.Properties["scale"] = roundTo(vc.Scale, 2)
	center.Properties["width"] = w
	center.Properties["height"] = h
	fc.Append(center)

	return fc, vc
}

// roundTo rounds v to the given number of decimals
func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
