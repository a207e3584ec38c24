package routes

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"atlas/internal/model"
	"atlas/internal/service/detail"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb/geojson"
)

type viewResponse struct {
	Entity   model.EntityRef       `json:"entity"`
	Resolved bool                  `json:"resolved"`
	Found    bool                  `json:"found"`
	Viewport model.ViewportConfig  `json:"viewport"`
	Markers  []model.Marker        `json:"markers"`
	Metadata *model.EntityMetadata `json:"metadata"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func respondError(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, errorResponse{Status: "error", Message: err.Error()})
}

// dimensions reads width and height from the query. Missing values are zero,
// which frames the default view.
func dimensions(c *gin.Context) (float64, float64, error) {
	parse := func(key string) (float64, error) {
		raw := c.Query(key)
		if raw == "" {
			return 0, nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s %q", key, raw)
		}
		return v, nil
	}

	w, err := parse("width")
	if err != nil {
		return 0, 0, err
	}
	h, err := parse("height")
	if err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

func buildView(a *detail.Assembler, width, height float64) (viewResponse, error) {
	state := a.State()

	vc, err := a.Viewport(width, height)
	if err != nil {
		return viewResponse{}, err
	}
	markers, err := a.Markers()
	if err != nil {
		return viewResponse{}, err
	}

	return viewResponse{
		Entity:   state.Entity,
		Resolved: state.Resolved,
		Found:    state.Found,
		Viewport: vc,
		Markers:  markers,
		Metadata: state.Metadata,
	}, nil
}

// featureCollection renders the selection plus one point per marker
func featureCollection(features []*model.Feature, markers []model.Marker) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		gf := geojson.NewFeature(f.Geometry)
		gf.Properties["name"] = f.Name
		if f.Continent != "" {
			gf.Properties["continent"] = f.Continent
		}
		if f.ISOA3 != "" {
			gf.Properties["iso_a3"] = f.ISOA3
		}
		fc.Append(gf)
	}
	for _, m := range markers {
		gf := geojson.NewFeature(m.Centroid.Point())
		gf.Properties["name"] = m.Name
		gf.Properties["marker"] = true
		gf.Properties["area_km2"] = m.AreaKm2
		fc.Append(gf)
	}
	return fc
}

func writeGeoJSON(c *gin.Context, fc *geojson.FeatureCollection) {
	data, err := fc.MarshalJSON()
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "application/geo+json", data)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, detail.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, detail.ErrNoEntity):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
