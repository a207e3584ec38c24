package routes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"atlas/internal/config"
	"atlas/internal/model"
	"atlas/internal/service/detail"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type entityHandlers struct {
	deps Deps
}

// SetupEntityHandlers registers the stateless lookup endpoints
func SetupEntityHandlers(router *gin.RouterGroup, deps Deps) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	h := &entityHandlers{deps: deps}

	router.GET("/countries", h.listCountries)
	router.GET("/countries/:name", h.oneShot(model.EntityKindCountry))
	router.GET("/continents/:name", h.oneShot(model.EntityKindContinent))
	router.GET("/locate", h.locate)
}

// listCountries returns every country name, falling back to the names in the
// geometry dataset when the upstream API is unavailable
func (h *entityHandlers) listCountries(c *gin.Context) {
	if h.deps.Countries != nil {
		names, err := h.deps.Countries.AllCountries(c.Request.Context())
		if err == nil {
			c.JSON(http.StatusOK, gin.H{"source": "api", "countries": names})
			return
		}
		h.deps.Logger.Warn("country listing unavailable, using geometry names", zap.Error(err))
	}

	names := []string{}
	if h.deps.Geometry != nil {
		names = h.deps.Geometry.Names()
	}
	c.JSON(http.StatusOK, gin.H{"source": "geometry", "countries": names})
}

// oneShot resolves an entity and frames it without keeping a session
func (h *entityHandlers) oneShot(kind model.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		width, height, err := dimensions(c)
		if err != nil {
			respondError(c, http.StatusBadRequest, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), config.ActivationTimeout)
		defer cancel()

		a := detail.NewAssembler(h.deps.Detail)
		defer a.Close()

		if err := a.Activate(ctx, model.EntityRef{Kind: kind, Name: c.Param("name")}); err != nil {
			respondError(c, http.StatusBadRequest, err)
			return
		}

		view, err := buildView(a, width, height)
		if err != nil {
			respondError(c, statusFor(err), err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

type locateResponse struct {
	Name      string         `json:"name"`
	Exact     bool           `json:"exact"`
	Continent string         `json:"continent,omitempty"`
	ISOA3     string         `json:"iso_a3,omitempty"`
	Point     model.Centroid `json:"point"`
}

func (h *entityHandlers) locate(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if err := errors.Join(errLat, errLng); err != nil {
		respondError(c, http.StatusBadRequest, fmt.Errorf("lat and lng must be numbers: %w", err))
		return
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		respondError(c, http.StatusBadRequest, fmt.Errorf("coordinate out of range: %v,%v", lat, lng))
		return
	}

	f, exact := h.deps.Geometry.Locate(lat, lng)
	if f == nil {
		respondError(c, http.StatusNotFound, errors.New("no features loaded"))
		return
	}

	c.JSON(http.StatusOK, locateResponse{
		Name:      f.Name,
		Exact:     exact,
		Continent: f.Continent,
		ISOA3:     f.ISOA3,
		Point:     model.Centroid{Lng: lng, Lat: lat},
	})
}
