package routes

import (
	"errors"
	"net/http"

	"atlas/internal/model"
	"atlas/internal/service/detail"
	"atlas/internal/service/gallery"

	"github.com/gin-gonic/gin"
)

type sessionHandlers struct {
	deps Deps
}

type activateRequest struct {
	Kind string `json:"kind" binding:"required"`
	Name string `json:"name" binding:"required"`
}

type imagesResponse struct {
	Status   string                        `json:"status"`
	Appended int                           `json:"appended"`
	Images   gallery.Snapshot[model.Image] `json:"images"`
	Error    string                        `json:"error,omitempty"`
}

// SetupSessionHandlers registers the page-instance endpoints
func SetupSessionHandlers(router *gin.RouterGroup, deps Deps) {
	h := &sessionHandlers{deps: deps}

	sessions := router.Group("/sessions")
	sessions.POST("", h.create)
	sessions.DELETE("/:id", h.delete)
	sessions.PUT("/:id/entity", h.activate)
	sessions.GET("/:id/view", h.view)
	sessions.GET("/:id/features", h.features)
	sessions.GET("/:id/images", h.images)
	sessions.POST("/:id/images/next", h.nextImages)
}

func (h *sessionHandlers) session(c *gin.Context) (*detail.Session, bool) {
	s, err := h.deps.Registry.Get(c.Param("id"))
	if err != nil {
		respondError(c, statusFor(err), err)
		return nil, false
	}
	return s, true
}

func (h *sessionHandlers) create(c *gin.Context) {
	s := h.deps.Registry.Create()
	c.JSON(http.StatusCreated, s)
}

func (h *sessionHandlers) delete(c *gin.Context) {
	if err := h.deps.Registry.Delete(c.Param("id")); err != nil {
		respondError(c, statusFor(err), err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *sessionHandlers) activate(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req activateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	kind, err := model.ParseEntityKind(req.Kind)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	if err := s.Activate(c.Request.Context(), model.EntityRef{Kind: kind, Name: req.Name}); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, s.State())
}

func (h *sessionHandlers) view(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	width, height, err := dimensions(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	view, err := buildView(s.Assembler, width, height)
	if err != nil {
		respondError(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *sessionHandlers) features(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	features, err := s.Features()
	if err != nil {
		respondError(c, statusFor(err), err)
		return
	}
	markers, err := s.Markers()
	if err != nil {
		respondError(c, statusFor(err), err)
		return
	}
	writeGeoJSON(c, featureCollection(features, markers))
}

func (h *sessionHandlers) images(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	snap, err := s.Images()
	if err != nil {
		respondError(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, imagesResponse{Status: "ok", Images: snap})
}

// nextImages loads one more page. The collection is returned in every case so
// the client can render it and retry after a failure.
func (h *sessionHandlers) nextImages(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	appended, err := s.LoadMoreImages(c.Request.Context())
	if errors.Is(err, detail.ErrNoEntity) {
		respondError(c, http.StatusConflict, err)
		return
	}

	snap, snapErr := s.Images()
	if snapErr != nil {
		respondError(c, statusFor(snapErr), snapErr)
		return
	}

	switch {
	case err == nil:
		c.JSON(http.StatusOK, imagesResponse{Status: "ok", Appended: len(appended), Images: snap})
	case errors.Is(err, gallery.ErrFetchInFlight):
		c.JSON(http.StatusAccepted, imagesResponse{Status: "in_flight", Images: snap})
	case errors.Is(err, gallery.ErrStaleResult):
		c.JSON(http.StatusConflict, imagesResponse{Status: "stale", Images: snap, Error: err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, imagesResponse{Status: "error", Images: snap, Error: err.Error()})
	}
}
