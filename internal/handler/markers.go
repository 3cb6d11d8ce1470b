package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wallaby-market/wallaby/internal/mapview"
	"go.uber.org/zap"
)

// MarkersHandler serves the map viewer's marker set. The viewer is shared
// and opened lazily on the first request; a tile-source failure is scoped
// to this endpoint and leaves the rest of the service untouched.
type MarkersHandler struct {
	viewer *mapview.Viewer
	logger *zap.Logger
}

// NewMarkersHandler creates a MarkersHandler.
func NewMarkersHandler(viewer *mapview.Viewer, logger *zap.Logger) *MarkersHandler {
	return &MarkersHandler{viewer: viewer, logger: logger}
}

// Register mounts the markers route.
func (h *MarkersHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/markets/markers", h.Markers)
}

// Markers handles GET /markets/markers.
func (h *MarkersHandler) Markers(c *gin.Context) {
	if err := h.viewer.Open(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "map unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"center":             gin.H{"lat": mapview.CenterLat, "lng": mapview.CenterLng, "zoom": mapview.DefaultZoom},
		"markers":            h.viewer.Markers(),
		"counts_by_kind":     h.viewer.CountsByKind(),
		"counts_by_category": h.viewer.CountsByCategory(),
	})
}
