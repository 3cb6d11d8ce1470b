package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wallaby-market/wallaby/internal/blob"
	"go.uber.org/zap"
)

// maxBlobBytes caps direct blob uploads. Form images are downsampled well
// below this before they reach the store.
const maxBlobBytes = 2 << 20

// BlobHandler exposes the blob store: authenticated uploads and public
// serving of stored blobs.
type BlobHandler struct {
	store  *blob.FSStore
	logger *zap.Logger
}

// NewBlobHandler creates a BlobHandler.
func NewBlobHandler(store *blob.FSStore, logger *zap.Logger) *BlobHandler {
	return &BlobHandler{store: store, logger: logger}
}

// RegisterUpload mounts the authenticated upload route.
func (h *BlobHandler) RegisterUpload(rg *gin.RouterGroup) {
	rg.POST("/blobs/*path", h.Upload)
}

// RegisterServe mounts the public serving route.
func (h *BlobHandler) RegisterServe(r gin.IRoutes) {
	r.GET("/blobs/*path", h.Serve)
}

// Upload handles POST /blobs/*path with the raw bytes as the request body.
func (h *BlobHandler) Upload(c *gin.Context) {
	path := strings.TrimPrefix(c.Param("path"), "/")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "blob path is required"})
		return
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBlobBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read body failed"})
		return
	}
	if len(data) > maxBlobBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "blob too large"})
		return
	}

	url, err := h.store.Upload(c.Request.Context(), path, data)
	if err != nil {
		h.logger.Error("blob upload", zap.String("path", path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

// Serve handles GET /blobs/*path.
func (h *BlobHandler) Serve(c *gin.Context) {
	path := strings.TrimPrefix(c.Param("path"), "/")
	data, err := h.store.Open(path)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "blob not found"})
		return
	}
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}
