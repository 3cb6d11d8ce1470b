package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wallaby-market/wallaby/internal/backend"
	"github.com/wallaby-market/wallaby/internal/business"
	"github.com/wallaby-market/wallaby/internal/profile"
	"go.uber.org/zap"
)

// RecordsHandler serves the raw profile and business-profile documents the
// client-side forms read and write. Every route is scoped to the
// authenticated owner.
type RecordsHandler struct {
	profiles   profile.Store
	businesses business.Store
	logger     *zap.Logger
}

// NewRecordsHandler creates a RecordsHandler.
func NewRecordsHandler(profiles profile.Store, businesses business.Store, logger *zap.Logger) *RecordsHandler {
	return &RecordsHandler{profiles: profiles, businesses: businesses, logger: logger}
}

// Register mounts the record routes.
func (h *RecordsHandler) Register(rg *gin.RouterGroup) {
	account := rg.Group("/account")
	{
		account.GET("/profile", h.ReadProfile)
		account.PUT("/profile", h.WriteProfile)
		account.PATCH("/profile", h.MergeProfile)
		account.GET("/business-profile", h.ReadBusinessProfile)
		account.PUT("/business-profile", h.WriteBusinessProfile)
	}
}

// ReadProfile handles GET /account/profile.
func (h *RecordsHandler) ReadProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}

	p, err := h.profiles.Read(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		h.logger.Error("read profile", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read failed"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// WriteProfile handles PUT /account/profile — a full replace. The owner id
// always comes from the session token, never the body.
func (h *RecordsHandler) WriteProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}

	var p profile.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p.OwnerID = userID

	if err := h.profiles.Write(c.Request.Context(), &p); err != nil {
		h.logger.Error("write profile", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "write failed"})
		return
	}
	c.JSON(http.StatusOK, &p)
}

// profilePatchRequest is the wire shape of a partial update. The
// classification pair must be present together or not at all.
type profilePatchRequest struct {
	FirstName       *string `json:"first_name"`
	City            *string `json:"city"`
	State           *string `json:"state"`
	ProfileImageURL *string `json:"profile_image_url"`
	UserType        *string `json:"user_type"`
	IsBusiness      *bool   `json:"is_business"`
}

// MergeProfile handles PATCH /account/profile — a partial merge.
func (h *RecordsHandler) MergeProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}

	var req profilePatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := profile.Patch{
		FirstName:       req.FirstName,
		City:            req.City,
		State:           req.State,
		ProfileImageURL: req.ProfileImageURL,
	}
	if req.UserType != nil || req.IsBusiness != nil {
		cls, err := profile.ClassificationFromFields(req.UserType, req.IsBusiness)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		patch.Classification = &cls
	}

	if err := h.profiles.Merge(c.Request.Context(), userID, patch); err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		h.logger.Error("merge profile", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "merge failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

// ReadBusinessProfile handles GET /account/business-profile.
func (h *RecordsHandler) ReadBusinessProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}

	bp, err := h.businesses.Read(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "business profile not found"})
			return
		}
		h.logger.Error("read business profile", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read failed"})
		return
	}
	c.JSON(http.StatusOK, bp)
}

// WriteBusinessProfile handles PUT /account/business-profile — creates or
// overwrites the owner's storefront record.
func (h *RecordsHandler) WriteBusinessProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}

	var bp business.Profile
	if err := c.ShouldBindJSON(&bp); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if bp.BusinessName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "business_name is required"})
		return
	}
	bp.OwnerID = userID

	if err := h.businesses.Write(c.Request.Context(), &bp); err != nil {
		h.logger.Error("write business profile", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "write failed"})
		return
	}
	c.JSON(http.StatusOK, &bp)
}
