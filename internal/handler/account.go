package handler

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wallaby-market/wallaby/internal/backend"
	"github.com/wallaby-market/wallaby/internal/business"
	"github.com/wallaby-market/wallaby/internal/forms"
	"github.com/wallaby-market/wallaby/internal/profile"
	"go.uber.org/zap"
)

// Account-screen cards.
const (
	cardSellerSignup      = "seller_signup"
	cardBusinessDashboard = "business_dashboard"
)

// AccountHandler serves the account snapshot and the onboarding completions.
type AccountHandler struct {
	profiles   profile.Store
	businesses business.Store
	blobs      backend.BlobStore
	logger     *zap.Logger
}

// NewAccountHandler creates an AccountHandler.
func NewAccountHandler(profiles profile.Store, businesses business.Store, blobs backend.BlobStore, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{profiles: profiles, businesses: businesses, blobs: blobs, logger: logger}
}

// Register mounts the account routes. All of them require a session token.
func (h *AccountHandler) Register(rg *gin.RouterGroup) {
	account := rg.Group("/account")
	{
		account.GET("", h.Snapshot)
		account.POST("/onboarding/business", h.OnboardBusiness)
		account.POST("/onboarding/customer", h.OnboardCustomer)
	}
}

// Snapshot handles GET /account — what the account screen renders. A failed
// profile read degrades to an empty incomplete profile rather than an error.
func (h *AccountHandler) Snapshot(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}
	ctx := c.Request.Context()

	p, err := h.profiles.Read(ctx, userID)
	if err != nil {
		if !errors.Is(err, backend.ErrNotFound) {
			h.logger.Warn("account snapshot profile read", zap.Error(err))
		}
		p = &profile.Profile{OwnerID: userID}
	}

	state := "authenticated_incomplete"
	card := cardSellerSignup
	var bp *business.Profile
	if ut, set := p.Classification.UserType(); set {
		state = "authenticated_complete"
		if ut == profile.UserTypeBusiness {
			card = cardBusinessDashboard
			if got, err := h.businesses.Read(ctx, userID); err == nil {
				bp = got
			} else if !errors.Is(err, backend.ErrNotFound) {
				h.logger.Warn("account snapshot business read", zap.Error(err))
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"state":            state,
		"card":             card,
		"profile":          p,
		"business_profile": bp,
	})
}

type onboardBusinessRequest struct {
	BusinessName  string `json:"business_name" binding:"required"`
	AboutBusiness string `json:"about_business"`
	Location      string `json:"location"`
	ProfileImage  string `json:"profile_image"` // base64, optional
	CoverImage    string `json:"cover_image"`   // base64, optional
}

// OnboardBusiness handles POST /account/onboarding/business — the seller
// "Continue" path. Image uploads precede the record writes; an upload
// failure aborts the whole completion.
func (h *AccountHandler) OnboardBusiness(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}

	var req onboardBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profileImage, err := decodeImageField("profile_image", req.ProfileImage)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	coverImage, err := decodeImageField("cover_image", req.CoverImage)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var written *business.Profile
	form := forms.NewBusinessProfileForm(
		h.profiles, h.businesses, h.blobs,
		func(bp *business.Profile) { written = bp },
		func() {},
		h.logger,
	)
	err = form.Continue(c.Request.Context(), userID, forms.BusinessInput{
		BusinessName:  req.BusinessName,
		AboutBusiness: req.AboutBusiness,
		Location:      req.Location,
		ProfileImage:  profileImage,
		CoverImage:    coverImage,
	})
	if err != nil {
		var verr *forms.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
			return
		}
		h.logger.Error("business onboarding", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "onboarding failed"})
		return
	}

	RecordOnboarding("business")
	c.JSON(http.StatusOK, gin.H{"business_profile": written})
}

// OnboardCustomer handles POST /account/onboarding/customer — "Here to buy".
func (h *AccountHandler) OnboardCustomer(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}

	form := forms.NewBusinessProfileForm(
		h.profiles, h.businesses, h.blobs,
		func(*business.Profile) {},
		func() {},
		h.logger,
	)
	if err := form.HereToBuy(c.Request.Context(), userID); err != nil {
		h.logger.Error("customer onboarding", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "onboarding failed"})
		return
	}

	RecordOnboarding("customer")
	c.Status(http.StatusNoContent)
}

// decodeImageField decodes an optional base64 image field.
func decodeImageField(field, value string) ([]byte, error) {
	if value == "" {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, errors.New(field + ": invalid base64")
	}
	return data, nil
}
