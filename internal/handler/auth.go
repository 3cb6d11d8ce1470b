// Package handler exposes the Wallaby account facade over HTTP: auth,
// profile and business records, the account snapshot, onboarding, markers,
// and blobs.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wallaby-market/wallaby/internal/backend"
	"github.com/wallaby-market/wallaby/internal/identity"
	"github.com/wallaby-market/wallaby/internal/profile"
	"go.uber.org/zap"
)

// Machine-readable error codes carried next to the human-readable message,
// so clients can map failures back to the provider's classification.
const (
	codeEmailInUse         = "email_in_use"
	codeInvalidEmail       = "invalid_email"
	codeWeakSecret         = "weak_secret"
	codeInvalidCredentials = "invalid_credentials"
)

// AuthHandler handles identity creation, authentication, and sign-out.
type AuthHandler struct {
	auth     backend.IdentityProvider
	profiles profile.Store
	tokens   *identity.TokenIssuer
	logger   *zap.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(auth backend.IdentityProvider, profiles profile.Store, tokens *identity.TokenIssuer, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, profiles: profiles, tokens: tokens, logger: logger}
}

// Register mounts the auth routes on the provided router group.
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/signup", h.Signup)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
	}
}

type credentialsRequest struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Signup handles POST /auth/signup — creates an identity. The profile
// record is written separately by the sign-up form.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.auth.CreateIdentity(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, backend.ErrEmailInUse):
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered", "code": codeEmailInUse})
		case errors.Is(err, backend.ErrInvalidEmail):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": codeInvalidEmail})
		case errors.Is(err, backend.ErrWeakSecret):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": codeWeakSecret})
		default:
			h.logger.Error("signup", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "signup failed"})
		}
		return
	}

	tok, err := h.tokens.Issue(id.ID, id.Email)
	if err != nil {
		h.logger.Error("issue token after signup", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}

	RecordSignup()
	c.JSON(http.StatusCreated, gin.H{"identity": id, "token": tok})
}

// Login handles POST /auth/login — authenticates existing credentials.
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.auth.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, backend.ErrInvalidCredentials) {
			RecordLogin(false)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials", "code": codeInvalidCredentials})
			return
		}
		h.logger.Error("login", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	tok, err := h.tokens.Issue(id.ID, id.Email)
	if err != nil {
		h.logger.Error("issue token after login", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}

	RecordLogin(true)
	c.JSON(http.StatusOK, gin.H{"identity": id, "token": tok})
}

// Logout handles POST /auth/logout. Session tokens are stateless; the
// client discards its token and the provider broadcast clears in-process
// observers.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.SignOut(c.Request.Context()); err != nil {
		h.logger.Warn("logout", zap.Error(err))
	}
	c.Status(http.StatusNoContent)
}

// currentUserID extracts the authenticated account id set by AuthRequired.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ctxUserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
