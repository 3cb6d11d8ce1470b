// Package business holds the storefront record a seller publishes when
// completing onboarding.
package business

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Profile is the public storefront metadata for a business account. Keyed
// 1:1 by the owning identity.
type Profile struct {
	OwnerID         uuid.UUID `json:"owner_id"`
	BusinessName    string    `json:"business_name"`
	AboutBusiness   string    `json:"about_business"`
	Location        string    `json:"location"`
	ProfileImageURL string    `json:"profile_image_url,omitempty"`
	CoverImageURL   string    `json:"cover_image_url,omitempty"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Store is the business-profile document store. Write creates or overwrites
// the owner's record.
type Store interface {
	Write(ctx context.Context, p *Profile) error
	Read(ctx context.Context, ownerID uuid.UUID) (*Profile, error)
}
