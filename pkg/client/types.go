package client

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Identity is the authenticated principal returned by signup and login.
type Identity struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// AuthStatusFunc receives auth-status notifications. The identity is nil
// when no one is signed in.
type AuthStatusFunc func(*Identity)

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Profile is the account profile record as it travels on the wire. UserType
// and IsBusiness are set together or not at all; the service rejects
// half-set pairs.
type Profile struct {
	OwnerID         uuid.UUID    `json:"owner_id"`
	FirstName       string       `json:"first_name"`
	Email           string       `json:"email"`
	City            string       `json:"city"`
	State           string       `json:"state"`
	Coordinates     *Coordinates `json:"coordinates"`
	ProfileImageURL string       `json:"profile_image_url,omitempty"`
	UserType        *string      `json:"user_type"`
	IsBusiness      *bool        `json:"is_business"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// ProfilePatch is a partial profile update. Nil fields are left untouched.
// UserType and IsBusiness must be sent as a pair; ClearClassification sends
// explicit nulls for both.
type ProfilePatch struct {
	FirstName           *string
	City                *string
	State               *string
	ProfileImageURL     *string
	UserType            *string
	IsBusiness          *bool
	ClearClassification bool
}

// BusinessProfile is the seller's storefront record.
type BusinessProfile struct {
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

// PointOfInterest is one entry on the market map.
type PointOfInterest struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Kind        string  `json:"kind"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Rating      float64 `json:"rating"`
	IsOpen      bool    `json:"is_open"`
	Schedule    string  `json:"schedule,omitempty"`
}

// Marker is a rendered map marker.
type Marker struct {
	POI       PointOfInterest `json:"poi"`
	Color     string          `json:"color"`
	PopupHTML string          `json:"popup_html"`
}

// Service failures, mapped from response codes. Anything else surfaces as a
// generic request or transport error.
var (
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakSecret         = errors.New("password is too weak")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("record not found")
)
