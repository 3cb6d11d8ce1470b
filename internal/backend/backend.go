// Package backend defines the typed contracts between the Wallaby client side
// (session controller, forms, map viewer) and the managed backend it talks to.
// Implementations live in internal/identity, internal/profile,
// internal/business, internal/blob, internal/geo, and internal/remote; tests
// substitute fakes.
package backend

import (
	"context"

	"github.com/google/uuid"
)

// Identity is the authenticated principal returned by the identity provider.
type Identity struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// Coordinates is a device location fix.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// AuthStatusFunc receives auth-status notifications. The identity is nil when
// no one is signed in.
type AuthStatusFunc func(*Identity)

// IdentityProvider manages account credentials and the signed-in state.
type IdentityProvider interface {
	// CreateIdentity registers a new account. Fails with ErrEmailInUse,
	// ErrInvalidEmail, or ErrWeakSecret when the provider rejects the input.
	CreateIdentity(ctx context.Context, email, secret string) (*Identity, error)

	// Authenticate verifies credentials. Fails with ErrInvalidCredentials on
	// a bad email/secret pair.
	Authenticate(ctx context.Context, email, secret string) (*Identity, error)

	// SignOut clears the signed-in identity.
	SignOut(ctx context.Context) error

	// ObserveAuthStatus registers a push-style observer. The callback fires
	// at least once immediately with the current status, then again on every
	// sign-in and sign-out until cancel is called.
	ObserveAuthStatus(ctx context.Context, fn AuthStatusFunc) (cancel func(), err error)
}

// BlobStore stores opaque byte payloads and returns a URL for each.
type BlobStore interface {
	Upload(ctx context.Context, path string, data []byte) (url string, err error)
}

// DeviceLocator reports the device's current position.
type DeviceLocator interface {
	// Locate returns the current coordinates. Fails with ErrPermissionDenied
	// when the visitor refuses, or ErrUnsupported when the device has no
	// location capability. Callers treat both as "no coordinates".
	Locate(ctx context.Context) (Coordinates, error)
}
