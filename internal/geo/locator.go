// Package geo provides DeviceLocator implementations. A real mobile shell
// would bridge to the platform location API; these cover fixed-position
// deployments and the denied/unsupported cases callers must degrade through.
package geo

import (
	"context"

	"github.com/wallaby-market/wallaby/internal/backend"
)

// StaticLocator always reports the same coordinates.
type StaticLocator struct {
	coords backend.Coordinates
}

// NewStaticLocator creates a StaticLocator for the given position.
func NewStaticLocator(lat, lng float64) *StaticLocator {
	return &StaticLocator{coords: backend.Coordinates{Lat: lat, Lng: lng}}
}

// Locate returns the fixed coordinates.
func (l *StaticLocator) Locate(_ context.Context) (backend.Coordinates, error) {
	return l.coords, nil
}

// DeniedLocator models a visitor refusing the location permission prompt.
type DeniedLocator struct{}

// Locate always fails with backend.ErrPermissionDenied.
func (DeniedLocator) Locate(_ context.Context) (backend.Coordinates, error) {
	return backend.Coordinates{}, backend.ErrPermissionDenied
}

// UnsupportedLocator models a device with no location capability.
type UnsupportedLocator struct{}

// Locate always fails with backend.ErrUnsupported.
func (UnsupportedLocator) Locate(_ context.Context) (backend.Coordinates, error) {
	return backend.Coordinates{}, backend.ErrUnsupported
}
