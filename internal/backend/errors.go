package backend

import "errors"

// Provider-classified authentication failures. Forms map these to
// visitor-facing notices; anything else is a generic remote failure.
var (
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakSecret         = errors.New("password is too weak")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Data-plane failures.
var (
	// ErrNotFound is returned by record reads that match nothing.
	ErrNotFound = errors.New("record not found")
)

// Device capability failures. Both degrade to "no coordinates" rather than
// failing the operation that requested them.
var (
	ErrPermissionDenied = errors.New("location permission denied")
	ErrUnsupported      = errors.New("location not supported on this device")
)
