package forms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wallaby-market/wallaby/internal/backend"
	"github.com/wallaby-market/wallaby/internal/profile"
	"go.uber.org/zap"
)

// MinPasswordLength is the client-side password floor, checked before any
// remote call.
const MinPasswordLength = 6

// SignUpInput is the data the sign-up form collects.
type SignUpInput struct {
	FirstName    string
	Email        string
	Password     string
	City         string
	State        string
	ProfileImage []byte // optional raw image bytes
}

// SignUpSuccessFunc receives the created identity and the profile as
// written. Fired exactly once per successful submit.
type SignUpSuccessFunc func(*backend.Identity, *profile.Profile)

// SignUpForm creates an identity and writes the initial profile record with
// classification unset. Geolocation is requested best-effort during submit;
// a denial downgrades to no coordinates rather than failing the sign-up.
type SignUpForm struct {
	auth      backend.IdentityProvider
	profiles  profile.Store
	blobs     backend.BlobStore
	locator   backend.DeviceLocator
	onSuccess SignUpSuccessFunc
	logger    *zap.Logger
	guard     guard
}

// NewSignUpForm creates a SignUpForm. locator may be nil when the device has
// no location capability at all.
func NewSignUpForm(
	auth backend.IdentityProvider,
	profiles profile.Store,
	blobs backend.BlobStore,
	locator backend.DeviceLocator,
	onSuccess SignUpSuccessFunc,
	logger *zap.Logger,
) *SignUpForm {
	return &SignUpForm{
		auth:      auth,
		profiles:  profiles,
		blobs:     blobs,
		locator:   locator,
		onSuccess: onSuccess,
		logger:    logger,
	}
}

// Submit validates the input, creates the identity, and writes the profile.
// On success the callback fires with the new identity and profile; on any
// failure Submit returns the error and the callback does not fire.
func (f *SignUpForm) Submit(ctx context.Context, in SignUpInput) error {
	if err := f.validate(in); err != nil {
		return err
	}
	if err := f.guard.acquire(); err != nil {
		return err
	}
	defer f.guard.release()

	coords := f.locate(ctx)

	id, err := f.auth.CreateIdentity(ctx, in.Email, in.Password)
	if err != nil {
		return err
	}

	imageURL := ""
	if len(in.ProfileImage) > 0 {
		small, err := ShrinkImage(in.ProfileImage)
		if err != nil {
			return fmt.Errorf("profile image: %w", err)
		}
		imageURL, err = f.blobs.Upload(ctx, "profiles/"+id.ID.String()+"/avatar.jpg", small)
		if err != nil {
			return fmt.Errorf("upload profile image: %w", err)
		}
	}

	p := &profile.Profile{
		OwnerID:         id.ID,
		FirstName:       strings.TrimSpace(in.FirstName),
		Email:           in.Email,
		City:            strings.TrimSpace(in.City),
		State:           strings.TrimSpace(in.State),
		Coordinates:     coords,
		ProfileImageURL: imageURL,
		Classification:  profile.Unclassified(),
	}
	if err := f.profiles.Write(ctx, p); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}

	f.onSuccess(id, p)
	return nil
}

func (f *SignUpForm) validate(in SignUpInput) error {
	for field, v := range map[string]string{
		"first name": in.FirstName,
		"email":      in.Email,
		"password":   in.Password,
		"city":       in.City,
		"state":      in.State,
	} {
		if err := requireNonEmpty(field, v); err != nil {
			return err
		}
	}
	if len(in.Password) < MinPasswordLength {
		return &ValidationError{Field: "password", Reason: fmt.Sprintf("must be at least %d characters", MinPasswordLength)}
	}
	return nil
}

// locate asks the device for its position. Denied or unsupported devices
// yield nil coordinates; the sign-up proceeds either way.
func (f *SignUpForm) locate(ctx context.Context) *backend.Coordinates {
	if f.locator == nil {
		return nil
	}
	coords, err := f.locator.Locate(ctx)
	if err != nil {
		if errors.Is(err, backend.ErrPermissionDenied) || errors.Is(err, backend.ErrUnsupported) {
			f.logger.Debug("geolocation unavailable", zap.Error(err))
		} else {
			f.logger.Warn("geolocation failed", zap.Error(err))
		}
		return nil
	}
	return &coords
}
