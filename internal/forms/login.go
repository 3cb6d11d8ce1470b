package forms

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wallaby-market/wallaby/internal/backend"
	"github.com/wallaby-market/wallaby/internal/profile"
	"go.uber.org/zap"
)

// LoginSuccessFunc receives the authenticated identity and its stored
// profile. The profile is nil when no record exists yet or the read failed;
// the session controller treats both as an incomplete profile.
type LoginSuccessFunc func(*backend.Identity, *profile.Profile)

// LoginForm authenticates existing credentials and reads the stored profile
// in the same logical operation.
type LoginForm struct {
	auth      backend.IdentityProvider
	profiles  profile.Store
	onSuccess LoginSuccessFunc
	logger    *zap.Logger
	guard     guard
}

// NewLoginForm creates a LoginForm.
func NewLoginForm(auth backend.IdentityProvider, profiles profile.Store, onSuccess LoginSuccessFunc, logger *zap.Logger) *LoginForm {
	return &LoginForm{auth: auth, profiles: profiles, onSuccess: onSuccess, logger: logger}
}

// Submit authenticates and fetches the profile. Authentication failure
// returns the error with no callback. A profile read failure after a
// successful authentication is fail-open: the callback fires with a nil
// profile instead of locking the visitor out.
func (f *LoginForm) Submit(ctx context.Context, email, password string) error {
	if err := requireNonEmpty("email", email); err != nil {
		return err
	}
	if err := requireNonEmpty("password", password); err != nil {
		return err
	}
	if err := f.guard.acquire(); err != nil {
		return err
	}
	defer f.guard.release()

	id, err := f.auth.Authenticate(ctx, email, password)
	if err != nil {
		return err
	}

	p := f.readProfile(ctx, id.ID)
	f.onSuccess(id, p)
	return nil
}

func (f *LoginForm) readProfile(ctx context.Context, ownerID uuid.UUID) *profile.Profile {
	p, err := f.profiles.Read(ctx, ownerID)
	if err != nil {
		if !errors.Is(err, backend.ErrNotFound) {
			f.logger.Warn("profile read after login failed, continuing without profile",
				zap.String("id", ownerID.String()),
				zap.Error(err),
			)
		}
		return nil
	}
	return p
}
