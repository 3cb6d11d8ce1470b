// Package session implements the account-screen state machine. The
// controller owns the signed-in identity, the fetched profile, and the
// onboarding sub-state, and decides which of the four screens a visitor
// sees: anonymous, loading, authenticated-incomplete, or
// authenticated-complete.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/wallaby-market/wallaby/internal/backend"
	"github.com/wallaby-market/wallaby/internal/business"
	"github.com/wallaby-market/wallaby/internal/profile"
	"go.uber.org/zap"
)

// State is the derived session state.
type State string

const (
	// StateAnonymous — no identity. Initial, and re-entered after sign-out.
	StateAnonymous State = "anonymous"
	// StateLoading — identity observed, profile fetch in flight.
	StateLoading State = "loading"
	// StateIncomplete — identity present, userType unset.
	StateIncomplete State = "authenticated_incomplete"
	// StateComplete — identity present, userType set.
	StateComplete State = "authenticated_complete"
)

// ErrClosed is returned by operations on a controller whose lifetime ended.
var ErrClosed = errors.New("session controller closed")

// ErrNotOnboarding is returned when an onboarding completion arrives outside
// the authenticated-incomplete state.
var ErrNotOnboarding = errors.New("no onboarding in progress")

// Snapshot is the read-only view the controller exposes to screens. Profile
// is a copy; mutating it has no effect on the controller.
type Snapshot struct {
	State          State
	Identity       *backend.Identity
	Profile        *profile.Profile
	OnboardingOpen bool
}

// ShowBusinessDashboard reports whether the account screen renders the
// business dashboard card instead of the seller-signup card.
func (s Snapshot) ShowBusinessDashboard() bool {
	if s.Profile == nil {
		return false
	}
	ut, ok := s.Profile.Classification.UserType()
	return ok && ut == profile.UserTypeBusiness
}

// Controller drives the session state machine. All transitions run under one
// mutex; remote-call results are applied only if the controller is still on
// the generation that started them, so a result landing after sign-out or
// Close is discarded rather than applied.
type Controller struct {
	auth     backend.IdentityProvider
	profiles profile.Store
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu             sync.Mutex
	state          State
	identity       *backend.Identity
	profile        *profile.Profile
	onboardingOpen bool
	gen            int // bumped on every auth change; stale fetches check it
	closed         bool
	unobserve      func()
}

// NewController creates a Controller in the anonymous state. Call Start to
// subscribe to auth-status changes.
func NewController(auth backend.IdentityProvider, profiles profile.Store, logger *zap.Logger) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		auth:     auth,
		profiles: profiles,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		state:    StateAnonymous,
	}
}

// Start subscribes to the provider's auth-status feed. The first
// notification arrives before Start returns and carries either no identity
// (anonymous) or the current identity (loading, then a profile fetch).
func (c *Controller) Start() error {
	unobserve, err := c.auth.ObserveAuthStatus(c.ctx, c.handleAuthStatus)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.unobserve = unobserve
	c.mu.Unlock()
	return nil
}

// Close ends the controller's lifetime. Outstanding remote results are
// discarded, never applied.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	unobserve := c.unobserve
	c.mu.Unlock()

	c.cancel()
	if unobserve != nil {
		unobserve()
	}
}

// Snapshot returns the current view of the session.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{State: c.state, OnboardingOpen: c.onboardingOpen}
	if c.identity != nil {
		id := *c.identity
		snap.Identity = &id
	}
	snap.Profile = cloneProfile(c.profile)
	return snap
}

// cloneProfile copies a profile including its pointer fields, so the copy
// shares no storage with the original.
func cloneProfile(p *profile.Profile) *profile.Profile {
	if p == nil {
		return nil
	}
	cp := *p
	if p.Coordinates != nil {
		coords := *p.Coordinates
		cp.Coordinates = &coords
	}
	return &cp
}

// handleAuthStatus is the auth-status observer. A nil identity clears the
// session; a present one enters loading and kicks off the profile fetch.
func (c *Controller) handleAuthStatus(id *backend.Identity) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.gen++
	gen := c.gen

	if id == nil {
		c.state = StateAnonymous
		c.identity = nil
		c.profile = nil
		c.onboardingOpen = false
		c.mu.Unlock()
		return
	}

	// Sign-up and login report the profile themselves; skip the redundant
	// fetch when the observed identity is the one already loaded.
	if c.identity != nil && c.identity.ID == id.ID && c.state != StateLoading {
		c.mu.Unlock()
		return
	}

	ident := *id
	c.state = StateLoading
	c.identity = &ident
	c.profile = nil
	c.onboardingOpen = false
	c.mu.Unlock()

	go c.fetchProfile(ident, gen)
}

// fetchProfile resolves loading into incomplete or complete. A read failure
// is fail-open: the visitor lands on authenticated-incomplete with an empty
// profile instead of being locked out by a transient error.
func (c *Controller) fetchProfile(ident backend.Identity, gen int) {
	p, err := c.profiles.Read(c.ctx, ident.ID)
	if err != nil && !errors.Is(err, backend.ErrNotFound) {
		c.logger.Warn("profile fetch failed, continuing with empty profile",
			zap.String("id", ident.ID.String()),
			zap.Error(err),
		)
	}
	if p == nil {
		p = &profile.Profile{OwnerID: ident.ID, Email: ident.Email}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.gen != gen || c.ctx.Err() != nil {
		return // session moved on while the fetch was in flight
	}
	c.profile = p
	if p.Classification.IsSet() {
		c.state = StateComplete
	} else {
		c.state = StateIncomplete
	}
}

// OnSignUpSuccess is the sign-up form's success callback. The freshly
// written profile is adopted directly and the onboarding modal opens,
// bypassing the loading fetch.
func (c *Controller) OnSignUpSuccess(id *backend.Identity, p *profile.Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.gen++
	ident := *id
	c.identity = &ident
	c.profile = cloneProfile(p)
	c.state = StateIncomplete
	c.onboardingOpen = true
}

// OnLoginSuccess is the login form's success callback. The profile read
// happened inside the form's single logical operation; the controller only
// branches on it. No modal auto-opens for incomplete profiles.
func (c *Controller) OnLoginSuccess(id *backend.Identity, p *profile.Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.gen++
	ident := *id
	c.identity = &ident
	c.onboardingOpen = false
	if p == nil {
		p = &profile.Profile{OwnerID: ident.ID, Email: ident.Email}
	}
	c.profile = cloneProfile(p)
	if p.Classification.IsSet() {
		c.state = StateComplete
	} else {
		c.state = StateIncomplete
	}
}

// OpenOnboarding opens the business-onboarding modal. Valid only while
// authenticated-incomplete; once userType is set the prompt never reopens
// automatically, and this refuses to reopen it manually too.
func (c *Controller) OpenOnboarding() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.state != StateIncomplete {
		return ErrNotOnboarding
	}
	c.onboardingOpen = true
	return nil
}

// CloseOnboarding dismisses the modal without completing it.
func (c *Controller) CloseOnboarding() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onboardingOpen = false
}

// OnBusinessComplete is the business-profile form's success callback. The
// written fields merge into the local profile and the session completes.
func (c *Controller) OnBusinessComplete(bp *business.Profile) error {
	return c.completeOnboarding(profile.AsBusiness(), bp.ProfileImageURL)
}

// OnCustomerComplete is the "here to buy" success callback.
func (c *Controller) OnCustomerComplete() error {
	return c.completeOnboarding(profile.AsCustomer(), "")
}

func (c *Controller) completeOnboarding(cls profile.Classification, imageURL string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.state != StateIncomplete || c.identity == nil {
		return ErrNotOnboarding
	}
	if c.profile == nil {
		c.profile = &profile.Profile{OwnerID: c.identity.ID, Email: c.identity.Email}
	}
	c.profile.Classification = cls
	if imageURL != "" {
		c.profile.ProfileImageURL = imageURL
	}
	c.state = StateComplete
	c.onboardingOpen = false
	return nil
}

// SignOut clears the session. The provider's status broadcast brings every
// other observer back to anonymous as well.
func (c *Controller) SignOut(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.mu.Unlock()

	if err := c.auth.SignOut(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.state = StateAnonymous
	c.identity = nil
	c.profile = nil
	c.onboardingOpen = false
	return nil
}
