// Package identity implements the Wallaby identity provider: email/password
// accounts, session tokens, and the push-style auth-status feed the session
// controller subscribes to.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sync"

	"github.com/google/uuid"
	"github.com/wallaby-market/wallaby/internal/backend"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MinSecretLength is the weakest secret the provider accepts.
const MinSecretLength = 6

// accountRepo is the storage interface consumed by Provider.
type accountRepo interface {
	Create(ctx context.Context, a *Account) error
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
}

// Provider implements backend.IdentityProvider. It tracks the signed-in
// identity and notifies observers on every change, firing each new observer
// immediately with the current status.
type Provider struct {
	repo   accountRepo
	logger *zap.Logger

	mu        sync.Mutex
	current   *backend.Identity
	observers map[int]backend.AuthStatusFunc
	nextObs   int
}

// NewProvider creates a Provider.
func NewProvider(repo accountRepo, logger *zap.Logger) *Provider {
	return &Provider{
		repo:      repo,
		logger:    logger,
		observers: make(map[int]backend.AuthStatusFunc),
	}
}

// CreateIdentity registers a new account and signs it in.
func (p *Provider) CreateIdentity(ctx context.Context, email, secret string) (*backend.Identity, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, backend.ErrInvalidEmail
	}
	if len(secret) < MinSecretLength {
		return nil, backend.ErrWeakSecret
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash secret: %w", err)
	}

	a := &Account{Email: email, SecretHash: string(hash)}
	if err := p.repo.Create(ctx, a); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, backend.ErrEmailInUse
		}
		return nil, fmt.Errorf("create identity: %w", err)
	}

	id := &backend.Identity{ID: a.ID, Email: a.Email}
	p.setCurrent(id)
	p.logger.Info("identity created", zap.String("id", a.ID.String()))
	return id, nil
}

// Authenticate verifies credentials and signs the account in.
func (p *Provider) Authenticate(ctx context.Context, email, secret string) (*backend.Identity, error) {
	a, err := p.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, backend.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.SecretHash), []byte(secret)); err != nil {
		return nil, backend.ErrInvalidCredentials
	}

	id := &backend.Identity{ID: a.ID, Email: a.Email}
	p.setCurrent(id)
	return id, nil
}

// SignOut clears the signed-in identity and notifies observers.
func (p *Provider) SignOut(_ context.Context) error {
	p.setCurrent(nil)
	return nil
}

// ObserveAuthStatus registers an observer. The callback fires synchronously
// with the current status before ObserveAuthStatus returns, then on every
// sign-in and sign-out until cancel is called or ctx is done.
func (p *Provider) ObserveAuthStatus(ctx context.Context, fn backend.AuthStatusFunc) (func(), error) {
	p.mu.Lock()
	key := p.nextObs
	p.nextObs++
	p.observers[key] = fn
	current := p.current
	p.mu.Unlock()

	fn(current)

	cancel := func() {
		p.mu.Lock()
		delete(p.observers, key)
		p.mu.Unlock()
	}
	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			cancel()
		}()
	}
	return cancel, nil
}

// Resolve returns the identity for an account id, for token-authenticated
// requests that need to re-establish who is calling.
func (p *Provider) Resolve(ctx context.Context, id uuid.UUID) (*backend.Identity, error) {
	a, err := p.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &backend.Identity{ID: a.ID, Email: a.Email}, nil
}

func (p *Provider) setCurrent(id *backend.Identity) {
	p.mu.Lock()
	p.current = id
	fns := make([]backend.AuthStatusFunc, 0, len(p.observers))
	for _, fn := range p.observers {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(id)
	}
}
