// Package remote adapts the pkg/client SDK to the backend contracts the
// session controller and forms consume. The SDK stays self-contained with
// its own wire types; this package converts between those and the domain
// records, and maps the SDK's sentinels onto the backend taxonomy.
package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wallaby-market/wallaby/internal/backend"
	"github.com/wallaby-market/wallaby/internal/business"
	"github.com/wallaby-market/wallaby/internal/profile"
	"github.com/wallaby-market/wallaby/pkg/client"
)

// Backend wraps a client.Client as the backend.IdentityProvider and
// backend.BlobStore, and hands out record-store views over the same session.
type Backend struct {
	c *client.Client
}

// New wraps c.
func New(c *client.Client) *Backend {
	return &Backend{c: c}
}

// Identity returns the signed-in identity, or nil.
func (b *Backend) Identity() *backend.Identity {
	return identityFrom(b.c.Identity())
}

// CreateIdentity registers a new account and signs the session in.
func (b *Backend) CreateIdentity(ctx context.Context, email, secret string) (*backend.Identity, error) {
	id, err := b.c.CreateIdentity(ctx, email, secret)
	if err != nil {
		return nil, mapErr(err)
	}
	return identityFrom(id), nil
}

// Authenticate verifies credentials and signs the session in.
func (b *Backend) Authenticate(ctx context.Context, email, secret string) (*backend.Identity, error) {
	id, err := b.c.Authenticate(ctx, email, secret)
	if err != nil {
		return nil, mapErr(err)
	}
	return identityFrom(id), nil
}

// SignOut discards the session.
func (b *Backend) SignOut(ctx context.Context) error {
	return b.c.SignOut(ctx)
}

// ObserveAuthStatus registers an auth-status observer.
func (b *Backend) ObserveAuthStatus(ctx context.Context, fn backend.AuthStatusFunc) (func(), error) {
	return b.c.ObserveAuthStatus(ctx, func(id *client.Identity) {
		fn(identityFrom(id))
	})
}

// Upload stores raw bytes in the service's blob store.
func (b *Backend) Upload(ctx context.Context, path string, data []byte) (string, error) {
	url, err := b.c.Upload(ctx, path, data)
	if err != nil {
		return "", mapErr(err)
	}
	return url, nil
}

// Profiles returns the session-scoped profile store view.
func (b *Backend) Profiles() profile.Store {
	return profileStore{c: b.c}
}

// Businesses returns the session-scoped business store view.
func (b *Backend) Businesses() business.Store {
	return businessStore{c: b.c}
}

// The service derives the record owner from the session token; the ownerID
// arguments exist only to satisfy the store contracts.

type profileStore struct {
	c *client.Client
}

func (s profileStore) Write(ctx context.Context, p *profile.Profile) error {
	wp := wireProfile(p)
	if err := s.c.WriteProfile(ctx, wp); err != nil {
		return mapErr(err)
	}
	p.CreatedAt, p.UpdatedAt = wp.CreatedAt, wp.UpdatedAt
	return nil
}

func (s profileStore) Merge(ctx context.Context, _ uuid.UUID, patch profile.Patch) error {
	wp := client.ProfilePatch{
		FirstName:       patch.FirstName,
		City:            patch.City,
		State:           patch.State,
		ProfileImageURL: patch.ProfileImageURL,
	}
	if patch.Classification != nil {
		if ut, ok := patch.Classification.UserType(); ok {
			val := string(ut)
			biz := ut == profile.UserTypeBusiness
			wp.UserType, wp.IsBusiness = &val, &biz
		} else {
			wp.ClearClassification = true
		}
	}
	return mapErr(s.c.MergeProfile(ctx, wp))
}

func (s profileStore) Read(ctx context.Context, _ uuid.UUID) (*profile.Profile, error) {
	wp, err := s.c.ReadProfile(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return domainProfile(wp)
}

type businessStore struct {
	c *client.Client
}

func (s businessStore) Write(ctx context.Context, bp *business.Profile) error {
	wp := &client.BusinessProfile{
		OwnerID:         bp.OwnerID,
		BusinessName:    bp.BusinessName,
		AboutBusiness:   bp.AboutBusiness,
		Location:        bp.Location,
		ProfileImageURL: bp.ProfileImageURL,
		CoverImageURL:   bp.CoverImageURL,
		IsActive:        bp.IsActive,
	}
	if err := s.c.WriteBusinessProfile(ctx, wp); err != nil {
		return mapErr(err)
	}
	bp.CreatedAt, bp.UpdatedAt = wp.CreatedAt, wp.UpdatedAt
	return nil
}

func (s businessStore) Read(ctx context.Context, _ uuid.UUID) (*business.Profile, error) {
	wp, err := s.c.ReadBusinessProfile(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return &business.Profile{
		OwnerID:         wp.OwnerID,
		BusinessName:    wp.BusinessName,
		AboutBusiness:   wp.AboutBusiness,
		Location:        wp.Location,
		ProfileImageURL: wp.ProfileImageURL,
		CoverImageURL:   wp.CoverImageURL,
		IsActive:        wp.IsActive,
		CreatedAt:       wp.CreatedAt,
		UpdatedAt:       wp.UpdatedAt,
	}, nil
}

func identityFrom(id *client.Identity) *backend.Identity {
	if id == nil {
		return nil
	}
	return &backend.Identity{ID: id.ID, Email: id.Email}
}

// wireProfile converts a domain profile to the SDK's wire shape.
func wireProfile(p *profile.Profile) *client.Profile {
	wp := &client.Profile{
		OwnerID:         p.OwnerID,
		FirstName:       p.FirstName,
		Email:           p.Email,
		City:            p.City,
		State:           p.State,
		ProfileImageURL: p.ProfileImageURL,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if p.Coordinates != nil {
		wp.Coordinates = &client.Coordinates{Lat: p.Coordinates.Lat, Lng: p.Coordinates.Lng}
	}
	if ut, ok := p.Classification.UserType(); ok {
		val := string(ut)
		biz := ut == profile.UserTypeBusiness
		wp.UserType, wp.IsBusiness = &val, &biz
	}
	return wp
}

// domainProfile converts the SDK's wire shape to a domain profile,
// rejecting half-set classification pairs.
func domainProfile(wp *client.Profile) (*profile.Profile, error) {
	cls, err := profile.ClassificationFromFields(wp.UserType, wp.IsBusiness)
	if err != nil {
		return nil, fmt.Errorf("profile record: %w", err)
	}
	p := &profile.Profile{
		OwnerID:         wp.OwnerID,
		FirstName:       wp.FirstName,
		Email:           wp.Email,
		City:            wp.City,
		State:           wp.State,
		ProfileImageURL: wp.ProfileImageURL,
		Classification:  cls,
		CreatedAt:       wp.CreatedAt,
		UpdatedAt:       wp.UpdatedAt,
	}
	if wp.Coordinates != nil {
		p.Coordinates = &backend.Coordinates{Lat: wp.Coordinates.Lat, Lng: wp.Coordinates.Lng}
	}
	return p, nil
}

// mapErr translates the SDK's sentinels onto the backend taxonomy the forms
// and controller branch on.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, client.ErrEmailInUse):
		return backend.ErrEmailInUse
	case errors.Is(err, client.ErrInvalidEmail):
		return backend.ErrInvalidEmail
	case errors.Is(err, client.ErrWeakSecret):
		return backend.ErrWeakSecret
	case errors.Is(err, client.ErrInvalidCredentials):
		return backend.ErrInvalidCredentials
	case errors.Is(err, client.ErrNotFound):
		return backend.ErrNotFound
	}
	return err
}
