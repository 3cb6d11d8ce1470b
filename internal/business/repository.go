package business

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wallaby-market/wallaby/internal/backend"
)

// Repository implements Store against PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a Repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Write creates or overwrites the owner's business profile.
func (r *Repository) Write(ctx context.Context, p *Profile) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	q := `
		INSERT INTO business_profiles (owner_id, business_name, about_business,
			location, profile_image_url, cover_image_url, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (owner_id) DO UPDATE SET
			business_name = EXCLUDED.business_name,
			about_business = EXCLUDED.about_business,
			location = EXCLUDED.location,
			profile_image_url = EXCLUDED.profile_image_url,
			cover_image_url = EXCLUDED.cover_image_url,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at`
	_, err := r.db.Exec(ctx, q,
		p.OwnerID, p.BusinessName, p.AboutBusiness, p.Location,
		p.ProfileImageURL, p.CoverImageURL, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("write business profile: %w", err)
	}
	return nil
}

// Read retrieves the owner's business profile, or backend.ErrNotFound.
func (r *Repository) Read(ctx context.Context, ownerID uuid.UUID) (*Profile, error) {
	q := `
		SELECT owner_id, business_name, about_business, location,
			COALESCE(profile_image_url, ''), COALESCE(cover_image_url, ''),
			is_active, created_at, updated_at
		FROM business_profiles WHERE owner_id = $1`

	var p Profile
	err := r.db.QueryRow(ctx, q, ownerID).Scan(
		&p.OwnerID, &p.BusinessName, &p.AboutBusiness, &p.Location,
		&p.ProfileImageURL, &p.CoverImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, backend.ErrNotFound
		}
		return nil, fmt.Errorf("read business profile: %w", err)
	}
	return &p, nil
}
