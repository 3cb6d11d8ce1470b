package profile

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

// Write stores the profile, replacing any existing record for the owner.
func (r *Repository) Write(ctx context.Context, p *Profile) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	var lat, lng *float64
	if p.Coordinates != nil {
		lat, lng = &p.Coordinates.Lat, &p.Coordinates.Lng
	}
	userType, isBusiness := classificationColumns(p.Classification)

	q := `
		INSERT INTO profiles (owner_id, first_name, email, city, state, lat, lng,
			profile_image_url, user_type, is_business, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (owner_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			email = EXCLUDED.email,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			profile_image_url = EXCLUDED.profile_image_url,
			user_type = EXCLUDED.user_type,
			is_business = EXCLUDED.is_business,
			updated_at = EXCLUDED.updated_at`
	_, err := r.db.Exec(ctx, q,
		p.OwnerID, p.FirstName, p.Email, p.City, p.State, lat, lng,
		nullIfEmpty(p.ProfileImageURL), userType, isBusiness, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}

// Merge applies the non-nil patch fields to an existing record. The
// classification pair is written in a single statement so the two columns
// can never diverge.
func (r *Repository) Merge(ctx context.Context, ownerID uuid.UUID, patch Patch) error {
	set := "updated_at = $2"
	args := []any{ownerID, time.Now().UTC()}

	add := func(col string, v any) {
		args = append(args, v)
		set += fmt.Sprintf(", %s = $%d", col, len(args))
	}
	if patch.FirstName != nil {
		add("first_name", *patch.FirstName)
	}
	if patch.City != nil {
		add("city", *patch.City)
	}
	if patch.State != nil {
		add("state", *patch.State)
	}
	if patch.ProfileImageURL != nil {
		add("profile_image_url", nullIfEmpty(*patch.ProfileImageURL))
	}
	if patch.Classification != nil {
		userType, isBusiness := classificationColumns(*patch.Classification)
		add("user_type", userType)
		add("is_business", isBusiness)
	}

	tag, err := r.db.Exec(ctx, "UPDATE profiles SET "+set+" WHERE owner_id = $1", args...)
	if err != nil {
		return fmt.Errorf("merge profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return backend.ErrNotFound
	}
	return nil
}

// Read retrieves the profile for the owner, or backend.ErrNotFound.
func (r *Repository) Read(ctx context.Context, ownerID uuid.UUID) (*Profile, error) {
	q := `
		SELECT owner_id, first_name, email, city, state, lat, lng,
			profile_image_url, user_type, is_business, created_at, updated_at
		FROM profiles WHERE owner_id = $1`

	var (
		p          Profile
		lat, lng   *float64
		imageURL   *string
		userType   *string
		isBusiness *bool
	)
	err := r.db.QueryRow(ctx, q, ownerID).Scan(
		&p.OwnerID, &p.FirstName, &p.Email, &p.City, &p.State, &lat, &lng,
		&imageURL, &userType, &isBusiness, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, backend.ErrNotFound
		}
		return nil, fmt.Errorf("read profile: %w", err)
	}

	if lat != nil && lng != nil {
		p.Coordinates = &backend.Coordinates{Lat: *lat, Lng: *lng}
	}
	if imageURL != nil {
		p.ProfileImageURL = *imageURL
	}
	cls, err := ClassificationFromFields(userType, isBusiness)
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", ownerID, err)
	}
	p.Classification = cls
	return &p, nil
}

// classificationColumns maps a Classification to its two nullable columns.
func classificationColumns(c Classification) (userType *string, isBusiness *bool) {
	ut, ok := c.UserType()
	if !ok {
		return nil, nil
	}
	s := string(ut)
	biz := ut == UserTypeBusiness
	return &s, &biz
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
