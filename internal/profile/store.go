package profile

import (
	"context"

	"github.com/google/uuid"
)

// Patch carries the fields of a partial profile update. Nil fields are left
// untouched by Merge.
type Patch struct {
	FirstName       *string
	City            *string
	State           *string
	ProfileImageURL *string
	Classification  *Classification
}

// Store is the profile document store. Write is a full replace keyed by
// owner; Merge applies a partial update to an existing record.
type Store interface {
	Write(ctx context.Context, p *Profile) error
	Merge(ctx context.Context, ownerID uuid.UUID, patch Patch) error
	Read(ctx context.Context, ownerID uuid.UUID) (*Profile, error)
}
