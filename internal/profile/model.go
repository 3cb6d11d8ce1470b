package profile

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wallaby-market/wallaby/internal/backend"
)

// UserType classifies an account after onboarding.
type UserType string

const (
	UserTypeCustomer UserType = "customer"
	UserTypeBusiness UserType = "business"
)

// Classification carries the userType/businessFlag pair. The two are set
// together or not at all; the zero value is unclassified. Construct set
// values only through AsCustomer and AsBusiness.
type Classification struct {
	userType UserType
}

// Unclassified returns the unset classification.
func Unclassified() Classification { return Classification{} }

// AsCustomer returns the "here to buy" classification.
func AsCustomer() Classification { return Classification{userType: UserTypeCustomer} }

// AsBusiness returns the seller classification.
func AsBusiness() Classification { return Classification{userType: UserTypeBusiness} }

// IsSet reports whether onboarding has completed.
func (c Classification) IsSet() bool { return c.userType != "" }

// UserType returns the user type, and false when unclassified.
func (c Classification) UserType() (UserType, bool) {
	return c.userType, c.userType != ""
}

// BusinessFlag returns the business flag, and false when unclassified.
func (c Classification) BusinessFlag() (bool, bool) {
	if c.userType == "" {
		return false, false
	}
	return c.userType == UserTypeBusiness, true
}

// Profile is the user-owned record tracking classification and
// contact/location info. Exactly one identity owns each profile.
type Profile struct {
	OwnerID         uuid.UUID
	FirstName       string
	Email           string
	City            string
	State           string
	Coordinates     *backend.Coordinates
	ProfileImageURL string
	Classification  Classification
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// profileJSON is the wire shape. userType and isBusiness travel as two
// nullable fields, matching the stored record.
type profileJSON struct {
	OwnerID         uuid.UUID            `json:"owner_id"`
	FirstName       string               `json:"first_name"`
	Email           string               `json:"email"`
	City            string               `json:"city"`
	State           string               `json:"state"`
	Coordinates     *backend.Coordinates `json:"coordinates"`
	ProfileImageURL string               `json:"profile_image_url,omitempty"`
	UserType        *string              `json:"user_type"`
	IsBusiness      *bool                `json:"is_business"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// MarshalJSON encodes the classification as its two nullable wire fields.
func (p Profile) MarshalJSON() ([]byte, error) {
	out := profileJSON{
		OwnerID:         p.OwnerID,
		FirstName:       p.FirstName,
		Email:           p.Email,
		City:            p.City,
		State:           p.State,
		Coordinates:     p.Coordinates,
		ProfileImageURL: p.ProfileImageURL,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if ut, ok := p.Classification.UserType(); ok {
		s := string(ut)
		out.UserType = &s
		biz := ut == UserTypeBusiness
		out.IsBusiness = &biz
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the wire shape, rejecting records where only one of
// the classification fields is set.
func (p *Profile) UnmarshalJSON(data []byte) error {
	var in profileJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	cls, err := ClassificationFromFields(in.UserType, in.IsBusiness)
	if err != nil {
		return err
	}
	*p = Profile{
		OwnerID:         in.OwnerID,
		FirstName:       in.FirstName,
		Email:           in.Email,
		City:            in.City,
		State:           in.State,
		Coordinates:     in.Coordinates,
		ProfileImageURL: in.ProfileImageURL,
		Classification:  cls,
		CreatedAt:       in.CreatedAt,
		UpdatedAt:       in.UpdatedAt,
	}
	return nil
}

// ClassificationFromFields rebuilds a Classification from the stored pair,
// rejecting records where only one side is set.
func ClassificationFromFields(userType *string, isBusiness *bool) (Classification, error) {
	if (userType == nil) != (isBusiness == nil) {
		return Classification{}, fmt.Errorf("classification fields must be set together")
	}
	if userType == nil {
		return Unclassified(), nil
	}
	switch UserType(*userType) {
	case UserTypeCustomer:
		if *isBusiness {
			return Classification{}, fmt.Errorf("customer profile flagged as business")
		}
		return AsCustomer(), nil
	case UserTypeBusiness:
		if !*isBusiness {
			return Classification{}, fmt.Errorf("business profile not flagged as business")
		}
		return AsBusiness(), nil
	default:
		return Classification{}, fmt.Errorf("unknown user type %q", *userType)
	}
}
