package forms

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/wallaby-market/wallaby/internal/backend"
	"github.com/wallaby-market/wallaby/internal/business"
	"github.com/wallaby-market/wallaby/internal/profile"
	"go.uber.org/zap"
)

// BusinessInput is the data the business-profile modal collects.
type BusinessInput struct {
	BusinessName  string
	AboutBusiness string
	Location      string
	ProfileImage  []byte // optional
	CoverImage    []byte // optional
}

// BusinessSuccessFunc receives the business profile as written.
type BusinessSuccessFunc func(*business.Profile)

// BuyerSuccessFunc fires after the "here to buy" classification is written.
type BuyerSuccessFunc func()

// BusinessProfileForm completes onboarding. Continue takes the seller path:
// image uploads first, then the business record, then the profile
// classification — an upload failure aborts the whole completion with
// nothing written. HereToBuy takes the customer path.
type BusinessProfileForm struct {
	profiles   profile.Store
	businesses business.Store
	blobs      backend.BlobStore
	onContinue BusinessSuccessFunc
	onBuyer    BuyerSuccessFunc
	logger     *zap.Logger
	guard      guard
}

// NewBusinessProfileForm creates a BusinessProfileForm.
func NewBusinessProfileForm(
	profiles profile.Store,
	businesses business.Store,
	blobs backend.BlobStore,
	onContinue BusinessSuccessFunc,
	onBuyer BuyerSuccessFunc,
	logger *zap.Logger,
) *BusinessProfileForm {
	return &BusinessProfileForm{
		profiles:   profiles,
		businesses: businesses,
		blobs:      blobs,
		onContinue: onContinue,
		onBuyer:    onBuyer,
		logger:     logger,
	}
}

// Continue submits the seller path for the given owner. The profile
// classification pair (userType=business, businessFlag=true) is written in
// one merge so the record can never carry half of it.
func (f *BusinessProfileForm) Continue(ctx context.Context, ownerID uuid.UUID, in BusinessInput) error {
	if err := requireNonEmpty("business name", in.BusinessName); err != nil {
		return err
	}
	if err := f.guard.acquire(); err != nil {
		return err
	}
	defer f.guard.release()

	profileURL, err := f.uploadImage(ctx, ownerID, "storefront.jpg", in.ProfileImage)
	if err != nil {
		return fmt.Errorf("upload profile image: %w", err)
	}
	coverURL, err := f.uploadImage(ctx, ownerID, "cover.jpg", in.CoverImage)
	if err != nil {
		return fmt.Errorf("upload cover image: %w", err)
	}

	bp := &business.Profile{
		OwnerID:         ownerID,
		BusinessName:    strings.TrimSpace(in.BusinessName),
		AboutBusiness:   strings.TrimSpace(in.AboutBusiness),
		Location:        strings.TrimSpace(in.Location),
		ProfileImageURL: profileURL,
		CoverImageURL:   coverURL,
		IsActive:        true,
	}
	if err := f.businesses.Write(ctx, bp); err != nil {
		return fmt.Errorf("write business profile: %w", err)
	}

	cls := profile.AsBusiness()
	if err := f.profiles.Merge(ctx, ownerID, profile.Patch{Classification: &cls}); err != nil {
		return fmt.Errorf("classify profile: %w", err)
	}

	f.onContinue(bp)
	return nil
}

// HereToBuy submits the customer path: a single merge setting
// userType=customer, businessFlag=false.
func (f *BusinessProfileForm) HereToBuy(ctx context.Context, ownerID uuid.UUID) error {
	if err := f.guard.acquire(); err != nil {
		return err
	}
	defer f.guard.release()

	cls := profile.AsCustomer()
	if err := f.profiles.Merge(ctx, ownerID, profile.Patch{Classification: &cls}); err != nil {
		return fmt.Errorf("classify profile: %w", err)
	}

	f.onBuyer()
	return nil
}

// uploadImage shrinks and uploads one optional image, returning its URL or
// "" when no image was provided.
func (f *BusinessProfileForm) uploadImage(ctx context.Context, ownerID uuid.UUID, name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	small, err := ShrinkImage(data)
	if err != nil {
		return "", err
	}
	return f.blobs.Upload(ctx, "businesses/"+ownerID.String()+"/"+name, small)
}
