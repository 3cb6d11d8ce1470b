package forms_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"strings"
	"testing"
	"time"

	"github.com/wallaby-market/wallaby/internal/backend"
	"github.com/wallaby-market/wallaby/internal/forms"
	"github.com/wallaby-market/wallaby/internal/geo"
	"github.com/wallaby-market/wallaby/internal/profile"
	"go.uber.org/zap"
)

func validSignUp() forms.SignUpInput {
	return forms.SignUpInput{
		FirstName: "Asha",
		Email:     "asha@example.com",
		Password:  "secret123",
		City:      "Lucknow",
		State:     "Uttar Pradesh",
	}
}

func TestSignUp_success(t *testing.T) {
	auth := &stubAuth{}
	profiles := newStubProfiles()

	var gotID *backend.Identity
	var gotProfile *profile.Profile
	form := forms.NewSignUpForm(auth, profiles, newStubBlobs(), geo.NewStaticLocator(26.8467, 80.9462),
		func(id *backend.Identity, p *profile.Profile) { gotID, gotProfile = id, p },
		zap.NewNop())

	if err := form.Submit(context.Background(), validSignUp()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if gotID == nil || gotProfile == nil {
		t.Fatal("success callback did not fire")
	}
	if gotProfile.FirstName != "Asha" || gotProfile.City != "Lucknow" {
		t.Errorf("profile fields not carried: %+v", gotProfile)
	}
	if gotProfile.Coordinates == nil || gotProfile.Coordinates.Lat != 26.8467 {
		t.Errorf("granted geolocation should land in the profile: %+v", gotProfile.Coordinates)
	}
	if gotProfile.Classification.IsSet() {
		t.Error("sign-up must leave the classification unset")
	}
	if profiles.writes != 1 {
		t.Errorf("expected one profile write, got %d", profiles.writes)
	}
}

func TestSignUp_validationBeforeRemoteCall(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*forms.SignUpInput)
	}{
		{"missing first name", func(in *forms.SignUpInput) { in.FirstName = "" }},
		{"missing email", func(in *forms.SignUpInput) { in.Email = "" }},
		{"blank city", func(in *forms.SignUpInput) { in.City = "   " }},
		{"missing state", func(in *forms.SignUpInput) { in.State = "" }},
		{"short password", func(in *forms.SignUpInput) { in.Password = "abc" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			auth := &stubAuth{}
			form := forms.NewSignUpForm(auth, newStubProfiles(), newStubBlobs(), nil,
				func(*backend.Identity, *profile.Profile) { t.Error("callback fired on invalid input") },
				zap.NewNop())

			in := validSignUp()
			tc.mutate(&in)

			err := form.Submit(context.Background(), in)
			var vErr *forms.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if auth.calls != 0 {
				t.Error("validation failures must not reach the identity provider")
			}
		})
	}
}

func TestSignUp_geolocationUnavailable(t *testing.T) {
	cases := []struct {
		name    string
		locator backend.DeviceLocator
	}{
		{"permission denied", geo.DeniedLocator{}},
		{"device unsupported", geo.UnsupportedLocator{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var gotProfile *profile.Profile
			form := forms.NewSignUpForm(&stubAuth{}, newStubProfiles(), newStubBlobs(), tc.locator,
				func(_ *backend.Identity, p *profile.Profile) { gotProfile = p },
				zap.NewNop())

			if err := form.Submit(context.Background(), validSignUp()); err != nil {
				t.Fatalf("Submit: %v", err)
			}
			if gotProfile == nil {
				t.Fatal("unavailable geolocation must not block the sign-up")
			}
			if gotProfile.Coordinates != nil {
				t.Error("unavailable geolocation should leave coordinates empty")
			}
		})
	}
}

func TestSignUp_emailInUse(t *testing.T) {
	auth := &stubAuth{createErr: backend.ErrEmailInUse}
	profiles := newStubProfiles()
	form := forms.NewSignUpForm(auth, profiles, newStubBlobs(), nil,
		func(*backend.Identity, *profile.Profile) { t.Error("callback fired on failure") },
		zap.NewNop())

	err := form.Submit(context.Background(), validSignUp())
	if !errors.Is(err, backend.ErrEmailInUse) {
		t.Errorf("expected ErrEmailInUse, got %v", err)
	}
	if profiles.writes != 0 {
		t.Error("no profile may be written when identity creation fails")
	}
}

func TestSignUp_imageShrunkAndUploaded(t *testing.T) {
	blobs := newStubBlobs()
	form := forms.NewSignUpForm(&stubAuth{}, newStubProfiles(), blobs, nil,
		func(*backend.Identity, *profile.Profile) {},
		zap.NewNop())

	in := validSignUp()
	in.ProfileImage = testPNG(t, 800, 400)
	if err := form.Submit(context.Background(), in); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if len(blobs.uploads) != 1 {
		t.Fatalf("expected one upload, got %d", len(blobs.uploads))
	}
	for path, data := range blobs.uploads {
		if !strings.HasSuffix(path, "/avatar.jpg") {
			t.Errorf("unexpected upload path %s", path)
		}
		cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("decode uploaded image: %v", err)
		}
		if format != "jpeg" {
			t.Errorf("expected jpeg upload, got %s", format)
		}
		if cfg.Width > 300 || cfg.Height > 300 {
			t.Errorf("image not downsampled: %dx%d", cfg.Width, cfg.Height)
		}
	}
}

func TestSignUp_uploadFailureAborts(t *testing.T) {
	blobs := newStubBlobs()
	blobs.uploadErr = errors.New("blob store down")
	profiles := newStubProfiles()
	form := forms.NewSignUpForm(&stubAuth{}, profiles, blobs, nil,
		func(*backend.Identity, *profile.Profile) { t.Error("callback fired on failure") },
		zap.NewNop())

	in := validSignUp()
	in.ProfileImage = testPNG(t, 100, 100)
	if err := form.Submit(context.Background(), in); err == nil {
		t.Fatal("expected upload failure to abort the submit")
	}
	if profiles.writes != 0 {
		t.Error("no profile may be written after a failed upload")
	}
}

func TestSignUp_busySerializesAttempts(t *testing.T) {
	auth := &stubAuth{gate: make(chan struct{})}
	form := forms.NewSignUpForm(auth, newStubProfiles(), newStubBlobs(), nil,
		func(*backend.Identity, *profile.Profile) {},
		zap.NewNop())

	first := make(chan error, 1)
	go func() { first <- form.Submit(context.Background(), validSignUp()) }()

	// Wait for the first attempt to park inside the provider call.
	deadline := time.Now().Add(2 * time.Second)
	for {
		auth.mu.Lock()
		started := auth.calls > 0
		auth.mu.Unlock()
		if started {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("first submit never reached the provider")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := form.Submit(context.Background(), validSignUp()); !errors.Is(err, forms.ErrBusy) {
		t.Errorf("expected ErrBusy for the overlapping attempt, got %v", err)
	}

	close(auth.gate)
	if err := <-first; err != nil {
		t.Fatalf("first submit: %v", err)
	}
}
