package remote_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/wallaby-market/wallaby/internal/backend"
	"github.com/wallaby-market/wallaby/internal/business"
	"github.com/wallaby-market/wallaby/internal/profile"
	"github.com/wallaby-market/wallaby/internal/remote"
	"github.com/wallaby-market/wallaby/pkg/client"
)

// fakeService echoes records back and remembers the last bodies it saw.
type fakeService struct {
	mu            sync.Mutex
	profileDoc    json.RawMessage
	businessDoc   json.RawMessage
	lastMergeBody json.RawMessage
	signupErr     string // error code; "" means success
	loginErr      string
}

func (f *fakeService) handler() http.Handler {
	auth := func(w http.ResponseWriter, code string) {
		if code != "" {
			status := http.StatusBadRequest
			switch code {
			case "email_in_use":
				status = http.StatusConflict
			case "invalid_credentials":
				status = http.StatusUnauthorized
			}
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]string{"error": code, "code": code})
			return
		}
		fmt.Fprintf(w, `{"identity":{"id":%q,"email":"asha@example.com"},"token":"tok"}`, uuid.New())
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/signup", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		auth(w, f.signupErr)
	})
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		auth(w, f.loginErr)
	})
	mux.HandleFunc("POST /api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/api/v1/account/profile", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		switch r.Method {
		case http.MethodPut:
			f.profileDoc, _ = io.ReadAll(r.Body)
			w.Write(f.profileDoc)
		case http.MethodPatch:
			f.lastMergeBody, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusNoContent)
		case http.MethodGet:
			if f.profileDoc == nil {
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
				return
			}
			w.Write(f.profileDoc)
		}
	})
	mux.HandleFunc("/api/v1/account/business-profile", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		switch r.Method {
		case http.MethodPut:
			f.businessDoc, _ = io.ReadAll(r.Body)
			w.Write(f.businessDoc)
		case http.MethodGet:
			if f.businessDoc == nil {
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
				return
			}
			w.Write(f.businessDoc)
		}
	})
	return mux
}

func newTestBackend(t *testing.T) (*remote.Backend, *fakeService) {
	t.Helper()
	svc := &fakeService{}
	srv := httptest.NewServer(svc.handler())
	t.Cleanup(srv.Close)
	c, err := client.New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return remote.New(c), svc
}

func TestProfileStore_roundTripsClassification(t *testing.T) {
	b, _ := newTestBackend(t)
	ctx := context.Background()
	ownerID := uuid.New()

	in := &profile.Profile{
		OwnerID:        ownerID,
		FirstName:      "Asha",
		City:           "Lucknow",
		Coordinates:    &backend.Coordinates{Lat: 26.8467, Lng: 80.9462},
		Classification: profile.AsBusiness(),
	}
	if err := b.Profiles().Write(ctx, in); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := b.Profiles().Read(ctx, ownerID)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if ut, set := got.Classification.UserType(); !set || ut != profile.UserTypeBusiness {
		t.Errorf("classification lost in round trip: %+v", got.Classification)
	}
	if got.Coordinates == nil || got.Coordinates.Lat != 26.8467 {
		t.Errorf("coordinates lost in round trip: %+v", got.Coordinates)
	}
	if got.FirstName != "Asha" || got.City != "Lucknow" {
		t.Errorf("fields lost in round trip: %+v", got)
	}
}

func TestProfileStore_mergeSendsClassificationPair(t *testing.T) {
	b, svc := newTestBackend(t)
	cls := profile.AsCustomer()

	err := b.Profiles().Merge(context.Background(), uuid.New(), profile.Patch{Classification: &cls})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	var body struct {
		UserType   *string `json:"user_type"`
		IsBusiness *bool   `json:"is_business"`
	}
	svc.mu.Lock()
	raw := svc.lastMergeBody
	svc.mu.Unlock()
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode merge body: %v", err)
	}
	if body.UserType == nil || *body.UserType != "customer" {
		t.Errorf("user_type not sent: %s", raw)
	}
	if body.IsBusiness == nil || *body.IsBusiness {
		t.Errorf("is_business must travel with user_type: %s", raw)
	}
}

func TestBusinessStore_roundTrip(t *testing.T) {
	b, _ := newTestBackend(t)
	ctx := context.Background()
	ownerID := uuid.New()

	in := &business.Profile{OwnerID: ownerID, BusinessName: "Asha's Handloom House", IsActive: true}
	if err := b.Businesses().Write(ctx, in); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := b.Businesses().Read(ctx, ownerID)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.BusinessName != "Asha's Handloom House" || !got.IsActive {
		t.Errorf("fields lost in round trip: %+v", got)
	}
}

func TestErrorsMapToBackendTaxonomy(t *testing.T) {
	b, svc := newTestBackend(t)
	ctx := context.Background()

	svc.signupErr = "email_in_use"
	if _, err := b.CreateIdentity(ctx, "asha@example.com", "secret123"); !errors.Is(err, backend.ErrEmailInUse) {
		t.Errorf("signup: expected backend.ErrEmailInUse, got %v", err)
	}
	svc.loginErr = "invalid_credentials"
	if _, err := b.Authenticate(ctx, "asha@example.com", "wrong"); !errors.Is(err, backend.ErrInvalidCredentials) {
		t.Errorf("login: expected backend.ErrInvalidCredentials, got %v", err)
	}
	if _, err := b.Profiles().Read(ctx, uuid.New()); !errors.Is(err, backend.ErrNotFound) {
		t.Errorf("read: expected backend.ErrNotFound, got %v", err)
	}
}

func TestObserveAuthStatus_convertsIdentity(t *testing.T) {
	b, _ := newTestBackend(t)
	ctx := context.Background()

	var mu sync.Mutex
	var events []*backend.Identity
	cancel, err := b.ObserveAuthStatus(ctx, func(id *backend.Identity) {
		mu.Lock()
		events = append(events, id)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("ObserveAuthStatus: %v", err)
	}
	defer cancel()

	if _, err := b.CreateIdentity(ctx, "asha@example.com", "secret123"); err != nil {
		t.Fatalf("CreateIdentity: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 2 || events[0] != nil {
		t.Fatalf("expected signed-out then sign-in events, got %v", events)
	}
	if events[1] == nil || events[1].Email != "asha@example.com" {
		t.Error("sign-in event should carry the converted identity")
	}
	if b.Identity() == nil || b.Identity().Email != "asha@example.com" {
		t.Error("Identity should reflect the signed-in session")
	}
}
