package forms_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/wallaby-market/wallaby/internal/backend"
	"github.com/wallaby-market/wallaby/internal/business"
	"github.com/wallaby-market/wallaby/internal/profile"
)

// ── Stub identity provider ────────────────────────────────────────────────

type stubAuth struct {
	mu        sync.Mutex
	createErr error
	authErr   error
	gate      chan struct{} // non-nil: CreateIdentity blocks until closed
	calls     int
}

func (s *stubAuth) CreateIdentity(_ context.Context, email, _ string) (*backend.Identity, error) {
	s.mu.Lock()
	s.calls++
	gate := s.gate
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &backend.Identity{ID: uuid.New(), Email: email}, nil
}

func (s *stubAuth) Authenticate(_ context.Context, email, _ string) (*backend.Identity, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.authErr != nil {
		return nil, s.authErr
	}
	return &backend.Identity{ID: uuid.New(), Email: email}, nil
}

func (s *stubAuth) SignOut(_ context.Context) error { return nil }

func (s *stubAuth) ObserveAuthStatus(_ context.Context, fn backend.AuthStatusFunc) (func(), error) {
	fn(nil)
	return func() {}, nil
}

// ── Stub stores ───────────────────────────────────────────────────────────

type stubProfiles struct {
	mu       sync.Mutex
	byOwner  map[uuid.UUID]*profile.Profile
	writeErr error
	mergeErr error
	readErr  error
	writes   int
	merges   []profile.Patch
}

func newStubProfiles() *stubProfiles {
	return &stubProfiles{byOwner: make(map[uuid.UUID]*profile.Profile)}
}

func (s *stubProfiles) Write(_ context.Context, p *profile.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.writes++
	cp := *p
	s.byOwner[p.OwnerID] = &cp
	return nil
}

func (s *stubProfiles) Merge(_ context.Context, ownerID uuid.UUID, patch profile.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mergeErr != nil {
		return s.mergeErr
	}
	s.merges = append(s.merges, patch)
	if p, ok := s.byOwner[ownerID]; ok && patch.Classification != nil {
		p.Classification = *patch.Classification
	}
	return nil
}

func (s *stubProfiles) Read(_ context.Context, ownerID uuid.UUID) (*profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	p, ok := s.byOwner[ownerID]
	if !ok {
		return nil, backend.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

type stubBusinesses struct {
	mu       sync.Mutex
	writeErr error
	written  []*business.Profile
}

func (s *stubBusinesses) Write(_ context.Context, bp *business.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	cp := *bp
	s.written = append(s.written, &cp)
	return nil
}

func (s *stubBusinesses) Read(_ context.Context, ownerID uuid.UUID) (*business.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, bp := range s.written {
		if bp.OwnerID == ownerID {
			cp := *bp
			return &cp, nil
		}
	}
	return nil, backend.ErrNotFound
}

type stubBlobs struct {
	mu        sync.Mutex
	uploadErr error
	uploads   map[string][]byte
}

func newStubBlobs() *stubBlobs { return &stubBlobs{uploads: make(map[string][]byte)} }

func (s *stubBlobs) Upload(_ context.Context, path string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	s.uploads[path] = data
	return "http://localhost:8080/blobs/" + path, nil
}

// ── Test image ────────────────────────────────────────────────────────────

// testPNG renders a w×h PNG for upload tests.
func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 10 {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 80, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test png: %v", err)
	}
	return buf.Bytes()
}
