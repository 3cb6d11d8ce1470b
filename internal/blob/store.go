// Package blob provides the blob-store implementations behind
// backend.BlobStore: a filesystem store for real deployments and a noop
// store for wiring without persistence.
package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// FSStore writes blobs under a root directory and returns URLs of the form
// baseURL + "/blobs/" + path.
type FSStore struct {
	root    string
	baseURL string
}

// NewFSStore creates an FSStore rooted at dir. baseURL is the public base of
// the serving endpoint, e.g. "http://localhost:8080".
func NewFSStore(dir, baseURL string) *FSStore {
	return &FSStore{root: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

// Upload stores data at path and returns its serving URL. Path separators in
// path create subdirectories; anything escaping the root is rejected.
func (s *FSStore) Upload(_ context.Context, path string, data []byte) (string, error) {
	clean := filepath.Clean("/" + path)
	dest := filepath.Join(s.root, clean)
	if !strings.HasPrefix(dest, filepath.Clean(s.root)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid blob path %q", path)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("create blob dir: %w", err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}
	return s.baseURL + "/blobs" + filepath.ToSlash(clean), nil
}

// Open returns the stored bytes for a previously uploaded path.
func (s *FSStore) Open(path string) ([]byte, error) {
	clean := filepath.Clean("/" + path)
	dest := filepath.Join(s.root, clean)
	if !strings.HasPrefix(dest, filepath.Clean(s.root)+string(os.PathSeparator)) {
		return nil, fmt.Errorf("invalid blob path %q", path)
	}
	return os.ReadFile(dest)
}

// NoopStore discards uploads and logs them. Useful when image persistence is
// disabled.
type NoopStore struct {
	logger *zap.Logger
}

// NewNoopStore creates a NoopStore.
func NewNoopStore(logger *zap.Logger) *NoopStore {
	return &NoopStore{logger: logger}
}

// Upload logs the blob and returns a placeholder URL.
func (s *NoopStore) Upload(_ context.Context, path string, data []byte) (string, error) {
	s.logger.Info("blob upload discarded (noop store)",
		zap.String("path", path),
		zap.Int("bytes", len(data)),
	)
	return "noop://" + path, nil
}
