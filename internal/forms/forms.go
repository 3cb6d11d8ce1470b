// Package forms implements the three input forms of the account screen.
// Each form validates locally, performs exactly one logical remote
// operation, and reports the outcome through a single success callback — or
// returns an error and fires nothing.
package forms

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrBusy is returned when a submit arrives while a previous attempt is
// still in flight. Callers disable the triggering control on it; attempts
// are never queued or cancelled.
var ErrBusy = errors.New("another attempt is already in flight")

// ValidationError is a client-side rejection raised before any remote call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// requireNonEmpty returns a ValidationError when the trimmed value is empty.
func requireNonEmpty(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Reason: "is required"}
	}
	return nil
}

// guard is the loading flag that serializes submit attempts.
type guard struct {
	mu   sync.Mutex
	busy bool
}

// acquire marks the form busy, or reports ErrBusy.
func (g *guard) acquire() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy {
		return ErrBusy
	}
	g.busy = true
	return nil
}

func (g *guard) release() {
	g.mu.Lock()
	g.busy = false
	g.mu.Unlock()
}
