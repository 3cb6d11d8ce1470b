package client

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
)

// sessionRecord is the persisted session file shape.
type sessionRecord struct {
	Token    string    `json:"token"`
	Identity *Identity `json:"identity"`
}

// loadSession restores a persisted session. Missing or unreadable files
// leave the client signed out.
func (c *Client) loadSession() {
	if c.sessionFile == "" {
		return
	}
	data, err := os.ReadFile(c.sessionFile)
	if err != nil {
		return
	}
	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return
	}
	c.token = rec.Token
	c.identity = rec.Identity
}

// saveSessionLocked persists or removes the session file. Caller holds mu.
func (c *Client) saveSessionLocked() {
	if c.sessionFile == "" {
		return
	}
	if c.token == "" {
		_ = os.Remove(c.sessionFile)
		return
	}
	if err := os.MkdirAll(filepath.Dir(c.sessionFile), 0o700); err != nil {
		return
	}
	data, err := json.Marshal(sessionRecord{Token: c.token, Identity: c.identity})
	if err != nil {
		return
	}
	_ = os.WriteFile(c.sessionFile, data, 0o600)
}

// AccountSnapshot is what the account screen renders for a signed-in
// visitor.
type AccountSnapshot struct {
	State           string          `json:"state"`
	Card            string          `json:"card"`
	Profile         json.RawMessage `json:"profile"`
	BusinessProfile json.RawMessage `json:"business_profile"`
}

// Account fetches the signed-in account snapshot.
func (c *Client) Account(ctx context.Context) (*AccountSnapshot, error) {
	var snap AccountSnapshot
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/account", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// MarkersResult is the map marker set with its category counts.
type MarkersResult struct {
	Center struct {
		Lat  float64 `json:"lat"`
		Lng  float64 `json:"lng"`
		Zoom int     `json:"zoom"`
	} `json:"center"`
	Markers          []Marker       `json:"markers"`
	CountsByKind     map[string]int `json:"counts_by_kind"`
	CountsByCategory map[string]int `json:"counts_by_category"`
}

// Markers fetches the shop/fair marker set.
func (c *Client) Markers(ctx context.Context) (*MarkersResult, error) {
	var res MarkersResult
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/markets/markers", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
