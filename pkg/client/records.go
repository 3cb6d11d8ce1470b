package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// The record operations are all scoped to the signed-in account; the service
// derives the owner from the session token.

// WriteProfile stores the profile, replacing any existing record. On success
// p is updated with the stored record (timestamps included).
func (c *Client) WriteProfile(ctx context.Context, p *Profile) error {
	return c.doJSON(ctx, http.MethodPut, "/api/v1/account/profile", p, p)
}

// MergeProfile applies a partial update to the signed-in profile.
func (c *Client) MergeProfile(ctx context.Context, patch ProfilePatch) error {
	body := map[string]any{}
	if patch.FirstName != nil {
		body["first_name"] = *patch.FirstName
	}
	if patch.City != nil {
		body["city"] = *patch.City
	}
	if patch.State != nil {
		body["state"] = *patch.State
	}
	if patch.ProfileImageURL != nil {
		body["profile_image_url"] = *patch.ProfileImageURL
	}
	if patch.UserType != nil || patch.IsBusiness != nil {
		body["user_type"] = patch.UserType
		body["is_business"] = patch.IsBusiness
	} else if patch.ClearClassification {
		body["user_type"] = nil
		body["is_business"] = nil
	}
	return c.doJSON(ctx, http.MethodPatch, "/api/v1/account/profile", body, nil)
}

// ReadProfile fetches the signed-in profile. Returns ErrNotFound when no
// record exists yet.
func (c *Client) ReadProfile(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/account/profile", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// WriteBusinessProfile creates or overwrites the signed-in account's
// storefront record. On success bp is updated with the stored record.
func (c *Client) WriteBusinessProfile(ctx context.Context, bp *BusinessProfile) error {
	return c.doJSON(ctx, http.MethodPut, "/api/v1/account/business-profile", bp, bp)
}

// ReadBusinessProfile fetches the signed-in account's storefront record.
func (c *Client) ReadBusinessProfile(ctx context.Context) (*BusinessProfile, error) {
	var bp BusinessProfile
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/account/business-profile", nil, &bp); err != nil {
		return nil, err
	}
	return &bp, nil
}

// Upload stores raw bytes at path in the service's blob store and returns
// the serving URL.
func (c *Client) Upload(ctx context.Context, path string, data []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/blobs/"+path, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload blob: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &apiError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return "", mapError(apiErr)
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	return out.URL, nil
}
