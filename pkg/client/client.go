// Package client is the Go SDK for the Wallaby account service: identity,
// profile and business records, blobs, and map markers over the service's
// HTTP API, with optional session persistence between runs. The package is
// self-contained; it exposes only its own wire types.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// Client is the SDK entry point.
type Client struct {
	baseURL    string
	httpClient *http.Client

	// session state — guarded by mu
	mu          sync.Mutex
	token       string
	identity    *Identity
	sessionFile string
	observers   map[int]AuthStatusFunc
	nextObs     int
}

// Option is a functional option for configuring a Client.
type Option func(*Client) error

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		c.httpClient = hc
		return nil
	}
}

// WithSessionFile persists the signed-in session to path and restores it on
// construction, so a restarted client observes the prior identity
// immediately.
func WithSessionFile(path string) Option {
	return func(c *Client) error {
		c.sessionFile = path
		c.loadSession()
		return nil
	}
}

// New creates a Client for the service at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		observers:  make(map[int]AuthStatusFunc),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Identity returns the signed-in identity, or nil.
func (c *Client) Identity() *Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.identity == nil {
		return nil
	}
	id := *c.identity
	return &id
}

// Token returns the current session token, or "".
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// authResponse is the body of signup and login responses.
type authResponse struct {
	Identity Identity `json:"identity"`
	Token    string   `json:"token"`
}

// CreateIdentity registers a new account via POST /auth/signup and signs
// the client in.
func (c *Client) CreateIdentity(ctx context.Context, email, secret string) (*Identity, error) {
	var resp authResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/signup",
		map[string]string{"email": email, "password": secret}, &resp)
	if err != nil {
		return nil, err
	}
	c.setSession(resp.Token, &resp.Identity)
	return &resp.Identity, nil
}

// Authenticate verifies credentials via POST /auth/login and signs the
// client in.
func (c *Client) Authenticate(ctx context.Context, email, secret string) (*Identity, error) {
	var resp authResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": email, "password": secret}, &resp)
	if err != nil {
		return nil, err
	}
	c.setSession(resp.Token, &resp.Identity)
	return &resp.Identity, nil
}

// SignOut discards the session and notifies the service.
func (c *Client) SignOut(ctx context.Context) error {
	// Best-effort server notification; the token is discarded regardless.
	_ = c.doJSON(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil)
	c.setSession("", nil)
	return nil
}

// ObserveAuthStatus registers an observer. It fires synchronously with the
// current status (including a session restored from the session file), then
// on every sign-in and sign-out performed through this client.
func (c *Client) ObserveAuthStatus(ctx context.Context, fn AuthStatusFunc) (func(), error) {
	c.mu.Lock()
	key := c.nextObs
	c.nextObs++
	c.observers[key] = fn
	current := c.identity
	c.mu.Unlock()

	fn(current)

	cancel := func() {
		c.mu.Lock()
		delete(c.observers, key)
		c.mu.Unlock()
	}
	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			cancel()
		}()
	}
	return cancel, nil
}

// setSession replaces the session state and notifies observers.
func (c *Client) setSession(token string, id *Identity) {
	c.mu.Lock()
	c.token = token
	c.identity = id
	c.saveSessionLocked()
	fns := make([]AuthStatusFunc, 0, len(c.observers))
	for _, fn := range c.observers {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(id)
	}
}

// apiError is a non-2xx response decoded from the service.
type apiError struct {
	Status  int
	Message string `json:"error"`
	Code    string `json:"code"`
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// mapError translates service error codes to the package's sentinels.
func mapError(e *apiError) error {
	switch e.Code {
	case "email_in_use":
		return ErrEmailInUse
	case "invalid_email":
		return ErrInvalidEmail
	case "weak_secret":
		return ErrWeakSecret
	case "invalid_credentials":
		return ErrInvalidCredentials
	}
	if e.Status == http.StatusNotFound {
		return ErrNotFound
	}
	return e
}

// doJSON performs one JSON request. A nil out discards the response body.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &apiError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return mapError(apiErr)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
