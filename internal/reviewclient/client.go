// Package reviewclient is the operator side of the review workflow: it logs in,
// keeps the session credential and drives the listing and status endpoints.
package reviewclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

var (
	// ErrNotAuthenticated is returned when an operation needs a session and none exists.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrSessionExpired is returned when the server rejected the credential or it ran out locally.
	ErrSessionExpired = errors.New("session expired, log in again")
	// ErrLoginInProgress is returned for a second Login while one is running.
	ErrLoginInProgress = errors.New("login already in progress")
)

// State is the operator session state.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateAuthenticated   State = "authenticated"
)

// APIError is a non-success response from the intake service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
}

// Submission is the operator's view of one listed submission.
type Submission struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Notes     string    `json:"notes"`
	FileName  string    `json:"file_name"`
	FileURL   string    `json:"file_url"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Config provides dependencies for New.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Now        func() time.Time
}

// Client holds at most one session token. The token alone decides whether the client is authenticated.
type Client struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
	loggingIn bool
	items     []Submission
}

func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if _, err := url.ParseRequestURI(base); err != nil || base == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Client{baseURL: base, httpClient: client, now: now}, nil
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.loggingIn:
		return StateAuthenticating
	case c.token != "":
		return StateAuthenticated
	default:
		return StateUnauthenticated
	}
}

// Token returns the current credential, for callers that persist it between runs.
func (c *Client) Token() (string, time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, c.expiresAt
}

// SetToken restores a credential obtained earlier.
func (c *Client) SetToken(token string, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = strings.TrimSpace(token)
	c.expiresAt = expiresAt
}

// Items returns the last loaded list including optimistic status edits.
func (c *Client) Items() []Submission {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Submission(nil), c.items...)
}

// Login exchanges secret for a session token. A failure leaves the client unauthenticated.
func (c *Client) Login(ctx context.Context, secret string) error {
	c.mu.Lock()
	if c.loggingIn {
		c.mu.Unlock()
		return ErrLoginInProgress
	}
	c.loggingIn = true
	c.token = ""
	c.expiresAt = time.Time{}
	c.mu.Unlock()

	var resp struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expiresAt"`
	}
	err := c.do(ctx, http.MethodPost, "/api/admin/login", "", map[string]string{"secret": secret}, &resp)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loggingIn = false
	if err != nil {
		return err
	}
	if resp.Token == "" {
		return &APIError{StatusCode: http.StatusOK, Message: "login response carried no token"}
	}
	c.token = resp.Token
	c.expiresAt = resp.ExpiresAt
	return nil
}

// Logout discards the token and the loaded list. The server keeps no session to revoke.
func (c *Client) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.expiresAt = time.Time{}
	c.items = nil
}

// LoadList fetches the full ordered list and replaces the local copy.
func (c *Client) LoadList(ctx context.Context) ([]Submission, error) {
	token, err := c.sessionToken()
	if err != nil {
		return nil, err
	}

	var resp struct {
		Submissions []Submission `json:"submissions"`
	}
	if err := c.authed(ctx, http.MethodGet, "/api/submissions", token, nil, &resp); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]Submission(nil), resp.Submissions...)
	return append([]Submission(nil), c.items...), nil
}

// SetStatus updates the local item first and then asks the server.
// The local edit is kept even when the request fails; the next LoadList is authoritative.
func (c *Client) SetStatus(ctx context.Context, id, status string) error {
	token, err := c.sessionToken()
	if err != nil {
		return err
	}

	c.mu.Lock()
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].Status = status
		}
	}
	c.mu.Unlock()

	var updated Submission
	path := "/api/submissions/" + url.PathEscape(id) + "/status"
	if err := c.authed(ctx, http.MethodPatch, path, token, map[string]string{"status": status}, &updated); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == updated.ID {
			c.items[i] = updated
		}
	}
	return nil
}

func (c *Client) sessionToken() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" {
		return "", ErrNotAuthenticated
	}
	if !c.expiresAt.IsZero() && !c.now().Before(c.expiresAt) {
		c.token = ""
		c.expiresAt = time.Time{}
		return "", ErrSessionExpired
	}
	return c.token, nil
}

func (c *Client) authed(ctx context.Context, method, path, token string, body, out any) error {
	err := c.do(ctx, method, path, token, body, out)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		c.mu.Lock()
		if c.token == token {
			c.token = ""
			c.expiresAt = time.Time{}
		}
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSessionExpired, apiErr.Message)
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(raw, &e)
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}
