package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sworl/mill/internal/catalog"
	"github.com/sworl/mill/internal/errors"
)

// Defaults for the remote catalog service and its storage backend.
const (
	DefaultServerURL = "https://assets.mill-cloud.net"
	RemoteBase       = "https://millcloudstorage.blob.core.windows.net"
	ClientID         = "K3ofcL8XyaObRrO_5VPuzXEPnOVCIW3fbLIt6Vygt_YIM6IKxA404ZQ0pZbZ0VkB"

	// DemoUser is the anonymous catalog identity used for asset listings.
	DemoUser = "demouser"
)

// Client talks to the remote catalog service. It is safe for concurrent use.
// All methods degrade transport failures to a *errors.MillError with code
// TRANSPORT; they never panic and never return partial data.
type Client struct {
	serverURL string
	http      *http.Client
	now       func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithNow replaces the clock used for cache-busting parameters (tests).
func WithNow(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New creates a client for the given server URL. An empty URL selects the
// default server.
func New(serverURL string, opts ...Option) *Client {
	if serverURL == "" {
		serverURL = DefaultServerURL
	}
	c := &Client{
		serverURL: strings.TrimSuffix(serverURL, "/"),
		http:      &http.Client{Timeout: 30 * time.Second},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ServerURL returns the configured server base URL (no trailing slash).
func (c *Client) ServerURL() string {
	return c.serverURL
}

// get issues a GET against a server-relative URI and returns status and body.
func (c *Client) get(ctx context.Context, uri string) (int, []byte, error) {
	return c.fetch(ctx, c.serverURL+uri)
}

// fetch issues a GET against an absolute URL and returns status and body.
func (c *Client) fetch(ctx context.Context, url string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, errors.NewTransport(url, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, errors.NewTransport(url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, errors.NewTransport(url, err)
	}
	return resp.StatusCode, body, nil
}

// assetUser maps a session id to the identity used by the asset listing
// endpoint: only ids of the expected length are honored.
func assetUser(sessionID string) string {
	if len(sessionID) == catalog.SessionIDLength {
		return sessionID
	}
	return DemoUser
}

// FetchUserAssets retrieves the raw creator list for the session and parses
// it into the entity graph. A transport failure or non-200 status yields an
// empty graph plus a TRANSPORT error so callers can avoid caching the miss.
func (c *Client) FetchUserAssets(ctx context.Context, sessionID string) ([]catalog.Creator, error) {
	uri := fmt.Sprintf("/assets/%s?client=mill&ms=%d", assetUser(sessionID), c.now().UnixMilli())
	status, body, err := c.get(ctx, uri)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, errors.NewTransport(c.serverURL+uri, fmt.Errorf("HTTP %d", status))
	}
	return catalog.ImportCreators(body), nil
}

// Pledge is one membership tier of an authenticated user.
type Pledge struct {
	Vanity string `json:"vanity"`
	Pledge string `json:"pledge"`
}

// UserInfo is the server's description of an authenticated user.
type UserInfo struct {
	ID       int      `json:"id"`
	FullName string   `json:"fullName"`
	Patron   bool     `json:"patron"`
	Pledges  []Pledge `json:"pledges"`

	// GUID, when present, is a replacement session id the caller must adopt
	// (the server rotates ids periodically)
	GUID string `json:"guid"`
}

// FetchUserInfo retrieves user details (name, tiers). forceRefresh asks the
// server to bypass its own cache.
func (c *Client) FetchUserInfo(ctx context.Context, sessionID string, forceRefresh bool) (*UserInfo, error) {
	refresh := ""
	if forceRefresh {
		refresh = "force=1"
	}
	uri := fmt.Sprintf("/user/%s?ms=%d&%s", sessionID, c.now().UnixMilli(), refresh)
	status, body, err := c.get(ctx, uri)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, errors.NewTransport(c.serverURL+uri, fmt.Errorf("HTTP %d", status))
	}
	var info UserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, errors.NewInternal(err)
	}
	return &info, nil
}

// CheckReady polls the authentication callback state. It reports true once
// the server has seen the interactive flow complete.
func (c *Client) CheckReady(ctx context.Context, state string) (bool, error) {
	status, body, err := c.get(ctx, fmt.Sprintf("/user/%s/ready?patreon=1", state))
	if err != nil {
		return false, err
	}
	if status != http.StatusOK {
		return false, nil
	}
	var ready struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &ready); err != nil {
		return false, nil
	}
	return ready.Status == "yes", nil
}

// DownloadText fetches the content behind a server-relative download URI.
func (c *Client) DownloadText(ctx context.Context, uri string) (string, error) {
	status, body, err := c.get(ctx, uri)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", errors.NewTransport(c.serverURL+uri, fmt.Errorf("HTTP %d", status))
	}
	return string(body), nil
}

// DownloadBinary fetches raw bytes from an absolute storage URL.
func (c *Client) DownloadBinary(ctx context.Context, url string) ([]byte, error) {
	status, body, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, errors.NewTransport(url, fmt.Errorf("HTTP %d", status))
	}
	return body, nil
}
