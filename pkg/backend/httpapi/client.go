// Package httpapi talks to the journal REST server.
package httpapi

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
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"tableflip.dev/logbook/pkg/backend"
)

var (
	// ErrUnauthorized is returned when the server rejects the token.
	ErrUnauthorized = errors.New("httpapi: unauthorized")
	// ErrSessionExpired is returned without contacting the server when the
	// configured JWT has already expired.
	ErrSessionExpired = errors.New("httpapi: session expired")
)

// StatusError is a non-2xx response other than 401.
type StatusError struct {
	Method  string
	Path    string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("httpapi: %s %s: %d %s", e.Method, e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("httpapi: %s %s: %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
}

// Is maps 404 responses to backend.ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return target == backend.ErrNotFound && e.Code == http.StatusNotFound
}

// errorResponse is the server's error body.
type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// Options configure a Client.
type Options struct {
	// Token is sent as a bearer token. JWTs are checked for expiry locally.
	Token string
	// HTTPClient is the base transport. Defaults to a client with a 30s
	// timeout.
	HTTPClient *http.Client
	Now        func() time.Time
}

// Client implements backend.Backend over HTTP.
type Client struct {
	base   *url.URL
	http   *http.Client
	expiry time.Time
	now    func() time.Time
}

var _ backend.Backend = (*Client)(nil)

// New returns a client for the server at rawURL.
func New(ctx context.Context, rawURL string, opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(rawURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("httpapi: server url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("httpapi: server url %q needs a scheme and host", rawURL)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	c := &Client{base: base, http: opts.HTTPClient, now: opts.Now}
	if opts.Token != "" {
		c.expiry = tokenExpiry(opts.Token)
		ctx = context.WithValue(ctx, oauth2.HTTPClient, opts.HTTPClient)
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token, TokenType: "Bearer"})
		c.http = oauth2.NewClient(ctx, ts)
		c.http.Timeout = opts.HTTPClient.Timeout
	}
	return c, nil
}

// tokenExpiry reads the exp claim of a JWT without verifying it. Opaque
// tokens have no expiry.
func tokenExpiry(token string) time.Time {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if !c.expiry.IsZero() && !c.now().Before(c.expiry) {
		return ErrSessionExpired
	}

	u := *c.base
	u.Path = c.base.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("httpapi: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("httpapi: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("httpapi: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpapi: reading response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		serr := &StatusError{Method: method, Path: path, Code: resp.StatusCode}
		var er errorResponse
		if json.Unmarshal(raw, &er) == nil {
			serr.Message = er.Error
		}
		return serr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("httpapi: decoding %s %s: %w", method, path, err)
	}
	return nil
}
