// Package provider is a client for the hosted authentication, database, and
// storage provider backing the dashboard. It speaks the provider's auth
// (/auth/v1), rest (/rest/v1), and storage (/storage/v1) HTTP APIs.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// NewClient creates a new Client instance. The passed Config is expected to
// have been validated.
func NewClient(logger *zap.Logger, cfg Config, options ...Option) *Client {
	c := &Client{
		logger:  logger,
		url:     strings.TrimRight(cfg.URL, "/"),
		anonKey: cfg.AnonKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		now:     time.Now,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient configures the Client to use the passed *http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.http = client }
}

// WithNow configures the Client's clock, used to determine session expiry.
func WithNow(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// Client holds the connection details shared by every browser. Use Browser
// to act on behalf of a particular browser's session.
type Client struct {
	logger  *zap.Logger
	url     string
	anonKey string
	http    *http.Client
	now     func() time.Time
}

// URL is the provider base URL.
func (c Client) URL() string { return c.url }

// Health checks that the provider's auth service is reachable.
func (c Client) Health(ctx context.Context) error {
	return c.do(ctx, request{method: http.MethodGet, path: "/auth/v1/health"}, nil)
}

type request struct {
	method string
	path   string
	query  url.Values
	header http.Header
	bearer string

	// body is JSON encoded unless it is an io.Reader.
	body interface{}
}

func (c Client) do(ctx context.Context, r request, dst interface{}) error {
	target := c.url + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var body io.Reader
	switch b := r.body.(type) {
	case nil:
	case io.Reader:
		body = b
	default:
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(b); err != nil {
			return fmt.Errorf("encode request; path: %s, error: %w", r.path, err)
		}
		body = buf
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return fmt.Errorf("new request; path: %s, error: %w", r.path, err)
	}
	for key, values := range r.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	bearer := r.bearer
	if bearer == "" {
		bearer = c.anonKey
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s; error: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response; path: %s, error: %w", r.path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		perr := decodeError(resp.StatusCode, b)
		c.logger.Debug(
			"provider error",
			zap.String("method", r.method),
			zap.String("path", r.path),
			zap.Int("status", perr.Status),
			zap.String("code", perr.Code),
		)
		return perr
	}

	if dst == nil || len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode response; path: %s, error: %w", r.path, err)
	}
	return nil
}

// escapePath escapes each segment of an object path, preserving separators.
func escapePath(p string) string {
	segments := strings.Split(strings.Trim(p, "/"), "/")
	for i := range segments {
		segments[i] = url.PathEscape(segments[i])
	}
	return strings.Join(segments, "/")
}
