// Package client talks to a paste store over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/starford/pastebin/internal/apperr"
	"github.com/starford/pastebin/internal/models"
)

// DefaultTimeout bounds a single request when no option overrides it.
const DefaultTimeout = 30 * time.Second

// maxResponseBytes caps how much of a response body is decoded.
const maxResponseBytes = 32 << 20

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the logger for transport failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client fetches and creates documents on a paste store.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *slog.Logger
}

// New creates a client for the store at baseURL (scheme and host required).
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("client: base url must be absolute: %q", baseURL)
	}
	c := &Client{
		base:   u,
		http:   &http.Client{Timeout: DefaultTimeout},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Fetch retrieves the document stored under key (GET /documents/{key}).
// The returned Paste always carries the requested key.
func (c *Client) Fetch(ctx context.Context, key string) (models.Paste, error) {
	if key == "" {
		return models.Paste{}, apperr.ErrInvalidKey
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("documents", key), nil)
	if err != nil {
		return models.Paste{}, fmt.Errorf("client: fetch %s: %w", key, err)
	}
	req.Header.Set("Accept", "application/json")

	var p models.Paste
	if err := c.do(req, http.StatusNotFound, apperr.ErrNotFound, &p); err != nil {
		return models.Paste{}, fmt.Errorf("client: fetch %s: %w", key, err)
	}
	p.Key = key
	return p, nil
}

// Create stores content as a new document (POST /documents).
func (c *Client) Create(ctx context.Context, content string) (models.Paste, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("documents"), bytes.NewReader([]byte(content)))
	if err != nil {
		return models.Paste{}, fmt.Errorf("client: create: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("Accept", "application/json")

	var p models.Paste
	if err := c.do(req, http.StatusBadRequest, apperr.ErrTooLarge, &p); err != nil {
		return models.Paste{}, fmt.Errorf("client: create: %w", err)
	}
	if p.Key == "" {
		return models.Paste{}, fmt.Errorf("client: create: %w: response without key", apperr.ErrTransport)
	}
	return p, nil
}

// RawURL returns the plain-text URL of key.
func (c *Client) RawURL(key string) string {
	return c.endpoint("raw", key)
}

// ShareURL returns the address a browser would show for key.
func (c *Client) ShareURL(key string) string {
	return c.endpoint(key)
}

// BaseURL returns the store address.
func (c *Client) BaseURL() string {
	return c.base.String()
}

func (c *Client) endpoint(segments ...string) string {
	u := *c.base
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	u.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.Join(segments, "/")
	u.RawPath = strings.TrimRight(c.base.EscapedPath(), "/") + "/" + strings.Join(escaped, "/")
	return u.String()
}

// do performs req and decodes a 2xx JSON body into out. expectedStatus is
// the one non-2xx code that maps to expectedErr; everything else is a
// transport error.
func (c *Client) do(req *http.Request, expectedStatus int, expectedErr error, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("client: request failed",
			slog.String("method", req.Method),
			slog.String("url", req.URL.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", apperr.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		if resp.StatusCode == expectedStatus {
			return expectedErr
		}
		c.logger.Error("client: unexpected status",
			slog.String("method", req.Method),
			slog.String("url", req.URL.String()),
			slog.Int("status", resp.StatusCode))
		return fmt.Errorf("%w: unexpected status %d", apperr.ErrTransport, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return fmt.Errorf("%w: decode response: %v", apperr.ErrTransport, err)
	}
	return nil
}
