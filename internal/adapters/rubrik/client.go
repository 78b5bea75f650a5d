// Package rubrik implements ports.ClusterClient against the Rubrik CDM REST API.
package rubrik

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bft-labs/livemount/internal/domain"
	"github.com/bft-labs/livemount/internal/ports"
)

const (
	apiV1       = "/api/v1"
	apiInternal = "/api/internal"

	// maxErrorBody bounds how much of a failed response is kept for the error.
	maxErrorBody = 4 << 10
)

// Config holds connection settings for a CDM cluster.
type Config struct {
	// BaseURL is the cluster address including scheme, without trailing slash.
	BaseURL string

	// APIToken takes precedence over Username/Password when set.
	APIToken string
	Username string
	Password string

	// RequestID is sent as X-Request-Id on every call.
	RequestID string
	UserAgent string
}

// Client talks to a single CDM cluster.
type Client struct {
	cfg    Config
	client ports.HTTPClient
	logger ports.Logger
}

// New creates a Client. It fails when no usable credentials are configured.
func New(cfg Config, client ports.HTTPClient, logger ports.Logger) (*Client, error) {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: cluster address is required", domain.ErrInvalidConfig)
	}
	if cfg.APIToken == "" && (cfg.Username == "" || cfg.Password == "") {
		return nil, fmt.Errorf("%w: an API token or username and password are required", domain.ErrInvalidConfig)
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "livemount"
	}
	return &Client{cfg: cfg, client: client, logger: logger}, nil
}

// NewHTTPClient returns an *http.Client for talking to a cluster.
// CDM nodes commonly present self-signed certificates, hence insecure.
func NewHTTPClient(timeout time.Duration, insecure bool) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

// APIError is returned when the cluster answers with a non-2xx status.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: server returned %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Is lets a 404 match domain.ErrNotFound.
func (e *APIError) Is(target error) bool {
	return target == domain.ErrNotFound && e.StatusCode == http.StatusNotFound
}

// session is bound to one cluster and keeps the identity read at connect time.
type session struct {
	address string
	cluster domain.ClusterInfo
}

func (s session) Address() string { return s.address }

// do sends a request and decodes a JSON response into out (unless nil).
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if c.cfg.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	} else {
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if c.cfg.RequestID != "" {
		req.Header.Set("X-Request-Id", c.cfg.RequestID)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("cluster api call",
		ports.String("method", method),
		ports.String("path", path),
		ports.Any("status", resp.StatusCode),
		ports.Duration("took", time.Since(start)),
	)

	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	return c.do(ctx, http.MethodPost, path, payload, out)
}
