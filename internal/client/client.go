package client

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

	"github.com/rs/zerolog/log"

	"github.com/yolodolo42/sqldesk/internal/logging"
)

// maxErrorBody caps how much of a failed response is read for the error.
const maxErrorBody = 64 << 10

const defaultTimeout = 60 * time.Second

// Client talks to the text-to-SQL service. It never retries: a failed
// call is reported once and the user decides whether to resubmit.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithToken sends the token as a bearer Authorization header.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying HTTP client. The client passed in
// is never modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout. It applies regardless of the
// order it is given in relative to WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q", baseURL)
	}

	c := &Client{baseURL: u.String()}
	for _, opt := range opts {
		opt(c)
	}

	switch {
	case c.http == nil:
		timeout := c.timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	case c.timeout > 0:
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c, nil
}

// BaseURL returns the service address the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ask turns a natural-language command into SQL.
func (c *Client) Ask(ctx context.Context, command string, includeSQL bool) (*QueryResponse, error) {
	var out QueryResponse
	body := queryRequest{Command: command, IncludeSQL: includeSQL}
	if err := c.do(ctx, http.MethodPost, "/query/", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExecuteSQL runs a SQL statement on the service's database.
func (c *Client) ExecuteSQL(ctx context.Context, sql string) (*QueryResponse, error) {
	var out QueryResponse
	if err := c.do(ctx, http.MethodPost, "/query/sql", sqlRequest{SQLQuery: sql}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Tables(ctx context.Context) (*TableInfo, error) {
	var out TableInfo
	if err := c.do(ctx, http.MethodGet, "/database/tables", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) TableNames(ctx context.Context) (*TableNames, error) {
	var out TableNames
	if err := c.do(ctx, http.MethodGet, "/database/tables/names", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DescribeTable fetches the schema of one table.
func (c *Client) DescribeTable(ctx context.Context, name string) (*TableSchema, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("table name is required")
	}
	var out TableSchema
	if err := c.do(ctx, http.MethodGet, "/database/tables/"+url.PathEscape(name), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health runs the service's full health check.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var out HealthStatus
	if err := c.do(ctx, http.MethodGet, "/health/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// QuickHealth checks connectivity without counting tables.
func (c *Client) QuickHealth(ctx context.Context) (*HealthStatus, error) {
	var out HealthStatus
	if err := c.do(ctx, http.MethodGet, "/health/quick", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Services(ctx context.Context) (*ServiceStatus, error) {
	var out ServiceStatus
	if err := c.do(ctx, http.MethodGet, "/health/services", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Examples(ctx context.Context) (*Examples, error) {
	var out Examples
	if err := c.do(ctx, http.MethodGet, "/query/examples", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Validate asks the service for an advisory check of a SQL string. The
// client itself never validates SQL.
func (c *Client) Validate(ctx context.Context, sql string) (*Validation, error) {
	var out Validation
	if err := c.do(ctx, http.MethodGet, "/query/validate/"+url.PathEscape(sql), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Variations asks for several alternative SQL renditions of a command.
func (c *Client) Variations(ctx context.Context, command string) (*Variations, error) {
	var out Variations
	body := queryRequest{Command: command, IncludeSQL: true}
	if err := c.do(ctx, http.MethodPost, "/query/generate-variations", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var (
		body    io.Reader
		payload []byte
	)
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
		payload = data
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	if payload != nil {
		log.Debug().
			Str("method", method).
			Str("path", path).
			Str("body", logging.RedactJSON(payload)).
			Msg("upstream request")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("upstream response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newAPIError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
