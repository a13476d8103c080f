// Package ado provides a REST client for the Azure Boards work item API.
// It implements a deep module interface - simple methods hiding the WIQL and batch endpoints.
package ado

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the Azure DevOps Services host.
	DefaultBaseURL = "https://dev.azure.com"
	// APIVersion is sent with every call and must stay byte-for-byte stable.
	APIVersion = "7.1-preview.2"
)

// Client is an Azure Boards REST API client.
// It holds only immutable configuration, so one Client may serve concurrent callers.
type Client struct {
	http    *http.Client
	baseURL string
	logger  *zap.Logger
	timeout time.Duration
}

// Option customizes client construction.
type Option func(*Client)

// WithBaseURL points the client at a different host, e.g. an on-premises server or a test double.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base = strings.TrimRight(strings.TrimSpace(base), "/"); base != "" {
			c.baseURL = base
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets an overall per-call timeout. Zero keeps the HTTP client's own setting.
// It applies on top of WithHTTPClient regardless of option order.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a new Azure Boards client.
func New(opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{},
		baseURL: DefaultBaseURL,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c
}

// BaseURL returns the host the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// WorkItemURL returns the web UI address of a work item.
func (c *Client) WorkItemURL(org, project string, id int) string {
	return fmt.Sprintf("%s/%s/%s/_workitems/edit/%d", c.baseURL, url.PathEscape(org), url.PathEscape(project), id)
}

// endpoint builds a project-scoped API URL. The query string always ends with api-version.
func (c *Client) endpoint(org, project, resource string, params url.Values) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	b.WriteString("/")
	b.WriteString(url.PathEscape(org))
	b.WriteString("/")
	b.WriteString(url.PathEscape(project))
	b.WriteString("/_apis/wit/")
	b.WriteString(resource)
	b.WriteString("?")
	if len(params) > 0 {
		// Comma-joined id and field lists stay readable, as the service expects.
		b.WriteString(strings.ReplaceAll(params.Encode(), "%2C", ","))
		b.WriteString("&")
	}
	b.WriteString("api-version=")
	b.WriteString(APIVersion)
	return b.String()
}

// response is a fully read HTTP response.
type response struct {
	status int
	body   []byte
}

func (r response) ok() bool {
	return r.status >= 200 && r.status < 300
}

// makeRequest executes an authenticated request and reads the whole body.
// The credential goes in as the Basic auth password with an empty username.
func (c *Client) makeRequest(ctx context.Context, method, target, credential string, body io.Reader) (response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return response{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth("", credential)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return response{}, fmt.Errorf("request to %s failed: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{}, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("azure devops call",
		zap.String("method", method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)))

	return response{status: resp.StatusCode, body: data}, nil
}
