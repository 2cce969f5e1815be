// Package ghidra is the HTTP transport layer for the GhidraMCP plugin.
// It exposes exactly two primitives: FetchLines (GET, line-oriented result)
// and SubmitPayload (POST, single text blob). Both convert every failure —
// transport error, timeout, non-2xx status — into a textual result instead
// of returning a Go error, so callers always receive data they can hand
// straight back to the invoking agent.
package ghidra

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	// DefaultServerURL is where the Ghidra plugin listens out of the box.
	DefaultServerURL = "http://127.0.0.1:8080/"

	// DefaultTimeout bounds every request issued by the client.
	DefaultTimeout = 5 * time.Second
)

// Client issues requests against the Ghidra plugin's REST API.
// Base URL and timeout are mutable at runtime; reads and writes are guarded
// so that two in-flight requests never observe a torn update.
type Client struct {
	mu      sync.RWMutex
	baseURL string
	timeout time.Duration

	rest *resty.Client
	log  *zap.SugaredLogger
}

// NewClient creates a Client. Empty baseURL and zero timeout fall back to
// the defaults. A nil logger disables logging.
func NewClient(baseURL string, timeout time.Duration, log *zap.SugaredLogger) *Client {
	if baseURL == "" {
		baseURL = DefaultServerURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{
		baseURL: baseURL,
		timeout: timeout,
		rest:    resty.New(),
		log:     log,
	}
}

// SetBaseURL changes the server URL for all subsequent requests.
func (c *Client) SetBaseURL(baseURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = baseURL
}

// SetTimeout changes the request timeout for all subsequent requests.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeout = timeout
}

// BaseURL returns the currently configured server URL.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// Timeout returns the currently configured request timeout.
func (c *Client) Timeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.timeout
}

// snapshot reads both configuration values under a single lock.
func (c *Client) snapshot() (string, time.Duration) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL, c.timeout
}

// FetchLines issues a GET to base+endpoint with the given query parameters
// and returns the response body split into lines. Failures are returned as a
// single-element slice, never as an error:
//
//	["Request failed: <message>"]  — transport-level failure or timeout
//	["Error <status>: <body>"]     — non-2xx HTTP response
func (c *Client) FetchLines(ctx context.Context, endpoint string, params map[string]string) []string {
	base, timeout := c.snapshot()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := c.rest.R().SetContext(ctx)
	if len(params) > 0 {
		req.SetQueryParams(params)
	}

	url := joinURL(base, endpoint)
	resp, err := req.Get(url)
	if err != nil {
		c.log.Warnw("get failed", "url", url, "err", err)
		return []string{"Request failed: " + err.Error()}
	}
	if !resp.IsSuccess() {
		c.log.Warnw("get returned error status", "url", url, "status", resp.StatusCode())
		return []string{fmt.Sprintf("Error %d: %s", resp.StatusCode(), resp.String())}
	}
	c.log.Debugw("get ok", "url", url, "status", resp.StatusCode())
	return splitLines(resp.String())
}

// SubmitPayload issues a POST to base+endpoint and returns the whole
// response body as one string. data is either a map[string]string (sent
// form-encoded) or a string (sent as the literal request body); a nil or
// empty map produces an empty body. Failure semantics match FetchLines but
// the result is a single string.
func (c *Client) SubmitPayload(ctx context.Context, endpoint string, data any) string {
	base, timeout := c.snapshot()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := c.rest.R().SetContext(ctx)
	switch d := data.(type) {
	case nil:
	case map[string]string:
		if len(d) > 0 {
			req.SetFormData(d)
		}
	case string:
		req.SetHeader("Content-Type", "text/plain").SetBody(d)
	default:
		return fmt.Sprintf("Request failed: unsupported payload type %T", data)
	}

	url := joinURL(base, endpoint)
	resp, err := req.Post(url)
	if err != nil {
		c.log.Warnw("post failed", "url", url, "err", err)
		return "Request failed: " + err.Error()
	}
	if !resp.IsSuccess() {
		c.log.Warnw("post returned error status", "url", url, "status", resp.StatusCode())
		return fmt.Sprintf("Error %d: %s", resp.StatusCode(), resp.String())
	}
	c.log.Debugw("post ok", "url", url, "status", resp.StatusCode())
	return resp.String()
}

// joinURL joins base and endpoint regardless of trailing/leading slashes.
func joinURL(base, endpoint string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(endpoint, "/")
}

// splitLines splits a response body into lines, dropping the single empty
// element a trailing line terminator would otherwise produce. An empty body
// yields an empty slice.
func splitLines(body string) []string {
	if body == "" {
		return []string{}
	}
	lines := strings.Split(body, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
