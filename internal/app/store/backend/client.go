// internal/app/store/backend/client.go
package backend

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

	"github.com/dalemusser/enrolldesk/internal/app/system/metrics"
	"github.com/google/uuid"
)

// DefaultTimeout bounds a single backend round trip when the caller did not
// configure one.
const DefaultTimeout = 15 * time.Second

// maxErrorBody caps how much of a failed response body is kept on the error.
const maxErrorBody = 512

// Client talks to the enrollment backend's REST API.
//
// Every method takes the caller's bearer token explicitly: the console acts
// on behalf of whichever operator is signed in, so the token is per call,
// not per client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New constructs a Client for the backend at baseURL. A zero timeout uses
// DefaultTimeout.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend url must be http or https, got %q", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("backend url has no host: %q", baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// BaseURL returns the normalized backend URL (no trailing slash).
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ping checks that the backend answers HTTP at all. Any response, including
// 401 or 404, counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Kind: KindTransport, Method: http.MethodHead, Path: "/", Err: err}
	}
	resp.Body.Close()
	return nil
}

// do issues one request. body (if non-nil) is JSON-encoded; out (if non-nil)
// receives the decoded JSON response. endpoint is the metrics label.
func (c *Client) do(ctx context.Context, token, method, path, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveBackendCall(endpoint, "transport_error", time.Since(start))
		return &Error{Kind: KindTransport, Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()
	metrics.ObserveBackendCall(endpoint, statusClass(resp.StatusCode), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &Error{
			Kind:       KindStatus,
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(excerpt)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindTransport, Method: method, Path: path, StatusCode: resp.StatusCode, Err: err}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		// 204-style success with nothing to decode; leave out at its zero value.
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Kind: KindDecode, Method: method, Path: path, StatusCode: resp.StatusCode, Err: err}
	}
	return nil
}

// statusClass collapses a status code to its class label ("2xx", "4xx", …)
// to keep metric cardinality bounded.
func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	case code >= 200:
		return "2xx"
	}
	return "other"
}

// seg escapes one path segment.
func seg(s string) string {
	return url.PathEscape(s)
}

// statusBody is the {status} body shared by the payment and user approval
// endpoints.
type statusBody struct {
	Status string `json:"status"`
}
