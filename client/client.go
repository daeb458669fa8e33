// Package client provides the HTTP client for the video analysis service.
// It handles request construction, authentication, error mapping, and
// response decoding for the upload, classify, and answer endpoints.
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

	"github.com/google/uuid"

	vserrors "github.com/vidscribe/vidscribe-cli/pkg/errors"
	"github.com/vidscribe/vidscribe-cli/pkg/logging"
	"github.com/vidscribe/vidscribe-cli/pkg/observability"
)

// Service endpoints, relative to the base URL.
const (
	endpointUpload   = "/upload"
	endpointClassify = "/classify"
	endpointAnswer   = "/answer"
)

// DefaultTimeout is the fallback request timeout when none is configured.
// Video processing can run for minutes.
const DefaultTimeout = 10 * time.Minute

// Options configures the Client behavior.
type Options struct {
	// Timeout is the per-request timeout. Zero means DefaultTimeout.
	Timeout time.Duration

	// APIKey, when set, is sent as a bearer token on every request.
	APIKey string

	// HTTPClient overrides the underlying transport, mainly for tests.
	HTTPClient *http.Client

	// Logger receives request-level debug logging. Nil means no logging.
	Logger logging.Logger

	// Metrics receives per-endpoint counters and latencies. Nil is allowed.
	Metrics *observability.Metrics

	// Tracer creates spans around service calls. Nil disables tracing.
	Tracer *observability.Tracer
}

// Client talks to the video analysis service over HTTP.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	apiKey  string
	log     logging.Logger
	metrics *observability.Metrics
	tracer  *observability.Tracer
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts *Options) (*Client, error) {
	if opts == nil {
		opts = &Options{}
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing service URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("service URL %q must be http or https", baseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	log := opts.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}

	return &Client{
		baseURL: u,
		http:    httpClient,
		apiKey:  opts.APIKey,
		log:     log,
		metrics: opts.Metrics,
		tracer:  opts.Tracer,
	}, nil
}

// BaseURL returns the configured service base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ResolveRef resolves a possibly server-relative URL (such as a hosted media
// path) against the service base URL. Absolute URLs pass through unchanged.
func (c *Client) ResolveRef(ref string) string {
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return c.baseURL.ResolveReference(u).String()
}

// newRequestID mints the correlation ID for one service call. It is minted
// before any span starts so the span and the X-Request-ID header carry the
// same value.
func newRequestID() string {
	return uuid.NewString()
}

// postJSON sends a JSON body to path and decodes the JSON response into out.
func (c *Client) postJSON(ctx context.Context, path, requestID string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, strings.TrimPrefix(path, "/"), requestID, out)
}

// endpoint joins path onto the base URL.
func (c *Client) endpoint(path string) string {
	u := *c.baseURL
	u.Path, _ = url.JoinPath(u.Path, path)
	return u.String()
}

// do executes req, maps failures onto the error taxonomy, and decodes the
// response body into out when out is non-nil.
func (c *Client) do(req *http.Request, endpoint, requestID string, out interface{}) error {
	req.Header.Set("X-Request-ID", requestID)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	log := c.log.With(
		logging.F("endpoint", endpoint),
		logging.F("request_id", requestID),
	)
	if traceID := observability.GetTraceID(req.Context()); traceID != "" {
		log = log.With(logging.F("trace_id", traceID))
	}
	log.Debug("calling analysis service")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveAPICall(endpoint, "transport_error", time.Since(start).Seconds())
		log.Error("request failed", logging.Err(err))
		return fmt.Errorf("%w: %v", vserrors.ErrTransport, err)
	}
	defer resp.Body.Close()

	elapsed := time.Since(start)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.ObserveAPICall(endpoint, "server_error", elapsed.Seconds())
		reason := readServerError(resp.Body)
		log.Error("service returned error",
			logging.F("status_code", resp.StatusCode),
			logging.F("reason", reason),
		)
		if reason != "" {
			return fmt.Errorf("%w: %s", vserrors.ErrServer, reason)
		}
		return fmt.Errorf("%w: unexpected status %d", vserrors.ErrServer, resp.StatusCode)
	}

	c.metrics.ObserveAPICall(endpoint, "ok", elapsed.Seconds())
	log.Debug("service call succeeded", logging.F("duration_ms", elapsed.Milliseconds()))

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", vserrors.ErrServer, err)
	}
	return nil
}

// readServerError extracts the {"error": "..."} message from an error
// response body, tolerating non-JSON bodies.
func readServerError(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil {
		return ""
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	return body.Error
}
