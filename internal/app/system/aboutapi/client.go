// Package aboutapi is the HTTP client for the About Us backend.
//
// The backend owns the singleton About Us record and exposes two calls:
//
//	GET /api/aboutUsPoint/get          -> {_id, title, points, status} (possibly partial or empty)
//	PUT /api/aboutUsPoint/edit?id=<id> <- {title, points, status}
//
// Non-2xx responses are returned as *APIError carrying the backend's
// message when it sent one.
package aboutapi

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

	"github.com/dalemusser/aboutadmin/internal/app/system/limits"
	"github.com/dalemusser/aboutadmin/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	GetPath  = "/api/aboutUsPoint/get"
	EditPath = "/api/aboutUsPoint/edit"

	// RequestIDHeader carries a per-call identifier so backend logs and
	// diagnostics can be correlated.
	RequestIDHeader = "X-Request-ID"
)

// DefaultTimeout applies when no http.Client is supplied.
const DefaultTimeout = 15 * time.Second

// Client talks to the About Us backend.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Log        *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.HTTPClient = hc
		}
	}
}

// WithTimeout sets the overall per-request timeout of the http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.HTTPClient = &http.Client{Timeout: d}
		}
	}
}

// New creates a Client for the backend rooted at baseURL.
func New(baseURL string, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
		Log:        logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EditResponse is the outcome of a successful edit.
// Raw is the backend's response body as received; Record is its best-effort
// decoding (zero when the body is not a record).
type EditResponse struct {
	RequestID string
	Raw       json.RawMessage
	Record    models.AboutUsPoint
}

// Get fetches the current About Us record.
//
// An empty body or a JSON null yields a zero record and no error; missing
// fields are left zero so callers can apply their own defaults.
func (c *Client) Get(ctx context.Context) (models.AboutUsPoint, error) {
	var rec models.AboutUsPoint

	body, _, err := c.do(ctx, http.MethodGet, GetPath, nil, nil)
	if err != nil {
		return rec, err
	}
	if isEmptyJSON(body) {
		return rec, nil
	}
	if err := json.Unmarshal(body, &rec); err != nil {
		return models.AboutUsPoint{}, fmt.Errorf("decoding about us record: %w", err)
	}
	return rec, nil
}

// Edit replaces the record identified by id with update.
func (c *Client) Edit(ctx context.Context, id string, update models.AboutUsPointUpdate) (*EditResponse, error) {
	if update.Points == nil {
		update.Points = []string{}
	}
	q := url.Values{"id": {id}}

	body, reqID, err := c.do(ctx, http.MethodPut, EditPath, q, update)
	if err != nil {
		return nil, err
	}

	resp := &EditResponse{RequestID: reqID, Raw: json.RawMessage(body)}
	if !isEmptyJSON(body) {
		// The backend may answer with the record or with an envelope; only
		// the record shape is decoded.
		_ = json.Unmarshal(body, &resp.Record)
	}
	return resp, nil
}

// do builds and executes a request, returning the response body for 2xx
// responses and an *APIError otherwise.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, string, error) {
	target := c.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}

	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, reqID, &TransportError{Method: method, Path: path, RequestID: reqID, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, limits.MaxBackendResponseSize))
	if err != nil {
		return nil, reqID, fmt.Errorf("reading response: %w", err)
	}

	c.Log.Debug("about api call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", reqID),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, reqID, newAPIError(resp.StatusCode, reqID, data)
	}
	return data, reqID, nil
}

func isEmptyJSON(b []byte) bool {
	s := strings.TrimSpace(string(b))
	return s == "" || s == "null"
}
