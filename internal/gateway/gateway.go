// Package gateway talks to the remote record store. The backend routes
// on a single URL: the logical path and any query parameters travel as
// query-string parameters, and every response is wrapped in a
// {ok, data, error} envelope.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrNotConfigured is returned before any request is attempted when the
// client has no base URL. Fatal for the session; set STOCKDASH_API_BASE
// or run 'stock config --api-base'.
var ErrNotConfigured = errors.New("api base url not configured")

// GatewayError is an application-level failure: transport error,
// non-OK envelope, or a response that is not a valid envelope.
type GatewayError struct {
	Message string
}

func (e *GatewayError) Error() string {
	return e.Message
}

// envelope is the uniform wrapper every remote response carries.
type envelope struct {
	OK    *bool           `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

// Client is an HTTP client for the record store.
type Client struct {
	Base string
	HTTP *http.Client
}

// New creates a client for the given base URL.
func New(base string) *Client {
	return &Client{
		Base: base,
		HTTP: &http.Client{Timeout: 30 * time.Second},
	}
}

// CallOptions control a single gateway call.
type CallOptions struct {
	Method string // defaults to GET
	Body   any    // JSON-serialized when non-nil
	Query  map[string]string
}

// Call performs one request for a logical path and returns the
// envelope's data. No retries: a failed call surfaces immediately.
func (c *Client) Call(ctx context.Context, path string, opts CallOptions) (json.RawMessage, error) {
	if c.Base == "" {
		return nil, ErrNotConfigured
	}

	params := url.Values{}
	params.Set("path", path)
	for k, v := range opts.Query {
		params.Set(k, v)
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var bodyReader io.Reader
	if opts.Body != nil {
		data, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.Base+"?"+params.Encode(), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	// Deliberately no Content-Type on the body: a JSON content type
	// would trigger a cross-origin preflight the backend cannot answer,
	// so the JSON travels as plain text.

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &GatewayError{Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &GatewayError{Message: fmt.Sprintf("read response: %v", err)}
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil || env.OK == nil {
		return nil, &GatewayError{Message: fmt.Sprintf("API error: %d", resp.StatusCode)}
	}
	if !*env.OK {
		msg := env.Error
		if msg == "" {
			msg = fmt.Sprintf("API error: %d", resp.StatusCode)
		}
		return nil, &GatewayError{Message: msg}
	}

	return env.Data, nil
}

// Items fetches the raw item listing. Records come back with whatever
// field names the upstream sheet currently emits; normalization is the
// caller's job.
func (c *Client) Items(ctx context.Context) ([]map[string]any, error) {
	data, err := c.Call(ctx, "/items", CallOptions{})
	if err != nil {
		return nil, err
	}
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &GatewayError{Message: fmt.Sprintf("decode items: %v", err)}
	}
	return raw, nil
}

// stockUpdate is the write endpoint's request body.
type stockUpdate struct {
	ID    int     `json:"id"`
	Value float64 `json:"value"`
}

// UpdateStock persists a new quantity for one item. No meaningful
// payload on success.
func (c *Client) UpdateStock(ctx context.Context, id int, value float64) error {
	_, err := c.Call(ctx, "/stock/update", CallOptions{
		Method: http.MethodPost,
		Body:   stockUpdate{ID: id, Value: value},
	})
	return err
}

// RunDecrement triggers the server-side batch decrement. No request
// body, no meaningful response payload.
func (c *Client) RunDecrement(ctx context.Context) error {
	_, err := c.Call(ctx, "/decrement/run", CallOptions{Method: http.MethodPost})
	return err
}
