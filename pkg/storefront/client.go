// Package storefront is the typed HTTP client for the bookstore API.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/bookstore/pkg/errors"
	"github.com/angelmondragon/bookstore/pkg/types"
)

const (
	defaultBaseURL           = "http://localhost:8080"
	defaultTimeout           = 10 * time.Second
	maxResponseBytes   int64 = 4 << 20
	errorBodyReadLimit int64 = 1024
	userAgent                = "bookstore-storefront/1"
	idempotencyHeader        = "Idempotency-Key"
)

// ErrMalformedBody marks a 2xx response whose body could not be decoded into the expected shape.
var ErrMalformedBody = errors.New("malformed response body")

// Client talks to the storefront API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithTimeout sets the per request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// BaseURL reports the API root the client is pointed at.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type request struct {
	method         string
	path           string
	query          url.Values
	body           any
	idempotencyKey string
}

// do executes req and decodes the "data" member of the envelope into out (when non-nil).
func (c *Client) do(ctx context.Context, op string, req request, out any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "storefront client not configured")
	}

	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op+": marshal request")
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op+": build request")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.idempotencyKey != "" {
		httpReq.Header.Set(idempotencyHeader, req.idempotencyKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op+": execute request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(op, resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op+": read response")
	}

	var envelope types.RawEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return malformed(op, err)
	}
	data := bytes.TrimSpace(envelope.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return malformed(op, errors.New("missing data"))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return malformed(op, err)
	}
	return nil
}

func malformed(op string, err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("%w: %w", ErrMalformedBody, err), op+": decode response")
}

// statusError turns a non-2xx response into a typed error, preferring the server's error envelope.
func statusError(op string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))

	code := pkgerrors.CodeForStatus(resp.StatusCode)
	message := fmt.Sprintf("%s: unexpected status %d", op, resp.StatusCode)

	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(snippet, &envelope); err == nil && envelope.Error.Code != "" {
		code = pkgerrors.ParseCode(envelope.Error.Code)
		if envelope.Error.Message != "" {
			message = envelope.Error.Message
		}
	} else if text := strings.TrimSpace(string(snippet)); text != "" {
		message = fmt.Sprintf("%s: %s", message, text)
	}

	return pkgerrors.New(code, message).WithDetails(map[string]any{
		"status": resp.StatusCode,
		"op":     op,
	})
}

// StatusOf returns the HTTP status carried by an error from this client, or 0.
func StatusOf(err error) int {
	typed := pkgerrors.As(err)
	if typed == nil {
		return 0
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		return 0
	}
	status, _ := details["status"].(int)
	return status
}

// IsMalformed reports whether err came from an undecodable success body.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedBody)
}
