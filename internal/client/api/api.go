package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// CodeNetwork marks failures where no usable response was received.
const CodeNetwork = "NETWORK_ERROR"

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 10 << 20
)

// Error is the failure half of a Response.
type Error struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
	Status  int    `json:"-"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Response is the uniform result of every client call: Data on success,
// Error otherwise.
type Response[T any] struct {
	Success bool
	Data    T
	Error   *Error
}

// Unwrap returns Data, or the *Error as a Go error.
func (r Response[T]) Unwrap() (T, error) {
	if !r.Success {
		var zero T
		if r.Error == nil {
			return zero, &Error{Message: "An error occurred", Code: CodeNetwork}
		}
		return zero, r.Error
	}
	return r.Data, nil
}

// Client issues JSON requests against one base address.
type Client struct {
	baseURL   string
	http      *http.Client
	userAgent string
}

type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds every request made by the client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: defaultTimeout},
		userAgent: "charactervault-client",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// Resolve joins endpoint onto the base address unless it is already absolute.
func (c *Client) Resolve(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return c.baseURL + endpoint
}

// Get issues a GET and decodes the body into T.
func Get[T any](ctx context.Context, c *Client, endpoint string) Response[T] {
	return Do[T](ctx, c, http.MethodGet, endpoint, nil)
}

// Post issues a POST with a JSON body and decodes the reply into T.
func Post[T any](ctx context.Context, c *Client, endpoint string, body any) Response[T] {
	return Do[T](ctx, c, http.MethodPost, endpoint, body)
}

// Do performs one request. It never returns a Go error; transport and
// protocol failures are folded into Response.Error.
func Do[T any](ctx context.Context, c *Client, method, endpoint string, body any) Response[T] {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return failure[T](&Error{Message: fmt.Sprintf("encode request: %v", err), Code: CodeNetwork})
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.Resolve(endpoint), reader)
	if err != nil {
		return failure[T](&Error{Message: err.Error(), Code: CodeNetwork})
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return failure[T](&Error{Message: err.Error(), Code: CodeNetwork})
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return failure[T](&Error{Message: err.Error(), Code: CodeNetwork, Status: resp.StatusCode})
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return failure[T](parseError(resp.StatusCode, raw))
	}

	var data T
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return failure[T](&Error{
				Message: fmt.Sprintf("decode response: %v", err),
				Code:    CodeNetwork,
				Status:  resp.StatusCode,
			})
		}
	}
	return Response[T]{Success: true, Data: data}
}

func failure[T any](e *Error) Response[T] {
	return Response[T]{Error: e}
}

// errorEnvelope accepts {message, code, details}, {error: {...}} and {error: "..."}.
type errorEnvelope struct {
	Message string          `json:"message"`
	Code    json.RawMessage `json:"code"`
	Details any             `json:"details"`
	Error   json.RawMessage `json:"error"`
}

func parseError(status int, raw []byte) *Error {
	out := &Error{Status: status}

	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil {
		out.Message, out.Code, out.Details = env.Message, rawCode(env.Code), env.Details

		trimmed := bytes.TrimSpace(env.Error)
		switch {
		case len(trimmed) > 0 && trimmed[0] == '{':
			var nested errorEnvelope
			if json.Unmarshal(trimmed, &nested) == nil {
				out.Message = firstNonEmpty(nested.Message, out.Message)
				out.Code = firstNonEmpty(rawCode(nested.Code), out.Code)
				if nested.Details != nil {
					out.Details = nested.Details
				}
			}
		case len(trimmed) > 0 && trimmed[0] == '"':
			var msg string
			if json.Unmarshal(trimmed, &msg) == nil {
				out.Message = firstNonEmpty(msg, out.Message)
			}
		}
	}

	if out.Message == "" {
		out.Message = "An error occurred"
	}
	if out.Code == "" {
		out.Code = strconv.Itoa(status)
	}
	return out
}

// rawCode accepts both "CODE" and numeric codes.
func rawCode(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(trimmed, &s) == nil {
		return s
	}
	return string(trimmed)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
