package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/florianilch/mistgo/internal/nav"
)

// RequestOptions describes one outgoing call.
type RequestOptions struct {
	// Method defaults to GET.
	Method string
	// Header is merged over the default headers. The bearer token, if attached,
	// replaces any Authorization value given here.
	Header http.Header
	// Body is sent as-is; callers serialize it to JSON.
	Body []byte
	// SkipAuth suppresses the Authorization header even when a token is stored.
	SkipAuth bool
}

// BodyKind tells how the response body was interpreted.
type BodyKind int

const (
	BodyNone BodyKind = iota
	BodyJSON
	BodyText
)

// Response is the interpreted result of a successful call.
type Response struct {
	StatusCode int
	Header     http.Header
	Kind       BodyKind

	raw   []byte
	value any
}

// Decode unmarshals a JSON body into v.
func (r *Response) Decode(v any) error {
	if r.Kind != BodyJSON {
		return &ParseError{Err: errors.New("response body is not JSON")}
	}
	if err := json.Unmarshal(r.raw, v); err != nil {
		return &ParseError{Err: err}
	}
	return nil
}

// Text returns the raw body.
func (r *Response) Text() string {
	return string(r.raw)
}

// Value returns the parsed JSON value, the text body, or nil when there is no body.
func (r *Response) Value() any {
	return r.value
}

// Request sends a request to the API path and interprets the response.
//
// On 401 Unauthorized the session is cleared and, unless the client is on a
// public page, navigated to the root page. Non-2xx statuses return *HTTPError,
// network failures *TransportError, and invalid JSON on success *ParseError.
// Nothing is retried.
func (c *Client) Request(ctx context.Context, path string, opts RequestOptions) (*Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	ctx, span := c.tracer.Start(ctx, method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
	defer span.End()

	resp, err := c.do(ctx, method, path, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.ErrorContext(ctx, "api request failed", "method", method, "path", path, "error", err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, opts RequestOptions) (*Response, error) {
	var body io.Reader
	if opts.Body != nil {
		body = bytes.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-Id", uuid.NewString())
	for key, values := range opts.Header {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	if !opts.SkipAuth {
		token, err := c.session.OAuth2Token(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, fmt.Errorf("reading session: %w", err)
		case err != nil:
			// Same as no token: the server decides whether the call needs one.
			slog.WarnContext(ctx, "session token unreadable, sending request without it", "error", err)
		case token != nil:
			token.SetAuthHeader(req)
		}
	}

	// W3C Trace Context for correlating client and server spans
	c.propagator.Inject(ctx, propagation.HeaderCarrier(req.Header))

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, URL: req.URL.String(), Err: err}
	}
	defer func() { _ = httpResp.Body.Close() }()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, URL: req.URL.String(), Err: err}
	}

	return c.interpret(ctx, httpResp, data)
}

// interpret turns a received response into a Response or an error.
func (c *Client) interpret(ctx context.Context, httpResp *http.Response, data []byte) (*Response, error) {
	ok := httpResp.StatusCode >= 200 && httpResp.StatusCode < 300

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
	}

	var parseErr error
	switch {
	case strings.Contains(httpResp.Header.Get("Content-Type"), "application/json"):
		if len(bytes.TrimSpace(data)) == 0 {
			break
		}
		var value any
		if err := json.Unmarshal(data, &value); err != nil {
			parseErr = &ParseError{Err: err}
			break
		}
		resp.Kind = BodyJSON
		resp.raw = data
		resp.value = value
	case ok:
		resp.Kind = BodyText
		resp.raw = data
		resp.value = string(data)
	}

	if !ok {
		if httpResp.StatusCode == http.StatusUnauthorized {
			c.endSession(ctx)
		}
		return nil, &HTTPError{
			StatusCode: httpResp.StatusCode,
			Message:    errorMessage(resp.value, httpResp.StatusCode),
		}
	}

	if parseErr != nil {
		return nil, parseErr
	}
	return resp, nil
}

// endSession drops the rejected session and leaves non-public pages.
func (c *Client) endSession(ctx context.Context) {
	if err := c.session.Clear(ctx); err != nil {
		slog.WarnContext(ctx, "failed to clear session after unauthorized response", "error", err)
	}

	if current := c.navigator.CurrentPath(); !nav.IsPublic(current) {
		slog.InfoContext(ctx, "session rejected, redirecting", "from", current, "to", nav.RootPath)
		c.navigator.Navigate(nav.RootPath)
	}
}
