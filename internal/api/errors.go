package api

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is returned for responses with a non-2xx status.
type HTTPError struct {
	StatusCode int
	// Message is the server-supplied message, or a generic status-coded one.
	Message string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return e.Message
}

// TransportError is returned when the request could not be sent or the
// response could not be read.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

// Unwrap returns the underlying network error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError is returned when a successful response declares JSON but its body is not valid JSON.
type ParseError struct {
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing response body: %v", e.Err)
}

// Unwrap returns the underlying decoding error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsUnauthorized reports whether err is an HTTPError with status 401.
func IsUnauthorized(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusUnauthorized
}

// errorMessage picks the server-supplied message out of a decoded body,
// falling back to a generic message naming the status.
func errorMessage(body any, status int) string {
	if obj, ok := body.(map[string]any); ok {
		if msg, ok := obj["message"].(string); ok && msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("HTTP error! status: %d", status)
}
