package aboutapi

import (
	"encoding/json"
	"errors"
	"fmt"
)

// APIError is returned for non-2xx backend responses.
type APIError struct {
	StatusCode int
	RequestID  string
	// Message is the backend's "message" field when present, otherwise a
	// generic description of the failure.
	Message string
	// Body is the raw error payload.
	Body []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("about api: %s (status %d)", e.Message, e.StatusCode)
}

func newAPIError(status int, reqID string, body []byte) *APIError {
	e := &APIError{StatusCode: status, RequestID: reqID, Body: body}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		e.Message = payload.Message
	} else {
		e.Message = fmt.Sprintf("request failed with status %d", status)
	}
	return e
}

// Message returns the most useful human-readable text for err: the
// backend-provided message for an *APIError, otherwise err's own text.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// TransportError is returned when a request never produced a response
// (connection refused, timeout, cancellation).
type TransportError struct {
	Method    string
	Path      string
	RequestID string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RequestID extracts the request ID from an *APIError or *TransportError,
// if any.
func RequestID(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.RequestID
	}
	var tErr *TransportError
	if errors.As(err, &tErr) {
		return tErr.RequestID
	}
	return ""
}
