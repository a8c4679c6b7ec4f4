package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFound matches any *APIError with status 404 via errors.Is.
var ErrNotFound = errors.New("not found")

// ErrUnauthorized matches any *APIError with status 401 via errors.Is.
var ErrUnauthorized = errors.New("unauthorized")

// ErrorData is the server's error body.
type ErrorData struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// APIError is a non-2xx response. Data holds the decoded body, so the
// user-facing message is at err.Data.Message.
type APIError struct {
	Method string
	Path   string
	Status int
	Data   ErrorData
}

func newAPIError(method, path string, status int, body []byte) *APIError {
	e := &APIError{Method: method, Path: path, Status: status}
	if err := json.Unmarshal(body, &e.Data); err != nil {
		e.Data = ErrorData{}
	}
	e.Data.Message = strings.TrimSpace(e.Data.Message)
	return e
}

func (e *APIError) Error() string {
	if e.Data.Message != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Data.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

// UserMessage returns the server-provided message, if any.
func (e *APIError) UserMessage() string {
	return e.Data.Message
}

// Is lets errors.Is match status sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	}
	return false
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
