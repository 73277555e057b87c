package gett

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrConfiguration is matched by errors caused by missing or malformed credentials.
	ErrConfiguration = errors.New("gett: configuration error")
	// ErrAuthentication is matched by errors caused by rejected credentials or tokens.
	ErrAuthentication = errors.New("gett: authentication failed")
	// ErrNotFound is matched when Ge.tt reports that a share or file does not exist.
	ErrNotFound = errors.New("gett: not found")
)

// ConfigurationError reports an invalid client parameter.
type ConfigurationError struct {
	Param  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("gett: parameter %s %s", e.Param, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// APIError is returned for any non-2xx response from Ge.tt.
type APIError struct {
	Op         string
	StatusCode int
	Message    string

	kind error
}

func newAPIError(op string, statusCode int, message string) *APIError {
	e := &APIError{
		Op:         op,
		StatusCode: statusCode,
		Message:    message,
	}
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		e.kind = ErrAuthentication
	case http.StatusNotFound:
		e.kind = ErrNotFound
	}
	return e
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gett: %s: %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("gett: %s: %d %s", e.Op, e.StatusCode, e.Message)
}

// Is lets callers match API errors against ErrAuthentication and ErrNotFound.
func (e *APIError) Is(target error) bool {
	return e.kind != nil && target == e.kind
}

// NetworkError wraps a transport failure (DNS, connection reset, timeout, ...).
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("gett: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
