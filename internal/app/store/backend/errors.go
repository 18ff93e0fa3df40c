// internal/app/store/backend/errors.go
package backend

import (
	"errors"
	"fmt"
)

// Kind classifies a backend failure.
type Kind string

const (
	// KindTransport: the request never produced a response (DNS, refused,
	// timeout, canceled context) or the body could not be read.
	KindTransport Kind = "transport"
	// KindStatus: the backend answered with a non-2xx status.
	KindStatus Kind = "status"
	// KindDecode: a 2xx response whose body was not the expected JSON.
	KindDecode Kind = "decode"
)

// Error is returned by every Client method that fails.
type Error struct {
	Kind       Kind
	Method     string
	Path       string
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		if e.Body != "" {
			return fmt.Sprintf("backend %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
		}
		return fmt.Sprintf("backend %s %s: status %d", e.Method, e.Path, e.StatusCode)
	case KindDecode:
		return fmt.Sprintf("backend %s %s: decode response: %v", e.Method, e.Path, e.Err)
	default:
		return fmt.Sprintf("backend %s %s: %v", e.Method, e.Path, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// IsStatus reports whether err is a backend non-2xx response with the given
// status code.
func IsStatus(err error, code int) bool {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind == KindStatus && be.StatusCode == code
	}
	return false
}

// KindOf returns the failure kind of err, or "" when err did not come from
// the backend client.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return ""
}
