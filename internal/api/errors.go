package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNoToken is wrapped in an AuthError when a request is attempted without a
// bearer token. No network call is made.
var ErrNoToken = errors.New("no auth token")

// NetworkError is a transport failure (Status 0) or an unexpected non-2xx
// status.
type NetworkError struct {
	Op     string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: server returned %d %s", e.Op, e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Transient reports whether retrying the same request might succeed.
func (e *NetworkError) Transient() bool {
	return e.Status == 0 || e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// AuthError means the token is missing, expired or lacks permission.
type AuthError struct {
	Status int
	Err    error
}

func (e *AuthError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("not authorised (%d)", e.Status)
	}
	return fmt.Sprintf("not authorised: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// FormatError means the response did not have the expected shape.
type FormatError struct {
	Endpoint string
	Reason   string
	Err      error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Endpoint, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Endpoint, e.Reason)
}

func (e *FormatError) Unwrap() error { return e.Err }

// ActionError is a failed mutation (delete, edit, create). Err holds the
// underlying AuthError or NetworkError when there is one.
type ActionError struct {
	Action string
	Status int
	Body   string
	Err    error
}

func (e *ActionError) Error() string {
	msg := e.Action + " failed"
	if e.Body != "" {
		msg += ": " + e.Body
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ActionError) Unwrap() error { return e.Err }

// statusError maps a non-2xx status to AuthError or NetworkError.
func statusError(op string, status int) error {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return &AuthError{Status: status}
	}
	return &NetworkError{Op: op, Status: status}
}
