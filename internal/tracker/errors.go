package tracker

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when the tracking server rejects the
	// session token. The local session has already been cleared when this
	// surfaces; the caller must re-authenticate.
	ErrUnauthorized = errors.New("tracker: unauthorized")
	// ErrNoToken is returned when a login response carries no extractable
	// session token even though the HTTP status indicated success.
	ErrNoToken = errors.New("tracker: no authentication token received")
	// ErrLoginFailed is returned when the login endpoint rejects the
	// credentials. Distinct from ErrUnauthorized on an established session.
	ErrLoginFailed = errors.New("tracker: login failed")
)

// APIError is any non-2xx response other than 401. Body carries the raw
// response text for display; it is not parsed further.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tracker: api error (%d): %s", e.Status, e.Body)
}
