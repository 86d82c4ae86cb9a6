package verification

import (
	"errors"

	"github.com/rotisserie/eris"
)

// ErrMissingCode is returned when a callback arrives without an
// authorization code. Maps to HTTP 400.
var ErrMissingCode = eris.New("verification: missing authorization code")

// FailedError wraps an unexpected failure inside the verification flow.
// The original message is preserved for the caller; upserts already applied
// are not rolled back (status writes are idempotent per hash ID).
type FailedError struct {
	Err error
}

func (e *FailedError) Error() string {
	return "verification failed: " + e.Err.Error()
}

func (e *FailedError) Unwrap() error { return e.Err }

// IsFailed reports whether err wraps a FailedError.
func IsFailed(err error) bool {
	var target *FailedError
	return errors.As(err, &target)
}
