package linkedin

import "errors"

// AuthExchangeError reports a rejected authorization-code exchange (expired
// or reused code, mismatched redirect URI). Description carries the
// provider-supplied error text when available.
type AuthExchangeError struct {
	Description string
	Err         error
}

func (e *AuthExchangeError) Error() string {
	if e.Description != "" {
		return "linkedin: token exchange rejected: " + e.Description
	}
	return "linkedin: token exchange rejected"
}

func (e *AuthExchangeError) Unwrap() error { return e.Err }

// ProfileFetchError reports that neither the id-token path nor the userinfo
// fetch produced a usable profile.
type ProfileFetchError struct {
	Description string
	Err         error
}

func (e *ProfileFetchError) Error() string {
	if e.Description != "" {
		return "linkedin: profile resolution failed: " + e.Description
	}
	return "linkedin: profile resolution failed"
}

func (e *ProfileFetchError) Unwrap() error { return e.Err }

// IsAuthExchangeError reports whether err wraps an AuthExchangeError.
func IsAuthExchangeError(err error) bool {
	var target *AuthExchangeError
	return errors.As(err, &target)
}

// IsProfileFetchError reports whether err wraps a ProfileFetchError.
func IsProfileFetchError(err error) bool {
	var target *ProfileFetchError
	return errors.As(err, &target)
}
