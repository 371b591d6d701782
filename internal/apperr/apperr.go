package apperr

import "errors"

var (
	// ErrUnauthenticated covers missing or invalid sessions.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden covers authenticated callers lacking the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrUnconfigured means no Gemini API key is available anywhere.
	ErrUnconfigured = errors.New("unconfigured")
	// ErrUpstreamFailure is a non-2xx reply from the generation provider.
	ErrUpstreamFailure = errors.New("upstream failure")
	// ErrMalformedResponse is an upstream reply that cannot be used:
	// empty text, undecodable JSON, or a missing expected top-level key.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrPersistenceFailure wraps store errors, which propagate unchanged.
	ErrPersistenceFailure = errors.New("persistence failure")
	// ErrValidationFailure is invalid caller input (blank skill, bad duration).
	ErrValidationFailure = errors.New("validation failure")
	// ErrNotFound is a missing resource (no stored plan, unknown key id).
	ErrNotFound = errors.New("not found")
)
