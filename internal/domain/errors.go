package domain

import "errors"

// Error classes for a single assessment. Adapters and the orchestrator wrap
// these with the underlying cause, e.g.
//
//	fmt.Errorf("%w: weather: %w", ErrUpstreamUnavailable, err)
//
// so callers can branch with errors.Is and still log the cause.
var (
	// ErrNotFound means the geocoder had no match for the query.
	ErrNotFound = errors.New("location not found")

	// ErrUpstreamUnavailable covers network failures, timeouts and non-2xx
	// responses from any collaborator.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrMalformedResponse means text-generation output failed JSON or
	// schema validation.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrValidation means a collaborator returned internally inconsistent
	// data, such as hourly arrays of different lengths.
	ErrValidation = errors.New("validation error")
)
