package domain

import "errors"

var (
	// ErrInvalidRequest indicates invalid request
	ErrInvalidRequest = errors.New("invalid request")
	// ErrMalformedResponse indicates the service reply matched no known shape
	ErrMalformedResponse = errors.New("malformed service response")
	// ErrIncompleteQuery indicates a required prediction-form field is missing
	ErrIncompleteQuery = errors.New("incomplete query")
	// ErrServiceUnavailable indicates the advisory service could not be reached
	// or answered with a non-success status
	ErrServiceUnavailable = errors.New("advisory service unavailable")
	// ErrRequestInFlight indicates a flow already has a request in flight
	ErrRequestInFlight = errors.New("request already in flight")
)
