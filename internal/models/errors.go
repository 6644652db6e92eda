package models

import "errors"

// Sentinel errors shared across repos and services. Handlers translate these
// to HTTP status codes with errors.Is, so wrapped errors must keep the chain
// (fmt.Errorf with %w).
var (
	// ErrNotFound: a referenced experience or booking does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrCapacityExceeded: the admission check failed. Distinct from
	// ErrValidation so the UI can say "fully booked" instead of "bad input".
	ErrCapacityExceeded = errors.New("slot capacity exceeded")

	// ErrValidation: missing or malformed input fields.
	ErrValidation = errors.New("invalid input")

	// ErrPermission: the caller is not allowed to act on this resource.
	ErrPermission = errors.New("permission denied")

	// ErrStore: the underlying store call failed. Recoverable by retry; the
	// engine never retries internally.
	ErrStore = errors.New("store unavailable")
)
