// Package shared holds cross-cutting primitives: the error taxonomy,
// pagination metadata, and request-scoped identity.
package shared

import "errors"

// Error taxonomy for the commerce engine. Services wrap these sentinels with
// fmt.Errorf("...: %w", ...) so handlers can map them to transport status.
var (
	// ErrValidation indicates malformed or logically inconsistent input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates a referenced entity is missing or not owned by the business.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a state-machine precondition violation.
	ErrConflict = errors.New("conflict")
	// ErrPreconditionFailed indicates a document is not in the required
	// status or authorization state for the requested transition.
	ErrPreconditionFailed = errors.New("precondition failed")
	// ErrUpstream indicates a fiscal authority error or timeout. Nothing was
	// persisted, so the whole operation is safe to retry.
	ErrUpstream = errors.New("upstream failure")
)
