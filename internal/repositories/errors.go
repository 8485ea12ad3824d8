package repositories

import "errors"

// Sentinel errors shared by the repository implementations. Handlers map
// these onto HTTP status codes.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	// ErrConflict is returned when an optimistic transaction exhausts its
	// retry budget without committing.
	ErrConflict = errors.New("write conflict")
)
