package core

import "errors"

var (
	// ErrInvalidURL is returned when a source URL fails allow-list
	// validation before any resolution work is attempted.
	ErrInvalidURL = errors.New("invalid source URL")

	// ErrNotFound is returned when every metadata-resolution tier was
	// exhausted without a usable result.
	ErrNotFound = errors.New("resource not found")

	// ErrNoMatch is returned when metadata resolved successfully but the
	// target catalog has no acceptable candidate. This is an expected
	// outcome, not a system fault.
	ErrNoMatch = errors.New("no match on target catalog")
)
