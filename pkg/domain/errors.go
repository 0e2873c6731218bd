package domain

import "errors"

var (
	// ErrNotFound is returned by single-key lookups that matched no document.
	ErrNotFound = errors.New("document not found")

	// ErrUnsupportedIndex is returned when a predicate has no registered
	// translation. It is raised before any backend call is made.
	ErrUnsupportedIndex = errors.New("predicate has no registered index translation")

	// ErrUnsupportedPatchShape is returned when a patch variant is invalid at
	// the position it was encountered, e.g. a top-level replace in a batch
	// patch or an insert nested inside a merge.
	ErrUnsupportedPatchShape = errors.New("patch variant not supported at this position")

	// ErrDuplicateKey is returned by bulk inserts that collide with an
	// existing document key.
	ErrDuplicateKey = errors.New("duplicate document key")

	// ErrMissingKey is returned when a document lacks the configured key field.
	ErrMissingKey = errors.New("document has no key field")
)
