package ap

import "errors"

var (
	// ErrNonSquare reports a similarity input whose row and column counts
	// disagree. Detected after the first superstep, before any belief
	// propagation runs.
	ErrNonSquare = errors.New("similarity matrix is not square")

	// ErrUnknownRole reports a vertex id whose role is neither ROW nor
	// COLUMN.
	ErrUnknownRole = errors.New("unknown vertex role")

	// ErrEmptyInput reports a run started with no similarity entries.
	ErrEmptyInput = errors.New("no similarities provided")
)
