package datatable

import "errors"

// Errors returned at the engine boundary. Operations on an existing Engine
// never fail: references to unknown rows or columns are ignored.
var (
	// ErrDuplicateRowID is returned when two rows share an identifier.
	ErrDuplicateRowID = errors.New("duplicate row id")

	// ErrNoRowID is returned when Options.RowID is missing.
	ErrNoRowID = errors.New("row id function is nil")

	// ErrInvalidColumn is returned for empty or repeated column ids.
	ErrInvalidColumn = errors.New("invalid column")

	// ErrInvalidSort is returned when a sort key cannot be parsed.
	ErrInvalidSort = errors.New("invalid sort key")

	// ErrInvalidBound is returned when a range bound is not a number.
	ErrInvalidBound = errors.New("invalid range bound")
)
