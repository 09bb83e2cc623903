package reportprep

import "errors"

var (
	// ErrMalformedInput reports an upstream record or context with a missing or ill-typed field.
	ErrMalformedInput = errors.New("malformed input")
	// ErrMissingSheet reports a reference catalog without its expected sheet.
	ErrMissingSheet = errors.New("missing catalog sheet")
	// ErrNoInput reports that no identifier file can seed the run.
	ErrNoInput = errors.New("no identifier file")
	// ErrNoIdentifiers reports that no valid identifier remains after screening.
	ErrNoIdentifiers = errors.New("no valid identifier")
	// ErrLocked reports that another run holds the work folder lock.
	ErrLocked = errors.New("work folder is locked")
)
