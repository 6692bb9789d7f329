package stats

import "errors"

// Sentinel error kinds callers branch on with errors.Is. Anything else
// bubbling out of the engine is an unexpected store or I/O failure.
var (
	// ErrNotFound reports a missing game, team, player or stat row.
	ErrNotFound = errors.New("not found")

	// ErrForbidden reports that the requesting user may not view the data.
	ErrForbidden = errors.New("forbidden")
)
