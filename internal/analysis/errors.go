package analysis

import "errors"

// Sentinel kinds for analysis errors.
var (
	ErrCompletion = errors.New("analysis completion failed")
)
