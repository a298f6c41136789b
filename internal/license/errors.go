package license

import "errors"

// Sentinel kinds for license errors.
var (
	ErrVerifyRequest = errors.New("license verification request failed")
	ErrNoProductID   = errors.New("license product id not configured")
)
