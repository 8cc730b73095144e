package dataset

import "errors"

var (
	// ErrLoadFailure wraps any fetch or parse failure of the six resources.
	ErrLoadFailure = errors.New("dataset load failed")
	// ErrMalformedSample is returned under PolicyReject for rows whose numeric fields do not coerce.
	ErrMalformedSample = errors.New("malformed sample")
)
