package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest = errors.New("invalid request body")
	ErrValidation     = errors.New("validation failed")

	ErrMissingConfig = errors.New("missing connection settings")
)

// TransportError is a network or HTTP-level failure while talking to the
// source-control host. The orchestrator recovers from it at the unit where
// it occurred (person listing or commit fetch) and never lets it abort
// sibling units.
type TransportError struct {
	Op         string
	URL        string
	StatusCode int // zero when the request never completed
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s returned status %d", e.Op, e.URL, e.StatusCode)
	}

	return fmt.Sprintf("%s: request to %s failed: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
