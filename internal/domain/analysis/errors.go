package analysis

import (
	"errors"
	"fmt"
)

// ErrNotConfigured indicates no model provider credentials were supplied.
var ErrNotConfigured = errors.New("model provider not configured")

// ErrQuotaExceeded indicates the provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("model quota exceeded")

// UpstreamError wraps a transport failure, timeout or error status from
// the model provider.
type UpstreamError struct {
	Provider string
	Status   int
	Message  string
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: upstream status %d: %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: upstream call failed: %s", e.Provider, e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// UnparseableError reports model output that could not be coerced into
// the JSON shape a pipeline stage requires. Raw is kept for logging only.
type UnparseableError struct {
	Stage string
	Raw   string
	Err   error
}

func (e *UnparseableError) Error() string {
	return fmt.Sprintf("%s: model response not parseable: %v", e.Stage, e.Err)
}

func (e *UnparseableError) Unwrap() error { return e.Err }
