package embeddings

import (
	"errors"
	"fmt"
	"net/http"
)

// ProviderError wraps a failure from an embedding provider and records
// whether retrying the request could succeed. Rate limits, server errors and
// transport failures are transient; bad requests and auth failures are not.
type ProviderError struct {
	Provider  string
	Status    int
	Transient bool
	Err       error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s embedding request failed (status %d): %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("%s embedding request failed: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Retryable reports whether the failure is worth retrying.
func (e *ProviderError) Retryable() bool { return e.Transient }

// IsRetryable reports whether err is a transient provider failure. Errors
// that are not ProviderErrors are treated as transient; a transport-level
// failure never carries a status code.
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable()
	}
	return true
}

func transientStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
