// Package apperr holds the error taxonomy shared by all services.
package apperr

import "errors"

var (
	// ErrNotFound: the entity is absent. Propagated to the caller, never retried.
	ErrNotFound = errors.New("not found")

	// ErrValidationFailed: an upstream existence check came back negative or the
	// input was malformed. The write is rejected.
	ErrValidationFailed = errors.New("validation failed")

	// ErrTransientDependency: a remote call failed for reasons other than a
	// definitive "not found". Write-gating paths propagate it; read aggregation
	// paths degrade to a zero value instead.
	ErrTransientDependency = errors.New("transient dependency failure")
)

type retryable struct {
	err error
}

func (r *retryable) Error() string { return r.err.Error() }
func (r *retryable) Unwrap() error { return r.err }

// Retryable marks err so that a consumer failing with it triggers bus-level
// redelivery instead of dead-lettering.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryable{err: err}
}

// IsRetryable reports whether err should trigger redelivery. Transient
// dependency failures are always redeliverable.
func IsRetryable(err error) bool {
	var r *retryable
	if errors.As(err, &r) {
		return true
	}
	return errors.Is(err, ErrTransientDependency)
}
