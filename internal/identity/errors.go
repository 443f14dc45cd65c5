// File: internal/identity/errors.go
package identity

import (
	"errors"
	"fmt"
)

// ErrorKind classifies identity-provider failures the orchestrators care about.
type ErrorKind string

const (
	KindEmailAlreadyInUse ErrorKind = "EMAIL_ALREADY_IN_USE"
	KindWeakPassword      ErrorKind = "WEAK_PASSWORD"
	KindInvalidEmail      ErrorKind = "INVALID_EMAIL"
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindUnknown           ErrorKind = "UNKNOWN"
)

// ProviderError wraps an identity-provider failure with a stable kind.
type ProviderError struct {
	Kind ErrorKind
	Err  error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("identity provider error (%s): %v", e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// KindOf extracts the error kind, or KindUnknown for foreign errors.
func KindOf(err error) ErrorKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}
