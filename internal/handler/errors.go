package handler

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential is returned when a mandatory credential is absent.
	ErrMissingCredential = errors.New("missing credential")

	// ErrAlreadyFetched is returned when Fetch is called more than once.
	ErrAlreadyFetched = errors.New("fetch already ran")

	// ErrNotFetched is returned when results are read before a successful fetch.
	ErrNotFetched = errors.New("fetch has not completed")
)

// ProviderError records a failure of a single provider.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// warning formats a non-fatal provider failure for display.
func warning(provider string, err error) string {
	return fmt.Sprintf("Could not fetch %s: %v", provider, err)
}
