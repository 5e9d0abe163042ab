package inference

import (
	"errors"
	"fmt"
)

// ErrMissingCredential is returned when a client is used without an API key.
// The key is read from the environment at startup but only checked on first use.
var ErrMissingCredential = errors.New("DEEPSEEK_API_KEY not set")

// ProviderError wraps any failure reported by, or while talking to, the provider.
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API error (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s API error: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err is a provider rejection of the credential.
func IsAuthError(err error) bool {
	var providerErr *ProviderError
	if !errors.As(err, &providerErr) {
		return false
	}
	return providerErr.StatusCode == 401 || providerErr.StatusCode == 403
}
