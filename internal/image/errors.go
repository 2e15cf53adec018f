package image

import (
	"errors"
	"fmt"
)

var ErrMissingCredential = errors.New("FAL_KEY is not set; configure the fal.ai API key to generate images")

// ValidationError reports a tool argument that cannot be submitted. Field is
// the argument name as the caller sent it.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ProviderError is a non-success response from the provider queue API. Its
// message is the provider's detail as sent.
type ProviderError struct {
	StatusCode int
	Detail     string
}

func (e *ProviderError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("fal.ai request failed with status %d", e.StatusCode)
	}
	return e.Detail
}
