package models

import "fmt"

// ValidationError reports caller input that violates a planning precondition.
// It is always fatal to the call that returned it.
type ValidationError struct {
	// Field names the offending input.
	Field string
	// Message describes the violation.
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ProviderError wraps a failure of the external decomposition provider.
// Planning never fails because of it; the fallback decomposer is used instead.
type ProviderError struct {
	// Op is the step that failed (e.g. "generate", "parse").
	Op string
	// Err is the underlying cause.
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("decomposition provider %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
