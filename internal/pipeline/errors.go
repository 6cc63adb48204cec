package pipeline

import (
	"errors"
	"fmt"
)

// ErrDataFormat marks a sample whose price or timestamp cannot be parsed.
var ErrDataFormat = errors.New("malformed price sample")

// FormatError points at the offending sample of a batch.
type FormatError struct {
	Index int
	Field string
	Value string
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("sample %d: invalid %s %q: %v", e.Index, e.Field, e.Value, e.Err)
}

// Unwrap exposes both ErrDataFormat and the parse failure.
func (e *FormatError) Unwrap() []error {
	return []error{ErrDataFormat, e.Err}
}
