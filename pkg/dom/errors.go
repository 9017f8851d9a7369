// pkg/dom/errors.go
package dom

import (
	"errors"
	"fmt"
)

// Typed errors let callers classify failures with errors.Is/As rather than
// string matching.

// ErrInvalidSelector is matched by every SelectorError.
var ErrInvalidSelector = errors.New("invalid selector")

// SelectorError is returned when a CSS or XPath selector cannot be compiled.
type SelectorError struct {
	Selector string
	Err      error // Underlying parser error
}

// Error implements the error interface by formatting the message on the fly.
func (e *SelectorError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid selector '%s'", e.Selector)
	}
	return fmt.Sprintf("invalid selector '%s': %v", e.Selector, e.Err)
}

// Unwrap provides the underlying error for use with errors.Is/As.
func (e *SelectorError) Unwrap() error {
	return e.Err
}

// Is makes every SelectorError match ErrInvalidSelector.
func (e *SelectorError) Is(target error) bool {
	return target == ErrInvalidSelector
}

// NewSelectorError creates a new SelectorError.
func NewSelectorError(selector string, err error) *SelectorError {
	return &SelectorError{Selector: selector, Err: err}
}
