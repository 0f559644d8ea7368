package dom

import (
	"errors"
	"fmt"
)

// Names of the DOMException kinds the document model raises.
const (
	HierarchyRequestErrorName = "HierarchyRequestError"
	NotFoundErrorName         = "NotFoundError"
	SyntaxErrorName           = "SyntaxError"
)

// DOMError is a DOMException: a named failure from a tree mutation, a
// selector query, or a dataset key.
type DOMError struct {
	Name    string
	Message string
}

func (e *DOMError) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

// Is matches another *DOMError with the same Name, so errors.Is works
// against a bare &DOMError{Name: SyntaxErrorName}.
func (e *DOMError) Is(target error) bool {
	t, ok := target.(*DOMError)
	return ok && t.Name == e.Name && (t.Message == "" || t.Message == e.Message)
}

// ErrHierarchyRequest creates a HierarchyRequestError.
func ErrHierarchyRequest(message string) *DOMError {
	return &DOMError{Name: HierarchyRequestErrorName, Message: message}
}

// ErrNotFound creates a NotFoundError.
func ErrNotFound(message string) *DOMError {
	return &DOMError{Name: NotFoundErrorName, Message: message}
}

// ErrSyntax creates a SyntaxError.
func ErrSyntax(message string) *DOMError {
	return &DOMError{Name: SyntaxErrorName, Message: message}
}

// IsSyntaxError reports whether err wraps a SyntaxError, as an invalid
// selector or dataset key produces.
func IsSyntaxError(err error) bool {
	return errors.Is(err, &DOMError{Name: SyntaxErrorName})
}
