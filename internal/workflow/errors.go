package workflow

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic checking via errors.Is().
var (
	// ErrNotFound indicates the workflow document could not be located.
	ErrNotFound = errors.New("workflow not found")

	// ErrMalformed indicates the document is not valid JSON.
	ErrMalformed = errors.New("malformed workflow document")

	// ErrSchema indicates a required field is missing or has the wrong shape.
	ErrSchema = errors.New("workflow schema error")

	// ErrDanglingReference indicates a connection targets a node that does
	// not exist in the node set.
	ErrDanglingReference = errors.New("dangling connection reference")
)

// NotFoundError reports a workflow document that could not be read.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNotFound.Error(), e.Path)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// MalformedError reports a document that failed JSON decoding.
// The underlying parse diagnostic is preserved in Err.
type MalformedError struct {
	Err error
}

func (e *MalformedError) Error() string {
	if e.Err == nil {
		return ErrMalformed.Error()
	}
	return fmt.Sprintf("%s: %v", ErrMalformed.Error(), e.Err)
}

func (e *MalformedError) Unwrap() error { return ErrMalformed }

// SchemaError reports a missing or wrongly shaped required field.
type SchemaError struct {
	Field string
	Msg   string
}

func (e *SchemaError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", ErrSchema.Error(), e.Field, e.Msg)
	}
	return fmt.Sprintf("%s: %s", ErrSchema.Error(), e.Msg)
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// DanglingReferenceError reports a connection whose target node is absent
// from the node set.
type DanglingReferenceError struct {
	Source string
	Slot   string
	Target string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("%s: %q -> %q (slot %q)",
		ErrDanglingReference.Error(), e.Source, e.Target, e.Slot)
}

func (e *DanglingReferenceError) Unwrap() error { return ErrDanglingReference }
