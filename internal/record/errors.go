package record

import (
	"errors"
	"fmt"
)

var (
	// Synthesis errors
	ErrDuplicateTypeName = errors.New("duplicate type name")
	ErrInvalidTypeName   = errors.New("invalid type name")
	ErrInvalidFieldName  = errors.New("invalid field name")
	ErrTypeNotFound      = errors.New("record type not found")
	ErrNilSchema         = errors.New("schema cannot be nil")

	// Instance errors
	ErrUnknownField    = errors.New("unknown field")
	ErrUnknownAccessor = errors.New("unknown accessor")
	ErrTypeMismatch    = errors.New("type mismatch")
	ErrArity           = errors.New("wrong number of arguments")
)

// NestedSynthesisError reports a failure while synthesizing the record type
// of a nested object. Path is a JSON pointer from the top-level type to the
// field whose value could not be synthesized.
type NestedSynthesisError struct {
	Path string
	Type string
	Err  error
}

func (e *NestedSynthesisError) Error() string {
	return fmt.Sprintf("nested synthesis failed at %s (type %s): %v", e.Path, e.Type, e.Err)
}

func (e *NestedSynthesisError) Unwrap() error { return e.Err }
