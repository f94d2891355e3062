// Package schema infers structural type schemas from JSON documents.
package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the closed set of inferred field types.
type Kind int

const (
	KindText Kind = iota
	KindInteger64
	KindFloat64
	KindBoolean
	KindSequence
	KindRecord
)

var kindNames = [...]string{
	KindText:      "Text",
	KindInteger64: "Integer64",
	KindFloat64:   "Float64",
	KindBoolean:   "Boolean",
	KindSequence:  "Sequence",
	KindRecord:    "Record",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// TypeRef describes the type of one field.
//
// A Record reference is by name; the named type lives in a record registry.
// Until a synthesizer has named it, an inferred Record reference carries the
// nested Schema instead and Name is empty.
type TypeRef struct {
	Kind Kind
	// Name of the referenced record type (KindRecord only).
	Name string
	// Nested is the schema of an object value awaiting synthesis (KindRecord only).
	Nested *Schema
	// Elem is the element type of a sequence when element inference is on.
	Elem *TypeRef
}

func Text() TypeRef      { return TypeRef{Kind: KindText} }
func Integer64() TypeRef { return TypeRef{Kind: KindInteger64} }
func Float64() TypeRef   { return TypeRef{Kind: KindFloat64} }
func Boolean() TypeRef   { return TypeRef{Kind: KindBoolean} }

// Sequence returns an opaque sequence type.
func Sequence() TypeRef { return TypeRef{Kind: KindSequence} }

// SequenceOf returns a sequence whose element type is known.
func SequenceOf(elem TypeRef) TypeRef { return TypeRef{Kind: KindSequence, Elem: &elem} }

// Record returns a reference to an already named record type.
func Record(name string) TypeRef { return TypeRef{Kind: KindRecord, Name: name} }

// Object returns an unnamed record reference carrying its nested schema.
func Object(nested *Schema) TypeRef { return TypeRef{Kind: KindRecord, Nested: nested} }

// IsPrimitive reports whether t is Text, Integer64, Float64 or Boolean.
func (t TypeRef) IsPrimitive() bool {
	switch t.Kind {
	case KindText, KindInteger64, KindFloat64, KindBoolean:
		return true
	}
	return false
}

// Pending reports whether t (or its sequence element) still needs a record
// type to be synthesized.
func (t TypeRef) Pending() bool {
	switch t.Kind {
	case KindRecord:
		return t.Name == "" && t.Nested != nil
	case KindSequence:
		return t.Elem != nil && t.Elem.Pending()
	}
	return false
}

func (t TypeRef) String() string {
	switch t.Kind {
	case KindRecord:
		if t.Name == "" {
			return "Record(?)"
		}
		return "Record(" + t.Name + ")"
	case KindSequence:
		if t.Elem != nil {
			return "Sequence<" + t.Elem.String() + ">"
		}
	}
	return t.Kind.String()
}

// Equal compares two type references structurally, including nested
// schemas of unnamed records.
func (t TypeRef) Equal(o TypeRef) bool {
	if t.Kind != o.Kind || t.Name != o.Name {
		return false
	}
	if (t.Elem == nil) != (o.Elem == nil) {
		return false
	}
	if t.Elem != nil && !t.Elem.Equal(*o.Elem) {
		return false
	}
	if (t.Nested == nil) != (o.Nested == nil) {
		return false
	}
	return t.Nested == nil || t.Nested.Equal(o.Nested)
}

// ErrDuplicateField is returned when a field name is added twice.
var ErrDuplicateField = errors.New("duplicate field")

// Field is one named entry of a Schema.
type Field struct {
	Name string
	Type TypeRef
}

// Schema is an ordered mapping of field name to type. Order is the order in
// which fields were first observed.
type Schema struct {
	fields []Field
	index  map[string]int
}

// New builds a schema from fields in the given order.
func New(fields ...Field) (*Schema, error) {
	s := &Schema{index: make(map[string]int, len(fields))}
	for _, f := range fields {
		if err := s.add(f.Name, f.Type); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustNew is like New but panics on duplicate names. Intended for tests and
// static schemas.
func MustNew(fields ...Field) *Schema {
	s, err := New(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) add(name string, t TypeRef) error {
	if _, ok := s.index[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateField, name)
	}
	s.index[name] = len(s.fields)
	s.fields = append(s.fields, Field{Name: name, Type: t})
	return nil
}

// Len returns the number of fields.
func (s *Schema) Len() int { return len(s.fields) }

// Fields returns a copy of the fields in order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Names returns the field names in order.
func (s *Schema) Names() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Name
	}
	return out
}

// Lookup returns the type of the named field.
func (s *Schema) Lookup(name string) (TypeRef, bool) {
	i, ok := s.index[name]
	if !ok {
		return TypeRef{}, false
	}
	return s.fields[i].Type, true
}

// Equal reports whether both schemas have the same fields, in the same
// order, with equal types.
func (s *Schema) Equal(o *Schema) bool {
	if s == nil || o == nil {
		return s == o
	}
	if len(s.fields) != len(o.fields) {
		return false
	}
	for i := range s.fields {
		if s.fields[i].Name != o.fields[i].Name || !s.fields[i].Type.Equal(o.fields[i].Type) {
			return false
		}
	}
	return true
}

// String renders the schema on one line, e.g. {b: Integer64, a: Text}.
func (s *Schema) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range s.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		b.WriteString(": ")
		if f.Type.Kind == KindRecord && f.Type.Nested != nil && f.Type.Name == "" {
			b.WriteString(f.Type.Nested.String())
		} else {
			b.WriteString(f.Type.String())
		}
	}
	b.WriteByte('}')
	return b.String()
}
