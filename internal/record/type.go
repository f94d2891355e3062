package record

import (
	"strings"

	"github.com/okra-platform/pojogen/internal/schema"
)

// Field is one typed field of a record type together with its accessor
// names. Record-typed fields reference their type by name.
type Field struct {
	Name   string
	Type   schema.TypeRef
	Getter string
	Setter string
}

// AccessorKind distinguishes read accessors from write accessors.
type AccessorKind int

const (
	Read AccessorKind = iota
	Write
)

func (k AccessorKind) String() string {
	if k == Write {
		return "write"
	}
	return "read"
}

// Accessor is a generated operation on a record type.
type Accessor struct {
	Name  string
	Kind  AccessorKind
	Field string
}

// Type is a synthesized record type: a name, ordered typed fields, and a
// read/write accessor pair per field. Types are immutable once registered.
type Type struct {
	name       string
	fields     []Field
	index      map[string]int
	accessors  []Accessor
	byAccessor map[string]int
	registry   *Registry
}

func newType(name string, reg *Registry) *Type {
	return &Type{
		name:       name,
		index:      make(map[string]int),
		byAccessor: make(map[string]int),
		registry:   reg,
	}
}

func (t *Type) addField(f Field) {
	t.index[f.Name] = len(t.fields)
	t.fields = append(t.fields, f)
	t.byAccessor[f.Getter] = len(t.accessors)
	t.accessors = append(t.accessors, Accessor{Name: f.Getter, Kind: Read, Field: f.Name})
	t.byAccessor[f.Setter] = len(t.accessors)
	t.accessors = append(t.accessors, Accessor{Name: f.Setter, Kind: Write, Field: f.Name})
}

// Name returns the type's registry-unique name.
func (t *Type) Name() string { return t.name }

// Fields returns the fields in declaration order.
func (t *Type) Fields() []Field {
	out := make([]Field, len(t.fields))
	copy(out, t.fields)
	return out
}

// Field looks up a field by name.
func (t *Type) Field(name string) (Field, bool) {
	i, ok := t.index[name]
	if !ok {
		return Field{}, false
	}
	return t.fields[i], true
}

// Accessors returns every accessor: for each field in order, its read
// accessor followed by its write accessor.
func (t *Type) Accessors() []Accessor {
	out := make([]Accessor, len(t.accessors))
	copy(out, t.accessors)
	return out
}

// Accessor looks up an accessor by name.
func (t *Type) Accessor(name string) (Accessor, bool) {
	i, ok := t.byAccessor[name]
	if !ok {
		return Accessor{}, false
	}
	return t.accessors[i], true
}

// Nested returns the record types referenced by this type's fields, in
// field order. A sequence whose element is a record counts as a reference.
func (t *Type) Nested() []*Type {
	var out []*Type
	for _, f := range t.fields {
		if name, ok := recordName(f.Type); ok {
			if nt, ok := t.registry.Lookup(name); ok {
				out = append(out, nt)
			}
		}
	}
	return out
}

// New instantiates the type with every field at its zero value.
func (t *Type) New() *Record {
	values := make([]any, len(t.fields))
	for i, f := range t.fields {
		values[i] = zero(f.Type)
	}
	return &Record{typ: t, values: values}
}

func (t *Type) String() string {
	var b strings.Builder
	b.WriteString(t.name)
	b.WriteByte('{')
	for i, f := range t.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		b.WriteByte(' ')
		b.WriteString(f.Type.String())
	}
	b.WriteByte('}')
	return b.String()
}

// recordName returns the record type referenced by t directly or as a
// sequence element.
func recordName(t schema.TypeRef) (string, bool) {
	switch t.Kind {
	case schema.KindRecord:
		return t.Name, t.Name != ""
	case schema.KindSequence:
		if t.Elem != nil {
			return recordName(*t.Elem)
		}
	}
	return "", false
}

// Walk returns root and every type reachable from it, parents before
// children, each type once.
func Walk(root *Type) []*Type {
	var (
		out  []*Type
		seen = map[*Type]bool{}
		do   func(*Type)
	)
	do = func(t *Type) {
		if t == nil || seen[t] {
			return
		}
		seen[t] = true
		out = append(out, t)
		for _, child := range t.Nested() {
			do(child)
		}
	}
	do(root)
	return out
}
