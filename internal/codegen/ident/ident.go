// Package ident assigns target-language identifiers to record types and
// fields, unique within the scope they are declared in.
package ident

import (
	"errors"
	"fmt"

	"github.com/okra-platform/pojogen/internal/naming"
	"github.com/okra-platform/pojogen/internal/record"
)

// ErrNoTypes is returned when a generator is given nothing to emit.
var ErrNoTypes = errors.New("no record types to generate")

// Table maps record type names to the identifiers used in one output file.
type Table struct {
	byType map[string]string
	types  []*record.Type
}

// NewTable converts every type name with convert and resolves collisions
// against each other and against reserved words.
func NewTable(types []*record.Type, convert func(string) string, reserved ...string) (*Table, error) {
	if len(types) == 0 {
		return nil, ErrNoTypes
	}
	scope := naming.NewSet(reserved...)
	t := &Table{byType: make(map[string]string, len(types)), types: types}
	for _, typ := range types {
		if _, dup := t.byType[typ.Name()]; dup {
			continue
		}
		t.byType[typ.Name()] = scope.Reserve(convert(typ.Name()))
	}
	return t, nil
}

// Types returns the types the table was built from.
func (t *Table) Types() []*record.Type { return t.types }

// Lookup returns the identifier of a record type.
func (t *Table) Lookup(typeName string) (string, error) {
	id, ok := t.byType[typeName]
	if !ok {
		return "", fmt.Errorf("%w: %q is referenced but not generated", record.ErrTypeNotFound, typeName)
	}
	return id, nil
}

// Members assigns identifiers to the fields of one type. Reserved names
// (keywords, method names already spoken for) are never handed out.
func Members(typ *record.Type, convert func(string) string, reserved ...string) (map[string]string, *naming.Set) {
	scope := naming.NewSet(reserved...)
	out := make(map[string]string, len(typ.Fields()))
	for _, f := range typ.Fields() {
		out[f.Name] = scope.Reserve(convert(f.Name))
	}
	return out, scope
}
