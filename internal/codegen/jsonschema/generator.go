// Package jsonschema emits record types as a JSON Schema document with one
// definition per type under $defs.
package jsonschema

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"

	"github.com/okra-platform/pojogen/internal/codegen/ident"
	"github.com/okra-platform/pojogen/internal/record"
	"github.com/okra-platform/pojogen/internal/schema"
)

const defsPrefix = "#/$defs/"

// Generator generates JSON Schema (draft 2020-12) from record types
type Generator struct {
	packageName string
}

// NewGenerator creates a new JSON Schema generator. A non-empty package
// name becomes the schema's $id.
func NewGenerator(packageName string) *Generator {
	return &Generator{packageName: packageName}
}

// Language returns the name of the target format
func (g *Generator) Language() string {
	return "jsonschema"
}

// FileExtension returns the file extension for generated files
func (g *Generator) FileExtension() string {
	return ".schema.json"
}

// Generate builds a schema whose root references the first type. Property
// order follows field order.
func (g *Generator) Generate(types []*record.Type) ([]byte, error) {
	root, err := g.Schema(types)
	if err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON schema: %w", err)
	}
	return append(out, '\n'), nil
}

// Schema returns the document Generate serializes.
func (g *Generator) Schema(types []*record.Type) (*jsonschema.Schema, error) {
	table, err := ident.NewTable(types, func(name string) string { return name })
	if err != nil {
		return nil, err
	}

	root := &jsonschema.Schema{
		Version:     jsonschema.Version,
		Ref:         defsPrefix + types[0].Name(),
		Definitions: make(jsonschema.Definitions, len(types)),
	}
	if g.packageName != "" {
		root.ID = jsonschema.ID(g.packageName)
	}

	for _, typ := range types {
		def := &jsonschema.Schema{
			Type:        "object",
			Title:       typ.Name(),
			Description: typ.Name() + " is generated from a JSON sample.",
			Properties:  jsonschema.NewProperties(),
		}
		for _, f := range typ.Fields() {
			prop, err := g.property(table, f.Type)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", typ.Name(), f.Name, err)
			}
			def.Properties.Set(f.Name, prop)
		}
		root.Definitions[typ.Name()] = def
	}
	return root, nil
}

// property maps a field type to its schema
func (g *Generator) property(table *ident.Table, ref schema.TypeRef) (*jsonschema.Schema, error) {
	switch ref.Kind {
	case schema.KindText:
		return &jsonschema.Schema{Type: "string"}, nil
	case schema.KindInteger64:
		return &jsonschema.Schema{Type: "integer"}, nil
	case schema.KindFloat64:
		return &jsonschema.Schema{Type: "number"}, nil
	case schema.KindBoolean:
		return &jsonschema.Schema{Type: "boolean"}, nil
	case schema.KindSequence:
		s := &jsonschema.Schema{Type: "array"}
		if ref.Elem != nil {
			items, err := g.property(table, *ref.Elem)
			if err != nil {
				return nil, err
			}
			s.Items = items
		}
		return s, nil
	case schema.KindRecord:
		name, err := table.Lookup(ref.Name)
		if err != nil {
			return nil, err
		}
		return &jsonschema.Schema{Ref: defsPrefix + name}, nil
	}
	return nil, fmt.Errorf("unsupported field kind %s", ref.Kind)
}
