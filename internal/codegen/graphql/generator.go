// Package graphql emits record types as GraphQL SDL object types.
package graphql

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/wundergraph/graphql-go-tools/v2/pkg/astparser"

	"github.com/okra-platform/pojogen/internal/codegen/ident"
	"github.com/okra-platform/pojogen/internal/codegen/writer"
	"github.com/okra-platform/pojogen/internal/naming"
	"github.com/okra-platform/pojogen/internal/record"
	"github.com/okra-platform/pojogen/internal/schema"
)

// Custom scalars for values GraphQL has no built-in type for.
const (
	Int64Scalar = "Int64"
	JSONScalar  = "JSON"
)

// Type names that are built in or conventionally taken.
var reservedTypeNames = []string{
	"String", "Int", "Float", "Boolean", "ID",
	Int64Scalar, JSONScalar,
	"Query", "Mutation", "Subscription",
}

// Generator generates GraphQL SDL from record types
type Generator struct {
	packageName string
}

// NewGenerator creates a new GraphQL generator. SDL has no packages, so
// the name only appears in the file comment.
func NewGenerator(packageName string) *Generator {
	return &Generator{packageName: packageName}
}

// Language returns the name of the target language
func (g *Generator) Language() string {
	return "graphql"
}

// FileExtension returns the file extension for generated files
func (g *Generator) FileExtension() string {
	return ".graphql"
}

// Generate renders one object type per record type and parses the result
// back to make sure it is valid SDL.
func (g *Generator) Generate(types []*record.Type) ([]byte, error) {
	table, err := ident.NewTable(types, func(name string) string {
		return naming.ASCII(naming.Exported(name))
	}, reservedTypeNames...)
	if err != nil {
		return nil, err
	}

	body := writer.NewWriter("  ", writer.WithCommentPrefix("#"))
	scalars := map[string]bool{}
	for i, typ := range types {
		if err := g.generateType(body, table, typ, scalars); err != nil {
			return nil, err
		}
		if i < len(types)-1 {
			body.BlankLine()
		}
	}

	w := writer.NewWriter("  ", writer.WithCommentPrefix("#"))
	w.WriteComment(writer.GeneratedHeader)
	if g.packageName != "" {
		w.WriteCommentf("Package: %s", g.packageName)
	}
	w.BlankLine()
	if scalars[Int64Scalar] {
		w.WriteLine(`"64-bit signed integer"`)
		w.WriteLinef("scalar %s", Int64Scalar)
		w.BlankLine()
	}
	if scalars[JSONScalar] {
		w.WriteLine(`"Arbitrary JSON value"`)
		w.WriteLinef("scalar %s", JSONScalar)
		w.BlankLine()
	}
	w.Write(body.String())

	sdl := w.String()
	if _, report := astparser.ParseGraphqlDocumentString(sdl); report.HasErrors() {
		return nil, fmt.Errorf("generated GraphQL does not parse: %v", report)
	}
	return []byte(sdl), nil
}

// generateType writes one object type. Fields whose GraphQL name differs
// from the JSON key carry the key as their description.
func (g *Generator) generateType(w *writer.Writer, table *ident.Table, typ *record.Type, scalars map[string]bool) error {
	name, err := table.Lookup(typ.Name())
	if err != nil {
		return err
	}
	members, _ := ident.Members(typ, func(field string) string {
		return naming.ASCII(naming.Camel(field))
	})

	w.WriteLine(quote(name + " is generated from a JSON sample."))
	if len(typ.Fields()) == 0 {
		// Object types need at least one field
		w.WriteLinef("type %s {", name)
		w.Indent()
		w.WriteLine(quote("Placeholder, the sample object was empty."))
		w.WriteLinef("_empty: Boolean")
		w.Dedent()
		w.WriteLine("}")
		return nil
	}

	w.WriteLinef("type %s {", name)
	w.Indent()
	for _, f := range typ.Fields() {
		gqlType, err := g.mapToGraphQLType(table, f.Type, scalars)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", typ.Name(), f.Name, err)
		}
		if members[f.Name] != f.Name {
			w.WriteLine(quote("JSON key: " + f.Name))
		}
		w.WriteLinef("%s: %s", members[f.Name], gqlType)
	}
	w.Dedent()
	w.WriteLine("}")
	return nil
}

// mapToGraphQLType maps a field type to a GraphQL type reference
func (g *Generator) mapToGraphQLType(table *ident.Table, ref schema.TypeRef, scalars map[string]bool) (string, error) {
	switch ref.Kind {
	case schema.KindText:
		return "String", nil
	case schema.KindInteger64:
		scalars[Int64Scalar] = true
		return Int64Scalar, nil
	case schema.KindFloat64:
		return "Float", nil
	case schema.KindBoolean:
		return "Boolean", nil
	case schema.KindSequence:
		if ref.Elem == nil {
			scalars[JSONScalar] = true
			return JSONScalar, nil
		}
		elem, err := g.mapToGraphQLType(table, *ref.Elem, scalars)
		if err != nil {
			return "", err
		}
		return "[" + elem + "]", nil
	case schema.KindRecord:
		return table.Lookup(ref.Name)
	}
	return "", fmt.Errorf("unsupported field kind %s", ref.Kind)
}

// quote renders s as a GraphQL string; JSON escapes are a subset of
// GraphQL's.
func quote(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Sprintf("%q", s)
	}
	return string(b)
}
