package golang

import (
	"fmt"
	"go/format"
	"go/token"
	"strconv"
	"strings"

	"github.com/okra-platform/pojogen/internal/codegen/ident"
	"github.com/okra-platform/pojogen/internal/codegen/writer"
	"github.com/okra-platform/pojogen/internal/naming"
	"github.com/okra-platform/pojogen/internal/record"
	"github.com/okra-platform/pojogen/internal/schema"
)

// DefaultPackage is used when no package name is configured.
const DefaultPackage = "model"

// Generator generates Go structs with getter/setter methods from record types
type Generator struct {
	packageName string
}

// NewGenerator creates a new Go code generator
func NewGenerator(packageName string) *Generator {
	return &Generator{packageName: packageName}
}

// Language returns the name of the target language
func (g *Generator) Language() string {
	return "go"
}

// FileExtension returns the file extension for generated files
func (g *Generator) FileExtension() string {
	return ".go"
}

// Generate emits one struct per record type, in order, each followed by
// its accessor methods. The output is gofmt'ed.
func (g *Generator) Generate(types []*record.Type) ([]byte, error) {
	pkg := packageIdent(g.packageName)

	table, err := ident.NewTable(types, naming.Exported)
	if err != nil {
		return nil, err
	}

	w := writer.NewWriter("\t")
	w.WriteComment(writer.GeneratedHeader)
	w.BlankLine()
	w.WriteLinef("package %s", pkg)
	w.BlankLine()

	for _, typ := range types {
		if err := g.generateType(w, table, typ); err != nil {
			return nil, err
		}
		w.BlankLine()
	}

	out, err := format.Source(w.Bytes())
	if err != nil {
		return nil, fmt.Errorf("generated Go does not parse: %w", err)
	}
	return out, nil
}

// generateType writes the struct and accessors of one record type
func (g *Generator) generateType(w *writer.Writer, table *ident.Table, typ *record.Type) error {
	name, err := table.Lookup(typ.Name())
	if err != nil {
		return err
	}
	fields := typ.Fields()
	members, scope := ident.Members(typ, naming.Exported)

	goTypes := make([]string, len(fields))
	for i, f := range fields {
		goTypes[i], err = g.mapToGoType(table, f.Type)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", typ.Name(), f.Name, err)
		}
	}

	w.WriteCommentf("%s is generated from a JSON sample.", name)
	w.WriteBlock(fmt.Sprintf("type %s struct {", name), "}", func() {
		for i, f := range fields {
			w.WriteLinef("%s %s %s", members[f.Name], goTypes[i], jsonTag(f.Name))
		}
	})

	recv := receiverName(name)
	for i, f := range fields {
		field := members[f.Name]
		getter := scope.Reserve("Get" + field)
		setter := scope.Reserve("Set" + field)

		w.BlankLine()
		w.WriteCommentf("%s returns the value of %s.", getter, strconv.Quote(f.Name))
		w.WriteBlock(fmt.Sprintf("func (%s *%s) %s() %s {", recv, name, getter, goTypes[i]), "}", func() {
			w.WriteLinef("return %s.%s", recv, field)
		})
		w.BlankLine()
		w.WriteCommentf("%s sets the value of %s.", setter, strconv.Quote(f.Name))
		w.WriteBlock(fmt.Sprintf("func (%s *%s) %s(v %s) {", recv, name, setter, goTypes[i]), "}", func() {
			w.WriteLinef("%s.%s = v", recv, field)
		})
	}
	return nil
}

// mapToGoType maps a field type to its Go type
func (g *Generator) mapToGoType(table *ident.Table, ref schema.TypeRef) (string, error) {
	switch ref.Kind {
	case schema.KindText:
		return "string", nil
	case schema.KindInteger64:
		return "int64", nil
	case schema.KindFloat64:
		return "float64", nil
	case schema.KindBoolean:
		return "bool", nil
	case schema.KindSequence:
		if ref.Elem == nil {
			return "[]any", nil
		}
		elem, err := g.mapToGoType(table, *ref.Elem)
		if err != nil {
			return "", err
		}
		return "[]" + elem, nil
	case schema.KindRecord:
		name, err := table.Lookup(ref.Name)
		if err != nil {
			return "", err
		}
		return "*" + name, nil
	}
	return "", fmt.Errorf("unsupported field kind %s", ref.Kind)
}

// jsonTag renders the struct tag binding a field to its JSON key. Keys
// that cannot sit inside a raw string literal use an interpreted one.
func jsonTag(key string) string {
	tag := `json:` + strconv.Quote(key)
	if !strconv.CanBackquote(tag) {
		return strconv.Quote(tag)
	}
	return "`" + tag + "`"
}

// receiverName is the lower-cased first letter of the type name. "v" is
// taken by setter parameters.
func receiverName(typeName string) string {
	r := strings.ToLower(typeName[:1])
	if r == "v" || !token.IsIdentifier(r) {
		return "r"
	}
	return r
}

// packageIdent turns a configured package (possibly a path) into a Go
// package clause identifier.
func packageIdent(pkg string) string {
	if i := strings.LastIndexAny(pkg, "/."); i >= 0 {
		pkg = pkg[i+1:]
	}
	pkg = strings.ToLower(naming.ASCII(naming.Exported(pkg)))
	if pkg == "" || pkg == "field" || token.IsKeyword(pkg) {
		return DefaultPackage
	}
	return pkg
}
