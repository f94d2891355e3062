package typescript

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/okra-platform/pojogen/internal/codegen/ident"
	"github.com/okra-platform/pojogen/internal/codegen/writer"
	"github.com/okra-platform/pojogen/internal/naming"
	"github.com/okra-platform/pojogen/internal/record"
	"github.com/okra-platform/pojogen/internal/schema"
)

// Global names the generated code relies on; classes may not shadow them.
var reservedTypeNames = []string{"Array", "Object", "Record", "String", "Number", "Boolean"}

// Methods every generated class carries besides the accessors.
var reservedMembers = []string{"toJSON", "fromJSON", "constructor"}

// Generator generates TypeScript classes (or plain interfaces) from record types
type Generator struct {
	moduleName      string
	generateClasses bool // If false, generate interfaces describing the JSON shape only
}

// NewGenerator creates a new TypeScript code generator
func NewGenerator(moduleName string) *Generator {
	return &Generator{
		moduleName:      moduleName,
		generateClasses: true,
	}
}

// WithClasses selects classes with accessors (the default) or interfaces
func (g *Generator) WithClasses(useClasses bool) *Generator {
	g.generateClasses = useClasses
	return g
}

// Language returns the name of the target language
func (g *Generator) Language() string {
	return "typescript"
}

// FileExtension returns the file extension for generated files
func (g *Generator) FileExtension() string {
	return ".ts"
}

// Generate emits one class or interface per record type
func (g *Generator) Generate(types []*record.Type) ([]byte, error) {
	table, err := ident.NewTable(types, naming.Exported, reservedTypeNames...)
	if err != nil {
		return nil, err
	}

	w := writer.NewWriter("  ") // TypeScript typically uses 2 spaces
	w.WriteComment(writer.GeneratedHeader)
	w.BlankLine()

	if g.moduleName != "" {
		w.WriteLinef("export namespace %s {", naming.Camel(g.moduleName))
		w.Indent()
	}

	for i, typ := range types {
		if g.generateClasses {
			err = g.generateClass(w, table, typ)
		} else {
			err = g.generateInterface(w, table, typ)
		}
		if err != nil {
			return nil, err
		}
		if i < len(types)-1 {
			w.BlankLine()
		}
	}

	if g.moduleName != "" {
		w.Dedent()
		w.WriteLine("}")
	}

	return w.Bytes(), nil
}

// generateInterface describes the JSON object itself, keyed by the original names
func (g *Generator) generateInterface(w *writer.Writer, table *ident.Table, typ *record.Type) error {
	name, err := table.Lookup(typ.Name())
	if err != nil {
		return err
	}
	w.WriteJSDoc(fmt.Sprintf("%s is generated from a JSON sample.", name))
	w.WriteLinef("export interface %s {", name)
	w.Indent()
	for _, f := range typ.Fields() {
		tsType, err := g.mapToTSType(table, f.Type)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", typ.Name(), f.Name, err)
		}
		w.WriteLinef("%s: %s;", quote(f.Name), tsType)
	}
	w.Dedent()
	w.WriteLine("}")
	return nil
}

// generateClass writes a class with private fields, get/set accessors and
// JSON conversion helpers
func (g *Generator) generateClass(w *writer.Writer, table *ident.Table, typ *record.Type) error {
	name, err := table.Lookup(typ.Name())
	if err != nil {
		return err
	}
	fields := typ.Fields()
	members, scope := ident.Members(typ, naming.Camel, reservedMembers...)

	tsTypes := make([]string, len(fields))
	for i, f := range fields {
		if tsTypes[i], err = g.mapToTSType(table, f.Type); err != nil {
			return fmt.Errorf("%s.%s: %w", typ.Name(), f.Name, err)
		}
	}

	w.WriteJSDoc(fmt.Sprintf("%s is generated from a JSON sample.", name))
	w.WriteLinef("export class %s {", name)
	w.Indent()

	for i, f := range fields {
		w.WriteLinef("private %s: %s = %s;", members[f.Name], tsTypes[i], zeroValue(f.Type))
	}

	for i, f := range fields {
		field := members[f.Name]
		getter := scope.Reserve("get" + naming.Exported(f.Name))
		setter := scope.Reserve("set" + naming.Exported(f.Name))

		w.BlankLine()
		w.WriteBlock(fmt.Sprintf("%s(): %s {", getter, tsTypes[i]), "}", func() {
			w.WriteLinef("return this.%s;", field)
		})
		w.BlankLine()
		w.WriteBlock(fmt.Sprintf("%s(value: %s): void {", setter, tsTypes[i]), "}", func() {
			w.WriteLinef("this.%s = value;", field)
		})
	}

	w.BlankLine()
	w.WriteBlock("toJSON(): Record<string, unknown> {", "}", func() {
		if len(fields) == 0 {
			w.WriteLine("return {};")
			return
		}
		w.WriteBlock("return {", "};", func() {
			for _, f := range fields {
				w.WriteLinef("%s: this.%s,", quote(f.Name), members[f.Name])
			}
		})
	})

	w.BlankLine()
	w.WriteBlock(fmt.Sprintf("static fromJSON(data: any): %s {", name), "}", func() {
		w.WriteLinef("const out = new %s();", name)
		if len(fields) > 0 {
			w.WriteLine("if (data === null || data === undefined) return out;")
		}
		for _, f := range fields {
			key := quote(f.Name)
			w.WriteBlock(fmt.Sprintf("if (data[%s] !== undefined && data[%s] !== null) {", key, key), "}", func() {
				w.WriteLinef("out.%s = %s;", members[f.Name], g.fromJSONExpr(table, f.Type, "data["+key+"]", 0))
			})
		}
		w.WriteLine("return out;")
	})

	w.Dedent()
	w.WriteLine("}")
	return nil
}

// fromJSONExpr converts the plain JSON value expr into the field's type.
// Lookups cannot fail here: mapToTSType already resolved every record.
func (g *Generator) fromJSONExpr(table *ident.Table, ref schema.TypeRef, expr string, depth int) string {
	switch ref.Kind {
	case schema.KindRecord:
		name, _ := table.Lookup(ref.Name)
		return fmt.Sprintf("%s.fromJSON(%s)", name, expr)
	case schema.KindSequence:
		if ref.Elem == nil || !needsConversion(*ref.Elem) {
			return expr
		}
		v := fmt.Sprintf("v%d", depth)
		return fmt.Sprintf("(%s as any[]).map((%s: any) => %s)", expr, v, g.fromJSONExpr(table, *ref.Elem, v, depth+1))
	}
	return expr
}

func needsConversion(ref schema.TypeRef) bool {
	switch ref.Kind {
	case schema.KindRecord:
		return true
	case schema.KindSequence:
		return ref.Elem != nil && needsConversion(*ref.Elem)
	}
	return false
}

// mapToTSType maps a field type to its TypeScript type
func (g *Generator) mapToTSType(table *ident.Table, ref schema.TypeRef) (string, error) {
	switch ref.Kind {
	case schema.KindText:
		return "string", nil
	case schema.KindInteger64, schema.KindFloat64:
		return "number", nil
	case schema.KindBoolean:
		return "boolean", nil
	case schema.KindSequence:
		if ref.Elem == nil {
			return "unknown[]", nil
		}
		elem, err := g.mapToTSType(table, *ref.Elem)
		if err != nil {
			return "", err
		}
		if ref.Elem.Kind == schema.KindRecord {
			// Elements of a record array are never null
			name, _ := table.Lookup(ref.Elem.Name)
			elem = name
		}
		return elem + "[]", nil
	case schema.KindRecord:
		name, err := table.Lookup(ref.Name)
		if err != nil {
			return "", err
		}
		if g.generateClasses {
			return name + " | null", nil
		}
		return name, nil
	}
	return "", fmt.Errorf("unsupported field kind %s", ref.Kind)
}

// zeroValue is the initializer of a freshly constructed instance
func zeroValue(ref schema.TypeRef) string {
	switch ref.Kind {
	case schema.KindText:
		return `""`
	case schema.KindInteger64, schema.KindFloat64:
		return "0"
	case schema.KindBoolean:
		return "false"
	case schema.KindSequence:
		return "[]"
	default:
		return "null"
	}
}

// quote renders s as a string literal; JSON strings are valid TypeScript.
func quote(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Sprintf("%q", s)
	}
	return string(b)
}
