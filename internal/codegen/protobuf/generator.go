package protobuf

import (
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/okra-platform/pojogen/internal/codegen/writer"
	"github.com/okra-platform/pojogen/internal/dynamic"
	"github.com/okra-platform/pojogen/internal/record"
)

// Generator generates proto3 definitions from record types
type Generator struct {
	packageName string
}

// NewGenerator creates a new protobuf generator
func NewGenerator(packageName string) *Generator {
	return &Generator{
		packageName: packageName,
	}
}

// Language returns the name of the target language
func (g *Generator) Language() string {
	return "protobuf"
}

// FileExtension returns the file extension for generated files
func (g *Generator) FileExtension() string {
	return ".proto"
}

// Generate renders one message per record type. The file is compiled with
// protodesc first, so the text always describes a valid proto3 file.
func (g *Generator) Generate(types []*record.Type) ([]byte, error) {
	s, err := dynamic.Compile(g.packageName, types)
	if err != nil {
		return nil, err
	}
	fd := s.FileDescriptorProto()

	w := writer.NewWriter("  ")
	w.WriteComment(writer.GeneratedHeader)
	w.BlankLine()
	w.WriteLine(`syntax = "proto3";`)
	w.BlankLine()
	w.WriteLinef("package %s;", fd.GetPackage())
	w.BlankLine()

	if len(fd.GetDependency()) > 0 {
		for _, dep := range fd.GetDependency() {
			w.WriteLinef("import %s;", strconv.Quote(dep))
		}
		w.BlankLine()
	}

	local := "." + fd.GetPackage() + "."
	for i, msg := range fd.GetMessageType() {
		g.generateMessage(w, msg, local)
		if i < len(fd.GetMessageType())-1 {
			w.BlankLine()
		}
	}

	return w.Bytes(), nil
}

// generateMessage generates a protobuf message definition
func (g *Generator) generateMessage(w *writer.Writer, msg *descriptorpb.DescriptorProto, local string) {
	w.WriteCommentf("%s is generated from a JSON sample.", msg.GetName())
	w.WriteBlock(fmt.Sprintf("message %s {", msg.GetName()), "}", func() {
		for _, field := range msg.GetField() {
			label := ""
			if field.GetLabel() == descriptorpb.FieldDescriptorProto_LABEL_REPEATED {
				label = "repeated "
			}
			options := ""
			if field.GetJsonName() != jsonCamel(field.GetName()) {
				options = fmt.Sprintf(" [json_name = %s]", strconv.Quote(field.GetJsonName()))
			}
			w.WriteLinef("%s%s %s = %d%s;", label, g.mapToProtoType(field, local), field.GetName(), field.GetNumber(), options)
		}
	})
}

// mapToProtoType names the field type as written in a .proto file
func (g *Generator) mapToProtoType(field *descriptorpb.FieldDescriptorProto, local string) string {
	switch field.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_STRING:
		return "string"
	case descriptorpb.FieldDescriptorProto_TYPE_INT64:
		return "int64"
	case descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:
		return "double"
	case descriptorpb.FieldDescriptorProto_TYPE_BOOL:
		return "bool"
	default:
		name := field.GetTypeName()
		if strings.HasPrefix(name, local) {
			return strings.TrimPrefix(name, local)
		}
		return strings.TrimPrefix(name, ".")
	}
}

// jsonCamel is the JSON name protoc derives for a field when none is given
func jsonCamel(name string) string {
	var b strings.Builder
	upper := false
	for _, r := range name {
		if r == '_' {
			upper = true
			continue
		}
		if upper && 'a' <= r && r <= 'z' {
			r -= 'a' - 'A'
		}
		upper = false
		b.WriteRune(r)
	}
	return b.String()
}
