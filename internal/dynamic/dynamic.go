// Package dynamic mirrors synthesized record types as protobuf messages
// built at runtime, so records can be handled by protobuf tooling
// (protojson, binary wire format) without generated Go code.
package dynamic

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/okra-platform/pojogen/internal/naming"
	"github.com/okra-platform/pojogen/internal/record"
	"github.com/okra-platform/pojogen/internal/schema"
)

// DefaultPackage is the proto package used when none is given.
const DefaultPackage = "pojogen"

// listValueName is the fully qualified name opaque sequences map onto.
const listValueName = ".google.protobuf.ListValue"

var (
	ErrEmptyTypes      = errors.New("no record types given")
	ErrUnknownMessage  = errors.New("unknown message")
	ErrUnsupportedKind = errors.New("unsupported field kind")
)

// PackageName turns a configured package (a Go import path, a dotted name)
// into a valid proto package.
func PackageName(pkg string) string {
	if i := strings.LastIndex(pkg, "/"); i >= 0 {
		pkg = pkg[i+1:]
	}
	var parts []string
	for _, part := range strings.Split(pkg, ".") {
		if part == "" {
			continue
		}
		parts = append(parts, naming.ASCII(naming.Snake(part)))
	}
	if len(parts) == 0 {
		return DefaultPackage
	}
	return strings.Join(parts, ".")
}

// Schema is a compiled protobuf file holding one message per record type.
type Schema struct {
	pkg      string
	proto    *descriptorpb.FileDescriptorProto
	file     protoreflect.FileDescriptor
	messages map[string]protoreflect.MessageDescriptor
	// fields maps record type -> record field -> proto field name.
	fields map[string]map[string]protoreflect.Name
}

// Describe builds the FileDescriptorProto for types without resolving it.
// Message and field order follow the order of types and of their fields.
func Describe(pkg string, types []*record.Type) (*descriptorpb.FileDescriptorProto, error) {
	fd, _, _, err := describe(pkg, types)
	return fd, err
}

func describe(pkg string, types []*record.Type) (*descriptorpb.FileDescriptorProto, map[string]string, map[string]map[string]protoreflect.Name, error) {
	if len(types) == 0 {
		return nil, nil, nil, ErrEmptyTypes
	}
	pkg = PackageName(pkg)

	msgNames := naming.NewSet()
	byType := make(map[string]string, len(types))
	for _, t := range types {
		byType[t.Name()] = msgNames.Reserve(naming.ASCII(naming.Exported(t.Name())))
	}

	fd := &descriptorpb.FileDescriptorProto{
		Name:    proto.String(strings.ReplaceAll(pkg, ".", "/") + ".proto"),
		Package: proto.String(pkg),
		Syntax:  proto.String("proto3"),
	}
	fields := make(map[string]map[string]protoreflect.Name, len(types))
	usesList := false

	for _, t := range types {
		msg := &descriptorpb.DescriptorProto{Name: proto.String(byType[t.Name()])}
		scope := naming.NewSet()
		fields[t.Name()] = make(map[string]protoreflect.Name)

		for i, f := range t.Fields() {
			fieldName := reserveField(scope, naming.ASCII(naming.Snake(f.Name)))
			fields[t.Name()][f.Name] = protoreflect.Name(fieldName)

			field := &descriptorpb.FieldDescriptorProto{
				Name:     proto.String(fieldName),
				Number:   proto.Int32(int32(i + 1)),
				JsonName: proto.String(f.Name),
				Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
			}
			ref := f.Type
			if ref.Kind == schema.KindSequence && ref.Elem != nil {
				field.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
				ref = *ref.Elem
			}
			if err := setFieldType(field, ref, pkg, byType, &usesList); err != nil {
				return nil, nil, nil, fmt.Errorf("%s.%s: %w", t.Name(), f.Name, err)
			}
			msg.Field = append(msg.Field, field)
		}
		fd.MessageType = append(fd.MessageType, msg)
	}

	if usesList {
		fd.Dependency = []string{structpb.File_google_protobuf_struct_proto.Path()}
	}
	return fd, byType, fields, nil
}

// reserveField keeps proto3 field names distinct after lower-casing and
// dropping underscores, which protodesc rejects otherwise.
func reserveField(scope *naming.Set, name string) string {
	candidate := name
	for i := 2; scope.Has(fold(candidate)); i++ {
		candidate = name + strconv.Itoa(i)
	}
	scope.Reserve(fold(candidate))
	return candidate
}

func fold(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "_", "")
}

func setFieldType(field *descriptorpb.FieldDescriptorProto, ref schema.TypeRef, pkg string, byType map[string]string, usesList *bool) error {
	switch ref.Kind {
	case schema.KindText:
		field.Type = descriptorpb.FieldDescriptorProto_TYPE_STRING.Enum()
	case schema.KindInteger64:
		field.Type = descriptorpb.FieldDescriptorProto_TYPE_INT64.Enum()
	case schema.KindFloat64:
		field.Type = descriptorpb.FieldDescriptorProto_TYPE_DOUBLE.Enum()
	case schema.KindBoolean:
		field.Type = descriptorpb.FieldDescriptorProto_TYPE_BOOL.Enum()
	case schema.KindSequence:
		*usesList = true
		field.Type = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum()
		field.TypeName = proto.String(listValueName)
	case schema.KindRecord:
		msg, ok := byType[ref.Name]
		if !ok {
			return fmt.Errorf("%w: record type %q is not part of the file", record.ErrTypeNotFound, ref.Name)
		}
		field.Type = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum()
		field.TypeName = proto.String("." + pkg + "." + msg)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedKind, ref.Kind)
	}
	return nil
}

// Compile describes types as one proto3 file and resolves it against the
// global registry, which provides google/protobuf/struct.proto.
func Compile(pkg string, types []*record.Type) (*Schema, error) {
	fd, byType, fields, err := describe(pkg, types)
	if err != nil {
		return nil, err
	}
	file, err := protodesc.NewFile(fd, protoregistry.GlobalFiles)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve descriptor: %w", err)
	}

	s := &Schema{
		pkg:      fd.GetPackage(),
		proto:    fd,
		file:     file,
		messages: make(map[string]protoreflect.MessageDescriptor, len(byType)),
		fields:   fields,
	}
	for typeName, msgName := range byType {
		s.messages[typeName] = file.Messages().ByName(protoreflect.Name(msgName))
	}
	return s, nil
}

// File returns the resolved file descriptor.
func (s *Schema) File() protoreflect.FileDescriptor { return s.file }

// FileDescriptorProto returns the unresolved descriptor.
func (s *Schema) FileDescriptorProto() *descriptorpb.FileDescriptorProto { return s.proto }

// FileDescriptorSet returns the file together with every file it imports,
// dependencies first, ready to be written as a standalone descriptor set.
func (s *Schema) FileDescriptorSet() *descriptorpb.FileDescriptorSet {
	set := &descriptorpb.FileDescriptorSet{}
	imports := s.file.Imports()
	for i := 0; i < imports.Len(); i++ {
		set.File = append(set.File, protodesc.ToFileDescriptorProto(imports.Get(i).FileDescriptor))
	}
	set.File = append(set.File, s.proto)
	return set
}

// MessageType returns the message descriptor of a record type.
func (s *Schema) MessageType(typeName string) (protoreflect.MessageDescriptor, bool) {
	md, ok := s.messages[typeName]
	return md, ok
}

// NewMessage returns an empty dynamic message for a record type.
func (s *Schema) NewMessage(typeName string) (*dynamicpb.Message, error) {
	md, ok := s.messages[typeName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMessage, typeName)
	}
	return dynamicpb.NewMessage(md), nil
}

// FromRecord copies a record into a new dynamic message. Zero values are
// left unset, as proto3 does not distinguish them.
func (s *Schema) FromRecord(rec *record.Record) (*dynamicpb.Message, error) {
	msg, err := s.NewMessage(rec.Type().Name())
	if err != nil {
		return nil, err
	}
	if err := s.fill(msg, rec); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *Schema) fill(msg *dynamicpb.Message, rec *record.Record) error {
	typ := rec.Type()
	names := s.fields[typ.Name()]
	md := msg.Descriptor()
	for _, f := range typ.Fields() {
		fd := md.Fields().ByName(names[f.Name])
		if fd == nil {
			return fmt.Errorf("%w: %s.%s has no proto field", ErrUnknownMessage, typ.Name(), f.Name)
		}
		val, err := rec.Get(f.Name)
		if err != nil {
			return err
		}
		if err := s.setField(msg, fd, f.Type, val); err != nil {
			return fmt.Errorf("%s.%s: %w", typ.Name(), f.Name, err)
		}
	}
	return nil
}

func (s *Schema) setField(msg *dynamicpb.Message, fd protoreflect.FieldDescriptor, ref schema.TypeRef, val any) error {
	if fd.IsList() {
		items, _ := val.([]any)
		if len(items) == 0 {
			return nil
		}
		list := msg.Mutable(fd).List()
		for i, item := range items {
			pv, ok, err := s.value(fd, *ref.Elem, item, list.NewElement)
			if err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
			if !ok {
				// Elements never stay unset in a list
				pv = list.NewElement()
			}
			list.Append(pv)
		}
		return nil
	}
	pv, ok, err := s.value(fd, ref, val, func() protoreflect.Value { return msg.NewField(fd) })
	if err != nil || !ok {
		return err
	}
	msg.Set(fd, pv)
	return nil
}

// value converts a record value to a protoreflect value. ok is false when
// the field should stay unset.
func (s *Schema) value(fd protoreflect.FieldDescriptor, ref schema.TypeRef, val any, newMessage func() protoreflect.Value) (protoreflect.Value, bool, error) {
	switch ref.Kind {
	case schema.KindText:
		v, _ := val.(string)
		return protoreflect.ValueOfString(v), v != "" || fd.IsList(), nil
	case schema.KindInteger64:
		v, _ := val.(int64)
		return protoreflect.ValueOfInt64(v), v != 0 || fd.IsList(), nil
	case schema.KindFloat64:
		v, _ := val.(float64)
		return protoreflect.ValueOfFloat64(v), v != 0 || fd.IsList(), nil
	case schema.KindBoolean:
		v, _ := val.(bool)
		return protoreflect.ValueOfBool(v), v || fd.IsList(), nil
	case schema.KindSequence:
		// Unset sequences hold a typed nil slice
		items, _ := val.([]any)
		if items == nil {
			return protoreflect.Value{}, false, nil
		}
		lv, err := structpb.NewList(plain(items).([]any))
		if err != nil {
			return protoreflect.Value{}, false, err
		}
		pv := newMessage()
		proto.Merge(pv.Message().Interface(), lv)
		return pv, true, nil
	case schema.KindRecord:
		child, _ := val.(*record.Record)
		if child == nil {
			return protoreflect.Value{}, false, nil
		}
		pv := newMessage()
		dm, ok := pv.Message().Interface().(*dynamicpb.Message)
		if !ok {
			return protoreflect.Value{}, false, fmt.Errorf("%w: %s", ErrUnknownMessage, child.Type().Name())
		}
		if err := s.fill(dm, child); err != nil {
			return protoreflect.Value{}, false, err
		}
		return pv, true, nil
	}
	return protoreflect.Value{}, false, fmt.Errorf("%w: %s", ErrUnsupportedKind, ref.Kind)
}

// MarshalJSON renders a record through protojson using the original JSON
// keys.
func (s *Schema) MarshalJSON(rec *record.Record) ([]byte, error) {
	msg, err := s.FromRecord(rec)
	if err != nil {
		return nil, err
	}
	return protojson.Marshal(msg)
}

// Marshal renders a record in the protobuf binary format.
func (s *Schema) Marshal(rec *record.Record) ([]byte, error) {
	msg, err := s.FromRecord(rec)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(msg)
}

// plain turns opaque sequence contents into values structpb accepts.
func plain(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = plain(item)
		}
		return out
	case *orderedmap.OrderedMap[string, any]:
		out := make(map[string]any, t.Len())
		for pair := t.Oldest(); pair != nil; pair = pair.Next() {
			out[pair.Key] = plain(pair.Value)
		}
		return out
	case *record.Record:
		if t == nil {
			return nil
		}
		out := make(map[string]any)
		for _, f := range t.Type().Fields() {
			val, _ := t.Get(f.Name)
			out[f.Name] = plain(val)
		}
		return out
	}
	return v
}
