package dynamic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/okra-platform/pojogen/internal/jsonvalue"
	"github.com/okra-platform/pojogen/internal/record"
	"github.com/okra-platform/pojogen/internal/session"
)

const doc = `{"key1":"value1","keyTwo":42,"ratio":0.5,"ok":true,"tags":["a",1,{"k":null}],"key3":{"key31":"value31","key32":"value32"}}`

func generate(t *testing.T, doc string, opts ...session.Option) *session.Result {
	t.Helper()
	res, err := session.New(opts...).GenerateJSON("GeneratedPojo", []byte(doc))
	require.NoError(t, err)
	return res
}

func decodeRecord(t *testing.T, typ *record.Type, doc string) *record.Record {
	t.Helper()
	v, err := jsonvalue.Decode([]byte(doc))
	require.NoError(t, err)
	rec, err := typ.Decode(v)
	require.NoError(t, err)
	return rec
}

func TestDescribe(t *testing.T) {
	// Test: one message per type, fields numbered in order with the original key as json_name
	res := generate(t, doc)
	fd, err := Describe("demo.model", res.Types)
	require.NoError(t, err)

	assert.Equal(t, "demo/model.proto", fd.GetName())
	assert.Equal(t, "proto3", fd.GetSyntax())
	assert.Equal(t, []string{"google/protobuf/struct.proto"}, fd.GetDependency())
	require.Len(t, fd.GetMessageType(), 2)

	root := fd.GetMessageType()[0]
	assert.Equal(t, "GeneratedPojo", root.GetName())

	var names, jsonNames []string
	for i, f := range root.GetField() {
		assert.Equal(t, int32(i+1), f.GetNumber())
		names = append(names, f.GetName())
		jsonNames = append(jsonNames, f.GetJsonName())
	}
	assert.Equal(t, []string{"key1", "key_two", "ratio", "ok", "tags", "key3"}, names)
	assert.Equal(t, []string{"key1", "keyTwo", "ratio", "ok", "tags", "key3"}, jsonNames)

	assert.Equal(t, descriptorpb.FieldDescriptorProto_TYPE_INT64, root.GetField()[1].GetType())
	assert.Equal(t, ".google.protobuf.ListValue", root.GetField()[4].GetTypeName())
	assert.Equal(t, ".demo.model.GeneratedPojoKey3", root.GetField()[5].GetTypeName())
}

func TestDescribe_Errors(t *testing.T) {
	_, err := Describe("x", nil)
	assert.ErrorIs(t, err, ErrEmptyTypes)

	// The nested type is missing from the file
	res := generate(t, `{"a":{"b":1}}`)
	_, err = Describe("x", res.Types[:1])
	assert.ErrorIs(t, err, record.ErrTypeNotFound)
}

func TestCompile_FieldNameFolding(t *testing.T) {
	// Test: keys that collide once lower-cased without underscores still compile
	res := generate(t, `{"a_b":1,"aB":2,"ab":3}`)
	s, err := Compile("", res.Types)
	require.NoError(t, err)

	md, ok := s.MessageType("GeneratedPojo")
	require.True(t, ok)
	require.Equal(t, 3, md.Fields().Len())
	assert.Equal(t, protoreflect.Name("a_b"), md.Fields().Get(0).Name())
	assert.Equal(t, protoreflect.Name("a_b2"), md.Fields().Get(1).Name())
	assert.Equal(t, protoreflect.Name("ab3"), md.Fields().Get(2).Name())
	assert.Equal(t, DefaultPackage, string(s.File().Package()))
}

func TestSchema_MarshalJSON(t *testing.T) {
	res := generate(t, doc)
	s, err := Compile("demo", res.Types)
	require.NoError(t, err)

	rec := decodeRecord(t, res.Root, doc)
	out, err := s.MarshalJSON(rec)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"key1":"value1","keyTwo":"42","ratio":0.5,"ok":true,"tags":["a",1,{"k":null}],"key3":{"key31":"value31","key32":"value32"}}`,
		string(out))
}

func TestSchema_BinaryRoundTrip(t *testing.T) {
	// Test plan:
	// 1. Copy a decoded record into a dynamic message
	// 2. Marshal it to the wire format and parse it into a fresh message
	// 3. Both messages are equal
	res := generate(t, doc)
	s, err := Compile("demo", res.Types)
	require.NoError(t, err)

	rec := decodeRecord(t, res.Root, doc)
	msg, err := s.FromRecord(rec)
	require.NoError(t, err)

	data, err := s.Marshal(rec)
	require.NoError(t, err)

	parsed, err := s.NewMessage("GeneratedPojo")
	require.NoError(t, err)
	require.NoError(t, proto.Unmarshal(data, parsed))
	assert.True(t, proto.Equal(msg, parsed))
}

func TestSchema_RepeatedElements(t *testing.T) {
	res := generate(t, `{"items":[{"id":1},{"id":2}],"names":["x","y"]}`, session.WithArrayElements(true))
	s, err := Compile("demo", res.Types)
	require.NoError(t, err)

	md, _ := s.MessageType("GeneratedPojo")
	items := md.Fields().ByName("items")
	require.NotNil(t, items)
	assert.True(t, items.IsList())
	assert.Equal(t, protoreflect.FullName("demo.GeneratedPojoItemsItem"), items.Message().FullName())

	rec := decodeRecord(t, res.Root, `{"items":[{"id":1},{"id":2}],"names":["x","y"]}`)
	out, err := s.MarshalJSON(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[{"id":"1"},{"id":"2"}],"names":["x","y"]}`, string(out))
}

func TestSchema_ZeroRecordIsEmpty(t *testing.T) {
	res := generate(t, doc)
	s, err := Compile("demo", res.Types)
	require.NoError(t, err)

	out, err := s.MarshalJSON(res.Root.New())
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(out))

	_, err = s.NewMessage("Nope")
	assert.ErrorIs(t, err, ErrUnknownMessage)
}

func TestSchema_UnsetSequenceStaysUnset(t *testing.T) {
	// Test: a never-assigned sequence leaves the field unset, an assigned empty one sets it
	res := generate(t, `{"tags":["a"]}`)
	s, err := Compile("demo", res.Types)
	require.NoError(t, err)
	md, _ := s.MessageType("GeneratedPojo")
	tags := md.Fields().ByName("tags")
	require.NotNil(t, tags)

	msg, err := s.FromRecord(res.Root.New())
	require.NoError(t, err)
	assert.False(t, msg.Has(tags))

	rec := res.Root.New()
	require.NoError(t, rec.Set("tags", []any{}))
	msg, err = s.FromRecord(rec)
	require.NoError(t, err)
	assert.True(t, msg.Has(tags))

	out, err := s.MarshalJSON(res.Root.New())
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(out))
}

func TestSchema_FileDescriptorSet(t *testing.T) {
	res := generate(t, doc)
	s, err := Compile("demo", res.Types)
	require.NoError(t, err)

	set := s.FileDescriptorSet()
	require.Len(t, set.GetFile(), 2)
	assert.Equal(t, "google/protobuf/struct.proto", set.GetFile()[0].GetName())
	assert.Equal(t, "demo.proto", set.GetFile()[1].GetName())
}

func TestPackageName(t *testing.T) {
	tests := map[string]string{
		"":                      DefaultPackage,
		"model":                 "model",
		"demo.model":            "demo.model",
		"github.com/acme/pojos": "pojos",
		"Acme.DataModel":        "acme.data_model",
		"..":                    DefaultPackage,
	}
	for in, want := range tests {
		assert.Equal(t, want, PackageName(in), in)
	}
}
