package schema

import (
	"testing"

	"github.com/okra-platform/pojogen/internal/jsonvalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, doc string) *jsonvalue.Value {
	t.Helper()
	v, err := jsonvalue.Decode([]byte(doc))
	require.NoError(t, err)
	return v
}

func TestInfer_TypeMapping(t *testing.T) {
	// Test: every JSON value kind maps onto one TypeRef kind
	tests := []struct {
		doc  string
		want Kind
	}{
		{`{"f":1}`, KindInteger64},
		{`{"f":-7}`, KindInteger64},
		{`{"f":1.5}`, KindFloat64},
		{`{"f":2.0}`, KindFloat64},
		{`{"f":3e8}`, KindFloat64},
		{`{"f":true}`, KindBoolean},
		{`{"f":"x"}`, KindText},
		{`{"f":null}`, KindText},
		{`{"f":[1,2]}`, KindSequence},
		{`{"f":[]}`, KindSequence},
		{`{"f":{"g":1}}`, KindRecord},
	}

	in := NewInferrer()
	for _, tt := range tests {
		t.Run(tt.doc, func(t *testing.T) {
			s, err := in.Infer(decode(t, tt.doc))
			require.NoError(t, err)
			typ, ok := s.Lookup("f")
			require.True(t, ok)
			assert.Equal(t, tt.want, typ.Kind)
		})
	}
}

func TestInfer_OrderPreserved(t *testing.T) {
	// Test: schema order equals first-seen key order, not alphabetical
	s, err := NewInferrer().Infer(decode(t, `{"b":1,"a":"x","c":true}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, s.Names())
}

func TestInfer_NestedObject(t *testing.T) {
	// Test: nested objects carry their own schema and no name
	s, err := NewInferrer().Infer(decode(t, `{"key3":{"key31":"value31","key32":"value32"}}`))
	require.NoError(t, err)

	key3, ok := s.Lookup("key3")
	require.True(t, ok)
	assert.Equal(t, KindRecord, key3.Kind)
	assert.Empty(t, key3.Name)
	assert.True(t, key3.Pending())
	require.NotNil(t, key3.Nested)
	assert.Equal(t, []string{"key31", "key32"}, key3.Nested.Names())
	for _, f := range key3.Nested.Fields() {
		assert.Equal(t, KindText, f.Type.Kind)
	}
}

func TestInfer_InvalidRootKind(t *testing.T) {
	// Test: arrays and scalars at the top level are rejected
	in := NewInferrer()
	for _, doc := range []string{`[1,2]`, `[{"a":1}]`, `"text"`, `42`, `null`, `true`} {
		_, err := in.Infer(decode(t, doc))
		assert.ErrorIs(t, err, ErrInvalidRootKind, doc)
	}
	_, err := in.Infer(nil)
	assert.ErrorIs(t, err, ErrInvalidRootKind)
}

func TestInfer_ArraysOpaqueByDefault(t *testing.T) {
	// Test: element structure is not inspected unless enabled
	doc := decode(t, `{"key5":[{"key511":"a"},{"key521":"b"}]}`)

	s, err := NewInferrer().Infer(doc)
	require.NoError(t, err)
	key5, _ := s.Lookup("key5")
	assert.Equal(t, KindSequence, key5.Kind)
	assert.Nil(t, key5.Elem)
	assert.False(t, key5.Pending())

	s, err = NewInferrer(WithArrayElements(true)).Infer(doc)
	require.NoError(t, err)
	key5, _ = s.Lookup("key5")
	require.NotNil(t, key5.Elem)
	assert.Equal(t, KindRecord, key5.Elem.Kind)
	assert.True(t, key5.Pending())
	assert.Equal(t, []string{"key511"}, key5.Elem.Nested.Names())
}

func TestInfer_ArrayElementsFirstElementWins(t *testing.T) {
	s, err := NewInferrer(WithArrayElements(true)).Infer(decode(t, `{"a":[1,"x",2.5],"b":[]}`))
	require.NoError(t, err)

	a, _ := s.Lookup("a")
	require.NotNil(t, a.Elem)
	assert.Equal(t, "Sequence<Integer64>", a.String())

	b, _ := s.Lookup("b")
	assert.Nil(t, b.Elem)
}

func TestSchema_New(t *testing.T) {
	s, err := New(Field{Name: "a", Type: Text()}, Field{Name: "b", Type: Integer64()})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, "{a: Text, b: Integer64}", s.String())

	_, err = New(Field{Name: "a", Type: Text()}, Field{Name: "a", Type: Boolean()})
	assert.ErrorIs(t, err, ErrDuplicateField)

	assert.Panics(t, func() {
		MustNew(Field{Name: "x"}, Field{Name: "x"})
	})
}

func TestSchema_FieldsIsACopy(t *testing.T) {
	s := MustNew(Field{Name: "a", Type: Text()})
	fields := s.Fields()
	fields[0].Name = "changed"
	assert.Equal(t, []string{"a"}, s.Names())
}

func TestTypeRef_String(t *testing.T) {
	assert.Equal(t, "Text", Text().String())
	assert.Equal(t, "Record(Address)", Record("Address").String())
	assert.Equal(t, "Record(?)", Object(MustNew()).String())
	assert.Equal(t, "Sequence", Sequence().String())
	assert.Equal(t, "Sequence<Record(Item)>", SequenceOf(Record("Item")).String())
	assert.Equal(t, "Kind(42)", Kind(42).String())
}
