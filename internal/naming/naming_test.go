package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccessorNames(t *testing.T) {
	tests := []struct {
		field, getter, setter string
	}{
		{"key1", "getKey1", "setKey1"},
		{"key31", "getKey31", "setKey31"},
		{"Name", "getName", "setName"},
		{"élan", "getÉlan", "setÉlan"},
		{"1st", "get1st", "set1st"},
		{"_id", "get_id", "set_id"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.getter, Getter(tt.field), tt.field)
		assert.Equal(t, tt.setter, Setter(tt.field), tt.field)
	}
}

func TestExported(t *testing.T) {
	tests := map[string]string{
		"user_name": "UserName",
		"key-31":    "Key31",
		"userID":    "UserID",
		"1st":       "X1st",
		"":          "Field",
		"--":        "Field",
		"a b.c":     "ABC",
	}
	for in, want := range tests {
		assert.Equal(t, want, Exported(in), in)
	}
}

func TestCamel(t *testing.T) {
	assert.Equal(t, "userName", Camel("user_name"))
	assert.Equal(t, "field", Camel(""))
	assert.Equal(t, "key3", Camel("Key3"))
}

func TestSnake(t *testing.T) {
	tests := map[string]string{
		"userName": "user_name",
		"key-1":    "key_1",
		"Key31":    "key31",
		"HTTPCode": "httpcode",
		"a1B":      "a1_b",
		"":         "field",
		"9lives":   "f_9lives",
	}
	for in, want := range tests {
		assert.Equal(t, want, Snake(in), in)
	}
}

func TestASCII(t *testing.T) {
	assert.Equal(t, "Key_31", ASCII("Key_31"))
	assert.Equal(t, "_u00C9lan", ASCII("Élan"))
	assert.Equal(t, "a_u002Db", ASCII("a-b"))
}

func TestSet_Reserve(t *testing.T) {
	// Test: taken names get the smallest free numeric suffix
	s := NewSet("type")
	assert.Equal(t, "type2", s.Reserve("type"))
	assert.Equal(t, "Name", s.Reserve("Name"))
	assert.Equal(t, "Name2", s.Reserve("Name"))
	assert.Equal(t, "Name3", s.Reserve("Name"))
	assert.True(t, s.Has("Name3"))
	assert.False(t, s.Has("Name4"))
}
