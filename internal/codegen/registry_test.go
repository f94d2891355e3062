package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okra-platform/pojogen/internal/record"
	"github.com/okra-platform/pojogen/internal/session"
)

// mockGenerator is a test generator
type mockGenerator struct {
	lang string
}

func (m *mockGenerator) Generate(types []*record.Type) ([]byte, error) {
	return []byte("mock output"), nil
}

func (m *mockGenerator) Language() string {
	return m.lang
}

func (m *mockGenerator) FileExtension() string {
	return ".mock"
}

func TestRegistry_Register(t *testing.T) {
	// Test: Register custom generator
	r := NewRegistry()

	r.Register("mock", func(packageName string) Generator {
		return &mockGenerator{lang: "mock"}
	})

	gen, err := r.Get("mock", "testpkg")
	require.NoError(t, err)
	assert.Equal(t, "mock", gen.Language())
}

func TestRegistry_UnsupportedLanguage(t *testing.T) {
	// Test: Error for unsupported language
	r := NewRegistry()

	gen, err := r.Get("unknown", "testpkg")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
	assert.Nil(t, gen)
	assert.Contains(t, err.Error(), "unsupported language: unknown")
}

func TestRegistry_Languages(t *testing.T) {
	// Test: languages are listed sorted
	r := NewRegistry()
	assert.Empty(t, r.Languages())

	for _, lang := range []string{"typescript", "go", "python"} {
		lang := lang
		r.Register(lang, func(packageName string) Generator {
			return &mockGenerator{lang: lang}
		})
	}
	assert.Equal(t, []string{"go", "python", "typescript"}, r.Languages())
}

func TestDefaultRegistry(t *testing.T) {
	// Test plan:
	// 1. Every built-in target is registered, aliases included
	// 2. Each one generates non-empty output for the same forest
	assert.Equal(t, []string{"descriptor", "go", "graphql", "jsonschema", "proto", "protobuf", "ts", "typescript"}, DefaultRegistry.Languages())

	res, err := session.New().GenerateJSON("GeneratedPojo", []byte(`{"key1":"v","key2":1,"tags":[],"key3":{"key31":"x"}}`))
	require.NoError(t, err)

	extensions := map[string]string{
		"descriptor": ".binpb",
		"go":         ".go",
		"graphql":    ".graphql",
		"jsonschema": ".schema.json",
		"proto":      ".proto",
		"protobuf":   ".proto",
		"ts":         ".ts",
		"typescript": ".ts",
	}
	for lang, ext := range extensions {
		gen, err := DefaultRegistry.Get(lang, "model")
		require.NoError(t, err, lang)
		assert.Equal(t, ext, gen.FileExtension(), lang)

		out, err := gen.Generate(res.Types)
		require.NoError(t, err, lang)
		assert.NotEmpty(t, out, lang)
	}
}
