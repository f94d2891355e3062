package writer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriter_Indentation(t *testing.T) {
	// Test: nested blocks are indented and dedent stops at zero
	w := NewWriter("\t")
	w.WriteBlock("type A struct {", "}", func() {
		w.WriteLine("X int")
		w.WriteBlock("Y struct {", "}", func() {
			w.WriteLine("Z bool")
		})
	})
	w.Dedent()
	assert.Equal(t, 0, w.IndentLevel())
	assert.Equal(t, "type A struct {\n\tX int\n\tY struct {\n\t\tZ bool\n\t}\n}\n", w.String())
}

func TestWriter_BlankLine(t *testing.T) {
	w := NewWriter("  ")
	w.BlankLine()
	w.WriteLine("a")
	w.BlankLine()
	w.BlankLine()
	w.WriteLine("b")
	assert.Equal(t, "a\n\nb\n", w.String())
}

func TestWriter_Write(t *testing.T) {
	w := NewWriter("  ")
	w.Indent()
	w.Write("x")
	w.Writef(" = %d", 1)
	w.Newline()
	w.Write("")
	w.WriteLinef("y = %q", "z")
	assert.Equal(t, "  x = 1\n  y = \"z\"\n", w.String())
	assert.Equal(t, []byte(w.String()), w.Bytes())

	w.Reset()
	assert.Empty(t, w.String())
	assert.Equal(t, 0, w.IndentLevel())
}

func TestWriter_Comments(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want string
	}{
		{"default", nil, "// one\n// two\n//\n// n=3\n"},
		{"hash", []Option{WithCommentPrefix("#")}, "# one\n# two\n#\n# n=3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWriter("\t", tt.opts...)
			w.WriteDocComment("  one\n two  ")
			w.WriteDocComment("")
			w.WriteComment("")
			w.WriteCommentf("n=%d", 3)
			assert.Equal(t, tt.want, w.String())
		})
	}
}

func TestWriter_JSDoc(t *testing.T) {
	w := NewWriter("  ")
	w.WriteJSDoc("single")
	w.WriteJSDoc("first\nsecond")
	w.WriteJSDoc("")
	assert.Equal(t, "/** single */\n/**\n * first\n * second\n */\n", w.String())
}
