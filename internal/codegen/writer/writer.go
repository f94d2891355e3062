// Package writer accumulates generated source text with indentation and
// language-specific comment syntax.
package writer

import (
	"fmt"
	"strings"
)

// GeneratedHeader is the first comment line of every generated text file.
const GeneratedHeader = "Code generated by pojogen. DO NOT EDIT."

// Writer builds generated code line by line.
type Writer struct {
	sb            strings.Builder
	indentLevel   int
	indentString  string
	linePrefix    string
	commentPrefix string
	needsIndent   bool
}

// Option configures a Writer.
type Option func(*Writer)

// WithCommentPrefix sets the line comment marker ("//" by default).
func WithCommentPrefix(prefix string) Option {
	return func(w *Writer) {
		w.commentPrefix = prefix
	}
}

// NewWriter creates a writer that indents with indentString.
func NewWriter(indentString string, opts ...Option) *Writer {
	w := &Writer{
		indentString:  indentString,
		commentPrefix: "//",
		needsIndent:   true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Indent increases the indentation level.
func (w *Writer) Indent() {
	w.indentLevel++
	w.updatePrefix()
}

// Dedent decreases the indentation level.
func (w *Writer) Dedent() {
	if w.indentLevel > 0 {
		w.indentLevel--
		w.updatePrefix()
	}
}

// Write writes s without a trailing newline.
func (w *Writer) Write(s string) {
	if w.needsIndent && s != "" {
		w.sb.WriteString(w.linePrefix)
		w.needsIndent = false
	}
	w.sb.WriteString(s)
}

// Writef is Write with formatting.
func (w *Writer) Writef(format string, args ...any) {
	w.Write(fmt.Sprintf(format, args...))
}

// WriteLine writes s followed by a newline.
func (w *Writer) WriteLine(s string) {
	w.Write(s)
	w.Newline()
}

// WriteLinef is WriteLine with formatting.
func (w *Writer) WriteLinef(format string, args ...any) {
	w.Writef(format, args...)
	w.Newline()
}

// Newline ends the current line.
func (w *Writer) Newline() {
	w.sb.WriteString("\n")
	w.needsIndent = true
}

// BlankLine separates two blocks. It never produces two blank lines in a
// row and does nothing at the start of the output.
func (w *Writer) BlankLine() {
	if w.sb.Len() > 0 && !strings.HasSuffix(w.sb.String(), "\n\n") {
		w.Newline()
	}
}

// IndentLevel returns the current indentation level.
func (w *Writer) IndentLevel() int {
	return w.indentLevel
}

// String returns the text written so far.
func (w *Writer) String() string {
	return w.sb.String()
}

// Bytes returns the text written so far.
func (w *Writer) Bytes() []byte {
	return []byte(w.sb.String())
}

// Reset discards all output and indentation.
func (w *Writer) Reset() {
	w.sb.Reset()
	w.indentLevel = 0
	w.linePrefix = ""
	w.needsIndent = true
}

func (w *Writer) updatePrefix() {
	w.linePrefix = strings.Repeat(w.indentString, w.indentLevel)
}

// WriteBlock writes opener, the indented content, then closer.
func (w *Writer) WriteBlock(opener, closer string, content func()) {
	w.WriteLine(opener)
	w.Indent()
	content()
	w.Dedent()
	w.WriteLine(closer)
}

// WriteComment writes a single line comment.
func (w *Writer) WriteComment(comment string) {
	if comment == "" {
		w.WriteLine(w.commentPrefix)
		return
	}
	w.WriteLinef("%s %s", w.commentPrefix, comment)
}

// WriteCommentf is WriteComment with formatting.
func (w *Writer) WriteCommentf(format string, args ...any) {
	w.WriteComment(fmt.Sprintf(format, args...))
}

// WriteDocComment writes doc as line comments, one per line of doc.
func (w *Writer) WriteDocComment(doc string) {
	if doc == "" {
		return
	}
	for _, line := range strings.Split(strings.TrimSpace(doc), "\n") {
		w.WriteComment(strings.TrimSpace(line))
	}
}

// WriteJSDoc writes doc as a /** ... */ block.
func (w *Writer) WriteJSDoc(doc string) {
	if doc == "" {
		return
	}
	lines := strings.Split(strings.TrimSpace(doc), "\n")
	if len(lines) == 1 {
		w.WriteLinef("/** %s */", strings.TrimSpace(lines[0]))
		return
	}
	w.WriteLine("/**")
	for _, line := range lines {
		w.WriteLinef(" * %s", strings.TrimSpace(line))
	}
	w.WriteLine(" */")
}
