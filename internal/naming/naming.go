// Package naming derives identifiers from JSON keys: accessor names for
// synthesized record types and language-safe identifiers for emitted code.
package naming

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	getterPrefix = "get"
	setterPrefix = "set"
)

// Capitalize upper-cases the first rune of s and leaves the rest untouched.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Getter returns the read accessor name for a field ("key1" -> "getKey1").
func Getter(field string) string {
	return getterPrefix + Capitalize(field)
}

// Setter returns the write accessor name for a field ("key1" -> "setKey1").
func Setter(field string) string {
	return setterPrefix + Capitalize(field)
}

// words splits s into alphanumeric runs. Any other rune is a separator.
func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Exported converts an arbitrary key into an exported identifier usable in
// Go and TypeScript: "user_name" -> "UserName", "key-31" -> "Key31".
// Existing humps are kept ("userID" -> "UserID").
func Exported(s string) string {
	var b strings.Builder
	for _, w := range words(s) {
		b.WriteString(Capitalize(w))
	}
	out := b.String()
	if out == "" {
		return "Field"
	}
	if r, _ := utf8.DecodeRuneInString(out); unicode.IsDigit(r) {
		out = "X" + out
	}
	return out
}

// Camel is Exported with a lower-cased first rune ("user_name" -> "userName").
func Camel(s string) string {
	e := Exported(s)
	r, size := utf8.DecodeRuneInString(e)
	return string(unicode.ToLower(r)) + e[size:]
}

// Snake converts a key into a lower snake_case identifier for protobuf
// fields: "userName" -> "user_name", "key-1" -> "key_1".
func Snake(s string) string {
	var parts []string
	for _, w := range words(s) {
		parts = append(parts, splitHumps(w)...)
	}
	out := strings.ToLower(strings.Join(parts, "_"))
	if out == "" {
		return "field"
	}
	if r, _ := utf8.DecodeRuneInString(out); !unicode.IsLetter(r) {
		out = "f_" + out
	}
	return out
}

// splitHumps breaks a camelCase word at lower->upper transitions.
func splitHumps(w string) []string {
	var (
		out   []string
		start int
		prev  rune
	)
	for i, r := range w {
		if i > 0 && unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
			out = append(out, w[start:i])
			start = i
		}
		prev = r
	}
	return append(out, w[start:])
}

// Set hands out identifiers that are unique within one scope (a struct, a
// message, a file). A taken name gets the smallest free numeric suffix.
type Set struct {
	used map[string]struct{}
}

// NewSet creates an empty identifier scope, optionally pre-seeded with
// reserved names.
func NewSet(reserved ...string) *Set {
	s := &Set{used: make(map[string]struct{}, len(reserved))}
	for _, r := range reserved {
		s.used[r] = struct{}{}
	}
	return s
}

// Reserve returns name, or name2, name3, ... if name is already in use.
func (s *Set) Reserve(name string) string {
	candidate := name
	for i := 2; s.Has(candidate); i++ {
		candidate = name + strconv.Itoa(i)
	}
	s.used[candidate] = struct{}{}
	return candidate
}

// Has reports whether name has been handed out or reserved.
func (s *Set) Has(name string) bool {
	_, ok := s.used[name]
	return ok
}

// ASCII rewrites every rune outside [A-Za-z0-9_] as "_uXXXX" so identifiers
// survive in languages that only accept ASCII names (protobuf, GraphQL).
func ASCII(id string) string {
	var b strings.Builder
	for _, r := range id {
		if r < utf8.RuneSelf && (r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			continue
		}
		fmt.Fprintf(&b, "_u%04X", r)
	}
	return b.String()
}
