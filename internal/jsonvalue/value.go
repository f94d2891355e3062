// Package jsonvalue holds the generic JSON tree consumed by schema inference.
// Objects keep the order in which their keys were first seen in the source
// document, which plain Go maps cannot do.
package jsonvalue

import (
	"fmt"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind identifies which alternative of the JSON union a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

var kindNames = [...]string{
	KindNull:   "null",
	KindBool:   "boolean",
	KindNumber: "number",
	KindString: "string",
	KindArray:  "array",
	KindObject: "object",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// Number is a JSON number kept in its literal form.
type Number string

// IsIntegral reports whether the literal is written as an integer. The
// decision is lexical: "1" is integral, "1.0" and "1e3" are not.
func (n Number) IsIntegral() bool {
	return !strings.ContainsAny(string(n), ".eE")
}

// Int64 parses the literal as a signed 64-bit integer.
func (n Number) Int64() (int64, error) {
	return strconv.ParseInt(string(n), 10, 64)
}

// Float64 parses the literal as a 64-bit float.
func (n Number) Float64() (float64, error) {
	return strconv.ParseFloat(string(n), 64)
}

func (n Number) String() string { return string(n) }

// Value is one node of a JSON document. Exactly one payload field is
// meaningful, selected by Kind.
type Value struct {
	Kind   Kind
	Bool   bool
	Number Number
	String string
	Items  []*Value
	Object *Object
}

// Object is a JSON object with stable key order. Setting an existing key
// replaces its value but keeps its original position.
type Object struct {
	m *orderedmap.OrderedMap[string, *Value]
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{m: orderedmap.New[string, *Value]()}
}

// Set stores v under key.
func (o *Object) Set(key string, v *Value) {
	o.m.Set(key, v)
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (*Value, bool) {
	return o.m.Get(key)
}

// Len returns the number of distinct keys.
func (o *Object) Len() int {
	return o.m.Len()
}

// Keys returns the keys in first-seen order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, o.m.Len())
	for pair := o.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Range calls fn for each member in order until fn returns false.
func (o *Object) Range(fn func(key string, v *Value) bool) {
	for pair := o.m.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Constructors used by decoders and tests.

func Null() *Value                 { return &Value{Kind: KindNull} }
func Bool(b bool) *Value           { return &Value{Kind: KindBool, Bool: b} }
func Num(literal string) *Value    { return &Value{Kind: KindNumber, Number: Number(literal)} }
func String(s string) *Value       { return &Value{Kind: KindString, String: s} }
func Array(items ...*Value) *Value { return &Value{Kind: KindArray, Items: items} }

// Obj builds an object value from alternating key/value arguments.
func Obj(kv ...any) *Value {
	o := NewObject()
	for i := 0; i+1 < len(kv); i += 2 {
		o.Set(fmt.Sprint(kv[i]), kv[i+1].(*Value))
	}
	return &Value{Kind: KindObject, Object: o}
}

// IsObject reports whether v is a non-nil object value.
func (v *Value) IsObject() bool {
	return v != nil && v.Kind == KindObject && v.Object != nil
}

// Interface converts v into plain Go values: nil, bool, string, int64 or
// float64 (by the literal's form), []any, and ordered maps for objects.
func (v *Value) Interface() any {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindNumber:
		if v.Number.IsIntegral() {
			if i, err := v.Number.Int64(); err == nil {
				return i
			}
		}
		f, _ := v.Number.Float64()
		return f
	case KindString:
		return v.String
	case KindArray:
		out := make([]any, len(v.Items))
		for i, item := range v.Items {
			out[i] = item.Interface()
		}
		return out
	case KindObject:
		out := orderedmap.New[string, any]()
		v.Object.Range(func(k string, item *Value) bool {
			out.Set(k, item.Interface())
			return true
		})
		return out
	default:
		return nil
	}
}
