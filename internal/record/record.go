package record

import (
	"bytes"
	"fmt"
	"math"

	"github.com/goccy/go-json"

	"github.com/okra-platform/pojogen/internal/schema"
)

// Record is an instance of a synthesized type. Field values are held as
// string, int64, float64, bool, []any or *Record according to the field's
// declared kind.
type Record struct {
	typ    *Type
	values []any
}

// zero returns the value a fresh instance holds for a field of type t.
func zero(t schema.TypeRef) any {
	switch t.Kind {
	case schema.KindText:
		return ""
	case schema.KindInteger64:
		return int64(0)
	case schema.KindFloat64:
		return float64(0)
	case schema.KindBoolean:
		return false
	case schema.KindSequence:
		return []any(nil)
	case schema.KindRecord:
		return (*Record)(nil)
	}
	return nil
}

// Type returns the record's type.
func (r *Record) Type() *Type { return r.typ }

// Get returns the current value of field.
func (r *Record) Get(field string) (any, error) {
	i, ok := r.typ.index[field]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, r.typ.name, field)
	}
	return r.values[i], nil
}

// Set stores v in field after converting it to the field's kind. Integers
// are accepted for Float64 fields and any integer that fits is accepted for
// Integer64 fields. A Record field accepts nil or a record of the declared
// type.
func (r *Record) Set(field string, v any) error {
	i, ok := r.typ.index[field]
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownField, r.typ.name, field)
	}
	f := r.typ.fields[i]
	converted, err := convert(f.Type, v)
	if err != nil {
		return fmt.Errorf("%s.%s: %w", r.typ.name, field, err)
	}
	r.values[i] = converted
	return nil
}

// Call invokes a generated accessor by name. A read accessor takes no
// arguments and returns the field value; a write accessor takes exactly one
// argument and returns nil.
func (r *Record) Call(accessor string, args ...any) (any, error) {
	acc, ok := r.typ.Accessor(accessor)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownAccessor, r.typ.name, accessor)
	}
	switch acc.Kind {
	case Read:
		if len(args) != 0 {
			return nil, fmt.Errorf("%w: %s takes no arguments, got %d", ErrArity, accessor, len(args))
		}
		return r.Get(acc.Field)
	default:
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: %s takes 1 argument, got %d", ErrArity, accessor, len(args))
		}
		return nil, r.Set(acc.Field, args[0])
	}
}

// MarshalJSON writes the fields as a JSON object in declaration order.
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.typ.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		var val []byte
		if nested, ok := r.values[i].(*Record); ok {
			val, err = nested.MarshalJSON()
		} else {
			val, err = json.Marshal(r.values[i])
		}
		if err != nil {
			return nil, fmt.Errorf("marshal %s.%s: %w", r.typ.name, f.Name, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *Record) String() string {
	if r == nil {
		return "<nil>"
	}
	b, err := r.MarshalJSON()
	if err != nil {
		return r.typ.name + "{?}"
	}
	return r.typ.name + string(b)
}

func mismatch(want schema.TypeRef, v any) error {
	return fmt.Errorf("%w: want %s, got %T", ErrTypeMismatch, want, v)
}

func convert(t schema.TypeRef, v any) (any, error) {
	switch t.Kind {
	case schema.KindText:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case schema.KindInteger64:
		if i, ok := toInt64(v); ok {
			return i, nil
		}
	case schema.KindFloat64:
		switch n := v.(type) {
		case float64:
			return n, nil
		case float32:
			return float64(n), nil
		}
		if i, ok := toInt64(v); ok {
			return float64(i), nil
		}
	case schema.KindBoolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case schema.KindSequence:
		if v == nil {
			return []any(nil), nil
		}
		items, ok := v.([]any)
		if !ok {
			break
		}
		if t.Elem == nil {
			return items, nil
		}
		out := make([]any, len(items))
		for i, item := range items {
			c, err := convert(*t.Elem, item)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = c
		}
		return out, nil
	case schema.KindRecord:
		switch rec := v.(type) {
		case nil:
			return (*Record)(nil), nil
		case *Record:
			if rec == nil || rec.typ.name == t.Name {
				return rec, nil
			}
			return nil, fmt.Errorf("%w: want %s, got record %s", ErrTypeMismatch, t, rec.typ.name)
		}
	}
	return nil, mismatch(t, v)
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return uint64ToInt64(uint64(n))
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return uint64ToInt64(n)
	}
	return 0, false
}

func uint64ToInt64(n uint64) (int64, bool) {
	if n > math.MaxInt64 {
		return 0, false
	}
	return int64(n), true
}
