package record

import (
	"fmt"

	"github.com/okra-platform/pojogen/internal/jsonvalue"
	"github.com/okra-platform/pojogen/internal/schema"
)

// Decode builds an instance of t from a JSON object. Members missing from
// the object or holding null keep their zero value; members the type does
// not declare are ignored.
func (t *Type) Decode(v *jsonvalue.Value) (*Record, error) {
	return t.decode(v, "")
}

func (t *Type) decode(v *jsonvalue.Value, path string) (*Record, error) {
	if !v.IsObject() {
		return nil, fmt.Errorf("%w at %s: %s wants an object, got %s", ErrTypeMismatch, at(path), t.name, kindOf(v))
	}
	rec := t.New()
	for i, f := range t.fields {
		member, ok := v.Object.Get(f.Name)
		if !ok || member == nil || member.Kind == jsonvalue.KindNull {
			continue
		}
		val, err := t.decodeValue(f.Type, member, jsonvalue.JoinPointer(path, f.Name))
		if err != nil {
			return nil, err
		}
		rec.values[i] = val
	}
	return rec, nil
}

func (t *Type) decodeValue(ref schema.TypeRef, v *jsonvalue.Value, path string) (any, error) {
	fail := func() error {
		return fmt.Errorf("%w at %s: want %s, got %s", ErrTypeMismatch, at(path), ref, kindOf(v))
	}
	if v.Kind == jsonvalue.KindNull {
		return zero(ref), nil
	}
	switch ref.Kind {
	case schema.KindText:
		if v.Kind == jsonvalue.KindString {
			return v.String, nil
		}
	case schema.KindInteger64:
		if v.Kind == jsonvalue.KindNumber && v.Number.IsIntegral() {
			i, err := v.Number.Int64()
			if err != nil {
				return nil, fmt.Errorf("%w at %s: %v", ErrTypeMismatch, at(path), err)
			}
			return i, nil
		}
	case schema.KindFloat64:
		if v.Kind == jsonvalue.KindNumber {
			f, err := v.Number.Float64()
			if err != nil {
				return nil, fmt.Errorf("%w at %s: %v", ErrTypeMismatch, at(path), err)
			}
			return f, nil
		}
	case schema.KindBoolean:
		if v.Kind == jsonvalue.KindBool {
			return v.Bool, nil
		}
	case schema.KindSequence:
		if v.Kind != jsonvalue.KindArray {
			break
		}
		out := make([]any, len(v.Items))
		for i, item := range v.Items {
			if ref.Elem == nil {
				out[i] = item.Interface()
				continue
			}
			val, err := t.decodeValue(*ref.Elem, item, jsonvalue.JoinPointer(path, fmt.Sprint(i)))
			if err != nil {
				return nil, err
			}
			out[i] = val
		}
		return out, nil
	case schema.KindRecord:
		nested, ok := t.registry.Lookup(ref.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %q at %s", ErrTypeNotFound, ref.Name, at(path))
		}
		return nested.decode(v, path)
	}
	return nil, fail()
}

func at(path string) string {
	if path == "" {
		return "/"
	}
	return path
}

func kindOf(v *jsonvalue.Value) string {
	if v == nil {
		return "nothing"
	}
	return v.Kind.String()
}
