package schema

import (
	"errors"
	"fmt"

	"github.com/okra-platform/pojogen/internal/jsonvalue"
)

// ErrInvalidRootKind is returned when inference is asked to infer a schema
// for anything but a JSON object.
var ErrInvalidRootKind = errors.New("root value must be a JSON object")

// Inferrer walks JSON values and produces schemas. It holds no state
// between calls.
type Inferrer struct {
	arrayElements bool
}

// Option configures an Inferrer.
type Option func(*Inferrer)

// WithArrayElements makes sequences carry an element type taken from their
// first element. Object elements produce a nested schema. Off by default, in
// which case every sequence is opaque.
func WithArrayElements(enabled bool) Option {
	return func(in *Inferrer) {
		in.arrayElements = enabled
	}
}

// NewInferrer creates an Inferrer.
func NewInferrer(opts ...Option) *Inferrer {
	in := &Inferrer{}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Infer returns the schema of a JSON object value.
func (in *Inferrer) Infer(v *jsonvalue.Value) (*Schema, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: got nothing", ErrInvalidRootKind)
	}
	if !v.IsObject() {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidRootKind, v.Kind)
	}
	return in.InferObject(v.Object), nil
}

// InferObject returns the schema of a JSON object. Fields appear in the
// object's key order; nested objects are inferred recursively and carried as
// unnamed record references.
func (in *Inferrer) InferObject(obj *jsonvalue.Object) *Schema {
	s := &Schema{index: make(map[string]int, obj.Len())}
	obj.Range(func(key string, v *jsonvalue.Value) bool {
		// keys are unique in an Object, so add cannot fail
		_ = s.add(key, in.typeOf(v))
		return true
	})
	return s
}

func (in *Inferrer) typeOf(v *jsonvalue.Value) TypeRef {
	switch Classify(v) {
	case KindRecord:
		return Object(in.InferObject(v.Object))
	case KindSequence:
		if in.arrayElements && len(v.Items) > 0 {
			return SequenceOf(in.typeOf(v.Items[0]))
		}
		return Sequence()
	case KindInteger64:
		return Integer64()
	case KindFloat64:
		return Float64()
	case KindBoolean:
		return Boolean()
	default:
		return Text()
	}
}

// Classify maps a JSON value onto exactly one Kind. Strings, nulls and
// anything unrecognised are Text.
func Classify(v *jsonvalue.Value) Kind {
	if v == nil {
		return KindText
	}
	switch v.Kind {
	case jsonvalue.KindObject:
		if v.Object == nil {
			return KindText
		}
		return KindRecord
	case jsonvalue.KindArray:
		return KindSequence
	case jsonvalue.KindNumber:
		if v.Number.IsIntegral() {
			return KindInteger64
		}
		return KindFloat64
	case jsonvalue.KindBool:
		return KindBoolean
	default:
		return KindText
	}
}
