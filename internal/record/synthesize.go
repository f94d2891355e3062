package record

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/okra-platform/pojogen/internal/jsonvalue"
	"github.com/okra-platform/pojogen/internal/naming"
	"github.com/okra-platform/pojogen/internal/schema"
)

// Namer mints the name of the record type synthesized for a nested object
// found under field of the parent type.
type Namer func(parent, field string) string

// DefaultNamer joins the parent name and the exported field name:
// ("GeneratedPojo", "key3") -> "GeneratedPojoKey3".
func DefaultNamer(parent, field string) string {
	return parent + naming.Exported(field)
}

// elemSuffix is appended to minted names of sequence element types.
const elemSuffix = "Item"

// Synthesizer turns schemas into registered record types.
type Synthesizer struct {
	registry *Registry
	namer    Namer
	strict   bool
	logger   zerolog.Logger

	mu  sync.Mutex
	seq int
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithNamer replaces DefaultNamer.
func WithNamer(n Namer) Option {
	return func(s *Synthesizer) {
		s.namer = n
	}
}

// WithStrictNames makes a minted nested name that is already taken fail
// with ErrDuplicateTypeName instead of receiving a numeric suffix.
func WithStrictNames() Option {
	return func(s *Synthesizer) {
		s.strict = true
	}
}

// WithLogger sets the logger used for synthesis events.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Synthesizer) {
		s.logger = logger
	}
}

// NewSynthesizer creates a synthesizer registering into reg.
func NewSynthesizer(reg *Registry, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		registry: reg,
		namer:    DefaultNamer,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "synthesizer").Logger()
	return s
}

// Registry returns the registry types are committed to.
func (s *Synthesizer) Registry() *Registry { return s.registry }

// txn collects the types created by one Synthesize call. Nothing becomes
// visible in the registry until the whole tree has been built.
type txn struct {
	reserved map[string]struct{}
	types    []*Type
}

// Synthesize builds the record type name from sc, recursively synthesizing
// a uniquely named type for every nested object schema, and registers all
// of them at once. On error the registry is left unchanged.
func (s *Synthesizer) Synthesize(name string, sc *schema.Schema) (*Type, error) {
	if sc == nil {
		return nil, ErrNilSchema
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry.synth.Lock()
	defer s.registry.synth.Unlock()

	tx := &txn{reserved: make(map[string]struct{})}
	root, err := s.build(tx, name, sc)
	if err != nil {
		s.logger.Debug().Err(err).Str("type", name).Int("discarded", len(tx.types)).Msg("synthesis rolled back")
		return nil, err
	}
	if err := s.registry.commit(tx.types); err != nil {
		s.logger.Debug().Err(err).Str("type", name).Msg("commit rejected")
		return nil, err
	}
	s.logger.Debug().Str("type", name).Int("types", len(tx.types)).Msg("record types registered")
	return root, nil
}

func (s *Synthesizer) taken(tx *txn, name string) bool {
	if _, ok := tx.reserved[name]; ok {
		return true
	}
	return s.registry.Has(name)
}

func (s *Synthesizer) build(tx *txn, name string, sc *schema.Schema) (*Type, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidTypeName)
	}
	if s.taken(tx, name) {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateTypeName, name)
	}
	tx.reserved[name] = struct{}{}

	t := newType(name, s.registry)
	owners := make(map[string]string, sc.Len()*2)
	for _, f := range sc.Fields() {
		if f.Name == "" {
			return nil, fmt.Errorf("%w: empty field name in type %s", ErrInvalidFieldName, name)
		}
		getter, setter := naming.Getter(f.Name), naming.Setter(f.Name)
		for _, acc := range []string{getter, setter} {
			if other, ok := owners[acc]; ok {
				return nil, fmt.Errorf("%w: accessor %s of field %q collides with field %q in type %s",
					ErrInvalidFieldName, acc, f.Name, other, name)
			}
			owners[acc] = f.Name
		}

		ref, err := s.resolve(tx, name, f.Name, f.Type)
		if err != nil {
			return nil, err
		}
		t.addField(Field{Name: f.Name, Type: ref, Getter: getter, Setter: setter})
		s.logger.Debug().Str("type", name).Str("field", f.Name).Stringer("ref", ref).Msg("field added")
	}

	tx.types = append(tx.types, t)
	return t, nil
}

// resolve returns the committed form of a field type. Unnamed records are
// synthesized first so the field always refers to a type that exists.
func (s *Synthesizer) resolve(tx *txn, parent, field string, ref schema.TypeRef) (schema.TypeRef, error) {
	return s.resolveNamed(tx, parent, field, "", jsonvalue.JoinPointer("", field), ref)
}

// resolveNamed resolves ref as it appears at path below parent. Sequence
// elements extend path with an index marker of 0.
func (s *Synthesizer) resolveNamed(tx *txn, parent, field, suffix, path string, ref schema.TypeRef) (schema.TypeRef, error) {
	switch ref.Kind {
	case schema.KindRecord:
		if ref.Nested == nil {
			if ref.Name == "" || !s.taken(tx, ref.Name) {
				return schema.TypeRef{}, fmt.Errorf("%w: %q referenced by field %q of %s", ErrTypeNotFound, ref.Name, field, parent)
			}
			return schema.Record(ref.Name), nil
		}
		nestedName := s.mint(tx, parent, field, suffix)
		child, err := s.build(tx, nestedName, ref.Nested)
		if err != nil {
			return schema.TypeRef{}, nested(path, nestedName, err)
		}
		return schema.Record(child.name), nil
	case schema.KindSequence:
		if ref.Elem == nil {
			return schema.Sequence(), nil
		}
		elem, err := s.resolveNamed(tx, parent, field, suffix+elemSuffix, jsonvalue.JoinPointer(path, "0"), *ref.Elem)
		if err != nil {
			return schema.TypeRef{}, err
		}
		return schema.SequenceOf(elem), nil
	default:
		return schema.TypeRef{Kind: ref.Kind}, nil
	}
}

// mint picks the name for a nested type. Unless strict naming is on, a
// taken name gets the next value of the session counter appended.
func (s *Synthesizer) mint(tx *txn, parent, field, suffix string) string {
	base := s.namer(parent, field) + suffix
	if s.strict {
		return base
	}
	name := base
	for s.taken(tx, name) {
		s.seq++
		name = base + strconv.Itoa(s.seq)
	}
	return name
}

// nested attributes err to the pointer path, extending the path of an error
// already raised deeper in the tree.
func nested(path, typeName string, err error) error {
	if ne, ok := err.(*NestedSynthesisError); ok {
		ne.Path = path + ne.Path
		return ne
	}
	return &NestedSynthesisError{Path: path, Type: typeName, Err: err}
}
