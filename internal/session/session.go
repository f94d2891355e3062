// Package session runs one generation request: decode a document, infer
// its schema and synthesize the record type forest into a registry owned by
// the session.
package session

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/okra-platform/pojogen/internal/jsonvalue"
	"github.com/okra-platform/pojogen/internal/record"
	"github.com/okra-platform/pojogen/internal/schema"
)

// DefaultName is the root type name used when none is configured.
const DefaultName = "GeneratedPojo"

// Result is the outcome of a successful generation.
type Result struct {
	Root *record.Type
	// Types is the forest reachable from Root, parents before children.
	Types []*record.Type
}

// Session owns a registry and the inference and synthesis settings used to
// fill it.
type Session struct {
	registry    *record.Registry
	inferrer    *schema.Inferrer
	synthesizer *record.Synthesizer
	decodeOpts  []jsonvalue.DecodeOption
	inferOpts   []schema.Option
	recordOpts  []record.Option
	logger      zerolog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithArrayElements turns on first-element refinement of sequences.
func WithArrayElements(enabled bool) Option {
	return func(s *Session) {
		s.inferOpts = append(s.inferOpts, schema.WithArrayElements(enabled))
	}
}

// WithMaxDepth bounds the nesting depth accepted when decoding documents.
func WithMaxDepth(depth int) Option {
	return func(s *Session) {
		s.decodeOpts = append(s.decodeOpts, jsonvalue.WithMaxDepth(depth))
	}
}

// WithStrictNames makes colliding nested type names an error.
func WithStrictNames(enabled bool) Option {
	return func(s *Session) {
		if enabled {
			s.recordOpts = append(s.recordOpts, record.WithStrictNames())
		}
	}
}

// WithNamer overrides how nested type names are minted.
func WithNamer(n record.Namer) Option {
	return func(s *Session) {
		s.recordOpts = append(s.recordOpts, record.WithNamer(n))
	}
}

// WithRegistry shares an existing registry instead of creating one.
func WithRegistry(reg *record.Registry) Option {
	return func(s *Session) {
		s.registry = reg
	}
}

// WithLogger sets the logger passed down to the synthesizer.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// New creates a session with an empty registry.
func New(opts ...Option) *Session {
	s := &Session{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = record.NewRegistry()
	}
	s.inferrer = schema.NewInferrer(s.inferOpts...)
	s.synthesizer = record.NewSynthesizer(s.registry, append(s.recordOpts, record.WithLogger(s.logger))...)
	s.logger = s.logger.With().Str("component", "session").Logger()
	return s
}

// Registry returns the session's registry.
func (s *Session) Registry() *record.Registry { return s.registry }

// Generate infers the schema of v and synthesizes the type name from it.
func (s *Session) Generate(name string, v *jsonvalue.Value) (*Result, error) {
	sc, err := s.inferrer.Infer(v)
	if err != nil {
		return nil, err
	}
	root, err := s.synthesizer.Synthesize(name, sc)
	if err != nil {
		return nil, err
	}
	types := record.Walk(root)
	s.logger.Debug().Str("root", root.Name()).Int("types", len(types)).Msg("generated record types")
	return &Result{Root: root, Types: types}, nil
}

// GenerateJSON decodes a JSON document and generates from it.
func (s *Session) GenerateJSON(name string, data []byte) (*Result, error) {
	v, err := jsonvalue.Decode(data, s.decodeOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to decode JSON input: %w", err)
	}
	return s.Generate(name, v)
}

// GenerateYAML decodes a YAML document and generates from it.
func (s *Session) GenerateYAML(name string, data []byte) (*Result, error) {
	v, err := jsonvalue.DecodeYAML(data, s.decodeOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to decode YAML input: %w", err)
	}
	return s.Generate(name, v)
}

// Format names an input document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// GenerateFormat dispatches on format. An empty format means JSON.
func (s *Session) GenerateFormat(name string, format Format, data []byte) (*Result, error) {
	switch format {
	case FormatJSON, "":
		return s.GenerateJSON(name, data)
	case FormatYAML, "yml":
		return s.GenerateYAML(name, data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
