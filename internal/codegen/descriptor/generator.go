// Package descriptor emits record types as a binary FileDescriptorSet, the
// format accepted by protoc --descriptor_set_in, buf and gRPC reflection.
package descriptor

import (
	"fmt"

	"google.golang.org/protobuf/proto"

	"github.com/okra-platform/pojogen/internal/dynamic"
	"github.com/okra-platform/pojogen/internal/record"
)

// Generator serializes compiled descriptors
type Generator struct {
	packageName string
}

// NewGenerator creates a new descriptor set generator
func NewGenerator(packageName string) *Generator {
	return &Generator{packageName: packageName}
}

// Language returns the name of the target format
func (g *Generator) Language() string {
	return "descriptor"
}

// FileExtension returns the file extension for generated files
func (g *Generator) FileExtension() string {
	return ".binpb"
}

// Generate compiles the types and marshals the resulting descriptor set,
// imports included. Marshalling is deterministic.
func (g *Generator) Generate(types []*record.Type) ([]byte, error) {
	s, err := dynamic.Compile(g.packageName, types)
	if err != nil {
		return nil, err
	}
	out, err := proto.MarshalOptions{Deterministic: true}.Marshal(s.FileDescriptorSet())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal descriptor set: %w", err)
	}
	return out, nil
}
