package codegen

import "github.com/okra-platform/pojogen/internal/record"

// Generator is the interface that all target-language generators implement
type Generator interface {
	// Generate renders the given record types, in order, as one file
	Generate(types []*record.Type) ([]byte, error)

	// Language returns the name of the target language (e.g., "go", "typescript")
	Language() string

	// FileExtension returns the file extension for generated files (e.g., ".go", ".ts")
	FileExtension() string
}
