package codegen

import (
	"github.com/okra-platform/pojogen/internal/codegen/descriptor"
	"github.com/okra-platform/pojogen/internal/codegen/golang"
	"github.com/okra-platform/pojogen/internal/codegen/graphql"
	"github.com/okra-platform/pojogen/internal/codegen/jsonschema"
	"github.com/okra-platform/pojogen/internal/codegen/protobuf"
	"github.com/okra-platform/pojogen/internal/codegen/typescript"
)

// DefaultRegistry is the global registry instance with pre-registered generators
var DefaultRegistry = NewRegistry()

func init() {
	DefaultRegistry.Register("go", func(packageName string) Generator {
		return golang.NewGenerator(packageName)
	})

	DefaultRegistry.Register("typescript", func(packageName string) Generator {
		return typescript.NewGenerator(packageName)
	})
	// ts is an alias for typescript
	DefaultRegistry.Register("ts", func(packageName string) Generator {
		return typescript.NewGenerator(packageName)
	})

	DefaultRegistry.Register("protobuf", func(packageName string) Generator {
		return protobuf.NewGenerator(packageName)
	})
	DefaultRegistry.Register("proto", func(packageName string) Generator {
		return protobuf.NewGenerator(packageName)
	})

	DefaultRegistry.Register("graphql", func(packageName string) Generator {
		return graphql.NewGenerator(packageName)
	})

	DefaultRegistry.Register("jsonschema", func(packageName string) Generator {
		return jsonschema.NewGenerator(packageName)
	})

	DefaultRegistry.Register("descriptor", func(packageName string) Generator {
		return descriptor.NewGenerator(packageName)
	})
}
