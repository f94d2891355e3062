package codegen

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnsupportedLanguage is returned for a language nothing is registered for
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Factory creates a generator emitting into the given package
type Factory func(packageName string) Generator

// Registry manages available code generators
type Registry struct {
	mu         sync.RWMutex
	generators map[string]Factory
}

// NewRegistry creates a new generator registry
func NewRegistry() *Registry {
	return &Registry{
		generators: make(map[string]Factory),
	}
}

// Register adds a new generator factory to the registry
func (r *Registry) Register(language string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generators[language] = factory
}

// Get returns a generator for the specified language
func (r *Registry) Get(language, packageName string) (Generator, error) {
	r.mu.RLock()
	factory, exists := r.generators[language]
	r.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, language)
	}

	return factory(packageName), nil
}

// Languages returns the supported languages, sorted
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	languages := make([]string, 0, len(r.generators))
	for lang := range r.generators {
		languages = append(languages, lang)
	}
	sort.Strings(languages)
	return languages
}
