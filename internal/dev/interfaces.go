package dev

import "context"

// Regenerator rebuilds generated output from the current inputs
type Regenerator interface {
	Regenerate(ctx context.Context) error
}

// RegeneratorFunc adapts a function to the Regenerator interface
type RegeneratorFunc func(ctx context.Context) error

// Regenerate calls f(ctx)
func (f RegeneratorFunc) Regenerate(ctx context.Context) error {
	return f(ctx)
}
