package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/okra-platform/pojogen/internal/codegen"
	"github.com/okra-platform/pojogen/internal/config"
)

// Overrides are command-line values that take precedence over the config
// file. Zero values leave the config untouched.
type Overrides struct {
	Input   string
	Format  string
	Name    string
	Package string
	// Languages replaces the configured targets
	Languages []string
	// Output is the file for a single target, a directory for several, or
	// "-" for standard output
	Output        string
	ArrayElements *bool
	StrictNames   *bool
	MaxDepth      int
}

// Apply writes the overrides into cfg
func (o Overrides) Apply(cfg *config.Config, registry *codegen.Registry) error {
	if o.Input != "" {
		// Keep watching the input when the watch patterns were defaulted from it
		if len(cfg.Watch.Patterns) == 1 && cfg.Watch.Patterns[0] == cfg.Input {
			cfg.Watch.Patterns = []string{o.Input}
		}
		cfg.Input = o.Input
	}
	if o.Format != "" {
		cfg.Format = o.Format
	}
	if o.Name != "" {
		cfg.Name = o.Name
	}
	if o.Package != "" {
		cfg.Package = o.Package
	}
	if o.ArrayElements != nil {
		cfg.Infer.ArrayElements = *o.ArrayElements
	}
	if o.StrictNames != nil {
		cfg.Infer.StrictNames = *o.StrictNames
	}
	if o.MaxDepth > 0 {
		cfg.Infer.MaxDepth = o.MaxDepth
	}

	if len(o.Languages) > 0 {
		targets := make([]config.Target, 0, len(o.Languages))
		for _, lang := range o.Languages {
			gen, err := registry.Get(lang, cfg.Package)
			if err != nil {
				return err
			}
			out := o.Output
			switch {
			case out == "":
				out = DefaultOutput(cfg.Package, cfg.Name, gen.FileExtension())
			case out != "-" && len(o.Languages) > 1:
				out = filepath.Join(out, filepath.Base(DefaultOutput("", cfg.Name, gen.FileExtension())))
			}
			targets = append(targets, config.Target{Language: lang, Output: out})
		}
		cfg.Targets = targets
		return nil
	}

	if o.Output != "" {
		if len(cfg.Targets) != 1 {
			return fmt.Errorf("--out needs exactly one target, the config has %d", len(cfg.Targets))
		}
		cfg.Targets[0].Output = o.Output
	}
	return nil
}

// Generate infers types from the input and writes every target
func (c *Controller) Generate(ctx context.Context, o Overrides) ([]Artifact, error) {
	cfg, root, err := c.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load project config: %w", err)
	}
	if err := o.Apply(cfg, c.registry()); err != nil {
		return nil, err
	}

	return NewPipeline(cfg, root, c.registry(), c.out(), c.Logger).Run(ctx)
}
