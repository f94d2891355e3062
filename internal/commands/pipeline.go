package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/okra-platform/pojogen/internal/codegen"
	"github.com/okra-platform/pojogen/internal/config"
	"github.com/okra-platform/pojogen/internal/naming"
	"github.com/okra-platform/pojogen/internal/session"
)

// Artifact is one generated output
type Artifact struct {
	Language string
	// Path is the file written, or "-" for the controller's output
	Path string
	Size int
}

// Pipeline turns the configured input into every configured target. A
// fresh session is used per run so regenerating never collides with the
// types of a previous run.
type Pipeline struct {
	cfg      *config.Config
	root     string
	registry *codegen.Registry
	out      io.Writer
	logger   zerolog.Logger
}

// NewPipeline creates a pipeline for cfg with paths resolved against root
func NewPipeline(cfg *config.Config, root string, registry *codegen.Registry, out io.Writer, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		root:     root,
		registry: registry,
		out:      out,
		logger:   logger.With().Str("component", "pipeline").Logger(),
	}
}

// Infer reads the input and synthesizes its record types
func (p *Pipeline) Infer() (*session.Result, error) {
	input := config.Resolve(p.root, p.cfg.Input)
	var (
		data []byte
		err  error
	)
	if input == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(input)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input %s: %w", p.cfg.Input, err)
	}

	sess := session.New(
		session.WithArrayElements(p.cfg.Infer.ArrayElements),
		session.WithMaxDepth(p.cfg.Infer.MaxDepth),
		session.WithStrictNames(p.cfg.Infer.StrictNames),
		session.WithLogger(p.logger),
	)
	result, err := sess.GenerateFormat(p.cfg.Name, session.Format(p.cfg.InputFormat()), data)
	if err != nil {
		return nil, fmt.Errorf("failed to generate types from %s: %w", p.cfg.Input, err)
	}
	return result, nil
}

// Run generates and writes every target
func (p *Pipeline) Run(ctx context.Context) ([]Artifact, error) {
	result, err := p.Infer()
	if err != nil {
		return nil, err
	}

	artifacts := make([]Artifact, 0, len(p.cfg.Targets))
	for _, target := range p.cfg.Targets {
		if err := ctx.Err(); err != nil {
			return artifacts, err
		}

		gen, err := p.registry.Get(target.Language, p.cfg.Package)
		if err != nil {
			return artifacts, err
		}
		code, err := gen.Generate(result.Types)
		if err != nil {
			return artifacts, fmt.Errorf("failed to generate %s code: %w", target.Language, err)
		}

		path := target.Output
		if path == "" {
			path = DefaultOutput(p.cfg.Package, p.cfg.Name, gen.FileExtension())
		}
		path = config.Resolve(p.root, path)
		if err := p.write(path, code); err != nil {
			return artifacts, err
		}

		p.logger.Info().Str("language", target.Language).Str("output", path).Int("bytes", len(code)).Msg("generated")
		artifacts = append(artifacts, Artifact{Language: target.Language, Path: path, Size: len(code)})
	}
	return artifacts, nil
}

// Regenerate runs the pipeline and discards the artifact list
func (p *Pipeline) Regenerate(ctx context.Context) error {
	_, err := p.Run(ctx)
	return err
}

func (p *Pipeline) write(path string, code []byte) error {
	if path == "-" {
		if _, err := p.out.Write(code); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, code, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// DefaultOutput is the output path used for a target without one:
// <package>/<snake_name><ext>
func DefaultOutput(pkg, name, ext string) string {
	if pkg == "" {
		pkg = "."
	}
	return "./" + filepath.ToSlash(filepath.Join(pkg, naming.Snake(name)+ext))
}
