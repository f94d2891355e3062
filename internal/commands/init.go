package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/okra-platform/pojogen/internal/codegen"
	"github.com/okra-platform/pojogen/internal/config"
)

// ErrConfigExists is returned when init would overwrite a config file
var ErrConfigExists = errors.New("config file already exists")

type InitOptions struct {
	Name      string
	Input     string
	Package   string
	Languages []string
}

type FileSystem interface {
	Stat(name string) (os.FileInfo, error)
}

type osFileSystem struct{}

func (fs *osFileSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

type InitCommand struct {
	filesystem FileSystem
	registry   *codegen.Registry
	// Path of the config file to write
	path string
	// For testing: if set, skip prompting
	testOptions *InitOptions
}

func NewInitCommand(path string, registry *codegen.Registry) *InitCommand {
	return &InitCommand{
		filesystem: &osFileSystem{},
		registry:   registry,
		path:       path,
	}
}

func (c *Controller) Init(ctx context.Context) error {
	path := c.configPath()
	if path == "" {
		path = config.FileNames[0]
	}
	cmd := NewInitCommand(path, c.registry())
	if err := cmd.Run(ctx); err != nil {
		return err
	}
	c.Logger.Info().Str("path", path).Msg("wrote config")
	fmt.Fprintf(c.out(), "✅ Created %s\n", path)
	return nil
}

func (ic *InitCommand) Run(ctx context.Context) error {
	return ic.RunWithOptions(ctx)
}

func (ic *InitCommand) RunWithOptions(ctx context.Context, opts ...tea.ProgramOption) error {
	if _, err := ic.filesystem.Stat(ic.path); err == nil {
		return fmt.Errorf("%w: %s", ErrConfigExists, ic.path)
	}

	var options *InitOptions
	var err error

	// For testing: use provided options instead of prompting
	if ic.testOptions != nil {
		options = ic.testOptions
	} else {
		options, err = ic.promptInitOptions(opts...)
		if err != nil {
			return fmt.Errorf("failed to get init options: %w", err)
		}
	}

	cfg, err := ic.buildConfig(options)
	if err != nil {
		return err
	}
	if err := cfg.Save(ic.path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// buildConfig turns the answers into a config with one target per language
func (ic *InitCommand) buildConfig(options *InitOptions) (*config.Config, error) {
	cfg := &config.Config{
		Name:    options.Name,
		Input:   options.Input,
		Package: options.Package,
	}
	for _, lang := range options.Languages {
		gen, err := ic.registry.Get(lang, options.Package)
		if err != nil {
			return nil, err
		}
		cfg.Targets = append(cfg.Targets, config.Target{
			Language: lang,
			Output:   DefaultOutput(options.Package, options.Name, gen.FileExtension()),
		})
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

func (ic *InitCommand) promptInitOptions(opts ...tea.ProgramOption) (*InitOptions, error) {
	options := &InitOptions{
		Name:      config.DefaultName,
		Input:     config.DefaultInput,
		Package:   config.DefaultPackage,
		Languages: []string{config.DefaultLanguage},
	}

	form := ic.createInitForm(options)

	if len(opts) > 0 {
		// For testing: run with provided options
		program := tea.NewProgram(form, opts...)
		if _, err := program.Run(); err != nil {
			return nil, err
		}
	} else {
		// Normal execution
		if err := form.Run(); err != nil {
			return nil, err
		}
	}

	return options, nil
}

func (ic *InitCommand) createInitForm(options *InitOptions) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Root type name").
				Description("Name of the record type generated for the whole document").
				Value(&options.Name).
				Validate(validateTypeName),

			huh.NewInput().
				Title("Sample document").
				Description("JSON or YAML file the types are inferred from").
				Value(&options.Input).
				Validate(ic.validateInput),

			huh.NewInput().
				Title("Package").
				Description("Package or namespace of the generated code").
				Value(&options.Package),

			huh.NewMultiSelect[string]().
				Title("Targets").
				Description("Languages to generate").
				Options(
					huh.NewOption("Go", "go").Selected(true),
					huh.NewOption("TypeScript", "typescript"),
					huh.NewOption("Protocol Buffers", "protobuf"),
					huh.NewOption("GraphQL", "graphql"),
					huh.NewOption("JSON Schema", "jsonschema"),
					huh.NewOption("Descriptor set", "descriptor"),
				).
				Value(&options.Languages).
				Validate(func(langs []string) error {
					if len(langs) == 0 {
						return fmt.Errorf("select at least one target")
					}
					return nil
				}),
		),
	)
}

func validateTypeName(s string) error {
	if s == "" {
		return fmt.Errorf("type name cannot be empty")
	}
	if strings.IndexFunc(s, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }) < 0 {
		return fmt.Errorf("type name %q has no letters or digits", s)
	}
	return nil
}

func (ic *InitCommand) validateInput(s string) error {
	if s == "" {
		return fmt.Errorf("sample document cannot be empty")
	}
	if s == "-" {
		return nil
	}
	path := s
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(ic.path), path)
	}
	if _, err := ic.filesystem.Stat(path); err != nil {
		return fmt.Errorf("sample document %s not found", s)
	}
	return nil
}
