package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// FileNames are the config file names searched for, in order of preference
var FileNames = []string{"pojogen.json", "pojogen.yaml", "pojogen.yml"}

const (
	DefaultName     = "GeneratedPojo"
	DefaultInput    = "./sample.json"
	DefaultPackage  = "model"
	DefaultLanguage = "go"
	DefaultOutput   = "./model/model.go"
	DefaultMaxDepth = 64
)

var (
	ErrConfigNotFound = errors.New("no config file found")
	ErrUnknownFormat  = errors.New("unknown format")
)

// Config represents the pojogen.json (or pojogen.yaml) configuration file
type Config struct {
	// Name of the root record type
	Name string `json:"name" yaml:"name"`
	// Input is the sample document types are inferred from
	Input string `json:"input" yaml:"input"`
	// Format of the input, json or yaml; derived from the extension when empty
	Format  string      `json:"format,omitempty" yaml:"format,omitempty"`
	Package string      `json:"package" yaml:"package"`
	Targets []Target    `json:"targets" yaml:"targets"`
	Infer   InferConfig `json:"infer" yaml:"infer"`
	Watch   WatchConfig `json:"watch" yaml:"watch"`
}

// Target is one generated file
type Target struct {
	Language string `json:"language" yaml:"language"`
	Output   string `json:"output" yaml:"output"`
}

// InferConfig contains schema inference settings
type InferConfig struct {
	ArrayElements bool `json:"arrayElements" yaml:"arrayElements"`
	MaxDepth      int  `json:"maxDepth" yaml:"maxDepth"`
	StrictNames   bool `json:"strictNames" yaml:"strictNames"`
}

// WatchConfig contains watch mode settings
type WatchConfig struct {
	Patterns []string `json:"patterns" yaml:"patterns"`
	Exclude  []string `json:"exclude" yaml:"exclude"`
}

// Default returns a config with every default applied
func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills in every unset field
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.Input == "" {
		c.Input = DefaultInput
	}
	if c.Package == "" {
		c.Package = DefaultPackage
	}
	if len(c.Targets) == 0 {
		c.Targets = []Target{{Language: DefaultLanguage, Output: DefaultOutput}}
	}
	if c.Infer.MaxDepth == 0 {
		c.Infer.MaxDepth = DefaultMaxDepth
	}
	if len(c.Watch.Patterns) == 0 {
		c.Watch.Patterns = []string{c.Input}
	}
	if len(c.Watch.Exclude) == 0 {
		c.Watch.Exclude = []string{".git/", "node_modules/"}
	}
}

// InputFormat returns the configured format or the one implied by the
// input file extension
func (c *Config) InputFormat() string {
	if c.Format != "" {
		return strings.ToLower(c.Format)
	}
	switch strings.ToLower(filepath.Ext(c.Input)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// LoadConfig loads the configuration from the current directory or a parent directory
func LoadConfig() (*Config, string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get current directory: %w", err)
	}

	return loadConfigFromDir(dir)
}

// LoadConfigFromPath loads the configuration from a specific path. The
// extension selects JSON or YAML.
func LoadConfigFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	case ".json", "":
		err = json.Unmarshal(data, &config)
	default:
		return nil, fmt.Errorf("%w: config file extension %q", ErrUnknownFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.ApplyDefaults()
	return &config, nil
}

// Save writes the configuration in the format implied by the extension
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	case ".json":
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	default:
		return fmt.Errorf("%w: config file extension %q", ErrUnknownFormat, ext)
	}
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Resolve makes a config-relative path absolute against the project root
func Resolve(projectRoot, path string) string {
	if path == "" || path == "-" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(projectRoot, path)
}

// loadConfigFromDir searches for a config file in the given directory and its parents
func loadConfigFromDir(startDir string) (*Config, string, error) {
	dir := startDir
	for {
		for _, name := range FileNames {
			configPath := filepath.Join(dir, name)
			if _, err := os.Stat(configPath); err == nil {
				config, err := LoadConfigFromPath(configPath)
				if err != nil {
					return nil, "", err
				}
				return config, dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}

	return nil, "", fmt.Errorf("%w: no %s in %s or any parent directory", ErrConfigNotFound, strings.Join(FileNames, ", "), startDir)
}
