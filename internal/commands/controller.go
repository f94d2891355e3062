// Package commands contains the CLI commands for the application
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/okra-platform/pojogen/internal/codegen"
	"github.com/okra-platform/pojogen/internal/config"
)

type Flags struct {
	LogLevel string
	// Config is an explicit config file path; empty means search upwards
	// from the working directory
	Config string
}

type Controller struct {
	Flags *Flags
	// Out receives generated code written to "-" and inspect output
	Out      io.Writer
	Logger   zerolog.Logger
	Registry *codegen.Registry
}

func (c *Controller) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Controller) registry() *codegen.Registry {
	if c.Registry == nil {
		return codegen.DefaultRegistry
	}
	return c.Registry
}

func (c *Controller) configPath() string {
	if c.Flags == nil {
		return ""
	}
	return c.Flags.Config
}

// loadConfig returns the project configuration and root. Without a config
// file the defaults apply and the working directory is the root.
func (c *Controller) loadConfig() (*config.Config, string, error) {
	if path := c.configPath(); path != "" {
		cfg, err := config.LoadConfigFromPath(path)
		if err != nil {
			return nil, "", err
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, "", fmt.Errorf("failed to resolve config path: %w", err)
		}
		return cfg, filepath.Dir(abs), nil
	}

	cfg, root, err := config.LoadConfig()
	if errors.Is(err, config.ErrConfigNotFound) {
		wd, werr := os.Getwd()
		if werr != nil {
			return nil, "", fmt.Errorf("failed to get current directory: %w", werr)
		}
		c.Logger.Debug().Str("dir", wd).Msg("no config file found, using defaults")
		return config.Default(), wd, nil
	}
	if err != nil {
		return nil, "", err
	}
	c.Logger.Debug().Str("root", root).Msg("loaded project config")
	return cfg, root, nil
}
