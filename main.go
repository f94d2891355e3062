package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/okra-platform/pojogen/internal/codegen"
	"github.com/okra-platform/pojogen/internal/commands"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	short := commit
	if len(commit) > 7 {
		short = commit[:7]
	}

	return fmt.Sprintf("%s (%s) %s", version, short, date)
}

// inputFlags are shared by the commands that read a sample document
func inputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "input",
			Aliases: []string{"i"},
			Usage:   "sample JSON or YAML document, - for stdin",
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "input format (json, yaml); derived from the file extension by default",
		},
		&cli.StringFlag{
			Name:    "name",
			Aliases: []string{"n"},
			Usage:   "root type name",
		},
		&cli.StringFlag{
			Name:    "package",
			Aliases: []string{"p"},
			Usage:   "package or namespace of the generated code",
		},
		&cli.BoolFlag{
			Name:  "array-elements",
			Usage: "infer record types for arrays from their first element",
		},
		&cli.BoolFlag{
			Name:  "strict-names",
			Usage: "fail instead of numbering colliding nested type names",
		},
		&cli.IntFlag{
			Name:  "max-depth",
			Usage: "maximum nesting depth of the input",
		},
	}
}

func targetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "lang",
			Aliases: []string{"l"},
			Usage:   "target language, repeatable (" + strings.Join(codegen.DefaultRegistry.Languages(), ", ") + ")",
		},
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "output file, directory for several languages, or - for stdout",
		},
	}
}

func overrides(c *cli.Command) commands.Overrides {
	o := commands.Overrides{
		Input:     c.String("input"),
		Format:    c.String("format"),
		Name:      c.String("name"),
		Package:   c.String("package"),
		Languages: c.StringSlice("lang"),
		Output:    c.String("out"),
		MaxDepth:  int(c.Int("max-depth")),
	}
	if c.IsSet("array-elements") {
		v := c.Bool("array-elements")
		o.ArrayElements = &v
	}
	if c.IsSet("strict-names") {
		v := c.Bool("strict-names")
		o.StrictNames = &v
	}
	return o
}

func main() {
	// A missing .env file is fine
	_ = godotenv.Load()

	ctrl := &commands.Controller{
		Flags: &commands.Flags{},
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	app := &cli.Command{
		Name:    "pojogen",
		Usage:   "Infer record types from a sample JSON document and generate code for them",
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error, fatal, panic)",
				Sources: cli.EnvVars("POJOGEN_LOG_LEVEL"),
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "config file; searched for upwards from the working directory by default",
				Sources: cli.EnvVars("POJOGEN_CONFIG"),
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			level, err := zerolog.ParseLevel(c.String("log-level"))
			if err != nil {
				return ctx, fmt.Errorf("failed to parse log level: %w", err)
			}

			log.Logger = log.Level(level)
			ctrl.Flags.LogLevel = c.String("log-level")
			ctrl.Flags.Config = c.String("config")
			ctrl.Logger = log.Logger

			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Create a pojogen.json config interactively",
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Init(ctx)
				},
			},
			{
				Name:  "generate",
				Usage: "Generate code for every configured target",
				Flags: append(inputFlags(), targetFlags()...),
				Action: func(ctx context.Context, c *cli.Command) error {
					_, err := ctrl.Generate(ctx, overrides(c))
					return err
				},
			},
			{
				Name:  "inspect",
				Usage: "Print the record types inferred from the input",
				Flags: inputFlags(),
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Inspect(ctx, overrides(c))
				},
			},
			{
				Name:  "watch",
				Usage: "Regenerate whenever the input changes",
				Flags: append(inputFlags(), targetFlags()...),
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Watch(ctx, overrides(c))
				},
			},
		},
	}

	ctx := context.Background()

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("failed to run pojogen")
	}
}
