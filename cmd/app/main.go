package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/binsite/internal"
	pkgconfig "github.com/starford/binsite/pkg/config"
)

func run(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	// Validation happens in internal.Run, after the flag overrides.
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.ReadOptional(configPath, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if v := cmd.String("template"); v != "" {
		cfg.Site.Template = v
	}
	if v := cmd.String("bins"); v != "" {
		cfg.Site.Bins = v
	}
	if v := cmd.String("output"); v != "" {
		cfg.Site.Output = v
	}
	if v := cmd.String("repo"); v != "" {
		cfg.Repository.Path = v
	}
	if cmd.Bool("watch") {
		cfg.Watch.Enabled = true
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithDryRun(cmd.Bool("dry-run")),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:   "binsite",
		Usage:  "Regenerate the download page from the artifacts directory and the current commit",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (optional)",
				DefaultText: "binsite.yaml",
				Value:       "binsite.yaml",
				Sources:     cli.EnvVars("BINSITE_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:  "template",
				Usage: "HTML template containing the placeholder markers",
			},
			&cli.StringFlag{
				Name:  "bins",
				Usage: "Directory whose entries are listed as downloads",
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "Where to write the page (defaults to the template itself)",
			},
			&cli.StringFlag{
				Name:  "repo",
				Usage: "Path inside the git repository to read the commit from",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Print the generated page to stdout without writing it",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Regenerate whenever the artifacts, the template or HEAD change",
			},
		},
	}
}

func main() {
	cmd := newCommand()
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
