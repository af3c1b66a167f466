package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rubiojr/bangtag/config"
	"github.com/rubiojr/bangtag/fixture"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
	"go.uber.org/zap"
)

// Execute runs the bangtag CLI with the given version string.
func Execute(version string) {
	cmd := &cli.Command{
		Name:                   "bangtag",
		Usage:                  "Interpret #! directives in message text",
		Version:                version,
		UseShortOptionHandling: true,
		Commands: []*cli.Command{
			{
				Name:      "render",
				Usage:     "Run the interpreter over a YAML message fixture",
				ArgsUsage: "<fixture.yaml | ->",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Configuration file (default ./" + config.FileName + " when present)",
					},
					&cli.StringFlag{
						Name:  "db",
						Usage: "Use a SQLite database at this path instead of the configured store",
					},
					&cli.StringFlag{
						Name:  "log-level",
						Usage: "Override the configured log level",
					},
					&cli.BoolFlag{
						Name:    "quiet",
						Aliases: []string{"q"},
						Usage:   "Print only the final text",
					},
				},
				Action: renderAction,
			},
			{
				Name:      "tokens",
				Usage:     "Show how text splits into literal and directive spans",
				ArgsUsage: "<file | ->",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "no-color",
						Aliases: []string{"C"},
						Usage:   "Disable ANSI color output",
					},
				},
				Action: tokensAction,
			},
			{
				Name:      "commands",
				Usage:     "List the directives the interpreter understands",
				ArgsUsage: "[directive]",
				Action:    commandsAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func renderAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 1 {
		return fmt.Errorf("usage: bangtag render [-c config] [--db path] <fixture.yaml | ->")
	}
	cfg, err := config.LoadOrDefault(cmd.String("config"))
	if err != nil {
		return err
	}
	if db := cmd.String("db"); db != "" {
		cfg.Store.Driver = "sqlite"
		cfg.Store.Path = db
	}
	if level := cmd.String("log-level"); level != "" {
		cfg.Log.Level = level
	}
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	f, err := fixture.ReadFile(cmd.Args().First())
	if err != nil {
		return err
	}
	logger = logger.With(zap.String("run", f.RunID))

	var summary io.Writer = os.Stderr
	if cmd.Bool("quiet") {
		summary = io.Discard
	}
	return render(ctx, cfg, f, logger, os.Stdout, summary)
}

func tokensAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 1 {
		return fmt.Errorf("usage: bangtag tokens <file | ->")
	}
	text, err := readInput(cmd.Args().First())
	if err != nil {
		return err
	}
	color := !cmd.Bool("no-color") && os.Getenv("NO_COLOR") == "" && term.IsTerminal(int(os.Stdout.Fd()))
	return writeTokens(os.Stdout, text, color)
}

func commandsAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() > 0 {
		return writeCommand(os.Stdout, cmd.Args().First())
	}
	return writeCommands(os.Stdout)
}

// readInput returns the contents of path, or standard input for "-".
func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("cannot read %s: %w", path, err)
	}
	return string(data), nil
}
