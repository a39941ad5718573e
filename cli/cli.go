package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/perfgo/t262run/engine"
	"github.com/perfgo/t262run/orchestrator"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

const AppName = "t262run"

// Exit codes of the run command.
const (
	ExitNoScenarios = 1
	ExitSetup       = 2
	ExitInterrupted = 130
)

type App struct {
	logger zerolog.Logger
	cli    *cli.App
}

func New() *App {

	// Set default log level to info
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger :=
		log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339Nano,
		})

	app := &App{
		logger: logger,
		cli: &cli.App{
			Name:      AppName,
			Usage:     "Run the test262 conformance suite against a JavaScript engine",
			ArgsUsage: "[PATH...]",
			Writer:    os.Stdout,
			ErrWriter: os.Stderr,
			Flags: append([]cli.Flag{
				&cli.BoolFlag{
					Name:  "verbose",
					Usage: "Enable verbose (debug) logging",
				},
				&cli.StringFlag{
					Name:    "config",
					Aliases: []string{"c"},
					Usage:   "YAML file with default settings",
					EnvVars: []string{"T262_CONFIG"},
				},
			}, runFlags()...),
			Before: func(ctx *cli.Context) error {
				if ctx.Bool("verbose") {
					zerolog.SetGlobalLevel(zerolog.DebugLevel)
				}
				return nil
			},
		},
	}
	// Running without a subcommand runs the suite
	app.cli.Action = app.run

	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:      "run",
		Usage:     "Run test262 scenarios and compare against the baseline",
		ArgsUsage: "[PATH...]",
		Action:    app.run,
		Flags:     runFlags(),
		Description: `Runs every scenario below test/{language,built-ins,annexB}, or only the
given files and directories. The baseline is only rewritten by full runs.

Exit codes:
  0    run completed (failures included)
  1    no tests found
  2    engine binary or test262 checkout missing
  130  interrupted`,
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:      "list",
		Usage:     "List the scenarios a run would execute",
		ArgsUsage: "[PATH...]",
		Action:    app.list,
		Flags: []cli.Flag{
			engineFlag(),
			binaryFlag(),
			test262Flag(),
			&cli.BoolFlag{
				Name:  "commands",
				Usage: "Print the shell-quoted engine command for each scenario",
			},
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "baseline",
		Usage:  "Show the stored baseline of an engine",
		Action: app.baseline,
		Flags: []cli.Flag{
			engineFlag(),
			stateDirFlag(),
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:      "custom",
		Usage:     "Run plain engine tests, passing when the engine exits 0",
		ArgsUsage: "[PATH...]",
		Action:    app.custom,
		Flags: []cli.Flag{
			engineFlag(),
			binaryFlag(),
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Per-test timeout",
				Value: orchestrator.DefaultCustomTimeout,
			},
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Directory searched when no paths are given",
				Value: "tests",
			},
		},
	})
	return app
}

func (a *App) Run(args []string) error {
	return a.cli.Run(args)
}

// SetVersion sets the version information for the CLI application
func (a *App) SetVersion(version, commit, date string) {
	a.cli.Version = version
	if commit != "none" && commit != "" {
		a.cli.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit[:min(8, len(commit))], date)
	}
}

func (a *App) stdout() io.Writer {
	return a.cli.Writer
}

func engineFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "engine",
		Aliases: []string{"e"},
		Usage:   fmt.Sprintf("Engine under test (%v)", engine.Names()),
		Value:   engine.Default,
		EnvVars: []string{"T262_ENGINE"},
	}
}

func binaryFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "binary",
		Usage:   "Engine binary (default: the engine's usual path)",
		EnvVars: []string{"T262_BINARY"},
	}
}

func test262Flag() cli.Flag {
	return &cli.StringFlag{
		Name:    "test262",
		Usage:   "Path to the test262 checkout",
		Value:   "./test262",
		EnvVars: []string{"T262_ROOT"},
	}
}

func stateDirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "state-dir",
		Usage: "Directory holding the baseline and failure lists",
		Value: ".",
	}
}

func runFlags() []cli.Flag {
	return []cli.Flag{
		engineFlag(),
		binaryFlag(),
		test262Flag(),
		stateDirFlag(),
		&cli.IntFlag{
			Name:    "jobs",
			Aliases: []string{"j"},
			Usage:   "Number of parallel workers",
			Value:   orchestrator.DefaultJobs(),
			EnvVars: []string{"T262_JOBS"},
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Usage:   "Per-scenario timeout",
			Value:   120 * time.Second,
			EnvVars: []string{"T262_TIMEOUT"},
		},
		&cli.StringSliceFlag{
			Name:  "skip-feature",
			Usage: "Skip scenarios requiring this feature (repeatable)",
		},
		&cli.StringFlag{
			Name:  "timing-profile",
			Usage: "Write a pprof profile of scenario wall time to this path",
		},
	}
}

// exitError maps orchestrator errors onto process exit codes.
func exitError(err error) error {
	if err == nil {
		return nil
	}
	var setupErr *orchestrator.SetupError
	switch {
	case errors.As(err, &setupErr):
		return cli.Exit(fmt.Sprintf("Error: %s", setupErr), ExitSetup)
	case errors.Is(err, orchestrator.ErrNoScenarios):
		return cli.Exit("No tests found.", ExitNoScenarios)
	case errors.Is(err, context.Canceled):
		return cli.Exit("Interrupted", ExitInterrupted)
	}
	return err
}
