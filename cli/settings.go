package cli

import (
	"fmt"
	"slices"
	"time"

	"github.com/perfgo/t262run/config"
	"github.com/perfgo/t262run/engine"
	"github.com/urfave/cli/v2"
)

// settings are the resolved run options. Flags and environment variables
// win over the config file, which wins over built-in defaults.
type settings struct {
	engine        string
	binary        string
	test262       string
	stateDir      string
	jobs          int
	timeout       time.Duration
	skipFeatures  []string
	timingProfile string
	adapter       engine.Adapter
}

func (a *App) settings(ctx *cli.Context) (*settings, error) {
	file, err := config.Load(ctx.String("config"))
	if err != nil {
		return nil, err
	}

	s := &settings{
		engine:        stringSetting(ctx, "engine", file.Engine),
		binary:        stringSetting(ctx, "binary", file.Binary),
		test262:       stringSetting(ctx, "test262", file.Test262),
		stateDir:      stringSetting(ctx, "state-dir", file.StateDir),
		jobs:          flagContext(ctx, "jobs").Int("jobs"),
		timeout:       flagContext(ctx, "timeout").Duration("timeout"),
		skipFeatures:  flagContext(ctx, "skip-feature").StringSlice("skip-feature"),
		timingProfile: flagContext(ctx, "timing-profile").String("timing-profile"),
	}
	if !explicit(ctx, "jobs") && file.Jobs > 0 {
		s.jobs = file.Jobs
	}
	if !explicit(ctx, "timeout") && file.Timeout > 0 {
		s.timeout = time.Duration(file.Timeout)
	}
	if !explicit(ctx, "skip-feature") && len(file.SkipFeatures) > 0 {
		s.skipFeatures = file.SkipFeatures
	}
	if s.jobs < 1 {
		s.jobs = 1
	}

	if s.binary == "" {
		if s.binary, err = engine.DefaultBinary(s.engine); err != nil {
			return nil, cli.Exit(fmt.Sprintf("Error: %s", err), ExitSetup)
		}
	}
	if s.adapter, err = engine.New(s.engine, s.binary); err != nil {
		return nil, cli.Exit(fmt.Sprintf("Error: %s", err), ExitSetup)
	}

	a.logger.Debug().
		Str("engine", s.engine).
		Str("binary", s.binary).
		Str("test262", s.test262).
		Int("jobs", s.jobs).
		Dur("timeout", s.timeout).
		Strs("skip_features", s.skipFeatures).
		Msg("Resolved settings")
	return s, nil
}

// stringSetting returns the flag value when it was given explicitly or the
// config file has nothing to say.
func stringSetting(ctx *cli.Context, name, fromFile string) string {
	if explicit(ctx, name) || fromFile == "" {
		return flagContext(ctx, name).String(name)
	}
	return fromFile
}

// flagContext returns the nearest context in the lineage where name was
// given on the command line or through its environment variable, or ctx
// when it was given nowhere. Run flags exist both on the app and on the
// run command, and the subcommand's default must not shadow a value given
// before the subcommand name.
func flagContext(ctx *cli.Context, name string) *cli.Context {
	if c, ok := lookupExplicit(ctx, name); ok {
		return c
	}
	return ctx
}

func explicit(ctx *cli.Context, name string) bool {
	_, ok := lookupExplicit(ctx, name)
	return ok
}

func lookupExplicit(ctx *cli.Context, name string) (*cli.Context, bool) {
	for _, c := range ctx.Lineage() {
		// The outermost context wraps the context.Context and has no flags
		if c.Command == nil {
			continue
		}
		if slices.Contains(c.LocalFlagNames(), name) {
			return c, true
		}
	}
	return nil, false
}
