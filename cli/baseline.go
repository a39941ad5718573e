package cli

// This file contains the baseline command for inspecting stored state.

import (
	"fmt"

	"github.com/perfgo/t262run/baseline"
	"github.com/perfgo/t262run/config"
	"github.com/perfgo/t262run/engine"
	"github.com/urfave/cli/v2"
)

func (a *App) baseline(ctx *cli.Context) error {
	file, err := config.Load(ctx.String("config"))
	if err != nil {
		return err
	}
	name := stringSetting(ctx, "engine", file.Engine)
	if _, err := engine.DefaultBinary(name); err != nil {
		return cli.Exit(fmt.Sprintf("Error: %s", err), ExitSetup)
	}
	stateDir := stringSetting(ctx, "state-dir", file.StateDir)

	w := a.stdout()
	for _, path := range []string{
		baseline.Path(stateDir, name, engine.Default),
		baseline.FailurePath(stateDir, name, engine.Default),
	} {
		set, err := baseline.Load(a.logger, path)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s: %d entries\n", path, len(set))
	}
	return nil
}
