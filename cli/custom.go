package cli

// This file contains the custom command for the engine's own test files.

import (
	"fmt"

	"github.com/perfgo/t262run/orchestrator"
	"github.com/urfave/cli/v2"
)

func (a *App) custom(ctx *cli.Context) error {
	s, err := a.settings(ctx)
	if err != nil {
		return err
	}

	o := orchestrator.New(a.logger, orchestrator.Config{
		Engine:  s.engine,
		Binary:  s.binary,
		Adapter: s.adapter,
		Timeout: s.timeout,
	})
	report, err := o.RunCustom(ctx.Context, ctx.String("dir"), ctx.Args().Slice())
	if err != nil {
		return exitError(err)
	}

	if report.Total == 0 {
		fmt.Fprintln(a.stdout(), "No tests found.")
		return nil
	}
	if err := orchestrator.WriteCustomReport(a.stdout(), report); err != nil {
		return err
	}
	if report.Fail > 0 {
		return cli.Exit("", 1)
	}
	return nil
}
