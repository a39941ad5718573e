package cli

// This file contains the list command for inspecting the scenario set
// without running it.

import (
	"fmt"
	"path/filepath"

	"github.com/perfgo/t262run/engine"
	"github.com/perfgo/t262run/model"
	"github.com/perfgo/t262run/orchestrator"
	"github.com/perfgo/t262run/scenario"
	"github.com/urfave/cli/v2"
)

func (a *App) list(ctx *cli.Context) error {
	s, err := a.settings(ctx)
	if err != nil {
		return err
	}

	o := orchestrator.New(a.logger, orchestrator.Config{
		Root:    s.test262,
		Engine:  s.engine,
		Binary:  s.binary,
		Adapter: s.adapter,
		Jobs:    s.jobs,
		Filters: ctx.Args().Slice(),
	})
	plan, err := o.Plan(ctx.Context)
	if err != nil {
		return exitError(err)
	}

	composer := scenario.NewComposer(filepath.Join(s.test262, "harness"))
	w := a.stdout()
	for _, sc := range plan.Scenarios {
		if !ctx.Bool("commands") {
			fmt.Fprintln(w, sc.ID)
			continue
		}

		isModule := sc.Mode == model.ModeModule
		if isModule && s.adapter.SkipModule() {
			fmt.Fprintf(w, "%s\t# skipped: %s\n", sc.ID, model.ReasonModuleUnsupported)
			continue
		}
		var helpers []string
		if !s.adapter.NeedsHarnessInSource(isModule) {
			helpers = composer.HelperPaths(sc.Descriptor)
		}
		argv := s.adapter.BuildCommand(sc.SourceFile, "", helpers, isModule)
		fmt.Fprintf(w, "%s\t%s\n", sc.ID, engine.CommandString(argv))
	}

	a.logger.Info().Int("files", len(plan.Files)).Int("scenarios", len(plan.Scenarios)).Msg("Listed scenarios")
	return nil
}
