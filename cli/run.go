package cli

// This file contains the run command: the full orchestrated test262 run.

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/perfgo/t262run/orchestrator"
	"github.com/perfgo/t262run/procgroup"
	"github.com/urfave/cli/v2"
)

func (a *App) run(ctx *cli.Context) error {
	s, err := a.settings(ctx)
	if err != nil {
		return err
	}

	cfg := orchestrator.Config{
		Root:          s.test262,
		Engine:        s.engine,
		Binary:        s.binary,
		Adapter:       s.adapter,
		Jobs:          s.jobs,
		Timeout:       s.timeout,
		SkipFeatures:  s.skipFeatures,
		StateDir:      s.stateDir,
		Filters:       ctx.Args().Slice(),
		TimingProfile: s.timingProfile,
		Commit:        a.gitCommit(),
	}

	// Lead a process group so one signal reaches every running engine
	group, err := procgroup.Lead()
	if err != nil {
		a.logger.Warn().Err(err).Msg("Failed to create process group, interrupts only stop direct children")
	} else {
		a.logger.Debug().Int("pgid", group.ID()).Msg("Leading process group")
		cfg.Terminator = group
	}

	runCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := orchestrator.New(a.logger, cfg).Run(runCtx)
	if err != nil {
		return exitError(err)
	}

	if err := orchestrator.WriteReport(a.stdout(), report); err != nil {
		return err
	}

	if report.BaselineUpdated {
		a.logger.Info().Int("entries", report.Pass).Msg("Baseline updated")
	}
	if report.Interrupted {
		return cli.Exit("Interrupted", ExitInterrupted)
	}
	return nil
}
