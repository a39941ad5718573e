// Package runner executes single scenarios in isolated child processes and
// classifies their outcome.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/perfgo/t262run/engine"
	"github.com/perfgo/t262run/model"
	"github.com/perfgo/t262run/scenario"
	"github.com/rs/zerolog"
)

const (
	// DefaultMemoryLimit is the address-space ceiling applied to every child.
	DefaultMemoryLimit = 512 << 20
	// DefaultTimeout bounds the wall-clock time of a single scenario.
	DefaultTimeout = 120 * time.Second

	maxOutputBytes = 1 << 20
	waitDelay      = time.Second
)

// Config controls how scenarios are executed.
type Config struct {
	Adapter  engine.Adapter
	Composer *scenario.Composer
	// Per-scenario wall-clock limit (default: DefaultTimeout)
	Timeout time.Duration
	// Address-space ceiling in bytes (default: DefaultMemoryLimit)
	MemoryLimit uint64
	// Features the engine is known not to support; such scenarios are skipped
	SkipFeatures []string
	// Directory for materialized sources (default: os.TempDir())
	TempDir string
}

// Runner runs scenarios. It is safe for concurrent use; every call owns
// its own child process.
type Runner struct {
	logger zerolog.Logger
	cfg    Config
}

// New creates a runner, filling in defaults for unset configuration.
func New(logger zerolog.Logger, cfg Config) *Runner {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MemoryLimit == 0 {
		cfg.MemoryLimit = DefaultMemoryLimit
	}
	return &Runner{logger: logger, cfg: cfg}
}

// Run executes sc and returns its classified result. Errors never escape:
// every failure mode is converted into a fail or skipped result.
func (r *Runner) Run(ctx context.Context, sc model.Scenario) model.Result {
	start := time.Now()
	res := r.run(ctx, sc)
	res.ScenarioID = sc.ID
	res.Duration = time.Since(start)
	return res
}

func (r *Runner) run(ctx context.Context, sc model.Scenario) model.Result {
	isModule := sc.Mode == model.ModeModule
	if isModule && r.cfg.Adapter.SkipModule() {
		return skipped(model.ReasonModuleUnsupported)
	}
	for _, feature := range r.cfg.SkipFeatures {
		if sc.Descriptor.HasFeature(feature) {
			return skipped(fmt.Sprintf("feature %s unsupported", feature))
		}
	}
	if ctx.Err() != nil {
		return skipped(model.ReasonCancelled)
	}

	composedPath, helpers, cleanup, res, ok := r.prepare(sc, isModule)
	defer cleanup()
	if !ok {
		return res
	}

	argv := r.cfg.Adapter.BuildCommand(sc.SourceFile, composedPath, helpers, isModule)
	return r.execute(ctx, sc, argv)
}

// prepare materializes the composed source when the engine needs the
// harness in the executed file. The returned cleanup is always non-nil.
func (r *Runner) prepare(sc model.Scenario, isModule bool) (composedPath string, helpers []string, cleanup func(), res model.Result, ok bool) {
	cleanup = func() {}

	needsHarness := r.cfg.Adapter.NeedsHarnessInSource(isModule)
	if !needsHarness && r.cfg.Composer != nil {
		helpers = r.cfg.Composer.HelperPaths(sc.Descriptor)
	}
	if isModule || sc.Raw() || !needsHarness {
		// The file runs as-is; module bodies must stay in place so relative
		// imports resolve
		if _, err := os.Stat(sc.SourceFile); err != nil {
			r.logger.Debug().Err(err).Str("scenario", sc.ID).Msg("Failed to stat test file")
			return "", nil, cleanup, failed(model.ReasonReadError), false
		}
		return "", helpers, cleanup, model.Result{}, true
	}

	body, err := os.ReadFile(sc.SourceFile)
	if err != nil {
		r.logger.Debug().Err(err).Str("scenario", sc.ID).Msg("Failed to read test file")
		return "", nil, cleanup, failed(model.ReasonReadError), false
	}
	if r.cfg.Composer == nil {
		return "", nil, cleanup, failed(model.ReasonHarnessError), false
	}

	src, err := r.cfg.Composer.Compose(string(body), sc)
	if err != nil {
		r.logger.Debug().Err(err).Str("scenario", sc.ID).Msg("Failed to compose test source")
		return "", nil, cleanup, failed(model.ReasonHarnessError), false
	}

	tmp, err := os.CreateTemp(r.cfg.TempDir, "t262-*.js")
	if err != nil {
		r.logger.Warn().Err(err).Msg("Failed to create temporary source file")
		return "", nil, cleanup, failed(model.ReasonExecError), false
	}
	tmpPath := tmp.Name()
	cleanup = func() {
		if err := os.Remove(tmpPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			r.logger.Debug().Err(err).Str("file", tmpPath).Msg("Failed to clean up temporary source file")
		}
	}

	_, werr := tmp.WriteString(src)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		r.logger.Warn().Err(errors.Join(werr, cerr)).Str("file", tmpPath).Msg("Failed to write temporary source file")
		return "", nil, cleanup, failed(model.ReasonExecError), false
	}

	return tmpPath, nil, cleanup, model.Result{}, true
}

func (r *Runner) execute(ctx context.Context, sc model.Scenario, argv []string) model.Result {
	runCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.WaitDelay = waitDelay
	isolate(cmd)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &limitedWriter{w: &stdoutBuf, max: maxOutputBytes}
	cmd.Stderr = &limitedWriter{w: &stderrBuf, max: maxOutputBytes}

	r.logger.Debug().
		Str("scenario", sc.ID).
		Str("command", engine.CommandString(argv)).
		Msg("Starting scenario")

	if err := cmd.Start(); err != nil {
		r.logger.Debug().Err(err).Str("scenario", sc.ID).Msg("Failed to start engine")
		return failed(model.ReasonExecError)
	}

	if err := limitMemory(cmd.Process.Pid, r.cfg.MemoryLimit); err != nil {
		r.logger.Debug().Err(err).Int("pid", cmd.Process.Pid).Msg("Failed to apply memory limit")
	}

	err := cmd.Wait()

	res := model.Result{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
	}

	switch {
	case ctx.Err() != nil:
		res.Outcome = model.OutcomeSkipped
		res.Reason = model.ReasonCancelled
		res.ExitCode = -1
		return res
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		res.Outcome = model.OutcomeFail
		res.Reason = model.ReasonTimeout
		res.ExitCode = -1
		return res
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			r.logger.Debug().Err(err).Str("scenario", sc.ID).Msg("Failed to wait for engine")
			res.Outcome = model.OutcomeFail
			res.Reason = model.ReasonExecError
			res.ExitCode = -1
			return res
		}
		res.ExitCode = exitErr.ExitCode()
	}

	res.Outcome = Classify(sc.Descriptor, r.cfg.Adapter, res.ExitCode, res.Stdout, res.Stderr)
	return res
}

func skipped(reason string) model.Result {
	return model.Result{Outcome: model.OutcomeSkipped, Reason: reason, ExitCode: -1}
}

func failed(reason string) model.Result {
	return model.Result{Outcome: model.OutcomeFail, Reason: reason, ExitCode: -1}
}
