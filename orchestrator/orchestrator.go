// Package orchestrator discovers the corpus, runs every scenario across a
// bounded worker pool and folds the results into a report and baseline.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/perfgo/t262run/baseline"
	"github.com/perfgo/t262run/engine"
	"github.com/perfgo/t262run/frontmatter"
	"github.com/perfgo/t262run/model"
	"github.com/perfgo/t262run/runner"
	"github.com/perfgo/t262run/scenario"
	"github.com/perfgo/t262run/timing"
)

const progressEvery = 1000

// ErrNoScenarios is returned when discovery finds nothing to run.
var ErrNoScenarios = errors.New("no tests found")

// SetupError reports a missing prerequisite. It aborts the run.
type SetupError struct {
	What string
	Path string
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("%s not found at %s", e.What, e.Path)
}

// Terminator stops every in-flight child at once.
type Terminator interface {
	Terminate() error
}

// Config describes one orchestrator invocation.
type Config struct {
	// test262 checkout
	Root    string
	Engine  string
	Binary  string
	Adapter engine.Adapter
	// Worker count (default: half the CPUs, at least one)
	Jobs    int
	Timeout time.Duration
	// Features to skip without spawning the engine
	SkipFeatures []string
	// Directory holding the baseline and failure files
	StateDir string
	// Path filters; empty means the full corpus
	Filters []string
	// Optional pprof output of scenario wall time
	TimingProfile string
	// Invoked once when the run context is cancelled
	Terminator Terminator
	// Directory for materialized sources
	TempDir string
	// Git commit recorded in the report
	Commit string
}

// Plan is the expanded scenario set of a run.
type Plan struct {
	Files     []TestFile
	Scenarios []model.Scenario
}

type Orchestrator struct {
	logger zerolog.Logger
	cfg    Config
}

// DefaultJobs returns half the available CPUs, at least one.
func DefaultJobs() int {
	return max(1, runtime.NumCPU()/2)
}

func New(logger zerolog.Logger, cfg Config) *Orchestrator {
	if cfg.Jobs <= 0 {
		cfg.Jobs = DefaultJobs()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = runner.DefaultTimeout
	}
	if cfg.Engine == "" {
		cfg.Engine = engine.Default
	}
	if cfg.StateDir == "" {
		cfg.StateDir = "."
	}
	return &Orchestrator{logger: logger, cfg: cfg}
}

// Validate checks that the engine binary and the corpus exist.
func (o *Orchestrator) Validate() error {
	if err := o.validateBinary(); err != nil {
		return err
	}
	return o.validateCorpus()
}

func (o *Orchestrator) validateBinary() error {
	if _, err := exec.LookPath(o.cfg.Binary); err != nil {
		return &SetupError{What: o.cfg.Engine + " binary", Path: o.cfg.Binary}
	}
	return nil
}

func (o *Orchestrator) validateCorpus() error {
	info, err := os.Stat(filepath.Join(o.cfg.Root, "test"))
	if err != nil || !info.IsDir() {
		return &SetupError{What: "test262 directory", Path: o.cfg.Root}
	}
	return nil
}

// Plan discovers the corpus and expands every file into scenarios.
// Descriptors are parsed in parallel; an unreadable file gets an empty
// descriptor and fails later when the runner reads it.
func (o *Orchestrator) Plan(ctx context.Context) (*Plan, error) {
	if err := o.validateCorpus(); err != nil {
		return nil, err
	}

	files, err := Discover(o.cfg.Root, o.cfg.Filters)
	if err != nil {
		return nil, err
	}

	descriptors := make([]model.Descriptor, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Jobs)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d, err := frontmatter.ParseFile(f.Path)
			if err != nil {
				o.logger.Warn().Err(err).Str("file", f.ID).Msg("Failed to read metadata")
			}
			descriptors[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p := &Plan{Files: files}
	for i, f := range files {
		p.Scenarios = append(p.Scenarios, scenario.Expand(f.ID, f.Path, descriptors[i])...)
	}
	return p, nil
}

// Run executes the whole pipeline. Setup problems are returned as errors,
// as is cancellation before any scenario started (context.Canceled); a run
// cancelled later yields a report marked interrupted.
func (o *Orchestrator) Run(ctx context.Context) (*model.Report, error) {
	start := time.Now()

	if err := o.Validate(); err != nil {
		return nil, err
	}

	plan, err := o.Plan(ctx)
	if err != nil {
		return nil, err
	}
	if len(plan.Scenarios) == 0 {
		return nil, ErrNoScenarios
	}

	o.logger.Info().Msgf("Found %d scenarios, running with %d workers (timeout: %s)",
		len(plan.Scenarios), o.cfg.Jobs, o.cfg.Timeout)

	basePath := baseline.Path(o.cfg.StateDir, o.cfg.Engine, engine.Default)
	base, err := baseline.Load(o.logger, basePath)
	if err != nil {
		o.logger.Warn().Err(err).Str("path", basePath).Msg("Ignoring unreadable baseline")
		base = baseline.NewSet()
	}

	r := runner.New(o.logger, runner.Config{
		Adapter:      o.cfg.Adapter,
		Composer:     scenario.NewComposer(filepath.Join(o.cfg.Root, "harness")),
		Timeout:      o.cfg.Timeout,
		SkipFeatures: o.cfg.SkipFeatures,
		TempDir:      o.cfg.TempDir,
	})

	if o.cfg.Terminator != nil {
		stop := context.AfterFunc(ctx, func() {
			o.logger.Warn().Msg("Interrupted, terminating running engines")
			if err := o.cfg.Terminator.Terminate(); err != nil {
				o.logger.Warn().Err(err).Msg("Failed to terminate process group")
			}
		})
		defer stop()
	}

	c := newCollector(o.logger, len(plan.Scenarios), o.cfg.TimingProfile != "")

	var g errgroup.Group
	g.SetLimit(o.cfg.Jobs)
	dispatched := 0
	for _, sc := range plan.Scenarios {
		if ctx.Err() != nil {
			break
		}
		dispatched++
		g.Go(func() error {
			c.add(r.Run(ctx, sc))
			return nil
		})
	}
	_ = g.Wait()

	report := &model.Report{
		RunID:       uuid.NewString(),
		Engine:      o.cfg.Engine,
		Commit:      o.cfg.Commit,
		Timestamp:   start,
		Files:       len(plan.Files),
		Scenarios:   len(plan.Scenarios),
		Full:        len(o.cfg.Filters) == 0,
		Interrupted: ctx.Err() != nil,
	}
	c.fill(report)
	report.Skip += len(plan.Scenarios) - dispatched
	report.Regressions, report.NewPasses = baseline.Diff(base, c.executed, c.passed)

	if report.Full && !report.Interrupted {
		if err := baseline.Save(basePath, c.passed.Sorted()); err != nil {
			o.logger.Warn().Err(err).Str("path", basePath).Msg("Failed to save baseline")
		} else {
			report.BaselineUpdated = true
		}
	}

	failPath := baseline.FailurePath(o.cfg.StateDir, o.cfg.Engine, engine.Default)
	if err := baseline.Save(failPath, report.Failures); err != nil {
		o.logger.Warn().Err(err).Str("path", failPath).Msg("Failed to save failure list")
	}

	if c.timing != nil {
		if err := c.timing.WriteFile(o.cfg.TimingProfile); err != nil {
			o.logger.Warn().Err(err).Str("path", o.cfg.TimingProfile).Msg("Failed to write timing profile")
		} else {
			o.logger.Info().Str("path", o.cfg.TimingProfile).Msg("Timing profile written")
		}
	}

	report.Duration = time.Since(start)
	return report, nil
}

// collector folds results as workers finish. Counting is commutative so
// completion order does not matter.
type collector struct {
	logger zerolog.Logger
	total  int

	mu       sync.Mutex
	done     int
	run      int
	pass     int
	fail     int
	skip     int
	executed baseline.Set
	passed   baseline.Set
	failures []string
	timing   *timing.Builder
}

func newCollector(logger zerolog.Logger, total int, withTiming bool) *collector {
	c := &collector{
		logger:   logger,
		total:    total,
		executed: baseline.NewSet(),
		passed:   baseline.NewSet(),
	}
	if withTiming {
		c.timing = timing.New()
	}
	return c
}

func (c *collector) add(res model.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.done++
	switch res.Outcome {
	case model.OutcomePass:
		c.run++
		c.pass++
		c.executed[res.ScenarioID] = struct{}{}
		c.passed[res.ScenarioID] = struct{}{}
	case model.OutcomeFail:
		c.run++
		c.fail++
		c.executed[res.ScenarioID] = struct{}{}
		c.failures = append(c.failures, res.ScenarioID)
		c.logger.Debug().
			Str("scenario", res.ScenarioID).
			Str("reason", res.Reason).
			Int("exit_code", res.ExitCode).
			Str("stderr", firstLine(res.Stderr)).
			Msg("Scenario failed")
	default:
		c.skip++
	}

	if c.timing != nil && res.Executed() {
		c.timing.Add(res.ScenarioID, res.Duration)
	}

	if c.done%progressEvery == 0 {
		rate := 0.0
		if c.run > 0 {
			rate = float64(c.pass) / float64(c.run) * 100
		}
		c.logger.Info().Msgf("... %d/%d (%.1f%% passing so far)", c.done, c.total, rate)
	}
}

func (c *collector) fill(r *model.Report) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r.Run = c.run
	r.Pass = c.pass
	r.Fail = c.fail
	r.Skip = c.skip
	r.Failures = append([]string(nil), c.failures...)
	sort.Strings(r.Failures)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
