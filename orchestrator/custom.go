package orchestrator

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/perfgo/t262run/model"
	"github.com/perfgo/t262run/runner"
)

// DefaultCustomTimeout is the usual per-test limit for custom tests.
const DefaultCustomTimeout = 10 * time.Second

// CustomFailure is a failed custom test with its captured stderr.
type CustomFailure struct {
	Path   string
	Stderr string
}

// CustomReport summarizes a custom test run.
type CustomReport struct {
	Total    int
	Pass     int
	Fail     int
	Failures []CustomFailure
}

// RunCustom runs plain engine tests: every file executes as-is and passes
// iff the engine exits 0. Without paths, root is walked. Nothing found
// yields an empty report.
func (o *Orchestrator) RunCustom(ctx context.Context, root string, paths []string) (*CustomReport, error) {
	if err := o.validateBinary(); err != nil {
		return nil, err
	}

	var files []TestFile
	var err error
	if len(paths) == 0 {
		files, err = discoverAll(root)
	} else {
		files, err = Discover(".", paths)
	}
	if err != nil {
		return nil, err
	}

	r := runner.New(o.logger, runner.Config{
		Adapter: o.cfg.Adapter,
		Timeout: o.cfg.Timeout,
		TempDir: o.cfg.TempDir,
	})

	plain := model.NewDescriptor([]string{model.FlagRaw}, nil, nil, nil)
	report := &CustomReport{}
	for _, f := range files {
		if ctx.Err() != nil {
			break
		}
		res := r.Run(ctx, model.Scenario{ID: f.ID, SourceFile: f.Path, Mode: model.ModeDefault, Descriptor: plain})
		if res.Outcome == model.OutcomeSkipped {
			continue
		}
		report.Total++
		if res.Outcome == model.OutcomePass {
			report.Pass++
			continue
		}
		report.Fail++
		stderr := strings.TrimSpace(res.Stderr)
		if res.Reason == model.ReasonTimeout {
			stderr = "TIMEOUT"
		}
		report.Failures = append(report.Failures, CustomFailure{Path: f.Path, Stderr: stderr})
	}
	return report, nil
}

// WriteCustomReport prints totals and every failure with the first two
// lines of its stderr.
func WriteCustomReport(w io.Writer, r *CustomReport) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n=== Custom Test Results ===\n")
	fmt.Fprintf(&sb, "Total: %d\n", r.Total)
	fmt.Fprintf(&sb, "Pass:  %d\n", r.Pass)
	fmt.Fprintf(&sb, "Fail:  %d\n", r.Fail)

	if len(r.Failures) > 0 {
		sb.WriteString("\nFailed tests:\n")
		for _, f := range r.Failures {
			fmt.Fprintf(&sb, "  FAIL %s\n", f.Path)
			if f.Stderr == "" {
				continue
			}
			lines := strings.Split(f.Stderr, "\n")
			for _, line := range lines[:min(2, len(lines))] {
				fmt.Fprintf(&sb, "       %s\n", line)
			}
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
