package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/perfgo/t262run/orchestrator"
)

func newTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	app := New()
	var out bytes.Buffer
	app.cli.Writer = &out
	app.cli.ErrWriter = &out
	app.cli.ExitErrHandler = func(*cli.Context, error) {}
	return app, &out
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newCorpus(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "test262")
	writeFile(t, filepath.Join(root, "harness", "assert.js"), "")
	writeFile(t, filepath.Join(root, "harness", "sta.js"), "")
	writeFile(t, filepath.Join(root, "harness", "compareArray.js"), "")
	writeFile(t, filepath.Join(root, "test", "language", "a.js"), "/*---\ndescription: a\n---*/\n")
	writeFile(t, filepath.Join(root, "test", "language", "m.js"), "/*---\nflags: [module]\nincludes: [compareArray.js]\n---*/\n")
	return root
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var coder cli.ExitCoder
	require.True(t, errors.As(err, &coder), "expected exit coder, got %v", err)
	return coder.ExitCode()
}

func TestExitError(t *testing.T) {
	require.NoError(t, exitError(nil))

	setup := &orchestrator.SetupError{What: "jsse binary", Path: "./target/release/jsse"}
	err := exitError(fmt.Errorf("wrapped: %w", setup))
	assert.Equal(t, ExitSetup, exitCode(t, err))
	assert.Equal(t, "Error: jsse binary not found at ./target/release/jsse", err.Error())

	assert.Equal(t, ExitNoScenarios, exitCode(t, exitError(orchestrator.ErrNoScenarios)))
	assert.Equal(t, ExitInterrupted, exitCode(t, exitError(fmt.Errorf("plan: %w", context.Canceled))))

	other := errors.New("boom")
	assert.Same(t, other, exitError(other))
}

// resolvedSettings runs args with the run action replaced by one that only
// resolves settings.
func resolvedSettings(t *testing.T, args ...string) *settings {
	t.Helper()
	app, _ := newTestApp(t)

	var got *settings
	capture := func(ctx *cli.Context) error {
		s, err := app.settings(ctx)
		got = s
		return err
	}
	app.cli.Action = capture
	for _, c := range app.cli.Commands {
		if c.Name == "run" {
			c.Action = capture
		}
	}

	require.NoError(t, app.Run(append([]string{AppName}, args...)))
	require.NotNil(t, got)
	return got
}

func TestRunFlagPlacement(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantEngine  string
		wantBinary  string
		wantJobs    int
		wantTimeout time.Duration
	}{
		{
			name:        "global flags before run",
			args:        []string{"--engine", "node", "--binary", "/bin/true", "--jobs", "3", "run"},
			wantEngine:  "node",
			wantBinary:  "/bin/true",
			wantJobs:    3,
			wantTimeout: 120 * time.Second,
		},
		{
			name:        "flags after run",
			args:        []string{"run", "--engine", "node", "--binary", "/bin/true", "--timeout", "5s"},
			wantEngine:  "node",
			wantBinary:  "/bin/true",
			wantJobs:    orchestrator.DefaultJobs(),
			wantTimeout: 5 * time.Second,
		},
		{
			name:        "default action",
			args:        []string{"--engine", "qjs", "--timeout", "7s"},
			wantEngine:  "qjs",
			wantBinary:  "qjs",
			wantJobs:    orchestrator.DefaultJobs(),
			wantTimeout: 7 * time.Second,
		},
		{
			name:        "split across both levels",
			args:        []string{"--engine", "d8", "run", "--jobs", "2"},
			wantEngine:  "d8",
			wantBinary:  "d8",
			wantJobs:    2,
			wantTimeout: 120 * time.Second,
		},
		{
			name:        "subcommand flag wins over global",
			args:        []string{"--engine", "qjs", "run", "--engine", "node"},
			wantEngine:  "node",
			wantBinary:  "node",
			wantJobs:    orchestrator.DefaultJobs(),
			wantTimeout: 120 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := resolvedSettings(t, tt.args...)
			assert.Equal(t, tt.wantEngine, s.engine)
			assert.Equal(t, tt.wantBinary, s.binary)
			assert.Equal(t, tt.wantJobs, s.jobs)
			assert.Equal(t, tt.wantTimeout, s.timeout)
		})
	}
}

func TestRunFlagPlacement_ConfigFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "t262run.yaml")
	writeFile(t, cfgPath, "engine: qjs
jobs: 6
skip_features: [Temporal]
")

	s := resolvedSettings(t, "--config", cfgPath, "--jobs", "2", "run")
	assert.Equal(t, "qjs", s.engine)
	assert.Equal(t, 2, s.jobs)
	assert.Equal(t, []string{"Temporal"}, s.skipFeatures)
}

func TestList(t *testing.T) {
	root := newCorpus(t)
	app, out := newTestApp(t)

	require.NoError(t, app.Run([]string{AppName, "list", "--test262", root}))
	assert.Equal(t, "test/language/a.js\ntest/language/a.js#strict\ntest/language/m.js\n", out.String())
}

func TestList_CommandsFromConfig(t *testing.T) {
	root := newCorpus(t)
	cfgPath := filepath.Join(t.TempDir(), "t262run.yaml")
	writeFile(t, cfgPath, fmt.Sprintf("engine: qjs\nbinary: /opt/qjs\ntest262: %s\n", root))

	app, out := newTestApp(t)
	require.NoError(t, app.Run([]string{AppName, "--config", cfgPath, "list", "--commands"}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "test/language/a.js\t/opt/qjs "+filepath.Join(root, "test/language/a.js"), lines[0])
	assert.Equal(t, "test/language/m.js\t/opt/qjs"+
		" --include "+filepath.Join(root, "harness/assert.js")+
		" --include "+filepath.Join(root, "harness/sta.js")+
		" --include "+filepath.Join(root, "harness/compareArray.js")+
		" --module "+filepath.Join(root, "test/language/m.js"), lines[2])
}

func TestList_FlagBeatsConfig(t *testing.T) {
	root := newCorpus(t)
	cfgPath := filepath.Join(t.TempDir(), "t262run.yaml")
	writeFile(t, cfgPath, fmt.Sprintf("engine: qjs\ntest262: %s\n", root))

	app, out := newTestApp(t)
	require.NoError(t, app.Run([]string{AppName, "--config", cfgPath, "list", "--commands", "--engine", "node", "--binary", "/bin/node"}))
	assert.Contains(t, out.String(), "test/language/m.js\t# skipped: module unsupported")
}

func TestList_MissingCorpus(t *testing.T) {
	app, _ := newTestApp(t)
	err := app.Run([]string{AppName, "list", "--test262", filepath.Join(t.TempDir(), "nope")})
	assert.Equal(t, ExitSetup, exitCode(t, err))
}

func TestList_UnknownEngine(t *testing.T) {
	app, _ := newTestApp(t)
	err := app.Run([]string{AppName, "list", "--engine", "spidermonkey"})
	assert.Equal(t, ExitSetup, exitCode(t, err))
	assert.Contains(t, err.Error(), "unknown engine")
}

func TestBaseline(t *testing.T) {
	stateDir := t.TempDir()
	writeFile(t, filepath.Join(stateDir, "test262-pass-node.txt"), "a.js\nb.js\n")

	app, out := newTestApp(t)
	require.NoError(t, app.Run([]string{AppName, "baseline", "--engine", "node", "--state-dir", stateDir}))
	assert.Equal(t,
		filepath.Join(stateDir, "test262-pass-node.txt")+": 2 entries\n"+
			filepath.Join(stateDir, "test262-fail-node.txt")+": 0 entries\n",
		out.String())
}

func TestSetVersion(t *testing.T) {
	tests := []struct {
		name   string
		commit string
		want   string
	}{
		{name: "no commit", commit: "none", want: "1.0.0"},
		{name: "long commit", commit: "0123456789abcdef", want: "1.0.0 (commit: 01234567, built: today)"},
		{name: "short commit", commit: "abc", want: "1.0.0 (commit: abc, built: today)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := New()
			app.SetVersion("1.0.0", tt.commit, "today")
			assert.Equal(t, tt.want, app.cli.Version)
		})
	}
}
