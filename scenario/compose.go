package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/perfgo/t262run/model"
)

// Helpers every non-raw scenario loads, in load order.
var mandatoryHelpers = []string{"assert.js", "sta.js"}

// AsyncHelper provides $DONE for tests flagged async.
const AsyncHelper = "doneprintHandle.js"

// StrictPragma is prepended to strict-mode scenarios.
const StrictPragma = "\"use strict\";\n"

// HarnessError reports a helper file that could not be loaded.
type HarnessError struct {
	Helper string
	Err    error
}

func (e *HarnessError) Error() string {
	return fmt.Sprintf("failed to load harness file %s: %v", e.Helper, e.Err)
}

func (e *HarnessError) Unwrap() error {
	return e.Err
}

// HelperNames returns the harness files a scenario needs, in load order.
// Raw tests need none.
func HelperNames(d model.Descriptor) []string {
	if d.HasFlag(model.FlagRaw) {
		return nil
	}

	names := make([]string, 0, len(mandatoryHelpers)+len(d.Includes())+1)
	seen := make(map[string]bool)
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	for _, name := range mandatoryHelpers {
		add(name)
	}
	for _, name := range d.Includes() {
		add(name)
	}
	if d.HasFlag(model.FlagAsync) {
		add(AsyncHelper)
	}
	return names
}

// Composer assembles executable sources from harness helpers and test
// bodies. Helper contents are cached; a Composer is safe for concurrent use.
type Composer struct {
	harnessDir string

	mu    sync.RWMutex
	cache map[string]string
}

// NewComposer creates a composer reading helpers from harnessDir.
func NewComposer(harnessDir string) *Composer {
	return &Composer{
		harnessDir: harnessDir,
		cache:      make(map[string]string),
	}
}

// HarnessDir returns the directory helpers are read from.
func (c *Composer) HarnessDir() string {
	return c.harnessDir
}

// HelperPaths returns the on-disk paths of the helpers a scenario needs,
// for engines that preload them out of band.
func (c *Composer) HelperPaths(d model.Descriptor) []string {
	names := HelperNames(d)
	paths := make([]string, 0, len(names))
	for _, name := range names {
		paths = append(paths, filepath.Join(c.harnessDir, name))
	}
	return paths
}

// Compose returns the source a scenario executes. Module scenarios get the
// body unchanged; others get the strict pragma (strict mode only) and the
// helpers ahead of the body. Raw scenarios get the body unchanged.
func (c *Composer) Compose(body string, sc model.Scenario) (string, error) {
	if sc.Mode == model.ModeModule {
		return body, nil
	}

	var sb strings.Builder
	if sc.Mode == model.ModeStrict && !sc.Raw() {
		sb.WriteString(StrictPragma)
	}

	for _, name := range HelperNames(sc.Descriptor) {
		src, err := c.helper(name)
		if err != nil {
			return "", err
		}
		sb.WriteString(src)
		if !strings.HasSuffix(src, "\n") {
			sb.WriteByte('\n')
		}
	}

	sb.WriteString(body)
	return sb.String(), nil
}

func (c *Composer) helper(name string) (string, error) {
	c.mu.RLock()
	src, ok := c.cache[name]
	c.mu.RUnlock()
	if ok {
		return src, nil
	}

	data, err := os.ReadFile(filepath.Join(c.harnessDir, name))
	if err != nil {
		return "", &HarnessError{Helper: name, Err: err}
	}

	c.mu.Lock()
	c.cache[name] = string(data)
	c.mu.Unlock()
	return string(data), nil
}
