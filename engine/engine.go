// Package engine provides the adapters that encapsulate how each engine
// under test is invoked and how its outcome is interpreted.
package engine

import (
	"fmt"
	"sort"
	"strings"

	"al.essio.dev/pkg/shellescape"
)

// Default is the engine selected when none is given.
const Default = "jsse"

// Adapter captures everything that differs between engines. Adapters hold
// no mutable state and are safe for concurrent use.
type Adapter interface {
	// BuildCommand returns the argv (binary first) that runs a scenario.
	// composedPath is the materialized composed source, or "" when the
	// scenario runs file directly. helpers are preload paths for modules.
	BuildCommand(file, composedPath string, helpers []string, isModule bool) []string

	// NeedsHarnessInSource reports whether helpers must be concatenated
	// into the executed source.
	NeedsHarnessInSource(isModule bool) bool

	// IsParseError reports whether the engine rejected the source at parse time.
	IsParseError(exitCode int, stderr string) bool

	// SkipModule reports whether module scenarios cannot be run at all.
	SkipModule() bool
}

type factory struct {
	defaultBinary string
	build         func(binary string) Adapter
}

var registry = map[string]factory{
	"jsse": {defaultBinary: "./target/release/jsse", build: func(b string) Adapter { return &jsse{binary: b} }},
	"node": {defaultBinary: "node", build: func(b string) Adapter { return &node{binary: b} }},
	"d8":   {defaultBinary: "d8", build: func(b string) Adapter { return &d8{binary: b} }},
	"qjs":  {defaultBinary: "qjs", build: func(b string) Adapter { return &qjs{binary: b} }},
}

// Names returns the supported engine selectors in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultBinary returns the binary path used for name when none is given.
func DefaultBinary(name string) (string, error) {
	f, ok := registry[name]
	if !ok {
		return "", unknownEngine(name)
	}
	return f.defaultBinary, nil
}

// New returns the adapter for name invoking binary. An empty binary
// selects the engine's default.
func New(name, binary string) (Adapter, error) {
	f, ok := registry[name]
	if !ok {
		return nil, unknownEngine(name)
	}
	if binary == "" {
		binary = f.defaultBinary
	}
	return f.build(binary), nil
}

// CommandString renders argv as a shell command line.
func CommandString(argv []string) string {
	return shellescape.QuoteCommand(argv)
}

func unknownEngine(name string) error {
	return fmt.Errorf("unknown engine %q (supported: %s)", name, strings.Join(Names(), ", "))
}

func sourcePath(file, composedPath string) string {
	if composedPath != "" {
		return composedPath
	}
	return file
}
