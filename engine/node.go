package engine

import "strings"

// node has no way to preload classic scripts ahead of an ES module, so
// module scenarios are skipped.
type node struct {
	binary string
}

func (e *node) BuildCommand(file, composedPath string, _ []string, _ bool) []string {
	return []string{e.binary, sourcePath(file, composedPath)}
}

func (e *node) NeedsHarnessInSource(isModule bool) bool {
	return true
}

func (e *node) IsParseError(exitCode int, stderr string) bool {
	return exitCode != 0 && strings.Contains(stderr, "SyntaxError")
}

func (e *node) SkipModule() bool {
	return true
}
