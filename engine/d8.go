package engine

import "strings"

// d8 executes its file arguments in order; flags apply to the files that
// follow them, so helpers come first and --module marks only the test.
type d8 struct {
	binary string
}

func (e *d8) BuildCommand(file, composedPath string, helpers []string, isModule bool) []string {
	if !isModule {
		return []string{e.binary, sourcePath(file, composedPath)}
	}

	args := append([]string{e.binary}, helpers...)
	return append(args, "--module", file)
}

func (e *d8) NeedsHarnessInSource(isModule bool) bool {
	return !isModule
}

func (e *d8) IsParseError(exitCode int, stderr string) bool {
	return exitCode != 0 && strings.Contains(stderr, "SyntaxError")
}

func (e *d8) SkipModule() bool {
	return false
}
