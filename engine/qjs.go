package engine

import "strings"

type qjs struct {
	binary string
}

func (e *qjs) BuildCommand(file, composedPath string, helpers []string, isModule bool) []string {
	if !isModule {
		return []string{e.binary, sourcePath(file, composedPath)}
	}

	args := []string{e.binary}
	for _, h := range helpers {
		args = append(args, "--include", h)
	}
	return append(args, "--module", file)
}

func (e *qjs) NeedsHarnessInSource(isModule bool) bool {
	return !isModule
}

func (e *qjs) IsParseError(exitCode int, stderr string) bool {
	return exitCode != 0 && strings.Contains(stderr, "SyntaxError")
}

func (e *qjs) SkipModule() bool {
	return false
}
