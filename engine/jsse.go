package engine

// jsse reserves exit code 2 for parse failures; a SyntaxError thrown at
// runtime exits 1. Modules are run natively with helpers preloaded as scripts.
type jsse struct {
	binary string
}

func (e *jsse) BuildCommand(file, composedPath string, helpers []string, isModule bool) []string {
	if !isModule {
		return []string{e.binary, sourcePath(file, composedPath)}
	}

	args := []string{e.binary, "--module"}
	for _, h := range helpers {
		args = append(args, "--preload", h)
	}
	return append(args, file)
}

func (e *jsse) NeedsHarnessInSource(isModule bool) bool {
	return !isModule
}

func (e *jsse) IsParseError(exitCode int, _ string) bool {
	return exitCode == 2
}

func (e *jsse) SkipModule() bool {
	return false
}
