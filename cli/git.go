package cli

// This file contains Git integration utilities for recording which
// engine revision a run was made against.

import (
	"fmt"
	"os/exec"
	"strings"
)

func (a *App) getGitInfo() (commit, branch string, err error) {
	// One call prints the commit, then the branch
	output, err := exec.Command("git", "rev-parse", "HEAD", "--abbrev-ref", "HEAD").Output()
	if err != nil {
		return "", "", fmt.Errorf("failed to get git revision: %w", err)
	}

	lines := strings.Fields(string(output))
	if len(lines) != 2 {
		return "", "", fmt.Errorf("unexpected git rev-parse output %q", output)
	}
	return lines[0], lines[1], nil
}

// gitCommit returns the current commit, or "" outside a repository.
func (a *App) gitCommit() string {
	commit, branch, err := a.getGitInfo()
	if err != nil {
		a.logger.Debug().Err(err).Msg("Not recording git commit")
		return ""
	}
	a.logger.Debug().Str("commit", commit).Str("branch", branch).Msg("Recording git revision")
	return commit
}
