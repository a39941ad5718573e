//go:build !linux

package runner

import "os/exec"

// Parent-death signals and prlimit are Linux-only; elsewhere the child is
// bounded by the timeout alone.
func isolate(cmd *exec.Cmd) {}

func limitMemory(pid int, limit uint64) error {
	return nil
}
