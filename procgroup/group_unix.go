//go:build unix

// Package procgroup lets the orchestrator own a process group shared with
// every engine it spawns, so one signal reaches all in-flight children.
package procgroup

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// Group is the process group the orchestrator leads. Children inherit it.
type Group struct {
	pgid int
}

// Lead makes the current process the leader of its own process group,
// unless it already is one, so terminating the group never reaches the
// processes that launched us.
func Lead() (*Group, error) {
	pid := os.Getpid()
	if syscall.Getpgrp() != pid {
		if err := syscall.Setpgid(0, 0); err != nil {
			return nil, fmt.Errorf("failed to create process group: %w", err)
		}
	}
	return &Group{pgid: pid}, nil
}

// ID returns the process group id.
func (g *Group) ID() int {
	return g.pgid
}

// Terminate sends SIGTERM to every member of the group except the caller,
// which ignores the signal from here on.
func (g *Group) Terminate() error {
	signal.Ignore(syscall.SIGTERM)
	if err := syscall.Kill(-g.pgid, syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to signal process group %d: %w", g.pgid, err)
	}
	return nil
}
