//go:build unix

package procgroup

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
)

const helperEnv = "T262_PROCGROUP_HELPER"

// runGroupLeader leads a new group, starts a child in it and terminates
// the group. It runs in a re-executed test binary so the signal never
// reaches the test process.
func runGroupLeader() {
	g, err := Lead()
	if err != nil {
		fmt.Println("lead:", err)
		os.Exit(3)
	}
	if g.ID() != syscall.Getpgrp() || g.ID() != os.Getpid() {
		fmt.Println("not leading own group")
		os.Exit(3)
	}

	child := exec.Command("sleep", "30")
	if err := child.Start(); err != nil {
		fmt.Println("start:", err)
		os.Exit(3)
	}
	if pgid, _ := syscall.Getpgid(child.Process.Pid); pgid != g.ID() {
		fmt.Println("child outside group")
		os.Exit(3)
	}

	if err := g.Terminate(); err != nil {
		fmt.Println("terminate:", err)
		os.Exit(3)
	}

	err = child.Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			fmt.Println("child:", ws.Signal())
		}
	}
	fmt.Println("leader survived")
	os.Exit(0)
}

func TestTerminate(t *testing.T) {
	if os.Getenv(helperEnv) == "1" {
		runGroupLeader()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestTerminate$")
	cmd.Env = append(os.Environ(), helperEnv+"=1")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "leader must exit cleanly: %s", out)
	require.Contains(t, string(out), "child: "+syscall.SIGTERM.String())
	require.Contains(t, string(out), "leader survived")
}

func TestLead_AlreadyLeader(t *testing.T) {
	if os.Getenv(helperEnv) == "2" {
		first, err := Lead()
		if err != nil {
			os.Exit(3)
		}
		second, err := Lead()
		if err != nil || second.ID() != first.ID() {
			os.Exit(4)
		}
		os.Exit(0)
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestLead_AlreadyLeader$")
	cmd.Env = append(os.Environ(), helperEnv+"=2")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "%s", out)
}
