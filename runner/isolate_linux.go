//go:build linux

package runner

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"syscall"

	"golang.org/x/sys/unix"
)

// isolate makes the kernel kill the child if the orchestrator dies first,
// and makes cancellation kill every process the engine forked. The child
// stays in the orchestrator's process group so a single group signal
// reaches it on abort.
func isolate(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Pdeathsig = syscall.SIGKILL
	cmd.Cancel = func() error {
		// Collect before killing: orphans are reparented and lose the link
		descendants := descendantsOf(cmd.Process.Pid)
		err := cmd.Process.Kill()
		for _, pid := range descendants {
			_ = unix.Kill(pid, unix.SIGKILL)
		}
		return err
	}
}

// limitMemory caps the address space of a started child.
func limitMemory(pid int, limit uint64) error {
	rlim := unix.Rlimit{Cur: limit, Max: limit}
	return unix.Prlimit(pid, unix.RLIMIT_AS, &rlim, nil)
}

// descendantsOf walks /proc for every transitive child of root. Processes
// forked while the walk runs may be missed.
func descendantsOf(root int) []int {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil
	}

	children := make(map[int][]int)
	for _, e := range entries {
		pid, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		if ppid, ok := parentOf(pid); ok {
			children[ppid] = append(children[ppid], pid)
		}
	}

	var out []int
	queue := []int{root}
	for len(queue) > 0 {
		pid := queue[0]
		queue = queue[1:]
		for _, child := range children[pid] {
			out = append(out, child)
			queue = append(queue, child)
		}
	}
	return out
}

// parentOf reads the ppid from /proc/<pid>/stat. The command name may hold
// spaces and parentheses, so fields are counted after the last ')'.
func parentOf(pid int) (int, bool) {
	data, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "stat"))
	if err != nil {
		return 0, false
	}
	i := bytes.LastIndexByte(data, ')')
	if i < 0 {
		return 0, false
	}
	fields := bytes.Fields(data[i+1:])
	if len(fields) < 2 {
		return 0, false
	}
	ppid, err := strconv.Atoi(string(fields[1]))
	if err != nil {
		return 0, false
	}
	return ppid, true
}
