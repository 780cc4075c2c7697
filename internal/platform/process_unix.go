//go:build !windows

package platform

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// configureSysProcAttr applies platform process attributes before spawn.
// Launched applications get their own process group so signals aimed at
// the launcher never reach them.
func configureSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// terminateProcess sends SIGTERM to the process
func terminateProcess(pid int) error {
	return unix.Kill(pid, unix.SIGTERM)
}

// processAlive probes process existence with signal 0
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	// EPERM means the process exists but belongs to another user
	return err == nil || err == unix.EPERM
}
