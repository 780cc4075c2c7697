package platform

import (
	"fmt"
	"os/exec"
	"strings"
)

// ExecController implements ProcessController using os/exec
type ExecController struct{}

// NewProcessController creates the default process controller for this platform
func NewProcessController() ProcessController {
	return &ExecController{}
}

// Start spawns the executable and returns a handle without waiting for exit
func (c *ExecController) Start(path string, arguments string) (Handle, error) {
	if path == "" {
		return nil, fmt.Errorf("executable path is empty")
	}

	cmd := exec.Command(path, splitArguments(arguments)...)
	configureSysProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	return &execHandle{cmd: cmd}, nil
}

// IsAlive reports whether a process with the given pid still exists
func (c *ExecController) IsAlive(pid int) bool {
	return processAlive(pid)
}

// execHandle wraps a started exec.Cmd
type execHandle struct {
	cmd *exec.Cmd
}

func (h *execHandle) PID() int {
	if h.cmd.Process == nil {
		return 0
	}
	return h.cmd.Process.Pid
}

// Wait blocks until the process exits. A non-zero exit status is not an
// error for the supervisor, so exec.ExitError is swallowed here.
func (h *execHandle) Wait() error {
	err := h.cmd.Wait()
	if _, ok := err.(*exec.ExitError); ok {
		return nil
	}
	return err
}

func (h *execHandle) Terminate() error {
	if h.cmd.Process == nil {
		return fmt.Errorf("process not started")
	}
	return terminateProcess(h.cmd.Process.Pid)
}

// splitArguments splits a command-line argument string on whitespace.
// Matches the frontend contract: arguments are stored as a single string.
func splitArguments(arguments string) []string {
	if strings.TrimSpace(arguments) == "" {
		return nil
	}
	return strings.Fields(arguments)
}
