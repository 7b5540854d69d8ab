//go:build !windows

package probe

import (
	"errors"
	"fmt"
	"os/exec"
	"syscall"
)

func configureSysProcAttr(cmd *exec.Cmd, newGroup bool) {
	if newGroup {
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	}
}

// KillTree sends SIGKILL to the process group led by the root generation.
// Start places the root in its own group and every descendant inherits it.
func KillTree(root ProcessHandle) error {
	if root.PID <= 0 {
		return nil
	}
	if err := syscall.Kill(-root.PID, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
		return fmt.Errorf("kill process group %d: %w", root.PID, err)
	}
	return nil
}
