//go:build windows

package probe

import "os/exec"

func configureSysProcAttr(cmd *exec.Cmd, newGroup bool) {}

// KillTree is unavailable without process groups.
func KillTree(root ProcessHandle) error {
	return ErrUnsupported
}
