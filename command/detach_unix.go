//go:build !windows

package command

import (
	"os/exec"
	"syscall"
)

// detach starts cmd in its own session so it survives the terminal that
// launched idler.
func detach(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setsid = true
}
