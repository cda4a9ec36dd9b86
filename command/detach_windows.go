//go:build windows

package command

import (
	"os/exec"
	"syscall"
)

const createNewProcessGroup = 0x00000200

// detach starts cmd in a new process group so console signals aimed at idler
// do not reach it.
func detach(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.CreationFlags |= createNewProcessGroup
}
