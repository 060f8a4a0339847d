//go:build linux

package process

import (
	"os/exec"
	"syscall"
)

// configureSysProcAttr asks the kernel to SIGKILL the emulator when the
// thread that spawned it dies, so a crashed test binary does not leave a JVM
// holding the port.
func configureSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Pdeathsig: syscall.SIGKILL,
	}
}
