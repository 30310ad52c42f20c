//go:build linux

// Package procattr configures spawned server processes so they cannot
// outlive the client that started them.
package procattr

import (
	"os/exec"
	"syscall"
)

// Apply puts the child in its own process group and requests SIGTERM
// delivery if this process dies first. The group id makes group-wide
// signalling possible even after the direct child forks workers.
func Apply(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid:   true,
		Pdeathsig: syscall.SIGTERM,
	}
}
