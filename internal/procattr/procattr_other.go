//go:build !linux

// Package procattr configures spawned server processes so they cannot
// outlive the client that started them.
package procattr

import (
	"os/exec"
	"syscall"
)

// Apply puts the child in its own process group. Pdeathsig does not exist
// off Linux; group membership still lets the parent signal the whole tree.
func Apply(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}
