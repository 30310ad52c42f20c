package procattr

import (
	"os"
	"syscall"
)

// SignalGroup delivers a signal to the whole process group of p. The
// negative pid addresses the group rather than the single process, reaching
// any workers the server forked.
func SignalGroup(p *os.Process, sig syscall.Signal) error {
	if p == nil {
		return nil
	}
	return syscall.Kill(-p.Pid, sig)
}

// KillGroup force-kills the whole process group of p.
func KillGroup(p *os.Process) error {
	return SignalGroup(p, syscall.SIGKILL)
}
