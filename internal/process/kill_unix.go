//go:build !windows

package process

import "syscall"

// KillTree sends SIGKILL to the process group led by pid, taking the
// browser's renderer and GPU children with it. Non-positive pids are ignored
// so a zero launcher PID never signals our own group.
func KillTree(pid int) {
	if pid <= 0 {
		return
	}
	// launcher.Kill() runs afterwards, so the error is not interesting here
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
