//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package refork

import (
	"runtime"
	"syscall"
)

// rawFork duplicates the process through the real fork syscall of the BSD
// family. Darwin reports which side of the fork is running in the second
// return register rather than by a zero pid, so both are checked.
func rawFork() (uintptr, syscall.Errno) {
	pid, r2, errno := syscall.RawSyscall(syscall.SYS_FORK, 0, 0, 0)
	if errno != 0 {
		return 0, errno
	}

	if runtime.GOOS == "darwin" && r2 == 1 {
		pid = 0
	}

	return pid, errno
}
