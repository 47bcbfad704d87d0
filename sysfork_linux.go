//go:build linux

package refork

import "syscall"

// rawFork duplicates the process, returning the child's pid in the parent
// and 0 in the child. Linux has no fork syscall number on newer
// architectures (arm64, riscv64), so this is clone with only SIGCHLD set,
// which is what fork(2) has meant on Linux all along.
func rawFork() (uintptr, syscall.Errno) {
	pid, _, errno := syscall.RawSyscall6(
		syscall.SYS_CLONE,
		uintptr(syscall.SIGCHLD),
		0, 0, 0, 0, 0,
	)

	return pid, errno
}
