//go:build unix && !linux && !darwin && !dragonfly && !freebsd && !netbsd && !openbsd

package refork

import "syscall"

// The remaining unix ports reach fork only through libc and expose no
// syscall number for it, so ForkFn reports ErrForkFailed wrapping ENOSYS.
func rawFork() (uintptr, syscall.Errno) {
	return 0, syscall.ENOSYS
}
