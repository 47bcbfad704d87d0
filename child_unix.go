//go:build unix

package refork

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// childSys carries no state on Unix; the pid is the whole handle.
type childSys struct{}

func (c *Child) waitSys() (int, error) {
	var ws unix.WaitStatus

	for {
		_, err := unix.Wait4(c.pid, &ws, 0, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf(
				"%w: wait4 pid %d: %w", ErrWaitFailed, c.pid, err,
			)
		}

		return decodeWaitStatus(ws), nil
	}
}

func (c *Child) tryWaitSys() (int, bool, error) {
	var ws unix.WaitStatus

	for {
		pid, err := unix.Wait4(c.pid, &ws, unix.WNOHANG, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, false, fmt.Errorf(
				"%w: wait4 pid %d: %w", ErrWaitFailed, c.pid, err,
			)
		}
		if pid == 0 {
			return 0, false, nil
		}

		return decodeWaitStatus(ws), true, nil
	}
}

// decodeWaitStatus flattens a wait status the way shells report it: the
// exit status for a normal exit, the signal number for a killed child.
func decodeWaitStatus(ws unix.WaitStatus) int {
	switch {
	case ws.Exited():
		return ws.ExitStatus()
	case ws.Signaled():
		return int(ws.Signal())
	default:
		return -1
	}
}
