//go:build windows

package refork

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// childSys holds the process handle opened at spawn time. It is closed
// once the exit status has been collected.
type childSys struct {
	handle windows.Handle
}

func (c *Child) waitSys() (int, error) {
	event, err := windows.WaitForSingleObject(c.sys.handle, windows.INFINITE)
	if err != nil {
		return 0, fmt.Errorf(
			"%w: wait for pid %d: %w", ErrWaitFailed, c.pid, err,
		)
	}
	if event != windows.WAIT_OBJECT_0 {
		return 0, fmt.Errorf(
			"%w: wait for pid %d: unexpected wait state %#x",
			ErrWaitFailed, c.pid, event,
		)
	}

	return c.exitCode()
}

func (c *Child) tryWaitSys() (int, bool, error) {
	event, err := windows.WaitForSingleObject(c.sys.handle, 0)
	if err != nil {
		return 0, false, fmt.Errorf(
			"%w: poll pid %d: %w", ErrWaitFailed, c.pid, err,
		)
	}
	if event == uint32(windows.WAIT_TIMEOUT) {
		return 0, false, nil
	}
	if event != windows.WAIT_OBJECT_0 {
		return 0, false, fmt.Errorf(
			"%w: poll pid %d: unexpected wait state %#x",
			ErrWaitFailed, c.pid, event,
		)
	}

	status, err := c.exitCode()
	if err != nil {
		return 0, false, err
	}

	return status, true, nil
}

// exitCode collects the status and closes the wait handle. Only called
// after the process has been observed signaled.
func (c *Child) exitCode() (int, error) {
	var code uint32
	if err := windows.GetExitCodeProcess(c.sys.handle, &code); err != nil {
		return 0, fmt.Errorf(
			"%w: exit code for pid %d: %w", ErrWaitFailed, c.pid, err,
		)
	}

	windows.CloseHandle(c.sys.handle)
	c.sys.handle = windows.InvalidHandle

	return int(code), nil
}
