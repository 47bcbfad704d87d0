//go:build windows

package refork

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/windows"
)

// forkFn emulates duplication by relaunching the current executable with
// the child marker in its environment. Only the callback id and the listed
// handles cross the process boundary; fn's captured state does not, which
// is why only registered callbacks are accepted here.
func forkFn(id uint32, registered bool, fn func(), files []*os.File) (*Child, error) {
	if !registered {
		return nil, ErrNotRegistered
	}

	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("%w: resolve executable: %w", ErrSpawnFailed, err)
	}

	// Explicit inheritance: the child receives the standard streams plus
	// exactly these handles, with their values preserved, so the numbers
	// in the marker stay meaningful on the other side.
	handles := make([]syscall.Handle, len(files))
	fds := make([]uintptr, len(files))
	for i, f := range files {
		h := windows.Handle(f.Fd())
		if err := windows.SetHandleInformation(
			h,
			windows.HANDLE_FLAG_INHERIT,
			windows.HANDLE_FLAG_INHERIT,
		); err != nil {
			clearInheritFlag(handles[:i])
			return nil, fmt.Errorf(
				"%w: mark handle %d inheritable: %w", ErrSpawnFailed, f.Fd(), err,
			)
		}
		handles[i] = syscall.Handle(h)
		fds[i] = f.Fd()
	}

	cmd := exec.Command(exe)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), markerEnv(id, fds)...)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		AdditionalInheritedHandles: handles,
	}

	startErr := cmd.Start()

	// Inheritance is decided at creation time. Drop the flag again so the
	// handles do not ride along into unrelated children started later.
	clearInheritFlag(handles)

	if startErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrSpawnFailed, startErr)
	}

	pid := cmd.Process.Pid

	// Take our own wait handle, then release the exec.Cmd one: waiting
	// goes through Child on every platform, not through cmd.Wait.
	h, err := windows.OpenProcess(
		windows.SYNCHRONIZE|windows.PROCESS_QUERY_LIMITED_INFORMATION,
		false,
		uint32(pid),
	)
	if err != nil {
		_ = cmd.Process.Release()
		return nil, fmt.Errorf(
			"%w: open process %d: %w", ErrSpawnFailed, pid, err,
		)
	}

	if err := cmd.Process.Release(); err != nil {
		windows.CloseHandle(h)
		return nil, fmt.Errorf(
			"%w: release process %d: %w", ErrSpawnFailed, pid, err,
		)
	}

	logrus.Debugf("relaunched executable for callback %d as pid %d", id, pid)

	return &Child{pid: pid, sys: childSys{handle: h}}, nil
}

func clearInheritFlag(handles []syscall.Handle) {
	for _, h := range handles {
		_ = windows.SetHandleInformation(
			windows.Handle(h), windows.HANDLE_FLAG_INHERIT, 0,
		)
	}
}
