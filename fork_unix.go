//go:build unix

package refork

import (
	"fmt"
	"os"
	"syscall"
	_ "unsafe" // for go:linkname

	"github.com/sirupsen/logrus"
)

// The runtime's fork hooks, the same ones the standard library runs around
// its own fork in syscall.forkExec. runtimeBeforeFork quiesces signal
// delivery and spoils the stack guard so nothing grows the stack across
// the duplication point; runtimeAfterFork restores the guard and the lock
// count. The standard library's child execs immediately and never calls
// runtimeAfterFork, but a child that keeps running Go code needs it too,
// once runtimeAfterForkInChild has reset the child's signal state.
//
//go:linkname runtimeBeforeFork syscall.runtime_BeforeFork
func runtimeBeforeFork()

//go:linkname runtimeAfterFork syscall.runtime_AfterFork
func runtimeAfterFork()

//go:linkname runtimeAfterForkInChild syscall.runtime_AfterForkInChild
func runtimeAfterForkInChild()

// forkFn hands the files argument across the duplication point through
// childFiles: the child's address-space copy keeps the value, the parent
// clears it once the fork has happened. Writes are serialized by
// syscall.ForkLock, held exclusively around the fork itself.
func forkFn(id uint32, registered bool, fn func(), files []*os.File) (*Child, error) {
	syscall.ForkLock.Lock()
	childFiles = files

	runtimeBeforeFork()
	pid, errno := rawFork()
	if errno != 0 {
		runtimeAfterFork()
		childFiles = nil
		syscall.ForkLock.Unlock()

		return nil, fmt.Errorf("%w: %w", ErrForkFailed, errno)
	}

	if pid == 0 {
		// The child. Nothing below this point may return to the caller.
		runtimeAfterForkInChild()
		runtimeAfterFork()

		// The copied ForkLock is still write-held. Release it so the
		// callback can fork and exec children of its own.
		syscall.ForkLock.Unlock()

		// Exit raw rather than through os.Exit: the copy would run the
		// parent program's exit hooks, and inside a test binary the
		// exit guard panics on status 0.
		syscall.Exit(translate(fn))
	}

	runtimeAfterFork()
	childFiles = nil
	syscall.ForkLock.Unlock()

	if registered {
		logrus.Debugf("forked callback %d as pid %d", id, pid)
	} else {
		logrus.Debugf("forked unregistered callback as pid %d", pid)
	}

	return &Child{pid: int(pid)}, nil
}
