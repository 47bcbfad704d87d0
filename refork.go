package refork

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

var (
	// ErrForkFailed reports that the duplication syscall was refused. No
	// child exists and the calling process is unaffected.
	ErrForkFailed = errors.New("refork: fork failed")

	// ErrSpawnFailed reports that the relaunch of the current executable
	// could not be started. No child exists and the calling process is
	// unaffected.
	ErrSpawnFailed = errors.New("refork: spawn failed")

	// ErrWaitFailed reports that the operating system would not resolve
	// the child's pid or handle at wait time.
	ErrWaitFailed = errors.New("refork: wait failed")

	// ErrNotRegistered reports a ForkFn callback with no Register entry,
	// on a backend that can only transfer registered callbacks.
	ErrNotRegistered = errors.New("refork: callback not registered")

	// ErrNotInitialized reports a ForkFn call before Init.
	ErrNotInitialized = errors.New("refork: Init has not been called")
)

var initialized atomic.Bool

// childFiles is set in a child before its callback runs: from the address
// space copy on Unix, from the marker in a relaunched child.
var childFiles []*os.File

// Register adds fn to the callback table under a stable id and returns fn,
// so a callback can be registered where it is declared:
//
//	var hello = refork.Register(1, func() { ... })
//
// Ids must be fixed for the life of the program and agree between parent
// and child, which in practice means hard-coded. Register must only be
// called during package initialization; it panics on a nil callback, a
// duplicate id or callback, or a call after Init.
func Register(id uint32, fn func()) func() {
	registry.add(id, fn)
	return fn
}

// Init seals the callback table and, when this process was launched as a
// fork child, runs the named callback and terminates; in that case Init
// never returns. Call it first thing in main, before any flag parsing or
// other startup:
//
//	func main() {
//		refork.Init()
//		...
//	}
//
// In a process that was started normally, Init only seals the table and
// returns, and ForkFn becomes available.
func Init() {
	registry.seal()
	initialized.Store(true)

	id, fds, ok, err := lookupMarker()
	if !ok {
		return
	}
	consumeMarker()

	if err != nil {
		fmt.Fprintf(os.Stderr, "refork: %v\n", err)
		osExit(ExitCodeUnregistered)
		return
	}

	fn, found := registry.callback(id)
	if !found {
		fmt.Fprintf(os.Stderr, "refork: no callback registered for id %d\n", id)
		osExit(ExitCodeUnregistered)
		return
	}

	childFiles = filesFromFDs(fds)

	logrus.Debugf("dispatching relaunched callback %d", id)
	runExit(fn)
}

// ForkFn duplicates the current process and runs fn only in the duplicate.
// In the parent it returns a handle to wait on. In the child, fn runs with
// files available through InheritedFiles, and the child terminates when fn
// finishes: status 0 on return, fn's own code if it calls os.Exit,
// ExitCodePanic if it panics.
//
// On Unix fn may be any function and files is optional; captured variables
// arrive through the address-space copy. On Windows fn must have been
// passed to Register, and only the id and files reach the child. Code that
// should work everywhere must follow the stricter contract.
func ForkFn(fn func(), files ...*os.File) (*Child, error) {
	if fn == nil {
		return nil, errors.New("refork: nil callback")
	}
	if !initialized.Load() {
		return nil, ErrNotInitialized
	}

	id, registered := registry.idOf(fn)

	return forkFn(id, registered, fn, files)
}

// InheritedFiles returns the files the parent passed to ForkFn, in order.
// It is meaningful only inside a callback; anywhere else it returns nil.
func InheritedFiles() []*os.File {
	return childFiles
}

// filesFromFDs rebuilds the inherited files of a relaunched child. The
// numbers are descriptor numbers on Unix and handle values on Windows,
// both preserved across the boundary by explicit inheritance.
func filesFromFDs(fds []uintptr) []*os.File {
	files := make([]*os.File, len(fds))
	for i, fd := range fds {
		files[i] = os.NewFile(fd, fmt.Sprintf("refork-inherited-%d", i))
	}

	return files
}
