package refork

import (
	"fmt"
	"os"
	"runtime/debug"
)

// Exit statuses reserved by the child-side translator. They sit at the top
// of the 8-bit range so callbacks keep the rest for their own exit calls.
const (
	// ExitCodePanic is the status a child terminates with when its
	// callback panics instead of returning.
	ExitCodePanic = 255

	// ExitCodeUnregistered is the status a relaunched child terminates
	// with when its marker names no registered callback, or cannot be
	// read at all.
	ExitCodeUnregistered = 254
)

// osExit is swapped out by tests that exercise translation without
// terminating the test process.
var osExit = os.Exit

// runExit runs fn in the child and terminates the process with the
// translated status. It never returns. Deferred functions pending in the
// surrounding program do not run; a callback that wants cleanup must do it
// before returning.
func runExit(fn func()) {
	osExit(translate(fn))
}

// translate reports the status fn's outcome maps to: 0 for a normal
// return, ExitCodePanic for a panic. A panic must not unwind past the
// duplication point, where the caller's frames either must not resume or
// do not exist, so it is caught here and reported to stderr. A callback
// that calls os.Exit itself bypasses translation entirely.
func translate(fn func()) (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(
				os.Stderr,
				"refork: callback panic: %v\n%s", r, debug.Stack(),
			)
			code = ExitCodePanic
		}
	}()

	fn()

	return 0
}
