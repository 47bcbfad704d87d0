// Package refork duplicates the running process and runs a callback only
// in the duplicate, handing the parent a handle to wait on. One call,
// ForkFn, presents the same surface on every supported platform over two
// very different backends.
//
// On Unix the process is duplicated with the native fork syscall. The
// callback starts in a copy of the parent's entire address space, so it
// can use anything it captured, and the process exits with the translated
// status when the callback finishes.
//
// Windows has no duplication syscall. ForkFn instead relaunches the
// current executable with a reserved environment marker naming a
// registered callback id and the files to inherit. Only that id and those
// files cross the process boundary; captured state does not. Code that
// must run on both backends registers its callbacks ahead of time and
// moves data through inherited files:
//
//	var hello = refork.Register(1, func() {
//		out := refork.InheritedFiles()[0]
//		out.Write([]byte("hello world"))
//	})
//
//	func main() {
//		refork.Init()
//
//		r, w, _ := os.Pipe()
//		child, _ := refork.ForkFn(hello, w)
//		w.Close()
//
//		greeting, _ := io.ReadAll(r)
//		status, _ := child.Wait()
//		...
//	}
//
// Init must run before anything else in main. A relaunched child consumes
// the marker there, runs its callback and terminates without reaching the
// rest of main. Register must only be called during package
// initialization; Init seals the table, since a child resolves its id
// against whatever was registered before main with no chance to register
// late.
//
// # Fork safety
//
// A duplicate made by fork contains only the calling thread. Every lock
// another thread held at the moment of duplication stays held forever in
// the child, including locks inside the runtime and libc. The runtime's
// own pre- and post-fork hooks run around the syscall, the same ones the
// standard library uses, which keeps the runtime's central locks usable in
// the child, but no wrapper can make arbitrary code safe here. A callback
// should touch only state it owns and must not wait on work that was
// running in other goroutines: their threads did not survive the fork.
// The safest shape is the one above: write to an inherited file and finish
// promptly. Descriptors shared with the parent
// refer to the same open file descriptions in both processes, so
// interleaved use needs the same care it would between threads.
//
// # Children are a resource
//
// A Child that is never waited on occupies a slot in the operating
// system's process table until the parent itself exits, the classic zombie
// on Unix. Wait collects the status exactly once and caches it; dropping
// the handle without waiting is legal but leaks the slot. There is no kill
// and no cancellation: once forked, termination is under the child's
// control through the exit translation of its callback. A parent that
// needs to stop a child early must arrange its own signal over an
// inherited file.
package refork
