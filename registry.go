package refork

import (
	"fmt"
	"reflect"
	"sync"
)

// registrations is the process-wide table mapping stable callback ids to
// functions, plus a reverse index keyed by code pointer so ForkFn can
// recover the id of the value it was handed. The table is populated during
// package initialization, sealed by Init, and read without locking after
// that.
type registrations struct {
	mu     sync.Mutex
	sealed bool
	fns    map[uint32]func()
	ids    map[uintptr]uint32
}

var registry = registrations{
	fns: make(map[uint32]func()),
	ids: make(map[uintptr]uint32),
}

func (r *registrations) add(id uint32, fn func()) {
	if fn == nil {
		panic(fmt.Sprintf("refork: Register(%d) with nil callback", id))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		panic(fmt.Sprintf("refork: Register(%d) after Init", id))
	}

	if _, dup := r.fns[id]; dup {
		panic(fmt.Sprintf("refork: callback id %d registered twice", id))
	}

	key := codePointer(fn)
	if prev, dup := r.ids[key]; dup {
		panic(fmt.Sprintf(
			"refork: callback already registered under id %d", prev,
		))
	}

	r.fns[id] = fn
	r.ids[key] = id
}

func (r *registrations) seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// callback and idOf run only against the sealed table.

func (r *registrations) callback(id uint32) (func(), bool) {
	fn, ok := r.fns[id]
	return fn, ok
}

func (r *registrations) idOf(fn func()) (uint32, bool) {
	id, ok := r.ids[codePointer(fn)]
	return id, ok
}

// codePointer keys a function by its code entry point. Closures produced by
// the same function literal share an entry point, so any instance of a
// registered callback resolves to the registered id.
func codePointer(fn func()) uintptr {
	return reflect.ValueOf(fn).Pointer()
}
