package refork

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment names reserved for the child marker. A program using this
// package must not set them itself; Init consumes them in a relaunched
// child before the program's own startup runs.
const (
	// EnvChild carries the callback id a relaunched child must run.
	EnvChild = "_REFORK_CHILD"

	// EnvFiles carries the inherited file numbers, comma separated, in
	// the order they were passed to ForkFn.
	EnvFiles = "_REFORK_FILES"
)

// markerEnv renders the child marker as environment entries.
func markerEnv(id uint32, fds []uintptr) []string {
	entries := []string{fmt.Sprintf("%s=%d", EnvChild, id)}

	if len(fds) > 0 {
		strs := make([]string, len(fds))
		for i, fd := range fds {
			strs[i] = strconv.FormatUint(uint64(fd), 10)
		}
		entries = append(
			entries,
			fmt.Sprintf("%s=%s", EnvFiles, strings.Join(strs, ",")),
		)
	}

	return entries
}

// parseMarker decodes the two marker values.
func parseMarker(idVal, fdsVal string) (uint32, []uintptr, error) {
	id, err := strconv.ParseUint(idVal, 10, 32)
	if err != nil {
		return 0, nil, fmt.Errorf("parse callback id %q: %w", idVal, err)
	}

	var fds []uintptr
	if fdsVal != "" {
		parts := strings.Split(fdsVal, ",")
		fds = make([]uintptr, len(parts))

		for i, part := range parts {
			fd, err := strconv.ParseUint(part, 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf(
					"parse inherited file %q: %w", part, err,
				)
			}
			fds[i] = uintptr(fd)
		}
	}

	return uint32(id), fds, nil
}

// lookupMarker reads the marker from the process environment. ok reports
// whether this process was launched as a fork child at all; err reports a
// marker that is present but unreadable.
func lookupMarker() (id uint32, fds []uintptr, ok bool, err error) {
	idVal, present := os.LookupEnv(EnvChild)
	if !present {
		return 0, nil, false, nil
	}

	id, fds, err = parseMarker(idVal, os.Getenv(EnvFiles))
	if err != nil {
		return 0, nil, true, err
	}

	return id, fds, true, nil
}

// consumeMarker removes the marker so processes started by the callback do
// not inherit it and dispatch themselves.
func consumeMarker() {
	os.Unsetenv(EnvChild)
	os.Unsetenv(EnvFiles)
}
