package refork

import "sync"

// Child is the parent's handle on a forked process. It is produced only by
// ForkFn and owns the right to collect the child's exit status.
//
// A Child that is never waited on occupies a process-table slot until the
// parent itself exits. There is no kill: once forked, termination is under
// the child's control. Arrange a stop signal over an inherited file if
// something stronger than waiting is needed.
type Child struct {
	pid int

	mu       sync.Mutex
	resolved bool
	status   int

	sys childSys
}

// Pid returns the operating system's identifier for the child.
func (c *Child) Pid() int {
	return c.pid
}

// Wait blocks until the child has exited and returns its exit status: the
// callback's translated status, or on Unix the signal number if the child
// was killed. The first call collects the status from the operating
// system; every later call, from any goroutine, returns the same cached
// value.
func (c *Child) Wait() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.resolved {
		return c.status, nil
	}

	status, err := c.waitSys()
	if err != nil {
		return 0, err
	}

	c.resolved = true
	c.status = status

	return status, nil
}

// TryWait collects the exit status without blocking. done reports whether
// the child had exited; the status is only meaningful when it had. Like
// Wait, a collected status is cached for every later call.
func (c *Child) TryWait() (status int, done bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.resolved {
		return c.status, true, nil
	}

	status, done, err = c.tryWaitSys()
	if err != nil || !done {
		return 0, false, err
	}

	c.resolved = true
	c.status = status

	return status, true, nil
}
