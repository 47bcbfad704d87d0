//go:build unix

package refork_test

import (
	"io"
	"os"
	"os/exec"
	"syscall"
	"testing"
	"time"

	"github.com/nixpig/refork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	// Forces several stack growths before exiting: the duplicate starts on
	// the stack it was forked with and must be able to grow it.
	growsTheStack = refork.Register(7, func() {
		deepFrames(64)
		os.Exit(7)
	})

	runsSubprocess = refork.Register(8, func() {
		if err := exec.Command("true").Run(); err != nil {
			panic(err)
		}
	})

	// Forks once more and exits with the grandchild's status.
	forksAgain = refork.Register(9, func() {
		child, err := refork.ForkFn(func() { os.Exit(5) })
		if err != nil {
			panic(err)
		}

		status, err := child.Wait()
		if err != nil {
			panic(err)
		}

		os.Exit(status)
	})
)

func deepFrames(depth int) byte {
	var pad [4096]byte
	if depth == 0 {
		return pad[0]
	}

	pad[0] = deepFrames(depth - 1)
	return pad[0]
}

// On Unix a callback does not need to be registered: it and everything it
// captured arrive in the child through the address-space copy.
func TestForkFnUnregisteredClosure(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()

	message := "captured state crosses the fork"

	child, err := refork.ForkFn(func() {
		w.Write([]byte(message))
	})
	require.NoError(t, err)
	w.Close()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, message, string(got))

	status, err := child.Wait()
	require.NoError(t, err)
	assert.Equal(t, 0, status)
}

func TestWaitReportsTerminatingSignal(t *testing.T) {
	child, err := refork.ForkFn(func() {
		syscall.Kill(os.Getpid(), syscall.SIGKILL)
	})
	require.NoError(t, err)

	status, err := child.Wait()
	require.NoError(t, err)
	assert.Equal(t, int(syscall.SIGKILL), status)
}

// collectWithin polls TryWait so a child that never exits fails the test
// instead of hanging it.
func collectWithin(t *testing.T, child *refork.Child, timeout time.Duration) int {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for {
		status, done, err := child.TryWait()
		require.NoError(t, err)
		if done {
			return status
		}

		if time.Now().After(deadline) {
			t.Fatalf("pid %d still running after %s", child.Pid(), timeout)
		}

		time.Sleep(10 * time.Millisecond)
	}
}

func TestForkFnChildCanGrowItsStack(t *testing.T) {
	child, err := refork.ForkFn(growsTheStack)
	require.NoError(t, err)

	status, err := child.Wait()
	require.NoError(t, err)
	assert.Equal(t, 7, status)
}

// A callback may start processes of its own: the locks taken around the
// duplication must not stay held in the child.
func TestForkFnChildCanSpawnSubprocesses(t *testing.T) {
	child, err := refork.ForkFn(runsSubprocess)
	require.NoError(t, err)

	assert.Equal(t, 0, collectWithin(t, child, 10*time.Second))
}

func TestForkFnChildCanForkAgain(t *testing.T) {
	child, err := refork.ForkFn(forksAgain)
	require.NoError(t, err)

	assert.Equal(t, 5, collectWithin(t, child, 10*time.Second))
}
