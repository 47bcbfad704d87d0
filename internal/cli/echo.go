package cli

import (
	"fmt"
	"os"

	"github.com/nixpig/refork"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Reads one byte from the inherited pipe and exits with it, so the parent
// can watch its chosen code come back through the exit translation.
var echoStatus = refork.Register(3, func() {
	in := refork.InheritedFiles()[0]

	b := make([]byte, 1)
	if _, err := in.Read(b); err != nil {
		panic(err)
	}

	os.Exit(int(b[0]))
})

func echoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "echo [flags]",
		Short:   "Round-trip an exit code through a forked child",
		Example: "  refork echo --code 42",
		RunE: func(cmd *cobra.Command, args []string) error {
			code, _ := cmd.Flags().GetInt("code")
			if code < 0 || code > 255 {
				return fmt.Errorf("exit code %d out of range", code)
			}

			r, w, err := os.Pipe()
			if err != nil {
				return fmt.Errorf("create pipe: %w", err)
			}

			child, err := refork.ForkFn(echoStatus, r)
			if err != nil {
				r.Close()
				w.Close()
				logrus.Errorf("echo operation failed: %s", err)
				return fmt.Errorf("echo: %w", err)
			}
			r.Close()

			if _, err := w.Write([]byte{byte(code)}); err != nil {
				return fmt.Errorf("send code: %w", err)
			}
			w.Close()

			status, err := child.Wait()
			if err != nil {
				return fmt.Errorf("wait for pid %d: %w", child.Pid(), err)
			}

			fmt.Fprintf(
				cmd.OutOrStdout(),
				"sent %d, child exited %d\n", code, status,
			)

			return nil
		},
	}

	cmd.Flags().IntP("code", "c", 42, "Exit code for the child to report")

	return cmd
}
