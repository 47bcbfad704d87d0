package cli

import (
	"fmt"

	"github.com/nixpig/refork"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var crashDeliberately = refork.Register(2, func() {
	panic("deliberate crash")
})

func crashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "crash",
		Short:   "Fork a child whose callback panics",
		Example: "  refork crash",
		RunE: func(cmd *cobra.Command, args []string) error {
			child, err := refork.ForkFn(crashDeliberately)
			if err != nil {
				logrus.Errorf("crash operation failed: %s", err)
				return fmt.Errorf("crash: %w", err)
			}

			status, err := child.Wait()
			if err != nil {
				return fmt.Errorf("wait for pid %d: %w", child.Pid(), err)
			}

			fmt.Fprintf(
				cmd.OutOrStdout(),
				"pid %d exited %d\n", child.Pid(), status,
			)

			return nil
		},
	}

	return cmd
}
