package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/nixpig/refork"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var spawnGreeting = refork.Register(1, func() {
	out := refork.InheritedFiles()[0]
	fmt.Fprintf(out, "hello from pid %d: ", os.Getpid())
})

func spawnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "spawn [flags]",
		Short:   "Fork children that greet over an inherited pipe",
		Example: "  refork spawn --children 3",
		RunE: func(cmd *cobra.Command, args []string) error {
			children, _ := cmd.Flags().GetInt("children")

			for i := 0; i < children; i++ {
				r, w, err := os.Pipe()
				if err != nil {
					return fmt.Errorf("create pipe: %w", err)
				}

				child, err := refork.ForkFn(spawnGreeting, w)
				if err != nil {
					r.Close()
					w.Close()
					logrus.Errorf("spawn operation failed: %s", err)
					return fmt.Errorf("spawn: %w", err)
				}
				w.Close()

				greeting, err := io.ReadAll(r)
				r.Close()
				if err != nil {
					return fmt.Errorf("read greeting: %w", err)
				}

				status, err := child.Wait()
				if err != nil {
					return fmt.Errorf("wait for pid %d: %w", child.Pid(), err)
				}

				fmt.Fprintf(
					cmd.OutOrStdout(),
					"%sexited %d\n", greeting, status,
				)
			}

			return nil
		},
	}

	cmd.Flags().IntP("children", "c", 1, "Number of children to fork")

	return cmd
}
