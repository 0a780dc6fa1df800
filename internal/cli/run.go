package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/AgentOS/tracer/internal/jshost"
)

func newRunCommand(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "run SCRIPT",
		Short: "Run a script without tracing",
		Long: `Run executes a script with the same tensor API as trace, without
recording anything, and prints its console output and completion value.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read script: %w", err)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			rt, err := jshost.New(jshost.ConfigFrom(env.cfg), env.logger)
			if err != nil {
				return err
			}
			defer rt.Close()

			result, err := rt.Execute(ctx, filepath.Base(args[0]), string(src))
			out := cmd.OutOrStdout()
			if result != nil {
				for _, line := range consoleLines(result.Console) {
					fmt.Fprintln(out, line)
				}
			}
			if err != nil {
				return err
			}
			if result.Value != nil {
				fmt.Fprintf(out, "=> %v\n", result.Value)
			}
			return nil
		},
	}
}
