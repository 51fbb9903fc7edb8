// Package cli exposes the pipeline over cobra commands.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/doeshing/cmdgate/internal/app"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra command tree. A bare invocation with
// arguments is shorthand for the run command.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return nil, err
	}

	runCmd := newRunCommand(container)

	root := &cobra.Command{
		Use:   "cmdgate [task]",
		Short: "cmdgate - policy-gated command execution",
		Long: "cmdgate turns a task into a shell command, vets it against safety\n" +
			"policy, and runs approved commands inside a throwaway sandbox.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			runCmd.SetArgs(args)
			return runCmd.ExecuteContext(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(runCmd)
	root.AddCommand(newReviewCommand(container))
	root.AddCommand(newHarnessCommand(container))
	root.AddCommand(newHistoryCommand(container))
	root.AddCommand(newVersionCommand())
	return root, nil
}
