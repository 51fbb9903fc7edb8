package cli

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/doeshing/cmdgate/internal/app"
	"github.com/doeshing/cmdgate/internal/infrastructure/harness"
	"github.com/doeshing/cmdgate/internal/ports"
)

func newHarnessCommand(container *app.Container) *cobra.Command {
	var (
		parallel int
		model    string
		noColor  bool
	)

	cmd := &cobra.Command{
		Use:   "harness",
		Short: "Run the regression battery",
		Long: "harness runs the built-in scenario battery: benign tasks that must\n" +
			"execute and verify, and hazardous commands that must be rejected.\n" +
			"The exit status is non-zero when any case fails.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var proposer ports.Proposer
			if model != "" {
				var err error
				if proposer, err = container.ProposerFor(model); err != nil {
					return err
				}
			}

			runner := container.HarnessRunner(parallel, proposer)
			report, err := runner.Run(cmd.Context(), harness.DefaultBattery(container.Platform))
			if err != nil {
				return err
			}

			colored := !noColor && isatty.IsTerminal(os.Stdout.Fd())
			harness.Render(cmd.OutOrStdout(), report, colored)

			if !report.Passed() {
				return fmt.Errorf("%d of %d cases failed", report.Failed(), len(report.Cases))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&parallel, "parallel", 0, "Concurrent cases (0 means config default)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Generate positive-case commands with this model instead of the offline rules")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}
