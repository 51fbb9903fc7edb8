package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/cmdgate/internal/app"
	"github.com/doeshing/cmdgate/internal/services"
)

func newReviewCommand(container *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review [command]",
		Short: "Vet an exact command without running it",
		Long: "review passes the given command through the policy engine and\n" +
			"prints the verdict. Nothing is executed. The exit status is\n" +
			"non-zero when the command is rejected.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := services.NewSession(container.Config.Execution.SandboxParent)
			if err != nil {
				return err
			}
			defer session.Close()

			command := strings.Join(args, " ")
			pipeline := container.NewPipeline(session, services.StaticProposer{Command: command}, nil)

			report, err := pipeline.Run(cmd.Context(), services.TaskRequest{
				Task:       command,
				ReviewOnly: true,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if report.Verdict.Approved {
				fmt.Fprintf(out, "APPROVED: %s\n", report.Verdict.Reasoning)
				return nil
			}
			fmt.Fprintf(out, "REJECTED (%s): %s\n", report.Verdict.Category, report.Verdict.Reasoning)
			return fmt.Errorf("command rejected: %s", report.Verdict.Category)
		},
	}
	return cmd
}
