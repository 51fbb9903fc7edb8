package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/cmdgate/internal/app"
	"github.com/doeshing/cmdgate/internal/ports"
	"github.com/doeshing/cmdgate/internal/services"
)

func newRunCommand(container *app.Container) *cobra.Command {
	var (
		model        string
		withReviewer bool
		revisions    int
		timeout      time.Duration
		keepSandbox  bool
	)

	cmd := &cobra.Command{
		Use:   "run [task]",
		Short: "Propose, review and run a command for a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proposer, err := container.ProposerFor(model)
			if err != nil {
				return err
			}
			var reviewer ports.Reviewer
			if withReviewer {
				if reviewer, err = container.ReviewerFor(model); err != nil {
					return err
				}
			}

			session, err := services.NewSession(container.Config.Execution.SandboxParent)
			if err != nil {
				return err
			}
			if keepSandbox {
				fmt.Printf("Sandbox: %s (kept)\n", session.Box.Root())
			} else {
				defer session.Close()
			}

			if timeout <= 0 {
				timeout = container.Timeout()
			}
			if revisions < 0 {
				revisions = container.Config.Preferences.MaxRevisions
			}

			pipeline := container.NewPipeline(session, proposer, reviewer)
			report, err := pipeline.RunWithRevisions(cmd.Context(), services.TaskRequest{
				Task:    strings.Join(args, " "),
				Timeout: timeout,
			}, revisions)

			RenderReport(cmd.OutOrStdout(), report)
			return err
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "Model name from config (default from preferences)")
	cmd.Flags().BoolVar(&withReviewer, "with-reviewer", false, "Add a generative second opinion after the policy verdict")
	cmd.Flags().IntVar(&revisions, "revisions", -1, "Max revision attempts after a rejection or failure (-1 means config default)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Per-command execution timeout (0 means config default)")
	cmd.Flags().BoolVar(&keepSandbox, "keep-sandbox", false, "Do not purge the sandbox afterwards")

	return cmd
}
