package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/doeshing/cmdgate/internal/app"
)

func newHistoryCommand(container *app.Container) *cobra.Command {
	var (
		limit  int
		search string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded pipeline runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := container.Ledger.Records(limit, search)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No recorded runs.")
				return nil
			}

			for _, rec := range records {
				status := "rejected"
				switch {
				case rec.Verified:
					status = "verified"
				case rec.TimedOut:
					status = "timed out"
				case rec.Executed:
					status = fmt.Sprintf("exit %d", rec.ExitCode)
				case rec.Approved:
					status = "approved"
				}
				fmt.Fprintf(out, "%-14s %-10s %s\n", humanize.Time(rec.Timestamp), status, rec.Command)
				if !rec.Approved && rec.Reasoning != "" {
					fmt.Fprintf(out, "   %s: %s\n", rec.Category, rec.Reasoning)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Max runs to show (0 means all)")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Filter on task or command")

	return cmd
}
