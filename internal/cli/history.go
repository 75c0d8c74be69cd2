package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"codeberg.org/mutker/gamectl/internal/errors"
	"codeberg.org/mutker/gamectl/internal/history"
	"codeberg.org/mutker/gamectl/internal/logger"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent launch sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !cfg.History {
			return errors.New().WithMessage(errors.ErrInvalidConfig, "history is disabled")
		}

		journal, err := history.Open(cfg.HistoryDB, logger.Default())
		if err != nil {
			return err
		}
		defer func() {
			if err := journal.Close(); err != nil {
				logger.Warn().Err(err).Msg("Failed to close history journal")
			}
		}()

		entries, err := journal.Recent(historyLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "STARTED\tPROFILE\tDURATION\tEXIT\tCOMMAND")
		for _, e := range entries {
			duration := "-"
			exit := "running"
			if e.EndedAt != nil {
				duration = e.EndedAt.Sub(e.StartedAt).Round(time.Second).String()
				if e.Cancelled {
					exit = "cancelled"
				} else if e.ExitCode != nil {
					exit = fmt.Sprintf("%d", *e.ExitCode)
				}
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				e.StartedAt.Format(time.DateTime), e.Profile, duration, exit, e.Command)
		}

		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of sessions to show")
	rootCmd.AddCommand(historyCmd)
}
