package cmd

import (
	"fmt"

	"dirmerge/internal/model"

	"github.com/spf13/cobra"
)

var (
	historyN      int
	historyRun    string
	historyFailed bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View merge history",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closeRepo, err := openHistory()
		if err != nil {
			return err
		}
		defer closeRepo()

		if repo == nil {
			return fmt.Errorf("history is disabled: db_path is empty")
		}

		ctx := cmd.Context()
		var histories []model.History
		switch {
		case historyRun != "":
			histories, err = repo.GetRun(ctx, historyRun)
		case historyFailed:
			histories, err = repo.GetFailed(ctx)
		default:
			histories, err = repo.GetRecent(ctx, historyN)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(histories) == 0 {
			fmt.Fprintln(out, "no history yet")
			return nil
		}

		for _, h := range histories {
			status := "✓"
			switch h.Status {
			case model.StatusError:
				status = "✗"
			case model.StatusHasConflicts, model.StatusConflicting:
				status = "!"
			}

			fmt.Fprintf(out, "%s [%s] %s %-14s %s\n",
				status,
				h.MergedAt.Format("2006-01-02 15:04:05"),
				shortID(h.RunID),
				h.Status,
				h.Path,
			)
			if h.ErrMsg != "" {
				fmt.Fprintf(out, "    %s\n", h.ErrMsg)
			}
		}

		stats, err := repo.GetStats(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "total %d, merged %d, failed %d\n", stats.Total, stats.Merged, stats.Failed)

		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyN, "n", 20, "number of history entries to show")
	historyCmd.Flags().StringVar(&historyRun, "run", "", "show a single merge run")
	historyCmd.Flags().BoolVar(&historyFailed, "failed", false, "show failed files only")
	rootCmd.AddCommand(historyCmd)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
