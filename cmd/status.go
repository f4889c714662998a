package cmd

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "View the summary of a running serve command",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var result struct {
			Mode     string         `json:"mode"`
			Roots    []string       `json:"roots"`
			Nodes    int            `json:"nodes"`
			Statuses map[string]int `json:"statuses"`
		}

		if err := callServer(cmd.Context(), http.MethodGet, "/summary", &result); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s compare, %d nodes\n", result.Mode, result.Nodes)

		statuses := make([]string, 0, len(result.Statuses))
		for s := range result.Statuses {
			statuses = append(statuses, s)
		}
		sort.Strings(statuses)
		for _, s := range statuses {
			fmt.Fprintf(out, "  %-14s %d\n", s, result.Statuses[s])
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
