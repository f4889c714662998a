package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running serve command",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var reply struct {
			Status string `json:"status"`
		}
		if err := callServer(cmd.Context(), http.MethodPost, "/stop", &reply); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "server on port %d: %s\n", cfg.Port, reply.Status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)
}
