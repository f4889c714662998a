package cmd

import (
	"os/signal"
	"strings"
	"syscall"

	"dirmerge/internal/logger"
	"dirmerge/internal/model"
	"dirmerge/internal/util"
	"dirmerge/internal/watch"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchBase string

var watchCmd = &cobra.Command{
	Use:   "watch <local> <remote>",
	Short: "Compare again whenever one of the trees changes",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		mode, r := roots(args, watchBase)

		w, err := watch.New(256, func(path string) bool {
			return strings.HasSuffix(path, util.TempSuffix)
		})
		if err != nil {
			return err
		}
		defer w.Stop()

		for _, role := range model.Roles {
			if mode.Roots().Has(role) {
				if err := w.Add(r[role]); err != nil {
					return err
				}
			}
		}
		w.Start()

		compare := func() {
			tree, err := analyze(ctx, mode, r, nil)
			if err != nil {
				logger.Log.Error("compare failed", zap.Error(err))
				return
			}
			printFiles(cmd.OutOrStdout(), tree, false)
			printSummary(cmd.OutOrStdout(), tree)
		}
		compare()

		batches := watch.Debounce(ctx, w.Events(), cfg.Debounce)
		for {
			select {
			case <-ctx.Done():
				logger.Log.Info("shutting down")
				return nil
			case batch, ok := <-batches:
				if !ok {
					return nil
				}
				logger.Log.Info("trees changed",
					zap.Int("events", len(batch)))
				compare()
			}
		}
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchBase, "base", "", "common ancestor directory for a three-way compare")
	rootCmd.AddCommand(watchCmd)
}

