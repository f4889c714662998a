package cmd

import (
	"fmt"

	"dirmerge/internal/conflict"
	"dirmerge/internal/crawler"
	"dirmerge/internal/logger"
	"dirmerge/internal/pipeline"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	mergeBase        string
	mergeOutput      string
	mergeStrategy    string
	mergeBackup      bool
	mergeInteractive bool
)

var mergeCmd = &cobra.Command{
	Use:   "merge <local> <remote>",
	Short: "Merge remote into local, or into --output",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		mode, r := roots(args, mergeBase)

		settings := cfg.Settings()
		if mergeOutput != "" {
			settings.Merge.Output = mergeOutput
		}
		if cmd.Flags().Changed("backup") {
			settings.Merge.Backup = mergeBackup
		}
		if mergeStrategy != "" {
			strategy, err := conflict.ParseStrategy(mergeStrategy)
			if err != nil {
				return err
			}
			settings.Strategy = strategy
		}

		var chooser pipeline.Chooser
		if mergeInteractive {
			chooser = newPromptChooser(cmd.InOrStdin(), cmd.OutOrStdout())
		}

		hist, closeHist, err := openHistory()
		if err != nil {
			return err
		}
		defer closeHist()

		runID := uuid.NewString()
		var store pipeline.HistoryStore
		if hist != nil {
			store = hist
		}

		procs, err := pipeline.Standard(settings, chooser, store, runID)
		if err != nil {
			return err
		}
		p, err := pipeline.New(cfg.Workers, procs...)
		if err != nil {
			return err
		}

		tree, err := crawler.Crawl(ctx, mode, r, cfg.Workers)
		if err != nil {
			return err
		}

		logger.Log.Info("merge started",
			zap.String("run_id", runID),
			zap.String("mode", mode.String()))

		if err := p.Run(ctx, tree); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printFiles(out, tree, false)
		printSummary(out, tree)

		if err := tree.Errors(); err != nil {
			return fmt.Errorf("merge finished with errors: %w", err)
		}
		return nil
	},
}

func init() {
	mergeCmd.Flags().StringVar(&mergeBase, "base", "", "common ancestor directory for a three-way merge")
	mergeCmd.Flags().StringVar(&mergeOutput, "output", "", "write the merged tree here instead of into local")
	mergeCmd.Flags().StringVar(&mergeStrategy, "strategy", "", "conflict strategy: MANUAL, LOCAL, REMOTE or BASE")
	mergeCmd.Flags().BoolVar(&mergeBackup, "backup", false, "keep a copy of every overwritten file")
	mergeCmd.Flags().BoolVarP(&mergeInteractive, "interactive", "i", false, "ask how to resolve each conflict")
	rootCmd.AddCommand(mergeCmd)
}
