package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dirmerge/internal/logger"
	"dirmerge/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveBase string

var serveCmd = &cobra.Command{
	Use:   "serve <local> <remote>",
	Short: "Compare directory trees and serve the result over HTTP",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, r := roots(args, serveBase)

		tree, err := analyze(cmd.Context(), mode, r, nil)
		if err != nil {
			return err
		}

		hist, closeHist, err := openHistory()
		if err != nil {
			return err
		}
		defer closeHist()

		srv := server.New(tree, hist, cfg.Port)
		srv.Start()

		logger.Log.Info("dirmerge server ready",
			zap.Int("port", cfg.Port),
			zap.Int("nodes", tree.Len()))

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			logger.Log.Info("shutting down",
				zap.String("signal", sig.String()))
		case <-srv.StopCh():
			logger.Log.Info("stop requested via API")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Stop(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveBase, "base", "", "common ancestor directory for a three-way compare")
	rootCmd.AddCommand(serveCmd)
}
