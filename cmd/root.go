package cmd

import (
	"fmt"
	"os"

	"dirmerge/internal/config"
	"dirmerge/internal/logger"

	"github.com/spf13/cobra"
)

var (
	cfg     *config.Config
	debug   bool
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:           "dirmerge",
	Short:         "Compare and merge directory trees",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		logger.Init(debug)

		var err error
		cfg, err = config.Load(cfgFile)
		return err
	},
}

func Execute() {
	defer logger.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serverURL(path string) string {
	return fmt.Sprintf("http://localhost:%d%s", cfg.Port, path)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug mode")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.dirmerge/config.yaml)")
}
