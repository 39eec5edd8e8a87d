package cli

import (
	"github.com/ikkim/cartcore-backend/config"
	"github.com/ikkim/cartcore-backend/pkg/logger"
	"github.com/spf13/cobra"
)

// loadConfig is replaced in tests.
var loadConfig = config.Load

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cartctl",
		Short:         "Operate the cartcore database and catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			logger.Initialize(logger.Config{Level: level, Format: "console"})
			return nil
		},
	}
	cmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newSeedCmd())
	cmd.AddCommand(newTokenCmd())
	return cmd
}

func Execute() error {
	return newRootCmd().Execute()
}
