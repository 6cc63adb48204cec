package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bitcoin-stats/internal/app"
	"bitcoin-stats/internal/config"
	"bitcoin-stats/internal/logging"
	"bitcoin-stats/internal/service"
)

var (
	cfgFile   string
	logLevel  string
	appHandle *app.App
)

var rootCmd = &cobra.Command{
	Use:           "btcstats",
	Short:         "Daily movement and volatility reports over bitcoin price history",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if appHandle != nil || cmd == versionCmd {
			return nil
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}

		logger := logging.NewLogger(cfg.Logging)
		appHandle = app.NewApp(cfg, logger)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level defined in config")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(versionCmd)
}

func getApp() *app.App {
	if appHandle == nil {
		panic("application not initialized; PersistentPreRunE not executed")
	}
	return appHandle
}

// addQueryFlags binds the per-command asset and timeframe overrides. Zero
// values fall back to the history section of the config.
func addQueryFlags(cmd *cobra.Command, q *service.Query) {
	cmd.Flags().IntVar(&q.AssetID, "asset-id", 0, "Asset id to report on (defaults to history.asset_id)")
	cmd.Flags().StringVar(&q.Timeframe, "timeframe", "", "Lookback window: 24h, 7d, 30d, 1y or 5y (defaults to history.timeframe)")
}
