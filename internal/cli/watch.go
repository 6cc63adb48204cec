package cli

import (
	"github.com/spf13/cobra"

	"bitcoin-stats/internal/app"
)

var watchOpts app.WatchOptions

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Periodically check for volatile days and send alerts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Watch(cmd.Context(), watchOpts)
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchOpts.Once, "once", false, "Run a single check and exit")
}
