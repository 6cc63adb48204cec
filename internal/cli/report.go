package cli

import (
	"github.com/spf13/cobra"

	"bitcoin-stats/internal/report"
	"bitcoin-stats/internal/service"
)

var reportQuery service.Query

var reportCmd = &cobra.Command{
	Use:       "report movement|volatility",
	Short:     "Print one report as JSON",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{string(report.KindMovement), string(report.KindVolatility)},
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Report(cmd.Context(), report.Kind(args[0]), reportQuery)
	},
}

func init() {
	addQueryFlags(reportCmd, &reportQuery)
}
