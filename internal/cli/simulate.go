package cli

import (
	"github.com/spf13/cobra"

	"bitcoin-stats/internal/service"
)

var simulateQuery service.Query

var simulateCmd = &cobra.Command{
	Use:   "simulate-alert",
	Short: "用最近一天的统计数据模拟一次波动告警",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().SimulateAlert(cmd.Context(), simulateQuery)
	},
}

func init() {
	addQueryFlags(simulateCmd, &simulateQuery)
}
