package cli

import (
	"github.com/spf13/cobra"

	"bitcoin-stats/internal/service"
)

var showQuery service.Query

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display daily movement and volatility as a table",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Show(cmd.Context(), showQuery)
	},
}

func init() {
	addQueryFlags(showCmd, &showQuery)
}
