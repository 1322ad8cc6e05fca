package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"price-tracker/internal/app"
)

var (
	monitorID       int64
	monitorSelector string
	monitorAll      bool
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Fetch current prices and record observations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !monitorAll && monitorID <= 0 {
			return errors.New("either --id or --all must be provided")
		}
		if monitorAll && monitorSelector != "" {
			return errors.New("--selector only applies to a single product")
		}

		opts := app.MonitorOptions{
			ProductID: monitorID,
			Selector:  monitorSelector,
			All:       monitorAll,
		}

		return getApp().Monitor(cmd.Context(), opts)
	},
}

func init() {
	monitorCmd.Flags().Int64Var(&monitorID, "id", 0, "Product id to monitor")
	monitorCmd.Flags().StringVar(&monitorSelector, "selector", "", "CSS selector for the price element")
	monitorCmd.Flags().BoolVar(&monitorAll, "all", false, "Monitor every registered product")
}
