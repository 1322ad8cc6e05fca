package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"price-tracker/internal/app"
)

var (
	showID    int64
	showLimit int
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display a product's recent price history",
	RunE: func(cmd *cobra.Command, args []string) error {
		if showID <= 0 {
			return errors.New("--id must be provided")
		}
		if showLimit <= 0 {
			return errors.New("--limit must be greater than zero")
		}

		opts := app.ShowOptions{
			ProductID: showID,
			Limit:     showLimit,
		}

		return getApp().Show(cmd.Context(), opts)
	},
}

var statsID int64

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display aggregate price statistics for a product",
	RunE: func(cmd *cobra.Command, args []string) error {
		if statsID <= 0 {
			return errors.New("--id must be provided")
		}
		return getApp().Stats(cmd.Context(), statsID)
	},
}

func init() {
	showCmd.Flags().Int64Var(&showID, "id", 0, "Product id")
	showCmd.Flags().IntVar(&showLimit, "limit", 20, "Number of observations to display")

	statsCmd.Flags().Int64Var(&statsID, "id", 0, "Product id")
}
