package cli

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	addName   string
	addURL    string
	addTarget string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a product to track",
	RunE: func(cmd *cobra.Command, args []string) error {
		if addName == "" || addURL == "" || addTarget == "" {
			return errors.New("--name, --url, and --target must be provided")
		}

		target, err := decimal.NewFromString(addTarget)
		if err != nil {
			return fmt.Errorf("invalid --target value: %w", err)
		}

		return getApp().AddProduct(cmd.Context(), addName, addURL, target)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered products",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().ListProducts(cmd.Context())
	},
}

var (
	updateID     int64
	updateName   string
	updateURL    string
	updateTarget string
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update a product's name, URL, or target price",
	RunE: func(cmd *cobra.Command, args []string) error {
		if updateID <= 0 {
			return errors.New("--id must be provided")
		}
		if updateName == "" || updateURL == "" || updateTarget == "" {
			return errors.New("--name, --url, and --target must be provided")
		}

		target, err := decimal.NewFromString(updateTarget)
		if err != nil {
			return fmt.Errorf("invalid --target value: %w", err)
		}

		return getApp().UpdateProduct(cmd.Context(), updateID, updateName, updateURL, target)
	},
}

var removeID int64

var removeCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a product and its price history",
	RunE: func(cmd *cobra.Command, args []string) error {
		if removeID <= 0 {
			return errors.New("--id must be provided")
		}
		return getApp().RemoveProduct(cmd.Context(), removeID)
	},
}

func init() {
	addCmd.Flags().StringVar(&addName, "name", "", "Product display name")
	addCmd.Flags().StringVar(&addURL, "url", "", "Product page URL")
	addCmd.Flags().StringVar(&addTarget, "target", "", "Target price that triggers an alert")

	updateCmd.Flags().Int64Var(&updateID, "id", 0, "Product id to update")
	updateCmd.Flags().StringVar(&updateName, "name", "", "Product display name")
	updateCmd.Flags().StringVar(&updateURL, "url", "", "Product page URL")
	updateCmd.Flags().StringVar(&updateTarget, "target", "", "Target price that triggers an alert")

	removeCmd.Flags().Int64Var(&removeID, "id", 0, "Product id to remove")
}
