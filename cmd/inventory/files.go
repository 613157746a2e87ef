package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bioskin/inventory/internal/importer"
	"github.com/bioskin/inventory/internal/model"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Insert new items from an xlsx or CSV file (SKU, Name, Description, Cost, Quantity)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		upload, err := readUpload(path)
		if err != nil {
			return err
		}

		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		res, err := importer.ImportInitialItems(cmd.Context(), database, upload)
		if err != nil {
			return err
		}
		printReport(cmd.OutOrStdout(), "Initial Import", res)
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Apply quantities from an xlsx or CSV file to items by SKU",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		mode, _ := cmd.Flags().GetString("mode")
		skuColumn, _ := cmd.Flags().GetString("sku-column")
		qtyColumn, _ := cmd.Flags().GetString("quantity-column")

		upload, err := readUpload(path)
		if err != nil {
			return err
		}

		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		res, err := importer.ProcessInventoryFile(cmd.Context(), database, importer.UpdateRequest{
			File:    upload,
			Mode:    model.QuantityMode(mode),
			Mapping: importer.ColumnMapping{SKU: skuColumn, Quantity: qtyColumn},
		})
		if err != nil {
			return err
		}
		printReport(cmd.OutOrStdout(), "Bulk Update ("+mode+")", res)
		return nil
	},
}

func init() {
	importCmd.Flags().StringP("file", "f", "", "xlsx or CSV file path (required)")
	importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)

	updateCmd.Flags().StringP("file", "f", "", "xlsx or CSV file path (required)")
	updateCmd.MarkFlagRequired("file")
	updateCmd.Flags().String("mode", string(model.QuantitySet), "add, deduct or set")
	updateCmd.Flags().String("sku-column", importer.DefaultSKUColumn, "header of the SKU column")
	updateCmd.Flags().String("quantity-column", importer.DefaultQuantityColumn, "header of the quantity column")
	rootCmd.AddCommand(updateCmd)
}

// readUpload loads a file the way the UI would hand it over. The format
// is chosen from the file extension.
func readUpload(path string) (importer.Upload, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return importer.Upload{}, fmt.Errorf("reading upload: %w", err)
	}
	return importer.Upload{Name: filepath.Base(path), Content: content}, nil
}

func printReport(w io.Writer, title string, res *model.BulkResult) {
	for _, msg := range res.Warnings {
		fmt.Fprintf(w, "  [warn]  %s\n", msg)
	}
	for _, msg := range res.Errors {
		fmt.Fprintf(w, "  [error] %s\n", msg)
	}

	status := "OK"
	if !res.Success {
		status = "completed with errors"
	}
	fmt.Fprintf(w, `
=== %s ===
Rows processed: %d
Rows applied:   %d
Errors:         %d
Warnings:       %d
Status:         %s
`, title, res.ProcessedCount, res.SuccessCount, len(res.Errors), len(res.Warnings), status)
}
