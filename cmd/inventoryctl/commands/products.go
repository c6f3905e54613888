package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Export flags
	exportOutput string
)

// exportCmd writes every product as CSV
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all products as CSV",
	Long: `Write every product, ordered by id, in the same CSV layout as
GET /api/products/export.

Examples:
  inventoryctl export                 # Print to stdout
  inventoryctl export -o products.csv # Save to file`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd.Context(), cmd.OutOrStdout())
	},
}

// importCmd inserts products from a CSV file
var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import products from a CSV file",
	Long: `Insert every row whose name is not taken yet. Existing products are
never modified and rows without a name are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd.Context(), args[0], cmd.OutOrStdout())
	},
}

// statsCmd prints the statistics object
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print inventory statistics as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStats(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd, statsCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write CSV to file instead of stdout")
}

func runExport(ctx context.Context, stdout io.Writer) error {
	svc, err := openServices()
	if err != nil {
		return err
	}
	defer svc.Close()

	w := stdout
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", exportOutput, err)
		}
		defer f.Close()
		w = f
	}

	if err := svc.inventory.ExportProducts(ctx, w); err != nil {
		return fmt.Errorf("failed to export products: %w", err)
	}
	if exportOutput != "" {
		fmt.Fprintf(stdout, "Exported products to %s\n", exportOutput)
	}
	return nil
}

func runImport(ctx context.Context, path string, stdout io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	svc, err := openServices()
	if err != nil {
		return err
	}
	defer svc.Close()

	result, err := svc.inventory.ImportProducts(ctx, f, nil)
	if err != nil {
		return fmt.Errorf("failed to import products: %w", err)
	}
	return printJSON(stdout, result)
}

func runStats(ctx context.Context, stdout io.Writer) error {
	svc, err := openServices()
	if err != nil {
		return err
	}
	defer svc.Close()

	stats, err := svc.statistics.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to compute statistics: %w", err)
	}
	return printJSON(stdout, stats)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
