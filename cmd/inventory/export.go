package main

import (
	"fmt"
	"os"
	"time"

	stockUCPkg "github.com/fekuna/shelter-inventory-service/internal/stock/usecase"
	"github.com/spf13/cobra"
)

func newExportStockCmd() *cobra.Command {
	var tenantID, out string

	cmd := &cobra.Command{
		Use:   "export-stock",
		Short: "Write the tenant's items and lots to an XLSX workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newCommandApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if out == "" {
				out = stockUCPkg.ReportFileName(tenantID, time.Now())
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()

			if err := a.stock.ExportStockReport(cmd.Context(), tenantID, f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stock report written to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&tenantID, "tenant", "t", "", "Tenant to export")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: stock_<tenant>_<timestamp>.xlsx)")
	_ = cmd.MarkFlagRequired("tenant")
	return cmd
}
