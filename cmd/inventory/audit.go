package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newAuditCmd() *cobra.Command {
	var tenantID string

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Compare cached stock against the ledger and lot sums",
		Long: "Reports items whose cached quantity differs from the sum of their ledger transactions " +
			"or of their lots. Nothing is repaired; post a correction transaction to fix drift.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newCommandApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			tenants := []string{tenantID}
			if tenantID == "" {
				if tenants, err = a.itemRepo.ListTenants(ctx); err != nil {
					return err
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			drifting := 0
			for _, t := range tenants {
				findings, err := a.stock.Audit(ctx, t)
				if err != nil {
					return fmt.Errorf("audit tenant %s: %w", t, err)
				}
				for _, f := range findings {
					drifting++
					if err := enc.Encode(f); err != nil {
						return err
					}
				}
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d tenant(s) audited, %d drifting item(s)\n", len(tenants), drifting)
			return nil
		},
	}

	cmd.Flags().StringVarP(&tenantID, "tenant", "t", "", "Tenant to audit (default: all tenants)")
	return cmd
}
