package main

import (
	"github.com/fekuna/shelter-inventory-service/internal/apperr"
	"github.com/fekuna/shelter-inventory-service/internal/auth"
	ledgerDto "github.com/fekuna/shelter-inventory-service/internal/ledger/dto"
	"github.com/fekuna/shelter-inventory-service/internal/model"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// newRecordCmd posts a single ledger transaction, typically a correction after an audit.
func newRecordCmd() *cobra.Command {
	var (
		tenantID, itemID, lotID, reason, quantity, note, actor string
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Post a ledger transaction",
		Example: "  inventory record -t shelter-1 --item 7f1c... --reason correction --quantity -2.5 --note \"stocktake fix\"",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := model.ParseReason(reason)
			if err != nil {
				return apperr.Wrap(apperr.KindInvalidReason, err, "invalid reason")
			}
			q, err := decimal.NewFromString(quantity)
			if err != nil {
				return apperr.Wrap(apperr.KindInvalidInput, err, "invalid quantity %q", quantity)
			}

			a, err := newCommandApp()
			if err != nil {
				return err
			}
			defer a.Close()

			input := &ledgerDto.RecordTransactionInput{
				ItemID:   itemID,
				Reason:   r,
				Quantity: q,
				Note:     note,
			}
			if lotID != "" {
				input.LotID = &lotID
			}

			ctx := auth.WithActor(auth.WithTenant(cmd.Context(), tenantID), actor)
			t, err := a.ledger.RecordTransaction(ctx, input)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), t)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&tenantID, "tenant", "t", "", "Tenant id")
	f.StringVar(&itemID, "item", "", "Item id")
	f.StringVar(&lotID, "lot", "", "Lot id (optional)")
	f.StringVar(&reason, "reason", "", "Reason code, e.g. correction, writeoff, donation")
	f.StringVar(&quantity, "quantity", "", "Quantity; signed for adjust reasons")
	f.StringVar(&note, "note", "", "Free-text note")
	f.StringVar(&actor, "actor", auth.SystemActor, "Actor id recorded on the transaction")
	for _, name := range []string{"tenant", "item", "reason", "quantity"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
