package main

import (
	"encoding/json"
	"io"
	"time"

	"github.com/fekuna/shelter-inventory-service/config"
	"github.com/fekuna/shelter-inventory-service/internal/apperr"
	"github.com/fekuna/shelter-inventory-service/internal/auth"
	itemDto "github.com/fekuna/shelter-inventory-service/internal/item/dto"
	lotDto "github.com/fekuna/shelter-inventory-service/internal/lot/dto"
	"github.com/fekuna/shelter-inventory-service/internal/model"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newCreateItemCmd() *cobra.Command {
	var tenantID, name, category, unit, threshold string

	cmd := &cobra.Command{
		Use:   "create-item",
		Short: "Add an item to the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := model.ParseCategory(category)
			if err != nil {
				return apperr.Wrap(apperr.KindInvalidInput, err, "invalid category")
			}
			th, err := decimal.NewFromString(threshold)
			if err != nil {
				return apperr.Wrap(apperr.KindInvalidInput, err, "invalid reorder threshold %q", threshold)
			}

			a, err := newCommandApp()
			if err != nil {
				return err
			}
			defer a.Close()

			it, err := a.items.CreateItem(cmd.Context(), &itemDto.CreateItemInput{
				TenantID:         tenantID,
				Name:             name,
				Category:         c,
				Unit:             unit,
				ReorderThreshold: th,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), it)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&tenantID, "tenant", "t", "", "Tenant id")
	f.StringVar(&name, "name", "", "Item name")
	f.StringVar(&category, "category", "", "medication, vaccine, food, supply or other")
	f.StringVar(&unit, "unit", "", "Unit label, e.g. kg")
	f.StringVar(&threshold, "reorder-threshold", "0", "Reorder threshold")
	for _, n := range []string{"tenant", "name", "category"} {
		_ = cmd.MarkFlagRequired(n)
	}
	return cmd
}

func newOpenLotCmd() *cobra.Command {
	var tenantID, itemID, lotNumber, expires, quantity, cost, note, actor string

	cmd := &cobra.Command{
		Use:   "open-lot",
		Short: "Create a lot and post its opening balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := decimal.NewFromString(quantity)
			if err != nil {
				return apperr.Wrap(apperr.KindInvalidInput, err, "invalid quantity %q", quantity)
			}
			input := &lotDto.OpenLotInput{
				CreateLotInput: lotDto.CreateLotInput{TenantID: tenantID, ItemID: itemID},
				Quantity:       q,
				Note:           note,
			}
			if lotNumber != "" {
				input.LotNumber = &lotNumber
			}
			if expires != "" {
				e, err := time.Parse(time.DateOnly, expires)
				if err != nil {
					return apperr.Wrap(apperr.KindInvalidInput, err, "invalid expiry %q", expires)
				}
				input.ExpiresAt = &e
			}
			if cost != "" {
				c, err := decimal.NewFromString(cost)
				if err != nil {
					return apperr.Wrap(apperr.KindInvalidInput, err, "invalid cost %q", cost)
				}
				input.CostPerUnit = &c
			}

			a, err := newCommandApp()
			if err != nil {
				return err
			}
			defer a.Close()

			l, _, err := a.lots.OpenLot(auth.WithActor(cmd.Context(), actor), input)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), l)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&tenantID, "tenant", "t", "", "Tenant id")
	f.StringVar(&itemID, "item", "", "Item id")
	f.StringVar(&lotNumber, "lot-number", "", "Supplier lot number")
	f.StringVar(&expires, "expires", "", "Expiry date, YYYY-MM-DD")
	f.StringVar(&quantity, "quantity", "", "Opening quantity")
	f.StringVar(&cost, "cost", "", "Cost per unit")
	f.StringVar(&note, "note", "", "Free-text note")
	f.StringVar(&actor, "actor", auth.SystemActor, "Actor id")
	for _, n := range []string{"tenant", "item", "quantity"} {
		_ = cmd.MarkFlagRequired(n)
	}
	return cmd
}

func newOnTheWayCmd() *cobra.Command {
	var tenantID, itemID string

	cmd := &cobra.Command{
		Use:   "on-the-way",
		Short: "Show ordered but not yet received quantity of an item",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newCommandApp()
			if err != nil {
				return err
			}
			defer a.Close()

			otw, err := a.procurement.OnTheWay(cmd.Context(), tenantID, itemID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), otw)
		},
	}

	cmd.Flags().StringVarP(&tenantID, "tenant", "t", "", "Tenant id")
	cmd.Flags().StringVar(&itemID, "item", "", "Item id")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}

func newCancelOrderCmd() *cobra.Command {
	var tenantID, orderID string

	cmd := &cobra.Command{
		Use:   "cancel-order",
		Short: "Cancel a purchase order that has nothing received",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newCommandApp()
			if err != nil {
				return err
			}
			defer a.Close()

			o, err := a.procurement.Cancel(cmd.Context(), tenantID, orderID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), o)
		},
	}

	cmd.Flags().StringVarP(&tenantID, "tenant", "t", "", "Tenant id")
	cmd.Flags().StringVar(&orderID, "order", "", "Purchase order id")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("order")
	return cmd
}

func newCommandApp() (*app, error) {
	cfg := config.LoadEnv()
	return newApp(cfg, newLogger(cfg))
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
