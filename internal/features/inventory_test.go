package features

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/fekuna/shelter-inventory-service/internal/apperr"
	"github.com/fekuna/shelter-inventory-service/internal/consumption"
	consumptionDto "github.com/fekuna/shelter-inventory-service/internal/consumption/dto"
	consumptionUsecase "github.com/fekuna/shelter-inventory-service/internal/consumption/usecase"
	"github.com/fekuna/shelter-inventory-service/internal/item"
	itemDto "github.com/fekuna/shelter-inventory-service/internal/item/dto"
	itemUsecase "github.com/fekuna/shelter-inventory-service/internal/item/usecase"
	"github.com/fekuna/shelter-inventory-service/internal/ledger"
	ledgerDto "github.com/fekuna/shelter-inventory-service/internal/ledger/dto"
	ledgerUsecase "github.com/fekuna/shelter-inventory-service/internal/ledger/usecase"
	"github.com/fekuna/shelter-inventory-service/internal/lock"
	"github.com/fekuna/shelter-inventory-service/internal/logger"
	"github.com/fekuna/shelter-inventory-service/internal/lot"
	lotDto "github.com/fekuna/shelter-inventory-service/internal/lot/dto"
	lotUsecase "github.com/fekuna/shelter-inventory-service/internal/lot/usecase"
	"github.com/fekuna/shelter-inventory-service/internal/memstore"
	"github.com/fekuna/shelter-inventory-service/internal/model"
	"github.com/fekuna/shelter-inventory-service/internal/procurement"
	procurementDto "github.com/fekuna/shelter-inventory-service/internal/procurement/dto"
	procurementUsecase "github.com/fekuna/shelter-inventory-service/internal/procurement/usecase"
	"github.com/fekuna/shelter-inventory-service/internal/stock"
	stockUsecase "github.com/fekuna/shelter-inventory-service/internal/stock/usecase"
	"github.com/shopspring/decimal"
)

type inventoryTestContext struct {
	tenant      string
	items       item.UseCase
	lots        lot.UseCase
	ledger      ledger.UseCase
	consumption consumption.UseCase
	procurement procurement.UseCase
	stock       stock.UseCase

	itemIDs   map[string]string
	lotIDs    map[string]string
	order     *model.PurchaseOrder
	deduction *model.Deduction
	err       error
	failures  []error
}

func (c *inventoryTestContext) reset() {
	store := memstore.New()
	locker := lock.NewLocalLocker()
	log := logger.NewNop()

	c.ledger = ledgerUsecase.NewLedgerUseCase(store.Items(), store.Lots(), store.Ledger(), store.TxManager(),
		locker, nil, nil, log, ledgerUsecase.Config{})
	c.items = itemUsecase.NewItemUseCase(store.Items(), store.Lots(), store.TxManager(), locker, nil, log)
	c.lots = lotUsecase.NewLotUseCase(store.Lots(), store.Items(), c.ledger, log)
	c.consumption = consumptionUsecase.NewConsumptionUseCase(store.Items(), store.Lots(), c.ledger, model.PolicySingleLot, log)
	c.procurement = procurementUsecase.NewProcurementUseCase(store.PurchaseOrders(), store.Items(), store.Lots(), c.ledger,
		store.TxManager(), locker, log)
	c.stock = stockUsecase.NewStockUseCase(store.Items(), store.Lots(), store.Ledger(), nil, log)

	c.itemIDs = map[string]string{}
	c.lotIDs = map[string]string{}
	c.order = nil
	c.deduction = nil
	c.err = nil
	c.failures = nil
}

func (c *inventoryTestContext) aCleanInventoryForTenant(tenant string) error {
	c.tenant = tenant
	return nil
}

func (c *inventoryTestContext) anItemInCategoryWithReorderThreshold(name, category string, threshold int) error {
	it, err := c.items.CreateItem(context.Background(), &itemDto.CreateItemInput{
		TenantID:         c.tenant,
		Name:             name,
		Category:         model.Category(category),
		ReorderThreshold: decimal.NewFromInt(int64(threshold)),
	})
	if err != nil {
		return err
	}
	c.itemIDs[name] = it.ID
	return nil
}

func (c *inventoryTestContext) openLot(number, itemName string, qty int, expiresAt *time.Time) error {
	itemID, ok := c.itemIDs[itemName]
	if !ok {
		return fmt.Errorf("unknown item %q", itemName)
	}
	l, _, err := c.lots.OpenLot(context.Background(), &lotDto.OpenLotInput{
		CreateLotInput: lotDto.CreateLotInput{
			TenantID:  c.tenant,
			ItemID:    itemID,
			LotNumber: &number,
			ExpiresAt: expiresAt,
		},
		Quantity: decimal.NewFromInt(int64(qty)),
		ActorID:  "staff-1",
	})
	if err != nil {
		return err
	}
	c.lotIDs[number] = l.ID
	return nil
}

func (c *inventoryTestContext) lotIsOpenedWithNoExpiry(number, itemName string, qty int) error {
	return c.openLot(number, itemName, qty, nil)
}

func (c *inventoryTestContext) lotIsOpenedExpiringInDays(number, itemName string, qty, days int) error {
	expires := time.Now().AddDate(0, 0, days)
	return c.openLot(number, itemName, qty, &expires)
}

func (c *inventoryTestContext) unitsAreConsumed(qty int, itemName string) error {
	c.deduction, c.err = c.consumption.DeductForConsumption(context.Background(), &consumptionDto.DeductInput{
		TenantID: c.tenant,
		ItemID:   c.itemIDs[itemName],
		Amount:   decimal.NewFromInt(int64(qty)),
		ActorID:  "staff-1",
	})
	return c.err
}

func (c *inventoryTestContext) transactionIsRecorded(reason string, qty int, itemName string) error {
	r, err := model.ParseReason(reason)
	if err != nil {
		return err
	}
	_, c.err = c.ledger.RecordTransaction(context.Background(), &ledgerDto.RecordTransactionInput{
		TenantID: c.tenant,
		ItemID:   c.itemIDs[itemName],
		Reason:   r,
		Quantity: decimal.NewFromInt(int64(qty)),
		ActorID:  "staff-1",
	})
	return nil
}

func (c *inventoryTestContext) concurrentConsumers(n, qty int, itemName string) error {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := c.consumption.DeductForConsumption(context.Background(), &consumptionDto.DeductInput{
				TenantID: c.tenant,
				ItemID:   c.itemIDs[itemName],
				Amount:   decimal.NewFromInt(int64(qty)),
				ActorID:  "staff-1",
			})
			if err == nil && d.Partial() {
				err = fmt.Errorf("partial deduction of %s", d.QuantityDeducted)
			}
			if err != nil {
				mu.Lock()
				c.failures = append(c.failures, err)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return nil
}

func (c *inventoryTestContext) everyConsumerSucceeded() error {
	if len(c.failures) > 0 {
		return fmt.Errorf("%d consumers failed, first: %v", len(c.failures), c.failures[0])
	}
	return nil
}

func (c *inventoryTestContext) aPurchaseOrderFor(qty int, itemName string) error {
	o, err := c.procurement.CreateOrder(context.Background(), &procurementDto.CreateOrderInput{
		TenantID: c.tenant,
		Supplier: "Acme Pet Supply",
		Lines: []procurementDto.OrderLineInput{{
			ItemID:          c.itemIDs[itemName],
			QuantityOrdered: decimal.NewFromInt(int64(qty)),
			UnitPrice:       decimal.RequireFromString("1.20"),
		}},
		ActorID: "manager-1",
	})
	if err != nil {
		return err
	}
	c.order = o
	return nil
}

func (c *inventoryTestContext) unitsAreReceivedOnTheOrder(qty int) error {
	o, err := c.procurement.Receive(context.Background(), &procurementDto.ReceiveInput{
		TenantID: c.tenant,
		OrderID:  c.order.ID,
		Deliveries: []procurementDto.DeliveryInput{{
			LineID:   c.order.Lines[0].ID,
			Quantity: decimal.NewFromInt(int64(qty)),
		}},
		ActorID: "staff-1",
	})
	c.err = err
	if err == nil {
		c.order = o
	}
	return nil
}

func (c *inventoryTestContext) theOrderStatusIs(status string) error {
	if c.err != nil {
		return c.err
	}
	if string(c.order.Status) != status {
		return fmt.Errorf("status = %s, want %s", c.order.Status, status)
	}
	return nil
}

func (c *inventoryTestContext) theOrderLineHasReceived(qty int) error {
	got := c.order.Lines[0].QuantityReceived
	if !got.Equal(decimal.NewFromInt(int64(qty))) {
		return fmt.Errorf("received = %s, want %d", got, qty)
	}
	return nil
}

func (c *inventoryTestContext) theOperationFailsWith(kind string) error {
	if c.err == nil {
		return fmt.Errorf("expected %s, got success", kind)
	}
	if got := apperr.KindOf(c.err); string(got) != kind {
		return fmt.Errorf("error kind = %q, want %q (%v)", got, kind, c.err)
	}
	return nil
}

func (c *inventoryTestContext) theQuantityOfIs(itemName string, qty int) error {
	it, err := c.items.GetItem(context.Background(), c.tenant, c.itemIDs[itemName])
	if err != nil {
		return err
	}
	if !it.QuantityCurrent.Equal(decimal.NewFromInt(int64(qty))) {
		return fmt.Errorf("quantity of %s = %s, want %d", itemName, it.QuantityCurrent, qty)
	}
	return nil
}

func (c *inventoryTestContext) theLowStockListingContains(itemName string) error {
	items, _, err := c.stock.ListStock(context.Background(), &itemDto.ItemFilters{TenantID: c.tenant, LowStockOnly: true})
	if err != nil {
		return err
	}
	for _, it := range items {
		if it.Name == itemName {
			return nil
		}
	}
	return fmt.Errorf("%s not in low-stock listing", itemName)
}

func (c *inventoryTestContext) lotHolds(number string, qty int) error {
	st, err := c.stock.GetStock(context.Background(), c.tenant, c.deduction.Item.ID)
	if err != nil {
		return err
	}
	for _, l := range st.Lots {
		if l.ID != c.lotIDs[number] {
			continue
		}
		if !l.Quantity.Equal(decimal.NewFromInt(int64(qty))) {
			return fmt.Errorf("lot %s = %s, want %d", number, l.Quantity, qty)
		}
		return nil
	}
	return fmt.Errorf("lot %s not found", number)
}

func (c *inventoryTestContext) theDeductionTook(qty int) error {
	if !c.deduction.QuantityDeducted.Equal(decimal.NewFromInt(int64(qty))) {
		return fmt.Errorf("deducted = %s, want %d", c.deduction.QuantityDeducted, qty)
	}
	return nil
}

func (c *inventoryTestContext) theDeductionIsPartial() error {
	if !c.deduction.Partial() {
		return fmt.Errorf("deduction of %s is not partial", c.deduction.QuantityDeducted)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &inventoryTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^a clean inventory for tenant "([^"]*)"$`, tc.aCleanInventoryForTenant)
	ctx.Step(`^an item "([^"]*)" in category "([^"]*)" with reorder threshold (\d+)$`, tc.anItemInCategoryWithReorderThreshold)
	ctx.Step(`^lot "([^"]*)" of "([^"]*)" is opened with (\d+) units and no expiry$`, tc.lotIsOpenedWithNoExpiry)
	ctx.Step(`^lot "([^"]*)" of "([^"]*)" is opened with (\d+) units expiring in (\d+) days$`, tc.lotIsOpenedExpiringInDays)
	ctx.Step(`^(\d+) units of "([^"]*)" are consumed$`, tc.unitsAreConsumed)
	ctx.Step(`^a "([^"]*)" transaction of (\d+) units is recorded for "([^"]*)"$`, tc.transactionIsRecorded)
	ctx.Step(`^(\d+) consumers each consume (\d+) units of "([^"]*)" at once$`, tc.concurrentConsumers)
	ctx.Step(`^every consumer succeeded$`, tc.everyConsumerSucceeded)
	ctx.Step(`^a purchase order for (\d+) units of "([^"]*)"$`, tc.aPurchaseOrderFor)
	ctx.Step(`^(\d+) units are received on the order$`, tc.unitsAreReceivedOnTheOrder)
	ctx.Step(`^the order status is "([^"]*)"$`, tc.theOrderStatusIs)
	ctx.Step(`^the order line has received (\d+) units$`, tc.theOrderLineHasReceived)
	ctx.Step(`^the operation fails with "([^"]*)"$`, tc.theOperationFailsWith)
	ctx.Step(`^the quantity of "([^"]*)" is (\d+)$`, tc.theQuantityOfIs)
	ctx.Step(`^the low-stock listing contains "([^"]*)"$`, tc.theLowStockListingContains)
	ctx.Step(`^lot "([^"]*)" holds (\d+) units$`, tc.lotHolds)
	ctx.Step(`^the deduction took (\d+) units$`, tc.theDeductionTook)
	ctx.Step(`^the deduction is partial$`, tc.theDeductionIsPartial)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"inventory.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
