package steps

import (
	"context"
	"errors"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
)

type inventoryContext struct {
	ledger   planetary.Inventory
	capacity float64
	removed  int
	err      error
}

func (ic *inventoryContext) reset() {
	ic.ledger = planetary.Inventory{}
	ic.capacity = 0
	ic.removed = 0
	ic.err = nil
}

func (ic *inventoryContext) volumeOf(id planetary.TypeID) float64 {
	return unitVolume(id)
}

// Given steps

func (ic *inventoryContext) aLedgerHolding(table *godog.Table) error {
	inv, err := inventoryFromTable(table)
	if err != nil {
		return err
	}
	ic.ledger = inv
	return nil
}

func (ic *inventoryContext) anEmptyLedger() error {
	ic.ledger = planetary.Inventory{}
	return nil
}

func (ic *inventoryContext) aStorageCapacityOf(capacity float64) error {
	ic.capacity = capacity
	return nil
}

// When steps

func (ic *inventoryContext) iAdd(qty int, name string) error {
	id, err := typeNamed(name)
	if err != nil {
		return err
	}
	ic.err = ic.ledger.Add(id, qty)
	return nil
}

func (ic *inventoryContext) iRemove(qty int, name string) error {
	id, err := typeNamed(name)
	if err != nil {
		return err
	}
	ic.err = ic.ledger.Remove(id, qty)
	return nil
}

func (ic *inventoryContext) iRemoveAtMost(qty int, name string) error {
	id, err := typeNamed(name)
	if err != nil {
		return err
	}
	ic.removed = ic.ledger.RemoveClamped(id, qty)
	return nil
}

func (ic *inventoryContext) iStore(qty int, name string) error {
	id, err := typeNamed(name)
	if err != nil {
		return err
	}
	ic.err = ic.ledger.AddBounded(id, qty, unitVolume(id), ic.volumeOf, ic.capacity)
	return nil
}

// Then steps

func (ic *inventoryContext) theLedgerHolds(qty int, name string) error {
	id, err := typeNamed(name)
	if err != nil {
		return err
	}
	return expectInt(name+" in ledger", qty, ic.ledger.Quantity(id))
}

func (ic *inventoryContext) theLedgerTotalIs(want int) error {
	return expectInt("ledger total", want, ic.ledger.Total())
}

func (ic *inventoryContext) theLedgerIsEmpty() error {
	if !ic.ledger.IsEmpty() {
		return fmt.Errorf("expected empty ledger, holds %d units", ic.ledger.Total())
	}
	return nil
}

func (ic *inventoryContext) theOperationSucceeds() error {
	if ic.err != nil {
		return fmt.Errorf("expected success, got %v", ic.err)
	}
	return nil
}

func (ic *inventoryContext) theOperationFailsWithInsufficientInventory() error {
	var insufficient *planetary.InsufficientInventoryError
	if !errors.As(ic.err, &insufficient) {
		return fmt.Errorf("expected insufficient inventory error, got %v", ic.err)
	}
	return nil
}

func (ic *inventoryContext) theOperationFailsWithCapacityExceeded() error {
	var exceeded *planetary.CapacityExceededError
	if !errors.As(ic.err, &exceeded) {
		return fmt.Errorf("expected capacity exceeded error, got %v", ic.err)
	}
	return nil
}

func (ic *inventoryContext) unitsWereRemoved(want int) error {
	return expectInt("removed units", want, ic.removed)
}

// InitializeInventoryScenario registers the inventory ledger steps
func InitializeInventoryScenario(ctx *godog.ScenarioContext) {
	ic := &inventoryContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		ic.reset()
		return ctx, nil
	})

	ctx.Step(`^a ledger holding:$`, ic.aLedgerHolding)
	ctx.Step(`^an empty ledger$`, ic.anEmptyLedger)
	ctx.Step(`^a storage capacity of ([\d.]+)$`, ic.aStorageCapacityOf)

	ctx.Step(`^I add (-?\d+) "([^"]*)"$`, ic.iAdd)
	ctx.Step(`^I remove (\d+) "([^"]*)"$`, ic.iRemove)
	ctx.Step(`^I remove at most (\d+) "([^"]*)"$`, ic.iRemoveAtMost)
	ctx.Step(`^I store (\d+) "([^"]*)"$`, ic.iStore)

	ctx.Step(`^the ledger holds (\d+) "([^"]*)"$`, ic.theLedgerHolds)
	ctx.Step(`^the ledger total is (\d+)$`, ic.theLedgerTotalIs)
	ctx.Step(`^the ledger is empty$`, ic.theLedgerIsEmpty)
	ctx.Step(`^the operation succeeds$`, ic.theOperationSucceeds)
	ctx.Step(`^the operation fails with insufficient inventory$`, ic.theOperationFailsWithInsufficientInventory)
	ctx.Step(`^the operation fails with capacity exceeded$`, ic.theOperationFailsWithCapacityExceeded)
	ctx.Step(`^(\d+) units were removed$`, ic.unitsWereRemoved)
}
