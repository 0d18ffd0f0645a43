package steps

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/cucumber/messages/go/v21"

	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
	"github.com/andrescamacho/colonysim-go/test/helpers"
)

// t0 anchors every scenario; colonies are last updated at t0
var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

var typesByName = map[string]planetary.TypeID{
	"Aqueous Liquids": helpers.TypeAqueousLiquids,
	"Microorganisms":  helpers.TypeMicroorganisms,
	"Water":           helpers.TypeWater,
	"Bacteria":        helpers.TypeBacteria,
	"Oxygen":          3683,
}

func typeNamed(name string) (planetary.TypeID, error) {
	id, ok := typesByName[name]
	if !ok {
		return 0, fmt.Errorf("unknown resource type %q", name)
	}
	return id, nil
}

func unitVolume(id planetary.TypeID) float64 {
	for _, t := range helpers.FixtureTypes() {
		if t.ID == id {
			return t.Volume
		}
	}
	return 0
}

func recipeNamed(name string) (*planetary.Recipe, error) {
	for _, r := range helpers.FixtureRecipes() {
		if r.Name == name {
			return r, nil
		}
	}
	return nil, fmt.Errorf("unknown schematic %q", name)
}

func cellValues(row *messages.PickleTableRow) []string {
	values := make([]string, len(row.Cells))
	for i, cell := range row.Cells {
		values[i] = strings.TrimSpace(cell.Value)
	}
	return values
}

// tableRows maps each data row of a table to its header names
func tableRows(table *godog.Table) []map[string]string {
	if table == nil || len(table.Rows) == 0 {
		return nil
	}
	header := cellValues(table.Rows[0])
	rows := make([]map[string]string, 0, len(table.Rows)-1)
	for _, row := range table.Rows[1:] {
		values := cellValues(row)
		m := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(values) {
				m[h] = values[i]
			}
		}
		rows = append(rows, m)
	}
	return rows
}

// quantitiesFromTable reads a "| type | quantity |" table
func quantitiesFromTable(table *godog.Table) ([]planetary.ResourceQuantity, error) {
	var quantities []planetary.ResourceQuantity
	for _, row := range tableRows(table) {
		id, err := typeNamed(row["type"])
		if err != nil {
			return nil, err
		}
		qty, err := strconv.Atoi(row["quantity"])
		if err != nil {
			return nil, fmt.Errorf("invalid quantity %q: %w", row["quantity"], err)
		}
		quantities = append(quantities, planetary.ResourceQuantity{Type: id, Quantity: qty})
	}
	return quantities, nil
}

func inventoryFromTable(table *godog.Table) (planetary.Inventory, error) {
	quantities, err := quantitiesFromTable(table)
	if err != nil {
		return planetary.Inventory{}, err
	}
	amounts := make(map[planetary.TypeID]int, len(quantities))
	for _, q := range quantities {
		amounts[q.Type] += q.Quantity
	}
	return planetary.NewInventory(amounts), nil
}

func expectInt(what string, want, got int) error {
	if want != got {
		return fmt.Errorf("expected %s to be %d, got %d", what, want, got)
	}
	return nil
}

// typeListFromNames parses a comma separated list of type names
func typeListFromNames(names string) ([]planetary.TypeID, error) {
	var ids []planetary.TypeID
	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		id, err := typeNamed(name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
