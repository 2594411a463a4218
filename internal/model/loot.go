package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/GoPolymarket/econgate/internal/schema"
	"github.com/shopspring/decimal"
)

type LootTableEntry struct {
	ItemID      string         `json:"item_id" validate:"required"`
	DropChance  schema.Decimal `json:"drop_chance" validate:"required,dgte=0,dlte=100"` // percent
	QuantityMin int            `json:"quantity_min" validate:"required,min=1"`
	QuantityMax int            `json:"quantity_max" validate:"required,min=1"`
	Rarity      LootRarity     `json:"rarity" validate:"required,enum"`
}

func (e LootTableEntry) Invariants() []schema.Violation {
	if e.QuantityMin > e.QuantityMax {
		return []schema.Violation{{
			Field:   "quantity_min",
			Rule:    "quantity_range",
			Message: fmt.Sprintf("quantity_min %d exceeds quantity_max %d", e.QuantityMin, e.QuantityMax),
		}}
	}
	return nil
}

// LootTableDetails is a full drop table. RarityBreakdown is passed through
// untouched.
type LootTableDetails struct {
	TableID         string           `json:"table_id" validate:"required"`
	Name            string           `json:"name,omitempty"`
	Entries         []LootTableEntry `json:"entries" validate:"dive"`
	RarityBreakdown json.RawMessage  `json:"rarity_breakdown,omitempty"`
}

func (t *LootTableDetails) AddEntry(e LootTableEntry) *LootTableDetails {
	schema.Append(&t.Entries, e)
	return t
}

var hundred = decimal.NewFromInt(100)

func (t LootTableDetails) Invariants() []schema.Violation {
	total := decimal.Zero
	for _, e := range t.Entries {
		if e.DropChance.IsSet() {
			total = total.Add(e.DropChance.Decimal)
		}
	}
	if total.GreaterThan(hundred) {
		return []schema.Violation{{
			Field:   "entries",
			Rule:    "drop_chance_total",
			Message: "drop chances add up to " + total.String() + ", more than 100",
		}}
	}
	return nil
}

// CheckGenerated verifies a roll against this table: every item must come
// from an entry and fall within its quantity range.
func (t LootTableDetails) CheckGenerated(g GeneratedLoot) error {
	byItem := make(map[string]LootTableEntry, len(t.Entries))
	for _, e := range t.Entries {
		byItem[e.ItemID] = e
	}
	var errs schema.ValidationErrors
	for i, item := range g.Items {
		field := fmt.Sprintf("items[%d].quantity", i)
		entry, ok := byItem[item.ItemID]
		if !ok {
			errs = append(errs, &schema.ValidationError{
				Type: "GeneratedLoot", Field: fmt.Sprintf("items[%d].item_id", i), Rule: "item_in_table",
				Message: fmt.Sprintf("%s is not in table %s", item.ItemID, t.TableID),
			})
			continue
		}
		if item.Quantity < entry.QuantityMin || item.Quantity > entry.QuantityMax {
			errs = append(errs, &schema.ValidationError{
				Type: "GeneratedLoot", Field: field, Rule: "quantity_range",
				Message: fmt.Sprintf("quantity %d is outside [%d, %d]", item.Quantity, entry.QuantityMin, entry.QuantityMax),
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type GeneratedLootItem struct {
	ItemID   string     `json:"item_id" validate:"required"`
	Quantity int        `json:"quantity" validate:"required,min=1"`
	Rarity   LootRarity `json:"rarity" validate:"required,enum"`
}

type GeneratedLoot struct {
	TableID         string              `json:"table_id" validate:"required"`
	Items           []GeneratedLootItem `json:"items" validate:"dive"`
	RarityBreakdown json.RawMessage     `json:"rarity_breakdown,omitempty"`
	GeneratedAt     time.Time           `json:"generated_at"`
}

func (g *GeneratedLoot) AddItem(item GeneratedLootItem) *GeneratedLoot {
	schema.Append(&g.Items, item)
	return g
}
