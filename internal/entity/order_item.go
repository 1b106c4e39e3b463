package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/agah-solutions/forge/internal/pricing"
)

// OrderItem is one line of an order. It owns the dimensional and measured
// inputs its service family prices on, plus two unit prices that are never
// conflated: the estimated price is the initial quote computed once at
// creation, the final price is set only after an operator edits the measured
// inputs.
type OrderItem struct {
	bun.BaseModel `bun:"table:order_items"`

	ID        int64 `bun:",pk,autoincrement"`
	OrderID   int64 `bun:"order_id"`
	ServiceID int64 `bun:"service_id"`

	// ServiceFamily is denormalised from the catalog entry so pricing stays
	// stable even if the service is later reconfigured.
	ServiceFamily pricing.Family `bun:"service_family"`

	Description string `bun:"description"`
	Quantity    int    `bun:"quantity"`

	// Dimensions in inches. Height is descriptive only (material thickness
	// reference); it never enters the area calculation.
	Length decimal.NullDecimal `bun:"length_in"`
	Width  decimal.NullDecimal `bun:"width_in"`
	Height decimal.NullDecimal `bun:"height_in"`

	DesignMinutes      *int                `bun:"design_minutes"`
	ProcessMinutes     *int                `bun:"process_minutes"`
	PostProcessMinutes *int                `bun:"post_process_minutes"`
	MaterialCost       decimal.NullDecimal `bun:"material_cost"`
	MaterialUsedGrams  decimal.NullDecimal `bun:"material_used_grams"`
	Consumables        decimal.NullDecimal `bun:"consumables"`

	NeedsCustomDesign bool                `bun:"needs_custom_design"`
	CustomDesignPrice decimal.NullDecimal `bun:"custom_design_price"`

	EstimatedUnitPrice decimal.Decimal     `bun:"estimated_unit_price"`
	FinalUnitPrice     decimal.NullDecimal `bun:"final_unit_price"`

	// BasePrice is the catalog fallback applied when the family is unknown.
	BasePrice decimal.Decimal `bun:"base_price"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `bun:"updated_at,nullzero"`
}

// AreaSquareInches is length times width, zero when either dimension is
// missing. Items without cut dimensions still price via their time terms.
func (i *OrderItem) AreaSquareInches() decimal.Decimal {
	if !i.Length.Valid || !i.Width.Valid {
		return decimal.Zero
	}
	return i.Length.Decimal.Mul(i.Width.Decimal)
}

// PricingInputs assembles the engine inputs from whatever is currently set
// on the item. Unset fields are left nil so the engine applies the family
// minimums.
func (i *OrderItem) PricingInputs() pricing.Inputs {
	in := pricing.Inputs{
		DesignMinutes:      i.DesignMinutes,
		ProcessMinutes:     i.ProcessMinutes,
		PostProcessMinutes: i.PostProcessMinutes,
		AreaSquareInches:   i.AreaSquareInches(),
		BasePrice:          i.BasePrice,
	}
	if i.MaterialCost.Valid {
		cost := i.MaterialCost.Decimal
		in.MaterialCost = &cost
	}
	if i.MaterialUsedGrams.Valid {
		grams := i.MaterialUsedGrams.Decimal
		in.MaterialUsedGrams = &grams
	}
	if i.Consumables.Valid {
		consumables := i.Consumables.Decimal
		in.Consumables = &consumables
	}
	return in
}

// UnitPriceEstimate runs the pricing engine against the current inputs.
func (i *OrderItem) UnitPriceEstimate() decimal.Decimal {
	return pricing.Compute(i.ServiceFamily, i.PricingInputs())
}

// EstimatedTotal is the quoted unit price times quantity, plus the one-time
// custom design charge when the flag is set. The design price is never
// multiplied by quantity.
func (i *OrderItem) EstimatedTotal() decimal.Decimal {
	return i.total(i.EstimatedUnitPrice)
}

// FinalTotal mirrors EstimatedTotal using the operator-verified unit price.
// It returns zero while the final price is still unset.
func (i *OrderItem) FinalTotal() decimal.Decimal {
	if !i.FinalUnitPrice.Valid {
		return decimal.Zero
	}
	return i.total(i.FinalUnitPrice.Decimal)
}

func (i *OrderItem) total(unit decimal.Decimal) decimal.Decimal {
	total := unit.Mul(decimal.NewFromInt(int64(i.Quantity)))
	if i.NeedsCustomDesign && i.CustomDesignPrice.Valid {
		total = total.Add(i.CustomDesignPrice.Decimal)
	}
	return total
}
