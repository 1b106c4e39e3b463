package order

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/agah-solutions/forge/pkg/errorbank"
)

// CreateInput is the checkout payload.
type CreateInput struct {
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	AdditionalNotes string
	Items           []ItemInput
}

// ItemInput describes one requested line item. The measured pricing fields
// are optional at checkout; the quote falls back to the family minimums.
type ItemInput struct {
	ServiceSlug string
	Description string
	Quantity    int

	Length *decimal.Decimal
	Width  *decimal.Decimal
	Height *decimal.Decimal

	DesignMinutes      *int
	ProcessMinutes     *int
	PostProcessMinutes *int
	MaterialCost       *decimal.Decimal
	MaterialUsedGrams  *decimal.Decimal
	Consumables        *decimal.Decimal

	NeedsCustomDesign bool
	CustomDesignPrice *decimal.Decimal
}

// ItemPricingUpdate carries operator-measured inputs. Setting any of these
// recomputes the item's final unit price; nil fields are left untouched.
type ItemPricingUpdate struct {
	Length *decimal.Decimal
	Width  *decimal.Decimal
	Height *decimal.Decimal

	DesignMinutes      *int
	ProcessMinutes     *int
	PostProcessMinutes *int
	MaterialCost       *decimal.Decimal
	MaterialUsedGrams  *decimal.Decimal
	Consumables        *decimal.Decimal
}

// ItemDetailsUpdate carries customer-facing edits. None of these fields ever
// triggers a final-price recompute.
type ItemDetailsUpdate struct {
	Description       *string
	Quantity          *int
	NeedsCustomDesign *bool
	CustomDesignPrice *decimal.Decimal
}

func (in CreateInput) validate() error {
	if strings.TrimSpace(in.CustomerName) == "" {
		return errorbank.BadRequest("customer name is required")
	}
	if strings.TrimSpace(in.CustomerEmail) == "" {
		return errorbank.BadRequest("customer email is required")
	}
	if len(in.Items) == 0 {
		return errorbank.BadRequest("an order needs at least one item")
	}
	for i, item := range in.Items {
		if err := item.validate(); err != nil {
			appErr := errorbank.From(err)
			return errorbank.New(appErr.Kind(), appErr.Message(), errorbank.WithDetail("item_index", i))
		}
	}
	return nil
}

func (in ItemInput) validate() error {
	if strings.TrimSpace(in.ServiceSlug) == "" {
		return errorbank.BadRequest("item service is required")
	}
	if in.Quantity < 1 {
		return errorbank.Unprocessable("item quantity must be at least 1")
	}
	if err := nonNegative("length", in.Length); err != nil {
		return err
	}
	if err := nonNegative("width", in.Width); err != nil {
		return err
	}
	if err := nonNegative("height", in.Height); err != nil {
		return err
	}
	if err := nonNegativeMinutes("design minutes", in.DesignMinutes); err != nil {
		return err
	}
	if err := nonNegativeMinutes("process minutes", in.ProcessMinutes); err != nil {
		return err
	}
	if err := nonNegativeMinutes("post-process minutes", in.PostProcessMinutes); err != nil {
		return err
	}
	if err := nonNegative("material cost", in.MaterialCost); err != nil {
		return err
	}
	if err := nonNegative("material used", in.MaterialUsedGrams); err != nil {
		return err
	}
	if err := nonNegative("consumables", in.Consumables); err != nil {
		return err
	}
	return validateDesignCharge(in.NeedsCustomDesign, in.CustomDesignPrice)
}

func (u ItemPricingUpdate) validate() error {
	if err := nonNegative("length", u.Length); err != nil {
		return err
	}
	if err := nonNegative("width", u.Width); err != nil {
		return err
	}
	if err := nonNegative("height", u.Height); err != nil {
		return err
	}
	if err := nonNegativeMinutes("design minutes", u.DesignMinutes); err != nil {
		return err
	}
	if err := nonNegativeMinutes("process minutes", u.ProcessMinutes); err != nil {
		return err
	}
	if err := nonNegativeMinutes("post-process minutes", u.PostProcessMinutes); err != nil {
		return err
	}
	if err := nonNegative("material cost", u.MaterialCost); err != nil {
		return err
	}
	if err := nonNegative("material used", u.MaterialUsedGrams); err != nil {
		return err
	}
	return nonNegative("consumables", u.Consumables)
}

// empty reports whether the update carries no measured field at all.
func (u ItemPricingUpdate) empty() bool {
	return u.Length == nil && u.Width == nil && u.Height == nil &&
		u.DesignMinutes == nil && u.ProcessMinutes == nil && u.PostProcessMinutes == nil &&
		u.MaterialCost == nil && u.MaterialUsedGrams == nil && u.Consumables == nil
}

func validateDesignCharge(needsDesign bool, price *decimal.Decimal) error {
	if needsDesign {
		if price == nil {
			return errorbank.Unprocessable("custom design price is required when custom design is requested")
		}
		if price.IsNegative() {
			return errorbank.Unprocessable("custom design price must not be negative")
		}
	}
	return nil
}

func nonNegative(field string, v *decimal.Decimal) error {
	if v != nil && v.IsNegative() {
		return errorbank.Unprocessable(fmt.Sprintf("item %s must not be negative", field))
	}
	return nil
}

func nonNegativeMinutes(field string, v *int) error {
	if v != nil && *v < 0 {
		return errorbank.Unprocessable(fmt.Sprintf("item %s must not be negative", field))
	}
	return nil
}

func nullDecimal(v *decimal.Decimal) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*v)
}
