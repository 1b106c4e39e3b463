package entity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/agah-solutions/forge/internal/pricing"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func nullDec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}

func TestOrderItemArea(t *testing.T) {
	item := &OrderItem{
		Length: nullDec("12.5"),
		Width:  nullDec("8"),
		Height: nullDec("2"), // thickness reference, excluded from area
	}
	assert.True(t, dec("100").Equal(item.AreaSquareInches()))

	item.Width = decimal.NullDecimal{}
	assert.True(t, item.AreaSquareInches().IsZero())
}

func TestOrderItemTotals(t *testing.T) {
	item := &OrderItem{
		Quantity:           3,
		EstimatedUnitPrice: dec("100"),
	}
	assert.True(t, dec("300").Equal(item.EstimatedTotal()))

	// The custom design charge is added once, not per unit.
	item.NeedsCustomDesign = true
	item.CustomDesignPrice = nullDec("200")
	assert.True(t, dec("500").Equal(item.EstimatedTotal()))

	// Final total is zero until an operator sets the final unit price.
	assert.True(t, item.FinalTotal().IsZero())
	item.FinalUnitPrice = nullDec("110")
	assert.True(t, dec("530").Equal(item.FinalTotal()))
}

func TestOrderItemUnitPriceEstimate(t *testing.T) {
	item := &OrderItem{ServiceFamily: pricing.FamilyPlasmaCutting, Quantity: 1}
	assert.True(t, dec("1329.86").Equal(item.UnitPriceEstimate()))

	// Unknown family falls back to the catalog base price.
	flat := &OrderItem{Quantity: 1, BasePrice: dec("75")}
	assert.True(t, dec("75").Equal(flat.UnitPriceEstimate()))
}

func TestOrderRecomputeTotals(t *testing.T) {
	order := &Order{
		Items: []*OrderItem{
			{
				Quantity:           2,
				EstimatedUnitPrice: dec("100"),
				NeedsCustomDesign:  true,
				CustomDesignPrice:  nullDec("200"),
			},
			{
				Quantity:           1,
				EstimatedUnitPrice: dec("50"),
			},
		},
	}

	order.RecomputeTotals()
	// 2*100 + 200 (design once) + 1*50
	assert.True(t, dec("450").Equal(order.EstimatedPrice), "got %s", order.EstimatedPrice)
	assert.False(t, order.FinalPriceSet(), "final price must stay unset until all items are priced")

	// One item priced is not enough.
	order.Items[0].FinalUnitPrice = nullDec("120")
	order.RecomputeTotals()
	assert.False(t, order.FinalPriceSet())

	order.Items[1].FinalUnitPrice = nullDec("60")
	order.RecomputeTotals()
	assert.True(t, order.FinalPriceSet())
	// 2*120 + 200 + 1*60
	assert.True(t, dec("500").Equal(order.FinalPrice.Decimal), "got %s", order.FinalPrice.Decimal)
}

func TestOrderRecomputeTotalsEmpty(t *testing.T) {
	order := &Order{}
	order.RecomputeTotals()
	assert.True(t, order.EstimatedPrice.IsZero())
	assert.False(t, order.FinalPriceSet())
}
