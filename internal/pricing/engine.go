// Package pricing computes per-item cost estimates for the fabrication
// services the shop offers. Compute is pure: identical inputs always yield
// the identical decimal, no persistence or clock involved.
package pricing

import "github.com/shopspring/decimal"

// Formula coefficients shared across families.
var (
	// powerPerCutMinute converts machine minutes into kW consumption (term D).
	powerPerCutMinute = decimal.NewFromFloat(0.09524)
	powerRate         = decimal.NewFromFloat(0.03211)
	// plateAreaDivisor normalises material cost against a 4'x8' plate in in².
	plateAreaDivisor = decimal.NewFromInt(4608)
	markupCutting    = decimal.NewFromFloat(1.3)
	// surcharge is the fixed 8% applied to every family's subtotal.
	surcharge = decimal.NewFromFloat(1.08)

	two      = decimal.NewFromInt(2)
	kilogram = decimal.NewFromInt(1000)
)

// Per-family time rates.
var (
	plasmaDesignRate   = decimal.NewFromFloat(3.33)
	plasmaCutRate      = decimal.NewFromFloat(16.5)
	plasmaPostRate     = decimal.NewFromFloat(1.5)
	laserDesignRate    = decimal.NewFromFloat(1.2)
	laserCutRate       = decimal.NewFromFloat(1.7)
	laserPostRate      = decimal.NewFromInt(1)
	printingDesignRate = decimal.NewFromFloat(2.7)
	printingRunRate    = decimal.NewFromFloat(1.9)
	printingPostRate   = decimal.NewFromFloat(1.5)
)

// Compute returns the unit price for one item of the given family, rounded
// to two decimal places. Unset inputs are replaced by the family's default
// minimums; an unknown family prices at the flat base price.
func Compute(family Family, in Inputs) decimal.Decimal {
	in = in.withDefaults(family)

	var total decimal.Decimal
	switch family {
	case FamilyPlasmaCutting:
		total = cutPrice(in, plasmaDesignRate, plasmaCutRate, plasmaPostRate)
	case FamilyLaserCutting, FamilyLaserEngrave:
		total = cutPrice(in, laserDesignRate, laserCutRate, laserPostRate)
	case FamilyPrinting3D, FamilyPrintingResin:
		total = printPrice(in)
	default:
		total = in.BasePrice
	}

	if total.IsNegative() {
		total = decimal.Zero
	}
	return total.Round(2)
}

// cutPrice covers the plasma and laser families:
//
//	subtotal = ((A·dr)+(B·cr)+(C·pr)+(D·0.03211)+(((E·F)/4608)·2)+G)·1.3
//	D = 0.09524·B
//
// When the item has no cut dimensions the area term contributes zero and the
// quote reduces to its time and consumable components.
func cutPrice(in Inputs, designRate, cutRate, postRate decimal.Decimal) decimal.Decimal {
	a := in.designMinutes().Mul(designRate)
	b := in.processMinutes().Mul(cutRate)
	c := in.postProcessMinutes().Mul(postRate)
	d := powerPerCutMinute.Mul(in.processMinutes()).Mul(powerRate)
	material := in.materialCost().Mul(in.AreaSquareInches).Div(plateAreaDivisor).Mul(two)

	subtotal := a.Add(b).Add(c).Add(d).Add(material).Add(in.consumables()).Mul(markupCutting)
	return subtotal.Mul(surcharge)
}

// printPrice covers the FDM and resin printing families:
//
//	subtotal = ((A·2.7)+(B·1.9)+((C/1000)·F)+(D·1.5)+G)·1.3
//
// where C is grams of material consumed and F the per-kilogram roll cost.
func printPrice(in Inputs) decimal.Decimal {
	a := in.designMinutes().Mul(printingDesignRate)
	b := in.processMinutes().Mul(printingRunRate)
	material := in.materialUsedGrams().Div(kilogram).Mul(in.materialCost())
	d := in.postProcessMinutes().Mul(printingPostRate)

	subtotal := a.Add(b).Add(material).Add(d).Add(in.consumables()).Mul(markupCutting)
	return subtotal.Mul(surcharge)
}
