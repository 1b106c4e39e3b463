package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputePlasmaDefaults(t *testing.T) {
	// A=60, B=30, C=60, E=0, F=0, G=162.30 per the plasma minimums.
	got := Compute(FamilyPlasmaCutting, Inputs{})
	assert.True(t, dec("1329.86").Equal(got), "got %s", got)
}

func TestComputeLaserWithMaterial(t *testing.T) {
	cost := dec("50")
	got := Compute(FamilyLaserCutting, Inputs{
		MaterialCost:     &cost,
		AreaSquareInches: dec("100"),
	})
	assert.True(t, dec("133.66").Equal(got), "got %s", got)
}

func TestComputeLaserEngravingMatchesCutting(t *testing.T) {
	// Engraving shares the laser formula and minimums.
	assert.True(t, Compute(FamilyLaserEngrave, Inputs{}).Equal(Compute(FamilyLaserCutting, Inputs{})))
}

func TestComputePrintingDefaults(t *testing.T) {
	// ((60*2.7)+(30*1.9)+((0/1000)*350)+(60*1.5)+30)*1.3*1.08
	// = (162+57+0+90+30)*1.3*1.08 = 339*1.404 = 475.956
	got := Compute(FamilyPrinting3D, Inputs{})
	assert.True(t, dec("475.96").Equal(got), "got %s", got)

	assert.True(t, Compute(FamilyPrintingResin, Inputs{}).Equal(got))
}

func TestComputePrintingMaterialUsage(t *testing.T) {
	grams := dec("500")
	got := Compute(FamilyPrintingResin, Inputs{MaterialUsedGrams: &grams})
	// Material term: (500/1000)*350 = 175 on top of the default fixed terms.
	want := dec("339").Add(dec("175")).Mul(dec("1.3")).Mul(dec("1.08")).Round(2)
	assert.True(t, want.Equal(got), "want %s got %s", want, got)
}

func TestComputeZeroAreaDropsMaterialTerm(t *testing.T) {
	// With no dimensions the (E*F) term must contribute nothing even when a
	// material cost is supplied, so pure-engraving work still prices by time.
	cost := dec("999")
	withCost := Compute(FamilyLaserEngrave, Inputs{MaterialCost: &cost})
	defaults := Compute(FamilyLaserEngrave, Inputs{})
	assert.True(t, withCost.Equal(defaults), "want %s got %s", defaults, withCost)
}

func TestComputeNonNegative(t *testing.T) {
	zero := decimal.Zero
	for _, family := range Families {
		in := Inputs{
			DesignMinutes:      intPtr(0),
			ProcessMinutes:     intPtr(0),
			PostProcessMinutes: intPtr(0),
			MaterialCost:       &zero,
			MaterialUsedGrams:  &zero,
			Consumables:        &zero,
		}
		got := Compute(family, in)
		assert.False(t, got.IsNegative(), "family %s priced %s", family, got)
	}
}

func TestComputeIdempotent(t *testing.T) {
	cost := dec("75.50")
	in := Inputs{MaterialCost: &cost, AreaSquareInches: dec("42")}
	for _, family := range Families {
		first := Compute(family, in)
		second := Compute(family, in)
		assert.True(t, first.Equal(second), "family %s: %s != %s", family, first, second)
	}
}

func TestComputeUnknownFamilyUsesBasePrice(t *testing.T) {
	got := Compute(FamilyUnknown, Inputs{BasePrice: dec("45.99")})
	assert.True(t, dec("45.99").Equal(got), "got %s", got)

	// No base price configured means a zero quote, not an error.
	assert.True(t, Compute(FamilyUnknown, Inputs{}).IsZero())
}

func TestDefaultsPerFamily(t *testing.T) {
	tests := []struct {
		family      Family
		design      int
		process     int
		post        int
		consumables string
	}{
		{FamilyPlasmaCutting, 60, 30, 60, "162.30"},
		{FamilyLaserCutting, 30, 10, 10, "30.00"},
		{FamilyLaserEngrave, 30, 10, 10, "30.00"},
		{FamilyPrinting3D, 60, 30, 60, "30.00"},
		{FamilyPrintingResin, 60, 30, 60, "30.00"},
	}
	for _, tt := range tests {
		t.Run(string(tt.family), func(t *testing.T) {
			def := Defaults(tt.family)
			require.NotNil(t, def.DesignMinutes)
			require.NotNil(t, def.ProcessMinutes)
			require.NotNil(t, def.PostProcessMinutes)
			require.NotNil(t, def.Consumables)
			assert.Equal(t, tt.design, *def.DesignMinutes)
			assert.Equal(t, tt.process, *def.ProcessMinutes)
			assert.Equal(t, tt.post, *def.PostProcessMinutes)
			assert.True(t, dec(tt.consumables).Equal(*def.Consumables))
		})
	}
}

func TestParseFamily(t *testing.T) {
	assert.Equal(t, FamilyPlasmaCutting, ParseFamily("plasma_cutting"))
	assert.Equal(t, FamilyUnknown, ParseFamily("waterjet"))
	assert.Equal(t, FamilyUnknown, ParseFamily(""))
	assert.True(t, FamilyPrintingResin.Valid())
	assert.False(t, FamilyUnknown.Valid())
}
