package pricing

import "github.com/shopspring/decimal"

// Inputs carries the measured or estimated quantities a formula consumes.
// Pointer fields are optional; a nil value means "not measured yet" and is
// replaced by the owning family's default minimum during Compute.
type Inputs struct {
	// DesignMinutes is design and programming time (term A).
	DesignMinutes *int
	// ProcessMinutes is cutting, engraving, or printing time (term B).
	ProcessMinutes *int
	// PostProcessMinutes covers finishing work after the machine run.
	PostProcessMinutes *int
	// MaterialCost is the plate cost for plasma/laser families and the
	// per-kilogram roll cost for the printing families.
	MaterialCost *decimal.Decimal
	// MaterialUsedGrams applies to the printing families only.
	MaterialUsedGrams *decimal.Decimal
	// Consumables is the fixed per-job cost component (tips, resin waste).
	Consumables *decimal.Decimal
	// AreaSquareInches is length times width; zero when the item has no
	// physical cut dimensions.
	AreaSquareInches decimal.Decimal
	// BasePrice is the flat service price used when the family is unknown.
	BasePrice decimal.Decimal
}

// Defaults returns the family's minimum estimation inputs. These back the
// initial quote and substitute for any input left unset by the operator.
func Defaults(family Family) Inputs {
	switch family {
	case FamilyPlasmaCutting:
		return Inputs{
			DesignMinutes:      intPtr(60),
			ProcessMinutes:     intPtr(30),
			PostProcessMinutes: intPtr(60),
			MaterialCost:       decPtr(decimal.Zero),
			Consumables:        decPtr(decimal.NewFromFloat(162.30)),
		}
	case FamilyLaserCutting, FamilyLaserEngrave:
		return Inputs{
			DesignMinutes:      intPtr(30),
			ProcessMinutes:     intPtr(10),
			PostProcessMinutes: intPtr(10),
			MaterialCost:       decPtr(decimal.Zero),
			Consumables:        decPtr(decimal.NewFromFloat(30.00)),
		}
	case FamilyPrinting3D, FamilyPrintingResin:
		return Inputs{
			DesignMinutes:      intPtr(60),
			ProcessMinutes:     intPtr(30),
			PostProcessMinutes: intPtr(60),
			MaterialUsedGrams:  decPtr(decimal.Zero),
			MaterialCost:       decPtr(decimal.NewFromFloat(350.00)),
			Consumables:        decPtr(decimal.NewFromFloat(30.00)),
		}
	default:
		return Inputs{}
	}
}

// withDefaults fills any unset field from the family defaults.
func (in Inputs) withDefaults(family Family) Inputs {
	def := Defaults(family)
	if in.DesignMinutes == nil {
		in.DesignMinutes = def.DesignMinutes
	}
	if in.ProcessMinutes == nil {
		in.ProcessMinutes = def.ProcessMinutes
	}
	if in.PostProcessMinutes == nil {
		in.PostProcessMinutes = def.PostProcessMinutes
	}
	if in.MaterialCost == nil {
		in.MaterialCost = def.MaterialCost
	}
	if in.MaterialUsedGrams == nil {
		in.MaterialUsedGrams = def.MaterialUsedGrams
	}
	if in.Consumables == nil {
		in.Consumables = def.Consumables
	}
	return in
}

func (in Inputs) designMinutes() decimal.Decimal      { return minutes(in.DesignMinutes) }
func (in Inputs) processMinutes() decimal.Decimal     { return minutes(in.ProcessMinutes) }
func (in Inputs) postProcessMinutes() decimal.Decimal { return minutes(in.PostProcessMinutes) }

func (in Inputs) materialCost() decimal.Decimal      { return value(in.MaterialCost) }
func (in Inputs) materialUsedGrams() decimal.Decimal { return value(in.MaterialUsedGrams) }
func (in Inputs) consumables() decimal.Decimal       { return value(in.Consumables) }

func minutes(v *int) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(*v))
}

func value(v *decimal.Decimal) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return *v
}

func intPtr(v int) *int { return &v }

func decPtr(v decimal.Decimal) *decimal.Decimal { return &v }
