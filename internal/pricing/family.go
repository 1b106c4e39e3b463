package pricing

// Family identifies the fabrication service category that selects a pricing
// formula. The zero value is FamilyUnknown, which prices at the service's
// flat base price.
type Family string

const (
	FamilyUnknown       Family = ""
	FamilyPlasmaCutting Family = "plasma_cutting"
	FamilyLaserCutting  Family = "laser_cutting"
	FamilyLaserEngrave  Family = "laser_engraving"
	FamilyPrinting3D    Family = "printing_3d"
	FamilyPrintingResin Family = "printing_resin"
)

// Families lists every priced family in display order.
var Families = []Family{
	FamilyPlasmaCutting,
	FamilyLaserCutting,
	FamilyLaserEngrave,
	FamilyPrinting3D,
	FamilyPrintingResin,
}

// ParseFamily maps a stored slug onto a Family. Unrecognised slugs resolve to
// FamilyUnknown rather than erroring; callers fall back to base-price quoting.
func ParseFamily(slug string) Family {
	switch Family(slug) {
	case FamilyPlasmaCutting, FamilyLaserCutting, FamilyLaserEngrave, FamilyPrinting3D, FamilyPrintingResin:
		return Family(slug)
	default:
		return FamilyUnknown
	}
}

// Valid reports whether f is one of the priced families.
func (f Family) Valid() bool {
	return f != FamilyUnknown && ParseFamily(string(f)) == f
}

func (f Family) String() string { return string(f) }
