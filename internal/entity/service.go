package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/agah-solutions/forge/internal/pricing"
)

// ServiceType is a catalog entry customers order against. The five base
// services map onto pricing families; custom entries without a family are
// quoted at their flat base price.
type ServiceType struct {
	bun.BaseModel `bun:"table:service_types"`

	ID               int64           `bun:",pk,autoincrement"`
	Slug             string          `bun:"slug"`
	Name             string          `bun:"name"`
	Description      string          `bun:"description"`
	ShortDescription string          `bun:"short_description"`
	Family           pricing.Family  `bun:"family"`
	BasePrice        decimal.Decimal `bun:"base_price"`
	Active           bool            `bun:"active"`
	IsBaseService    bool            `bun:"is_base_service"`
	IsFeatured       bool            `bun:"is_featured"`
	DisplayOrder     int             `bun:"display_order,nullzero"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `bun:"updated_at,nullzero"`
}
