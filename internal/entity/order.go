package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Order is a customer purchase stored in the relational database. Orders are
// created by guest checkout, so the customer contact fields are free text
// rather than a user foreign key. Totals are always derived from the items;
// they are never accepted as manual overrides.
type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID     int64  `bun:",pk,autoincrement"`
	Number string `bun:"number"`
	State  State  `bun:"state"`

	CustomerName  string `bun:"customer_name"`
	CustomerEmail string `bun:"customer_email"`
	CustomerPhone string `bun:"customer_phone"`

	EstimatedPrice decimal.Decimal     `bun:"estimated_price"`
	FinalPrice     decimal.NullDecimal `bun:"final_price"`

	EstimatedCompletionDays int    `bun:"estimated_completion_days,nullzero"`
	AdditionalNotes         string `bun:"additional_notes"`

	AssignedUserID *int64 `bun:"assigned_user_id"`

	Items []*OrderItem `bun:"rel:has-many,join:id=order_id"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `bun:"updated_at,nullzero"`
}

// RecomputeTotals rederives the order-level prices from the items. The final
// price is populated only once every item carries an operator-verified unit
// price; until then it stays null so the quote-ready notification path can
// tell the two apart.
func (o *Order) RecomputeTotals() {
	estimated := decimal.Zero
	final := decimal.Zero
	finalComplete := len(o.Items) > 0

	for _, item := range o.Items {
		estimated = estimated.Add(item.EstimatedTotal())
		if !item.FinalUnitPrice.Valid {
			finalComplete = false
			continue
		}
		final = final.Add(item.FinalTotal())
	}

	o.EstimatedPrice = estimated
	if finalComplete {
		o.FinalPrice = decimal.NewNullDecimal(final)
	} else {
		o.FinalPrice = decimal.NullDecimal{}
	}
}

// FinalPriceSet reports whether every item has been finally priced.
func (o *Order) FinalPriceSet() bool {
	return o.FinalPrice.Valid
}
