package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// UserType distinguishes the three account roles.
type UserType string

const (
	UserCustomer UserType = "customer"
	UserStaff    UserType = "staff"
	UserAdmin    UserType = "admin"
)

// User is an account with an email-unique identity. The order core consumes
// users only to authorise transitions and populate operator assignment;
// credential handling lives outside this service.
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID     int64    `bun:",pk,autoincrement"`
	Email  string   `bun:"email"`
	Name   string   `bun:"name"`
	Type   UserType `bun:"user_type"`
	Active bool     `bun:"active"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `bun:"updated_at,nullzero"`
}

// Staff reports whether the user may act on orders as an operator.
func (u *User) Staff() bool {
	return u.Type == UserStaff || u.Type == UserAdmin
}
