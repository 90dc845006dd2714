// Package catalog implements the owner-scoped flavour catalog: Tag and
// Flavour records are foreign-keyed to their creating user and every
// operation is restricted to records owned by the authenticated caller.
// A record owned by another user is indistinguishable from a non-existent
// one: both surface as NotFound, never as a distinct forbidden signal.
package catalog

import "github.com/shopspring/decimal"

// Tag is a user-owned label. (owner, name) is unique per owner; different
// owners may use the same name.
type Tag struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"-"`
	Name   string `json:"name"`
}

// Flavour is a catalog item. The owner is established from the authenticated
// caller at creation time and is immutable afterwards; it never appears in
// request payloads. Price is a fixed-point decimal with two places. Every
// attached tag belongs to the same owner as the flavour.
type Flavour struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"-"`
	Title       string          `json:"title"`
	TimeMinutes int             `json:"time_minutes"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Link        string          `json:"link"`
	Tags        []Tag           `json:"tags"`
}
