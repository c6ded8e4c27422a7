package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Client categories. ANW clients are after-hours duty services
// (huisartsenposten), billed at premium rates; everything else is
// regular day practice locum work.
const (
	CategoryANW         = "anw"
	CategoryDagpraktijk = "dagpraktijk"
)

// Client is a billed party: a practice or duty service.
type Client struct {
	ID          int64
	Name        string
	Category    string
	City        string
	Contact     string
	Address     string
	Postcode    string
	DefaultRate decimal.Decimal
	RoundTripKm decimal.Decimal
	// Provisional marks clients auto-created by the resolver from
	// free-text invoice headers, pending manual review.
	Provisional bool
	CreatedAt   time.Time
}
