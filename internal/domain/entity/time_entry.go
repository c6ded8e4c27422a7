package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimeEntry is one billable day reconciled from an invoice: worked hours
// plus any travel reimbursement on the same calendar date.
type TimeEntry struct {
	ID           int64
	InvoiceID    int64
	ClientID     int64
	Date         time.Time
	Description  string
	Hours        decimal.Decimal
	Rate         decimal.Decimal
	Amount       decimal.Decimal
	TravelKm     decimal.Decimal
	TravelAmount decimal.Decimal
	// Standby (achterwacht) hours are billed at a lower rate and may be
	// excluded from downstream tax-hour counts; the importer only tags them.
	Standby   bool
	DutyCode  string
	CreatedAt time.Time
}
