// Package parse recovers structured billable records from the free-form
// text layer of historical waarneem invoices. The documents span roughly
// two years of undocumented layout drift; parsing is heuristic and favors
// precision over completeness: a line that cannot be read with confidence
// is dropped, never guessed at.
package parse

import (
	"time"

	"github.com/shopspring/decimal"
)

// ParsedInvoice is the transient result of one ingestion pass. It is
// consumed immediately to create persistent Invoice/TimeEntry records
// and then discarded.
type ParsedInvoice struct {
	Number      string
	Date        time.Time
	ClientName  string
	Contact     string
	Address     string
	Postcode    string
	City        string
	Items       []ParsedLineItem
	Total       decimal.Decimal
	SplitFactor decimal.Decimal
	IsSplit     bool
}

// ParsedLineItem is one extracted row. For hours rows Quantity is worked
// hours; for travel rows Quantity is the round-trip distance in km.
// Combined-layout rows carry their travel cost inline via TravelAmount.
type ParsedLineItem struct {
	Date         time.Time
	Description  string
	Quantity     decimal.Decimal
	Rate         decimal.Decimal
	Total        decimal.Decimal
	TravelKm     decimal.Decimal
	TravelAmount decimal.Decimal
	IsHours      bool
	IsStandby    bool
	DutyCode     string
}

// State is the accumulator threaded through the line-by-line fold.
// Later lines depend on it: a detached travel row reuses the last date,
// a duty-table continuation row inherits date and duty code.
type State struct {
	Date      time.Time
	DutyCode  string
	LastHours *ParsedLineItem
}
