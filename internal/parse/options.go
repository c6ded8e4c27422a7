package parse

import (
	"time"

	"github.com/shopspring/decimal"
)

// Options bundles the tunable parsing heuristics. The plausibility bounds
// guard against extraction noise from mangled table cells; they are not
// business rules and will reject some legitimate outliers, so they stay
// configurable.
type Options struct {
	// Ref anchors the plausible-date window; zero means time.Now().
	Ref                time.Time
	WindowPastMonths   int
	WindowFutureMonths int

	// Currency-token assignment: an amount inside the hourly band is a
	// day rate, an amount below KmRateMax is a per-km rate.
	HourlyRateMin decimal.Decimal
	HourlyRateMax decimal.Decimal
	KmRateMax     decimal.Decimal

	// Duty-table rows without a duty code fall back to this threshold to
	// distinguish standby (achterwacht) from active duty hours.
	StandbyRateMax decimal.Decimal

	MaxDayHours  decimal.Decimal
	MaxCommuteKm decimal.Decimal
}

// DefaultOptions returns the thresholds observed across the historical
// invoice corpus.
func DefaultOptions() Options {
	return Options{
		WindowPastMonths:   24,
		WindowFutureMonths: 12,
		HourlyRateMin:      decimal.NewFromInt(40),
		HourlyRateMax:      decimal.NewFromInt(150),
		KmRateMax:          decimal.NewFromInt(1),
		StandbyRateMax:     decimal.NewFromInt(15),
		MaxDayHours:        decimal.NewFromInt(16),
		MaxCommuteKm:       decimal.NewFromInt(400),
	}
}

func (o Options) ref() time.Time {
	if o.Ref.IsZero() {
		return time.Now()
	}
	return o.Ref
}
