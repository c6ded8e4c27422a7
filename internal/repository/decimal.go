package repository

import "github.com/shopspring/decimal"

// Decimals are stored as exact strings; SQLite numeric affinity would
// push them through floating point.
func scanDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Decimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}
	}
	return d
}
