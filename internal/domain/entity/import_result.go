package entity

import "github.com/shopspring/decimal"

// ImportResult is the per-document outcome of an import run.
// InvoiceNumber falls back to the source filename when the document
// failed before a number could be extracted.
type ImportResult struct {
	Success        bool
	Skipped        bool
	InvoiceNumber  string
	Message        string
	EntriesCreated int
	TotalAmount    decimal.Decimal
}
