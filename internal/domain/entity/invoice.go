package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is a persisted, imported invoice document.
type Invoice struct {
	ID          int64
	Number      string
	ClientID    int64
	InvoiceDate time.Time
	TotalAmount decimal.Decimal
	// SplitFactor is the fraction of a jointly commissioned duty
	// attributed to this client (verdeelfactor); 1 when not split.
	SplitFactor decimal.Decimal
	IsSplit     bool
	SourcePath  string
	ArchivePath string
	CreatedAt   time.Time
}
