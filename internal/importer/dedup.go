package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rvberkel/waarneemadmin/internal/domain/entity"
)

// DeduplicationGate is a best-effort duplicate check against already
// imported records. Source rows carry no stable external identifier, so
// the keys are soft heuristics: invoice number at the invoice level,
// date + quantity + client at the entry level. A hit is a reported skip,
// never an error.
type DeduplicationGate struct {
	store  Store
	logger *zap.Logger
}

// NewDeduplicationGate creates a dedup gate.
func NewDeduplicationGate(store Store, logger *zap.Logger) *DeduplicationGate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeduplicationGate{store: store, logger: logger}
}

// ExistingInvoice returns the previously imported invoice with the same
// number, or nil.
func (g *DeduplicationGate) ExistingInvoice(ctx context.Context, number string) (*entity.Invoice, error) {
	existing, err := g.store.FindInvoiceByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("failed to check invoice duplicates: %w", err)
	}
	if existing != nil {
		g.logger.Info("Invoice already imported",
			zap.String("number", number),
			zap.Int64("invoice_id", existing.ID))
	}
	return existing, nil
}

// EntryExists reports whether a time entry with the same date, quantity
// and client was already imported, e.g. through a sibling import path.
func (g *DeduplicationGate) EntryExists(ctx context.Context, date time.Time, hours decimal.Decimal, clientID int64) (bool, error) {
	candidates, err := g.store.FindEntryCandidates(ctx, date, hours, clientID)
	if err != nil {
		return false, fmt.Errorf("failed to check entry duplicates: %w", err)
	}
	if len(candidates) > 0 {
		g.logger.Debug("Time entry already exists",
			zap.Time("date", date),
			zap.String("hours", hours.String()),
			zap.Int64("client_id", clientID))
		return true, nil
	}
	return false, nil
}
