package importer

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rvberkel/waarneemadmin/internal/domain/entity"
)

// TextExtractor is the text-layer collaborator; the importer never
// touches document bytes itself.
type TextExtractor interface {
	ExtractPages(path string) ([]string, error)
}

// ClientStore is the client registry surface used by the resolver.
type ClientStore interface {
	FindClientByName(ctx context.Context, name string) (*entity.Client, error)
	ListClients(ctx context.Context) ([]entity.Client, error)
	CreateClient(ctx context.Context, client *entity.Client) error
}

// InvoiceStore is the invoice-level persistence surface.
type InvoiceStore interface {
	FindInvoiceByNumber(ctx context.Context, number string) (*entity.Invoice, error)
	// CreateInvoiceWithEntries persists the invoice and its linked time
	// entries atomically.
	CreateInvoiceWithEntries(ctx context.Context, invoice *entity.Invoice, entries []entity.TimeEntry) error
}

// EntryStore is the time-entry lookup surface used by the dedup gate.
type EntryStore interface {
	FindEntryCandidates(ctx context.Context, date time.Time, hours decimal.Decimal, clientID int64) ([]entity.TimeEntry, error)
}

// Store is the full persistence collaborator.
type Store interface {
	ClientStore
	InvoiceStore
	EntryStore
}

// Archiver stores a copy of the source document under an
// invoice-number-keyed path.
type Archiver interface {
	Store(ctx context.Context, invoiceNumber, sourcePath string) (string, error)
}
