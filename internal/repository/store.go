// Package repository implements the persistence collaborator on SQLite.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rvberkel/waarneemadmin/internal/domain/entity"
	"github.com/rvberkel/waarneemadmin/pkg/database"
)

// Store bundles the repositories behind the importer's persistence
// interface. Invoice and entry creation share one transaction so a
// failed import never leaves a half-written invoice behind.
type Store struct {
	db       *database.DB
	clients  *ClientRepository
	invoices *InvoiceRepository
	entries  *TimeEntryRepository
}

// NewStore creates the persistence store.
func NewStore(db *database.DB, logger *zap.Logger) *Store {
	return &Store{
		db:       db,
		clients:  NewClientRepository(db.DB, logger),
		invoices: NewInvoiceRepository(db.DB, logger),
		entries:  NewTimeEntryRepository(db.DB, logger),
	}
}

// FindClientByName implements importer.ClientStore.
func (s *Store) FindClientByName(ctx context.Context, name string) (*entity.Client, error) {
	return s.clients.FindByName(ctx, name)
}

// ListClients implements importer.ClientStore.
func (s *Store) ListClients(ctx context.Context) ([]entity.Client, error) {
	return s.clients.ListAll(ctx)
}

// CreateClient implements importer.ClientStore.
func (s *Store) CreateClient(ctx context.Context, client *entity.Client) error {
	return s.clients.Create(ctx, client)
}

// FindInvoiceByNumber implements importer.InvoiceStore.
func (s *Store) FindInvoiceByNumber(ctx context.Context, number string) (*entity.Invoice, error) {
	return s.invoices.FindByNumber(ctx, number)
}

// FindEntryCandidates implements importer.EntryStore.
func (s *Store) FindEntryCandidates(ctx context.Context, date time.Time, hours decimal.Decimal, clientID int64) ([]entity.TimeEntry, error) {
	return s.entries.FindCandidates(ctx, date, hours, clientID)
}

// CreateInvoiceWithEntries implements importer.InvoiceStore: the invoice
// and its linked entries are written atomically.
func (s *Store) CreateInvoiceWithEntries(ctx context.Context, invoice *entity.Invoice, entries []entity.TimeEntry) error {
	return s.db.WithTransaction(func(tx *sql.Tx) error {
		if err := s.invoices.CreateTx(ctx, tx, invoice); err != nil {
			return err
		}
		for i := range entries {
			entries[i].InvoiceID = invoice.ID
			if err := s.entries.CreateTx(ctx, tx, &entries[i]); err != nil {
				return err
			}
		}
		return nil
	})
}
