package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/rvberkel/waarneemadmin/internal/domain/entity"
)

// InvoiceRepository persists imported invoices.
type InvoiceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *sql.DB, logger *zap.Logger) *InvoiceRepository {
	return &InvoiceRepository{db: db, logger: logger}
}

// FindByNumber retrieves an invoice by its number, or nil when absent.
// This is the invoice-level dedup key.
func (r *InvoiceRepository) FindByNumber(ctx context.Context, number string) (*entity.Invoice, error) {
	query := `
		SELECT id, number, client_id, invoice_date, total_amount,
			split_factor, is_split, source_path, archive_path, created_at
		FROM invoices
		WHERE number = ?
	`

	var inv entity.Invoice
	var invoiceDate sql.NullTime
	var total, factor string

	err := r.db.QueryRowContext(ctx, query, number).Scan(
		&inv.ID,
		&inv.Number,
		&inv.ClientID,
		&invoiceDate,
		&total,
		&factor,
		&inv.IsSplit,
		&inv.SourcePath,
		&inv.ArchivePath,
		&inv.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to find invoice by number", zap.String("number", number), zap.Error(err))
		return nil, fmt.Errorf("failed to find invoice: %w", err)
	}

	if invoiceDate.Valid {
		inv.InvoiceDate = invoiceDate.Time
	}
	inv.TotalAmount = scanDecimal(total)
	inv.SplitFactor = scanDecimal(factor)
	return &inv, nil
}

// CreateTx inserts an invoice inside an open transaction.
func (r *InvoiceRepository) CreateTx(ctx context.Context, tx *sql.Tx, inv *entity.Invoice) error {
	query := `
		INSERT INTO invoices (
			number, client_id, invoice_date, total_amount,
			split_factor, is_split, source_path, archive_path
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		inv.Number,
		inv.ClientID,
		inv.InvoiceDate,
		inv.TotalAmount.String(),
		inv.SplitFactor.String(),
		inv.IsSplit,
		inv.SourcePath,
		inv.ArchivePath,
	)
	if err != nil {
		r.logger.Error("Failed to create invoice", zap.String("number", inv.Number), zap.Error(err))
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	inv.ID = id
	return nil
}
