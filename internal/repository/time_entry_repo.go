package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rvberkel/waarneemadmin/internal/domain/entity"
)

// TimeEntryRepository persists billable time entries.
type TimeEntryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTimeEntryRepository creates a new time entry repository
func NewTimeEntryRepository(db *sql.DB, logger *zap.Logger) *TimeEntryRepository {
	return &TimeEntryRepository{db: db, logger: logger}
}

// FindCandidates returns entries matching the soft dedup key:
// same date, same quantity, same client. Hours are compared as exact
// decimal strings, which is stable because every write goes through the
// same formatting.
func (r *TimeEntryRepository) FindCandidates(ctx context.Context, date time.Time, hours decimal.Decimal, clientID int64) ([]entity.TimeEntry, error) {
	query := `
		SELECT id, invoice_id, client_id, entry_date, description, hours,
			rate, amount, travel_km, travel_amount, standby, duty_code, created_at
		FROM time_entries
		WHERE entry_date = ? AND hours = ? AND client_id = ?
	`

	rows, err := r.db.QueryContext(ctx, query, date.Format("2006-01-02"), hours.String(), clientID)
	if err != nil {
		r.logger.Error("Failed to query time entry candidates", zap.Error(err))
		return nil, fmt.Errorf("failed to query time entries: %w", err)
	}
	defer rows.Close()

	var entries []entity.TimeEntry
	for rows.Next() {
		var e entity.TimeEntry
		var entryDate sql.NullTime
		var h, rate, amount, km, travel string

		err := rows.Scan(
			&e.ID,
			&e.InvoiceID,
			&e.ClientID,
			&entryDate,
			&e.Description,
			&h,
			&rate,
			&amount,
			&km,
			&travel,
			&e.Standby,
			&e.DutyCode,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}

		if entryDate.Valid {
			e.Date = entryDate.Time
		}
		e.Hours = scanDecimal(h)
		e.Rate = scanDecimal(rate)
		e.Amount = scanDecimal(amount)
		e.TravelKm = scanDecimal(km)
		e.TravelAmount = scanDecimal(travel)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CreateTx inserts a time entry inside an open transaction.
func (r *TimeEntryRepository) CreateTx(ctx context.Context, tx *sql.Tx, entry *entity.TimeEntry) error {
	query := `
		INSERT INTO time_entries (
			invoice_id, client_id, entry_date, description, hours,
			rate, amount, travel_km, travel_amount, standby, duty_code
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		entry.InvoiceID,
		entry.ClientID,
		entry.Date.Format("2006-01-02"),
		entry.Description,
		entry.Hours.String(),
		entry.Rate.String(),
		entry.Amount.String(),
		entry.TravelKm.String(),
		entry.TravelAmount.String(),
		entry.Standby,
		entry.DutyCode,
	)
	if err != nil {
		r.logger.Error("Failed to create time entry", zap.Error(err))
		return fmt.Errorf("failed to create time entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	entry.ID = id
	return nil
}
