package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/rvberkel/waarneemadmin/internal/domain/entity"
)

// ClientRepository persists the client registry.
type ClientRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *sql.DB, logger *zap.Logger) *ClientRepository {
	return &ClientRepository{db: db, logger: logger}
}

const clientColumns = `id, name, category, city, contact, address, postcode,
	default_rate, round_trip_km, provisional, created_at`

// FindByName retrieves a client by exact name, or nil when absent.
func (r *ClientRepository) FindByName(ctx context.Context, name string) (*entity.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE name = ?`

	client, err := r.scanOne(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		r.logger.Error("Failed to find client by name", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("failed to find client: %w", err)
	}
	return client, nil
}

// ListAll returns all registered clients.
func (r *ClientRepository) ListAll(ctx context.Context) ([]entity.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list clients", zap.Error(err))
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []entity.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, *client)
	}
	return clients, rows.Err()
}

// Create inserts a new client record
func (r *ClientRepository) Create(ctx context.Context, client *entity.Client) error {
	query := `
		INSERT INTO clients (
			name, category, city, contact, address, postcode,
			default_rate, round_trip_km, provisional
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		client.Name,
		client.Category,
		client.City,
		client.Contact,
		client.Address,
		client.Postcode,
		client.DefaultRate.String(),
		client.RoundTripKm.String(),
		client.Provisional,
	)
	if err != nil {
		r.logger.Error("Failed to create client", zap.String("name", client.Name), zap.Error(err))
		return fmt.Errorf("failed to create client: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	client.ID = id
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *ClientRepository) scanOne(row *sql.Row) (*entity.Client, error) {
	client, err := scanClient(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return client, nil
}

func scanClient(row rowScanner) (*entity.Client, error) {
	var c entity.Client
	var rate, km string

	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Category,
		&c.City,
		&c.Contact,
		&c.Address,
		&c.Postcode,
		&rate,
		&km,
		&c.Provisional,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.DefaultRate = scanDecimal(rate)
	c.RoundTripKm = scanDecimal(km)
	return &c, nil
}
