package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rvberkel/waarneemadmin/internal/config"
	"github.com/rvberkel/waarneemadmin/internal/domain/entity"
)

// ClientResolver matches a parsed free-text client name to the registry,
// or provisionally creates one. Invoice headers carry no stable client
// identifier, so this is deliberately approximate: exact match first,
// then case-insensitive substring in either direction, then a new
// provisional client with category and defaults inferred from the name.
type ClientResolver struct {
	store  ClientStore
	cfg    config.ClientsConfig
	logger *zap.Logger
}

// NewClientResolver creates a client resolver.
func NewClientResolver(store ClientStore, cfg config.ClientsConfig, logger *zap.Logger) *ClientResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientResolver{store: store, cfg: cfg, logger: logger}
}

// Resolve returns the registry client for a parsed name, creating a
// provisional one when nothing matches.
func (r *ClientResolver) Resolve(ctx context.Context, name string) (*entity.Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNoClient
	}

	client, err := r.store.FindClientByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up client: %w", err)
	}
	if client != nil {
		return client, nil
	}

	clients, err := r.store.ListClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	lower := strings.ToLower(name)
	for i := range clients {
		known := strings.ToLower(clients[i].Name)
		if strings.Contains(lower, known) || strings.Contains(known, lower) {
			r.logger.Debug("client matched by substring",
				zap.String("parsed", name),
				zap.String("client", clients[i].Name))
			return &clients[i], nil
		}
	}

	return r.createProvisional(ctx, name, lower)
}

func (r *ClientResolver) createProvisional(ctx context.Context, name, lower string) (*entity.Client, error) {
	category := entity.CategoryDagpraktijk
	for _, marker := range r.cfg.AfterHoursMarkers {
		if strings.Contains(lower, strings.ToLower(marker)) {
			category = entity.CategoryANW
			break
		}
	}

	rate := r.cfg.DefaultRate
	km := r.cfg.DefaultKm
	city := ""
	for c, d := range r.cfg.CityDistances {
		if strings.Contains(lower, strings.ToLower(c)) {
			city = c
			km = d
			if cr, ok := r.cfg.CityRates[c]; ok {
				rate = cr
			}
			break
		}
	}

	client := &entity.Client{
		Name:        name,
		Category:    category,
		City:        city,
		DefaultRate: decimal.NewFromFloat(rate),
		RoundTripKm: decimal.NewFromFloat(km),
		Provisional: true,
	}
	if err := r.store.CreateClient(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create provisional client: %w", err)
	}

	r.logger.Info("Provisional client created from invoice header",
		zap.String("name", name),
		zap.String("category", category),
		zap.String("city", city))
	return client, nil
}
