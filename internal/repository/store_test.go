package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rvberkel/waarneemadmin/internal/domain/entity"
	"github.com/rvberkel/waarneemadmin/pkg/database"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	logger := zap.NewNop()

	db, err := database.New(database.Config{
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	migrator := database.NewMigrator(db, logger)
	require.NoError(t, migrator.RunMigrations("../../migrations"))

	return NewStore(db, logger)
}

func testClient(t *testing.T, store *Store, name string) *entity.Client {
	t.Helper()
	client := &entity.Client{
		Name:        name,
		Category:    entity.CategoryDagpraktijk,
		City:        "amersfoort",
		DefaultRate: decimal.RequireFromString("77.50"),
		RoundTripKm: decimal.RequireFromString("28"),
		Provisional: true,
	}
	require.NoError(t, store.CreateClient(context.Background(), client))
	require.NotZero(t, client.ID)
	return client
}

func TestClientRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	created := testClient(t, store, "Huisartsenpraktijk De Linde")

	found, err := store.FindClientByName(ctx, "Huisartsenpraktijk De Linde")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, entity.CategoryDagpraktijk, found.Category)
	assert.True(t, found.DefaultRate.Equal(decimal.RequireFromString("77.50")),
		"rate: %s", found.DefaultRate)
	assert.True(t, found.RoundTripKm.Equal(decimal.RequireFromString("28")))
	assert.True(t, found.Provisional)

	missing, err := store.FindClientByName(ctx, "Onbekende Praktijk")
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, err := store.ListClients(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCreateInvoiceWithEntries(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	client := testClient(t, store, "Huisartsenpraktijk De Linde")

	date := time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)
	invoice := &entity.Invoice{
		Number:      "2025-001",
		ClientID:    client.ID,
		InvoiceDate: time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
		TotalAmount: decimal.RequireFromString("671.17"),
		SplitFactor: decimal.RequireFromString("1"),
		SourcePath:  "inbox/2025-001.pdf",
	}
	entries := []entity.TimeEntry{
		{
			ClientID:     client.ID,
			Date:         date,
			Description:  "Waarneming dagpraktijk",
			Hours:        decimal.RequireFromString("8.5"),
			Rate:         decimal.RequireFromString("77.50"),
			Amount:       decimal.RequireFromString("658.75"),
			TravelKm:     decimal.RequireFromString("46"),
			TravelAmount: decimal.RequireFromString("12.42"),
		},
	}
	require.NoError(t, store.CreateInvoiceWithEntries(ctx, invoice, entries))
	assert.NotZero(t, invoice.ID)
	assert.Equal(t, invoice.ID, entries[0].InvoiceID)

	found, err := store.FindInvoiceByNumber(ctx, "2025-001")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, invoice.ID, found.ID)
	assert.True(t, found.TotalAmount.Equal(decimal.RequireFromString("671.17")),
		"total: %s", found.TotalAmount)
	assert.True(t, found.SplitFactor.Equal(decimal.RequireFromString("1")))
	assert.False(t, found.IsSplit)

	candidates, err := store.FindEntryCandidates(ctx, date, decimal.RequireFromString("8.5"), client.ID)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.True(t, candidates[0].Hours.Equal(decimal.RequireFromString("8.5")))
	assert.True(t, candidates[0].TravelAmount.Equal(decimal.RequireFromString("12.42")))
	assert.Equal(t, date.Format("2006-01-02"), candidates[0].Date.Format("2006-01-02"))

	// Different quantity is a different billed day.
	candidates, err = store.FindEntryCandidates(ctx, date, decimal.RequireFromString("8"), client.ID)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestCreateInvoiceWithEntries_DuplicateNumberRollsBack(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	client := testClient(t, store, "Huisartsenpraktijk De Linde")

	date := time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)
	entry := entity.TimeEntry{
		ClientID: client.ID,
		Date:     date,
		Hours:    decimal.RequireFromString("8.5"),
	}
	first := &entity.Invoice{
		Number:      "2025-001",
		ClientID:    client.ID,
		SplitFactor: decimal.RequireFromString("1"),
		TotalAmount: decimal.RequireFromString("658.75"),
	}
	require.NoError(t, store.CreateInvoiceWithEntries(ctx, first, []entity.TimeEntry{entry}))

	dup := &entity.Invoice{
		Number:      "2025-001",
		ClientID:    client.ID,
		SplitFactor: decimal.RequireFromString("1"),
		TotalAmount: decimal.RequireFromString("658.75"),
	}
	other := entity.TimeEntry{
		ClientID: client.ID,
		Date:     date.AddDate(0, 0, 1),
		Hours:    decimal.RequireFromString("4"),
	}
	err := store.CreateInvoiceWithEntries(ctx, dup, []entity.TimeEntry{other})
	require.Error(t, err)

	// The entry of the rejected invoice must not survive the rollback.
	candidates, err := store.FindEntryCandidates(ctx, other.Date, other.Hours, client.ID)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestFindInvoiceByNumber_Missing(t *testing.T) {
	store := testStore(t)

	found, err := store.FindInvoiceByNumber(context.Background(), "does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, found)
}
