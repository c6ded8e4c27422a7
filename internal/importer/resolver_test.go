package importer

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvberkel/waarneemadmin/internal/config"
	"github.com/rvberkel/waarneemadmin/internal/domain/entity"
)

func testClientsConfig() config.ClientsConfig {
	return config.ClientsConfig{
		DefaultRate: 77.50,
		DefaultKm:   30,
		CityDistances: map[string]float64{
			"amersfoort": 28,
			"utrecht":    52,
		},
		CityRates: map[string]float64{
			"utrecht": 80.00,
		},
		AfterHoursMarkers: []string{"huisartsenpost", "spoedpost", "anw", "hap"},
	}
}

func TestResolve_ExactMatch(t *testing.T) {
	store := newMemStore()
	want := store.addClient(entity.Client{Name: "Huisartsenpraktijk De Linde"})
	r := NewClientResolver(store, testClientsConfig(), nil)

	got, err := r.Resolve(context.Background(), "Huisartsenpraktijk De Linde")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.False(t, got.Provisional)
}

func TestResolve_SubstringMatchEitherDirection(t *testing.T) {
	store := newMemStore()
	short := store.addClient(entity.Client{Name: "De Linde"})
	long := store.addClient(entity.Client{Name: "Huisartsenpost Stad Utrecht e.o."})
	r := NewClientResolver(store, testClientsConfig(), nil)

	// Known name contained in the parsed name.
	got, err := r.Resolve(context.Background(), "Huisartsenpraktijk De Linde")
	require.NoError(t, err)
	assert.Equal(t, short.ID, got.ID)

	// Parsed name contained in the known name.
	got, err = r.Resolve(context.Background(), "huisartsenpost stad utrecht")
	require.NoError(t, err)
	assert.Equal(t, long.ID, got.ID)
}

func TestResolve_ProvisionalAfterHoursClient(t *testing.T) {
	store := newMemStore()
	r := NewClientResolver(store, testClientsConfig(), nil)

	got, err := r.Resolve(context.Background(), "Huisartsenpost Oost Utrecht")
	require.NoError(t, err)

	assert.True(t, got.Provisional)
	assert.Equal(t, entity.CategoryANW, got.Category)
	assert.Equal(t, "utrecht", got.City)
	assert.True(t, got.RoundTripKm.Equal(decimal.NewFromInt(52)), "km: %s", got.RoundTripKm)
	assert.True(t, got.DefaultRate.Equal(decimal.NewFromInt(80)), "rate: %s", got.DefaultRate)
	assert.NotZero(t, got.ID, "provisional client must be persisted")
}

func TestResolve_ProvisionalDayPracticeDefaults(t *testing.T) {
	store := newMemStore()
	r := NewClientResolver(store, testClientsConfig(), nil)

	got, err := r.Resolve(context.Background(), "Praktijk De Boog")
	require.NoError(t, err)

	assert.True(t, got.Provisional)
	assert.Equal(t, entity.CategoryDagpraktijk, got.Category)
	assert.Empty(t, got.City)
	assert.True(t, got.RoundTripKm.Equal(decimal.NewFromInt(30)))
	assert.True(t, got.DefaultRate.Equal(decimal.NewFromFloat(77.50)))
}

func TestResolve_EmptyName(t *testing.T) {
	r := NewClientResolver(newMemStore(), testClientsConfig(), nil)

	_, err := r.Resolve(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrNoClient)
}

func TestResolve_SameNameResolvesToSameClient(t *testing.T) {
	store := newMemStore()
	r := NewClientResolver(store, testClientsConfig(), nil)

	first, err := r.Resolve(context.Background(), "Spoedpost Amersfoort")
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), "Spoedpost Amersfoort")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.clients, 1)
}
