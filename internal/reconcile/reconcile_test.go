package reconcile

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvberkel/waarneemadmin/internal/parse"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func day(d int) time.Time {
	return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
}

func hoursItem(t *testing.T, d int, qty, rate, total string) parse.ParsedLineItem {
	t.Helper()
	return parse.ParsedLineItem{
		Date:        day(d),
		Description: "Waarneming dagpraktijk",
		Quantity:    dec(t, qty),
		Rate:        dec(t, rate),
		Total:       dec(t, total),
		IsHours:     true,
	}
}

func travelItem(t *testing.T, d int, km, amount string) parse.ParsedLineItem {
	t.Helper()
	return parse.ParsedLineItem{
		Date:         day(d),
		Description:  "Reiskosten",
		Quantity:     dec(t, km),
		TravelKm:     dec(t, km),
		TravelAmount: dec(t, amount),
	}
}

func TestReconcile_MergesSameDayTravelIntoHours(t *testing.T) {
	e := NewEngine(nil)

	items := []parse.ParsedLineItem{
		hoursItem(t, 13, "8.5", "77.50", "658.75"),
		travelItem(t, 13, "46", "12.42"),
		hoursItem(t, 14, "8", "77.50", "620"),
	}
	merged, factor, isSplit := e.Reconcile(items, nil, "Huisartsenpraktijk De Linde")

	require.Len(t, merged, 2)
	assert.False(t, isSplit)
	assert.True(t, factor.Equal(dec(t, "1")))

	first := merged[0]
	assert.True(t, first.IsHours)
	assert.True(t, first.TravelKm.Equal(dec(t, "46")), "km: %s", first.TravelKm)
	assert.True(t, first.TravelAmount.Equal(dec(t, "12.42")), "travel: %s", first.TravelAmount)

	second := merged[1]
	assert.Equal(t, day(14), second.Date)
	assert.True(t, second.TravelAmount.IsZero())
}

func TestReconcile_TravelWithoutSameDayHoursKeptSeparate(t *testing.T) {
	e := NewEngine(nil)

	items := []parse.ParsedLineItem{
		hoursItem(t, 13, "8.5", "77.50", "658.75"),
		travelItem(t, 20, "46", "12.42"),
	}
	merged, _, _ := e.Reconcile(items, nil, "")

	require.Len(t, merged, 2)
	assert.True(t, merged[0].IsHours)
	assert.False(t, merged[1].IsHours)
	assert.Equal(t, day(20), merged[1].Date)
}

func TestReconcile_SplitFactorProratesExactly(t *testing.T) {
	e := NewEngine(nil)

	items := []parse.ParsedLineItem{
		hoursItem(t, 13, "9", "77.50", "697.50"),
	}
	docLines := []string{
		"Verdeling over de deelnemende praktijken:",
		"Huisartsenpost Oost 0,23",
		"Huisartsenpost West 0,77",
	}
	merged, factor, isSplit := e.Reconcile(items, docLines, "Huisartsenpost Oost")

	require.True(t, isSplit)
	assert.True(t, factor.Equal(dec(t, "0.23")), "factor: %s", factor)
	require.Len(t, merged, 1)
	// 9 x 0.23 must be exactly 2.07, never 2.0699999.
	assert.Equal(t, "2.07", merged[0].Quantity.String())
	assert.True(t, merged[0].Total.Equal(dec(t, "160.43")), "total: %s", merged[0].Total)
}

func TestReconcile_SplitWithoutMatchingRowDefaultsToOne(t *testing.T) {
	e := NewEngine(nil)

	items := []parse.ParsedLineItem{
		hoursItem(t, 13, "9", "77.50", "697.50"),
	}
	docLines := []string{
		"Verdeelfactor per deelnemer volgt separaat",
	}
	merged, factor, isSplit := e.Reconcile(items, docLines, "Huisartsenpost Oost")

	assert.True(t, isSplit)
	assert.True(t, factor.Equal(dec(t, "1")))
	require.Len(t, merged, 1)
	assert.True(t, merged[0].Quantity.Equal(dec(t, "9")), "hours left unscaled")
}

func TestReconcile_NoSplitMarkersLeaveItemsAlone(t *testing.T) {
	e := NewEngine(nil)

	items := []parse.ParsedLineItem{
		hoursItem(t, 13, "8.5", "77.50", "658.75"),
	}
	docLines := []string{
		"13-01-2025 Waarneming dagpraktijk 8,5 € 77,50 € 658,75",
		"Totaal te betalen € 658,75",
	}
	merged, factor, isSplit := e.Reconcile(items, docLines, "Huisartsenpraktijk De Linde")

	assert.False(t, isSplit)
	assert.True(t, factor.Equal(dec(t, "1")))
	assert.True(t, merged[0].Quantity.Equal(dec(t, "8.5")))
	assert.True(t, merged[0].Total.Equal(dec(t, "658.75")))
}

func TestSplitFactor_ExplicitFullShare(t *testing.T) {
	e := NewEngine(nil)

	docLines := []string{
		"Verdeelsleutel:",
		"Huisartsenpost Oost 1,00",
	}
	factor, isSplit := e.SplitFactor(docLines, "Huisartsenpost Oost")
	assert.True(t, isSplit)
	assert.True(t, factor.Equal(dec(t, "1")))
}
