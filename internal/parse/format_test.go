package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  FormatVariant
	}{
		{
			name: "duty table by marker",
			lines: []string{
				"Doktersdienst Midden-Nederland",
				"Urenspecificatie december 2024",
				"506042 AW-WK-H 13-12-2024 17:00 00:00 7.00 Avond € 6,72 Vrijgesteld € 47,04",
			},
			want: FormatDutyTable,
		},
		{
			name: "vertical quantity by datum label",
			lines: []string{
				"Factuurnummer: 2025-014",
				"Datum: 13 januari 2025",
				"Waarneming avonddienst 3,5 € 65,00 € 227,50",
			},
			want: FormatVerticalQuantity,
		},
		{
			name: "factuurdatum does not trigger vertical",
			lines: []string{
				"Factuurdatum: 13 januari 2025",
				"13-01-2025 Waarneming dagpraktijk 8,5 € 77,50 € 658,75",
			},
			want: FormatDashCombined,
		},
		{
			name: "km column by afstand header",
			lines: []string{
				"Datum Omschrijving Uren Afstand Tarief Bedrag",
				"13-01-2025 Waarneming dagpraktijk 8,5 46 € 77,50 € 671,17",
			},
			want: FormatKmColumn,
		},
		{
			name: "separate rows by phrasing",
			lines: []string{
				"13-01-2025 Waarneming 8,5 uur à € 77,50 € 658,75",
				"13-01-2025 46 km à € 0,27 € 12,42",
			},
			want: FormatSeparateRows,
		},
		{
			name: "slash combined by row date delimiter",
			lines: []string{
				"Factuur: 2025-003",
				"13/01/2025 Waarneming dagpraktijk 8,5 € 77,50 € 658,75",
			},
			want: FormatSlashCombined,
		},
		{
			name: "dash combined by row date delimiter",
			lines: []string{
				"Factuur: 2025-003",
				"13-01-2025 Waarneming dagpraktijk 8,5 € 77,50 € 658,75",
			},
			want: FormatDashCombined,
		},
		{
			name:  "default when nothing matches",
			lines: []string{"Factuurnummer: 2025-001", "Met vriendelijke groet"},
			want:  FormatDashCombined,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.lines))
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	lines := []string{
		"Urenspecificatie",
		"13/01/2025 Waarneming 8,5 uur à € 77,50",
	}
	first := Classify(lines)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify(lines))
	}
	// Duty marker outranks the separate-rows phrasing.
	assert.Equal(t, FormatDutyTable, first)
}

func TestClassify_IgnoresLinesBeyondWindow(t *testing.T) {
	lines := make([]string, 0, classifyWindow+1)
	for i := 0; i < classifyWindow; i++ {
		lines = append(lines, "tekst zonder signaal")
	}
	lines = append(lines, "Urenspecificatie") // past the window
	assert.Equal(t, FormatDashCombined, Classify(lines))
}
