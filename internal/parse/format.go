package parse

import (
	"regexp"
	"strings"
)

// FormatVariant is the closed set of known invoice layout grammars. Six
// near-duplicate conventions accumulated over two years of format drift;
// the classifier picks one per document and the matching line parser does
// the row-by-row work.
type FormatVariant int

const (
	// FormatDashCombined: table rows lead with dd-mm-yyyy and combine
	// hours, rate and travel cost on one line. The most common recent
	// layout and therefore the classification default.
	FormatDashCombined FormatVariant = iota
	// FormatSlashCombined: as dash-combined but with dd/mm/yyyy dates.
	FormatSlashCombined
	// FormatKmColumn: combined rows with an explicit distance column
	// between the hours and the amounts.
	FormatKmColumn
	// FormatSeparateRows: hours and travel costs on separate dated
	// description rows ("8,5 uur à € 77,50", "46 km à € 0,27").
	FormatSeparateRows
	// FormatVerticalQuantity: a labeled "Datum: 13 januari 2025" line
	// above an undated block of item rows.
	FormatVerticalQuantity
	// FormatDutyTable: the huisartsenpost duty roster specification with
	// dienst IDs, duty codes and shift times.
	FormatDutyTable
)

func (v FormatVariant) String() string {
	switch v {
	case FormatDashCombined:
		return "dash-combined"
	case FormatSlashCombined:
		return "slash-combined"
	case FormatKmColumn:
		return "km-column"
	case FormatSeparateRows:
		return "separate-rows"
	case FormatVerticalQuantity:
		return "vertical-quantity"
	case FormatDutyTable:
		return "duty-table"
	}
	return "unknown"
}

// classifyWindow limits classification to the document's leading lines;
// the signals all live in the header and the first table rows.
const classifyWindow = 50

// Lexical markers of the duty-roster specification layout, including the
// known on-call organisations that send it.
var dutyTableMarkers = []string{
	"dienst id",
	"dienstnummer",
	"urenspecificatie",
	"doktersdienst",
	"huisartsenposten",
	"spoedpost rooster",
}

var separateRowMarkers = []string{
	"uur à",
	"uren à",
	"km à",
}

var (
	slashRowRe = regexp.MustCompile(`^\s*\d{1,2}/\d{1,2}/\d{2,4}\b`)
	dashRowRe  = regexp.MustCompile(`^\s*\d{1,2}-\d{1,2}-\d{2,4}\b`)
)

// Classify inspects a document's leading text and selects the layout
// grammar to parse it with. Checks run in precedence order and the first
// match wins; cheap lexical signals are tried before anything that would
// require a grammar-specific row parse. Classification is deterministic:
// the same text always yields the same variant.
func Classify(lines []string) FormatVariant {
	if len(lines) > classifyWindow {
		lines = lines[:classifyWindow]
	}

	lower := make([]string, len(lines))
	for i, l := range lines {
		lower[i] = strings.ToLower(l)
	}

	// 1. Duty roster markers.
	for _, l := range lower {
		for _, m := range dutyTableMarkers {
			if strings.Contains(l, m) {
				return FormatDutyTable
			}
		}
	}

	// 2. A "Datum:" label followed by a Dutch month name. The prefix
	// check keeps "Factuurdatum:" header lines from matching.
	for _, l := range lower {
		if !strings.HasPrefix(strings.TrimSpace(l), "datum:") {
			continue
		}
		for name := range dutchMonths {
			if strings.Contains(l, name) {
				return FormatVerticalQuantity
			}
		}
	}

	// 3. An explicit distance column header.
	for _, l := range lower {
		if strings.Contains(l, "afstand") {
			return FormatKmColumn
		}
	}

	// 4. Phrasing that puts hours and kilometers on separate rows.
	for _, l := range lower {
		for _, m := range separateRowMarkers {
			if strings.Contains(l, m) {
				return FormatSeparateRows
			}
		}
	}

	// 5. Date delimiter of the first sampled table row decides between
	// the two combined-row conventions.
	for _, l := range lines {
		if slashRowRe.MatchString(l) {
			return FormatSlashCombined
		}
		if dashRowRe.MatchString(l) {
			return FormatDashCombined
		}
	}

	// 6. Nothing matched; assume the most common recent layout.
	return FormatDashCombined
}
