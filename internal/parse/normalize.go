package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Dutch month names as they appear on textual invoice dates.
var dutchMonths = map[string]time.Month{
	"januari":   time.January,
	"februari":  time.February,
	"maart":     time.March,
	"april":     time.April,
	"mei":       time.May,
	"juni":      time.June,
	"juli":      time.July,
	"augustus":  time.August,
	"september": time.September,
	"oktober":   time.October,
	"november":  time.November,
	"december":  time.December,
}

var (
	numericDateRe = regexp.MustCompile(`^(\d{1,2})[-/](\d{1,2})[-/](\d{2,4})$`)
	textualDateRe = regexp.MustCompile(`^(\d{1,2})\s+([a-z]+)\s+(\d{4})$`)

	// dateTokenRe finds date candidates anywhere in a line.
	dateTokenRe = regexp.MustCompile(`\d{1,2}[-/]\d{1,2}[-/]\d{2,4}`)
)

// ParseDate parses a Dutch-convention date token: dd-mm-yyyy, dd/mm/yyyy,
// two-digit-year variants (assumed 2000s), or the textual form
// "13 januari 2025". Dates outside the configured plausibility window are
// rejected as extraction artifacts.
func ParseDate(tok string, opts Options) (time.Time, bool) {
	tok = strings.TrimSpace(tok)

	if m := numericDateRe.FindStringSubmatch(tok); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
		return buildDate(year, month, day, opts)
	}

	if m := textualDateRe.FindStringSubmatch(strings.ToLower(tok)); m != nil {
		month, ok := dutchMonths[m[2]]
		if !ok {
			return time.Time{}, false
		}
		day, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[3])
		return buildDate(year, int(month), day, opts)
	}

	return time.Time{}, false
}

// FindDate scans a whole line for the first plausible date token.
func FindDate(line string, opts Options) (time.Time, bool) {
	for _, tok := range dateTokenRe.FindAllString(line, -1) {
		if d, ok := ParseDate(tok, opts); ok {
			return d, true
		}
	}
	// Textual dates are not found by the token regex; try the line tail
	// after a label such as "Datum: 13 januari 2025".
	if idx := strings.IndexByte(line, ':'); idx >= 0 {
		if d, ok := ParseDate(line[idx+1:], opts); ok {
			return d, true
		}
	}
	return time.Time{}, false
}

func buildDate(year, month, day int, opts Options) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day {
		// Normalized away: the source said e.g. 31-02.
		return time.Time{}, false
	}
	if !plausibleDate(d, opts) {
		return time.Time{}, false
	}
	return d, true
}

// plausibleDate bounds parsed dates to the configured window around the
// reference time. Anything outside is a misread token, not a shift date.
func plausibleDate(d time.Time, opts Options) bool {
	ref := opts.ref()
	past := opts.WindowPastMonths
	future := opts.WindowFutureMonths
	if past <= 0 {
		past = 24
	}
	if future <= 0 {
		future = 12
	}
	return !d.Before(ref.AddDate(0, -past, 0)) && !d.After(ref.AddDate(0, future, 0))
}

// ParseDecimal parses a numeric token following Dutch locale convention:
// with both separators present "." groups thousands and "," marks the
// decimal ("2.195,67" -> 2195.67); a lone "," is the decimal separator
// ("70,00" -> 70.00). A lone "." is taken as a decimal point, which the
// duty-roster tables use ("7.00").
func ParseDecimal(tok string) (decimal.Decimal, bool) {
	tok = strings.TrimSpace(tok)
	tok = strings.TrimPrefix(tok, "€")
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return decimal.Decimal{}, false
	}

	hasDot := strings.Contains(tok, ".")
	hasComma := strings.Contains(tok, ",")
	switch {
	case hasDot && hasComma:
		tok = strings.ReplaceAll(tok, ".", "")
		tok = strings.Replace(tok, ",", ".", 1)
	case hasComma:
		tok = strings.Replace(tok, ",", ".", 1)
	}

	d, err := decimal.NewFromString(tok)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
