package parse

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// lineParser consumes one text line plus the carried-over fold state and
// emits zero or one line item. One grammar per layout variant.
type lineParser func(p *Parser, line string, st State) (*ParsedLineItem, State)

// lineParsers is the variant dispatch table. Adding a layout means adding
// a grammar function here, not touching the fold.
var lineParsers = map[FormatVariant]lineParser{
	FormatDashCombined:     parseDashCombined,
	FormatSlashCombined:    parseSlashCombined,
	FormatKmColumn:         parseKmColumn,
	FormatSeparateRows:     parseSeparateRows,
	FormatVerticalQuantity: parseVertical,
	FormatDutyTable:        parseDutyRow,
}

// Parser drives the heuristic grammars over extracted invoice text.
type Parser struct {
	opts   Options
	logger *zap.Logger
}

// NewParser creates a parser with the given heuristic options.
func NewParser(opts Options, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{opts: opts, logger: logger}
}

// Options returns the parser's heuristic options.
func (p *Parser) Options() Options {
	return p.opts
}

// ParseLines folds the selected grammar over the document lines. Parsing
// is strictly sequential: continuation rows depend on state carried from
// earlier rows, so this is never parallelized.
func (p *Parser) ParseLines(variant FormatVariant, lines []string) []ParsedLineItem {
	fn, ok := lineParsers[variant]
	if !ok {
		fn = parseDashCombined
	}

	var items []ParsedLineItem
	var st State
	for i, line := range lines {
		item, next := fn(p, line, st)
		st = next
		if item == nil {
			continue
		}
		if !p.accept(item) {
			p.logger.Debug("line item rejected by plausibility bounds",
				zap.Int("line", i+1),
				zap.String("quantity", item.Quantity.String()))
			continue
		}
		items = append(items, *item)
		if item.IsHours {
			st.LastHours = &items[len(items)-1]
			st.Date = item.Date
		}
	}

	p.logger.Debug("document lines parsed",
		zap.String("variant", variant.String()),
		zap.Int("lines", len(lines)),
		zap.Int("items", len(items)))
	return items
}

// accept enforces the plausibility invariants. Hours must fit a single
// working day; a known travel distance must fit a commute.
func (p *Parser) accept(it *ParsedLineItem) bool {
	if it.IsHours {
		return it.Quantity.IsPositive() && it.Quantity.LessThanOrEqual(p.opts.MaxDayHours)
	}
	if it.Quantity.IsNegative() || it.Quantity.GreaterThan(p.opts.MaxCommuteKm) {
		return false
	}
	// A detached travel row may carry only an amount; the distance is
	// then unknown, not implausible.
	return it.Quantity.IsPositive() || it.Total.IsPositive()
}

var (
	currencyRe    = regexp.MustCompile(`€\s*([0-9][0-9.,]*)`)
	numberTokenRe = regexp.MustCompile(`[0-9]+(?:[.,][0-9]+)?`)
)

// Work-description keywords that mark a row as billed hours.
var hoursKeywords = []string{
	"waarneming", "waarneem", "dienst", "consult", "spreekuur",
	"visite", "praktijk", "anw", "avond", "nacht", "weekend", "uur", "uren",
}

// Keywords that mark a row as a travel reimbursement.
var travelKeywords = []string{
	"reiskosten", "kilometervergoeding", "kilometer", "km",
}

type rowKind int

const (
	rowNoise rowKind = iota
	rowHours
	rowTravel
)

// classifyRow decides hours vs travel vs noise by keyword match. Travel
// wins over hours because travel rows frequently repeat the duty
// description they belong to.
func classifyRow(line string) rowKind {
	lower := strings.ToLower(line)
	for _, kw := range travelKeywords {
		if containsWord(lower, kw) {
			return rowTravel
		}
	}
	for _, kw := range hoursKeywords {
		if containsWord(lower, kw) {
			return rowHours
		}
	}
	return rowNoise
}

func containsWord(lower, kw string) bool {
	idx := strings.Index(lower, kw)
	for idx >= 0 {
		before := idx == 0 || !isAlpha(lower[idx-1])
		afterIdx := idx + len(kw)
		after := afterIdx >= len(lower) || !isAlpha(lower[afterIdx])
		if before && after {
			return true
		}
		next := strings.Index(lower[idx+1:], kw)
		if next < 0 {
			return false
		}
		idx += 1 + next
	}
	return false
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// currencyAmounts extracts all €-prefixed amounts left to right.
func currencyAmounts(line string) []decimal.Decimal {
	var out []decimal.Decimal
	for _, m := range currencyRe.FindAllStringSubmatch(line, -1) {
		if d, ok := ParseDecimal(m[1]); ok {
			out = append(out, d)
		}
	}
	return out
}

// leadingDate strips a date token from the start of the line. delim 0
// accepts either delimiter convention.
func leadingDate(line string, delim byte, opts Options) (date string, rest string, ok bool) {
	trimmed := strings.TrimLeft(line, " \t")
	var re *regexp.Regexp
	switch delim {
	case '/':
		re = slashRowRe
	case '-':
		re = dashRowRe
	default:
		re = leadingDateRe
	}
	loc := re.FindStringIndex(trimmed)
	if loc == nil {
		return "", line, false
	}
	return strings.TrimSpace(trimmed[:loc[1]]), trimmed[loc[1]:], true
}

var leadingDateRe = regexp.MustCompile(`^\s*\d{1,2}[-/]\d{1,2}[-/]\d{2,4}\b`)

// splitHead splits the portion of a row before the first currency symbol
// into the description text and the bare numeric tokens that follow it
// (the quantity column or columns).
func splitHead(rest string) (desc string, nums []decimal.Decimal) {
	head := rest
	if idx := strings.IndexRune(rest, '€'); idx >= 0 {
		head = rest[:idx]
	}
	head = strings.TrimSpace(head)

	locs := numberTokenRe.FindAllStringIndex(head, -1)
	if len(locs) == 0 {
		return head, nil
	}
	desc = strings.TrimSpace(head[:locs[0][0]])
	for _, loc := range locs {
		if d, ok := ParseDecimal(head[loc[0]:loc[1]]); ok {
			nums = append(nums, d)
		}
	}
	return desc, nums
}

// amountAssignment is the result of distributing a row's currency tokens
// over rate, total and inline travel cost.
type amountAssignment struct {
	rate   decimal.Decimal
	total  decimal.Decimal
	travel decimal.Decimal
}

// assignHourAmounts distributes the €-tokens of an hours row. A day rate
// is plausible inside the configured hourly band; the largest token is
// the line total; a leftover small token is an inline travel cost. With
// only one token present the missing value is derived algebraically.
func (p *Parser) assignHourAmounts(amounts []decimal.Decimal, qty decimal.Decimal) amountAssignment {
	var a amountAssignment

	switch len(amounts) {
	case 0:
		return a
	case 1:
		tok := amounts[0]
		if p.inHourlyBand(tok) {
			a.rate = tok
			a.total = tok.Mul(qty).Round(2)
		} else {
			a.total = tok
			if qty.IsPositive() {
				a.rate = tok.Div(qty).Round(2)
			}
		}
		return a
	}

	// Largest token is the line total.
	a.total = amounts[0]
	totalIdx := 0
	for i, tok := range amounts {
		if tok.GreaterThan(a.total) {
			a.total = tok
			totalIdx = i
		}
	}
	for i, tok := range amounts {
		if i == totalIdx {
			continue
		}
		if a.rate.IsZero() && p.inHourlyBand(tok) {
			a.rate = tok
			continue
		}
		if a.travel.IsZero() {
			a.travel = tok
		}
	}
	if a.rate.IsZero() && qty.IsPositive() {
		a.rate = a.total.Div(qty).Round(2)
	}
	return a
}

func (p *Parser) inHourlyBand(tok decimal.Decimal) bool {
	return tok.GreaterThanOrEqual(p.opts.HourlyRateMin) && tok.LessThanOrEqual(p.opts.HourlyRateMax)
}

// parseRow is the grammar shared by the combined-row layouts. delim
// selects the date convention; wantDate requires a leading date token
// (vertical layouts carry the date in state instead).
func parseRow(p *Parser, line string, st State, delim byte, wantDate bool) (*ParsedLineItem, State) {
	date := st.Date
	rest := line
	if wantDate {
		if tok, r, ok := leadingDate(line, delim, p.opts); ok {
			if d, dok := ParseDate(tok, p.opts); dok {
				date = d
				rest = r
			} else {
				// Date-shaped but implausible: skip the row rather
				// than bill it to a misread date.
				return nil, st
			}
		}
	}

	kind := classifyRow(rest)
	if kind == rowNoise {
		return nil, st
	}
	if date.IsZero() && st.LastHours != nil {
		date = st.LastHours.Date
	}
	if date.IsZero() {
		return nil, st
	}

	amounts := currencyAmounts(rest)
	desc, nums := splitHead(rest)

	if kind == rowTravel {
		return p.travelItem(date, desc, nums, amounts), st
	}

	if len(nums) == 0 {
		// No quantity between description and amounts: noise by policy.
		return nil, st
	}
	qty := nums[0]
	a := p.assignHourAmounts(amounts, qty)
	if a.total.IsZero() && a.rate.IsZero() {
		return nil, st
	}

	item := &ParsedLineItem{
		Date:         date,
		Description:  desc,
		Quantity:     qty,
		Rate:         a.rate,
		Total:        a.total,
		TravelAmount: a.travel,
		IsHours:      true,
	}
	st.Date = date
	return item, st
}

// travelItem builds a travel line item. Quantity is the round-trip
// distance when the row carries one; a detached cost-only row keeps the
// distance at zero rather than inventing one.
func (p *Parser) travelItem(date time.Time, desc string, nums, amounts []decimal.Decimal) *ParsedLineItem {
	var km decimal.Decimal
	if len(nums) > 0 {
		km = nums[0]
	}

	rate := kmRate(amounts, p.opts)
	var total decimal.Decimal
	for _, tok := range amounts {
		if !tok.Equal(rate) {
			total = tok // last non-rate token is the line total
		}
	}

	switch {
	case total.IsZero() && km.IsPositive() && rate.IsPositive():
		total = km.Mul(rate).Round(2)
	case rate.IsZero() && km.IsPositive() && total.IsPositive():
		rate = total.Div(km).Round(2)
	}
	if total.IsZero() && km.IsZero() {
		return nil
	}

	return &ParsedLineItem{
		Date:         date,
		Description:  desc,
		Quantity:     km,
		Rate:         rate,
		Total:        total,
		TravelKm:     km,
		TravelAmount: total,
	}
}

func parseDashCombined(p *Parser, line string, st State) (*ParsedLineItem, State) {
	return parseRow(p, line, st, '-', true)
}

func parseSlashCombined(p *Parser, line string, st State) (*ParsedLineItem, State) {
	return parseRow(p, line, st, '/', true)
}

func parseSeparateRows(p *Parser, line string, st State) (*ParsedLineItem, State) {
	// Hours and travel arrive as separate fully-dated rows; either
	// delimiter convention appears in this layout's history.
	return parseRow(p, line, st, 0, true)
}

// parseVertical handles the layout with a labeled date line above an
// undated block of item rows.
func parseVertical(p *Parser, line string, st State) (*ParsedLineItem, State) {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(strings.ToLower(trimmed), "datum:") {
		if d, ok := FindDate(trimmed, p.opts); ok {
			st.Date = d
		}
		return nil, st
	}
	return parseRow(p, line, st, 0, false)
}

// parseKmColumn handles combined rows with an explicit distance column:
// the bare numerics before the amounts are hours then kilometers.
func parseKmColumn(p *Parser, line string, st State) (*ParsedLineItem, State) {
	item, next := parseRow(p, line, st, '-', true)
	if item == nil || !item.IsHours {
		return item, next
	}

	_, nums := splitHead(stripLeadingDate(line))
	if len(nums) >= 2 {
		km := nums[1]
		if km.IsPositive() && km.LessThanOrEqual(p.opts.MaxCommuteKm) {
			item.TravelKm = km
			// A sub-€1 "travel amount" is really the per-km rate.
			if item.TravelAmount.IsPositive() && item.TravelAmount.LessThan(p.opts.KmRateMax) {
				item.TravelAmount = km.Mul(item.TravelAmount).Round(2)
			}
			if item.TravelAmount.IsZero() {
				if rate := kmRate(currencyAmounts(line), p.opts); rate.IsPositive() {
					item.TravelAmount = km.Mul(rate).Round(2)
				}
			}
		}
	}
	return item, next
}

func stripLeadingDate(line string) string {
	_, rest, _ := leadingDate(line, 0, Options{})
	return rest
}

// kmRate picks the per-km amount out of a token list: a small fraction
// below the configured ceiling, distinct from any day rate.
func kmRate(amounts []decimal.Decimal, opts Options) decimal.Decimal {
	for _, tok := range amounts {
		if tok.IsPositive() && tok.LessThan(opts.KmRateMax) {
			return tok
		}
	}
	return decimal.Decimal{}
}
