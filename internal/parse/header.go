package parse

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Invoice number labels drifted over the years along with everything
// else; the patterns are tried in order.
var invoiceNumberRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)factuurnummer\s*[:#]?\s*([A-Z0-9][A-Z0-9./-]*)`),
	regexp.MustCompile(`(?i)factuurnr\.?\s*[:#]?\s*([A-Z0-9][A-Z0-9./-]*)`),
	regexp.MustCompile(`(?i)factuur\s*[:#]\s*([A-Z0-9][A-Z0-9./-]*)`),
	regexp.MustCompile(`(?i)declaratienummer\s*[:#]?\s*([A-Z0-9][A-Z0-9./-]*)`),
}

var invoiceDateRe = regexp.MustCompile(`(?i)factuurdatum`)

var postcodeRe = regexp.MustCompile(`\b(\d{4})\s?([A-Z]{2})\b`)

// Labels whose line carries the invoice grand total; checked in order of
// reliability.
var totalMarkers = []string{"te betalen", "totaal te voldoen", "totaalbedrag", "totaal"}

var clientLabelRe = regexp.MustCompile(`(?i)^\s*(aan|t\.a\.v\.)\s*[:]?\s*(.+)$`)

// headerWindow bounds how deep into the document the address block and
// labels are searched for.
const headerWindow = 20

// ExtractHeader recovers the invoice-level fields from the document text:
// number, date, client block and grand total. Line items are parsed
// separately by the variant grammar. The date lookup is soft and falls
// back through candidates; a missing invoice number is left empty for the
// caller to treat as fatal.
func (p *Parser) ExtractHeader(lines []string) ParsedInvoice {
	inv := ParsedInvoice{SplitFactor: decimal.NewFromInt(1)}

	for _, line := range lines {
		if inv.Number != "" {
			break
		}
		for _, re := range invoiceNumberRes {
			m := re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			cand := strings.TrimRight(m[1], ".")
			if strings.ContainsAny(cand, "0123456789") {
				inv.Number = cand
				break
			}
		}
	}

	inv.Date = p.headerDate(lines)
	p.clientBlock(lines, &inv)
	inv.Total = headerTotal(lines)

	p.logger.Debug("invoice header extracted",
		zap.String("number", inv.Number),
		zap.String("client", inv.ClientName))
	return inv
}

// headerDate prefers an explicitly labeled invoice date, then any
// plausible date in the header window. Zero means not found; the caller
// can still fall back to the first line-item date.
func (p *Parser) headerDate(lines []string) time.Time {
	for _, line := range lines {
		if !invoiceDateRe.MatchString(line) {
			continue
		}
		if d, ok := FindDate(line, p.opts); ok {
			return d
		}
	}
	for i, line := range lines {
		if i >= headerWindow {
			break
		}
		if d, ok := FindDate(line, p.opts); ok {
			return d
		}
	}
	return time.Time{}
}

// clientBlock pulls the billed party out of the address block: an
// explicit "Aan:" label when present, otherwise the first header line
// naming a practice or post, plus postcode and plaats when they appear.
func (p *Parser) clientBlock(lines []string, inv *ParsedInvoice) {
	for i, line := range lines {
		if i >= headerWindow {
			break
		}

		if m := clientLabelRe.FindStringSubmatch(line); m != nil {
			name := strings.TrimSpace(m[2])
			if name != "" && inv.ClientName == "" {
				inv.ClientName = name
			}
			continue
		}

		if m := postcodeRe.FindStringSubmatch(line); m != nil {
			inv.Postcode = m[1] + " " + m[2]
			rest := line[strings.Index(line, m[0])+len(m[0]):]
			inv.City = strings.TrimSpace(rest)
			continue
		}

		if inv.ClientName == "" {
			lower := strings.ToLower(line)
			for _, kw := range []string{"huisartsenpraktijk", "huisartsenpost", "praktijk", "spoedpost", "gezondheidscentrum"} {
				if strings.Contains(lower, kw) {
					inv.ClientName = strings.TrimSpace(line)
					break
				}
			}
			continue
		}

		// The line under the client name is the street address.
		if inv.ClientName != "" && inv.Address == "" && strings.TrimSpace(line) != "" &&
			!strings.EqualFold(strings.TrimSpace(line), inv.ClientName) {
			inv.Address = strings.TrimSpace(line)
		}
	}
}

// headerTotal finds the invoice grand total: the last currency token on
// the most reliable total-labeled line.
func headerTotal(lines []string) decimal.Decimal {
	for _, marker := range totalMarkers {
		for _, line := range lines {
			if !strings.Contains(strings.ToLower(line), marker) {
				continue
			}
			if amounts := currencyAmounts(line); len(amounts) > 0 {
				return amounts[len(amounts)-1]
			}
		}
	}
	return decimal.Decimal{}
}
