package parse

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Duty-roster specification rows, as sent by the on-call organisations:
//
//	506042 AW-WK-H 13-12-2024 17:00 00:00 7.00 Avond € 6,72 Vrijgesteld € 47,04
//	             23:00 08:00 2.50 Nacht € 6,72 Vrijgesteld € 16,80
//
// The first form opens a duty: dienst ID, duty code, date, start/end
// times, hours, shift label, hourly rate and row total. The second is a
// continuation of a duty that runs past midnight; it starts with a bare
// time token, carries no code and inherits date and code from the row
// above it.
var (
	dutyRowRe = regexp.MustCompile(
		`^\s*(\d{5,8})\s+([A-Z]{1,4}(?:-[A-Z0-9]{1,4})*)\s+(\d{1,2}-\d{1,2}-\d{2,4})\s+(\d{1,2}:\d{2})\s+(\d{1,2}:\d{2})\s+([0-9][0-9.,]*)\s+(\S+)`)
	dutyContRe = regexp.MustCompile(
		`^\s*(\d{1,2}:\d{2})\s+(\d{1,2}:\d{2})\s+([0-9][0-9.,]*)\s+(\S+)`)
)

// standbyCodePrefix marks achterwacht (backup/standby) duty codes.
const standbyCodePrefix = "AW"

// parseDutyRow is the duty-table grammar. Standby is decided by the code
// prefix convention; a continuation row without a code falls back to the
// hourly-rate threshold.
func parseDutyRow(p *Parser, line string, st State) (*ParsedLineItem, State) {
	if m := dutyRowRe.FindStringSubmatch(line); m != nil {
		date, ok := ParseDate(m[3], p.opts)
		if !ok {
			return nil, st
		}
		code := m[2]
		hours, hok := ParseDecimal(m[6])
		if !hok {
			return nil, st
		}

		st.Date = date
		st.DutyCode = code

		item := p.dutyItem(date, code, m[7], hours, currencyAmounts(line))
		return item, st
	}

	if m := dutyContRe.FindStringSubmatch(line); m != nil {
		// Continuation rows only make sense under an opened duty.
		if st.Date.IsZero() {
			return nil, st
		}
		hours, hok := ParseDecimal(m[3])
		if !hok {
			return nil, st
		}
		item := p.dutyItem(st.Date, st.DutyCode, m[4], hours, currencyAmounts(line))
		return item, st
	}

	return nil, st
}

func (p *Parser) dutyItem(date time.Time, code, label string, hours decimal.Decimal, amounts []decimal.Decimal) *ParsedLineItem {
	var rate, total decimal.Decimal
	if len(amounts) > 0 {
		rate = amounts[0]
		total = amounts[len(amounts)-1]
	}
	if total.IsZero() && rate.IsPositive() {
		total = rate.Mul(hours).Round(2)
	}
	if rate.IsZero() && hours.IsPositive() {
		rate = total.Div(hours).Round(2)
	}

	standby := strings.HasPrefix(code, standbyCodePrefix)
	if code == "" {
		// No code to go on; a rate this low is standby pay.
		standby = rate.IsPositive() && rate.LessThanOrEqual(p.opts.StandbyRateMax)
	}

	desc := "ANW dienst"
	if label != "" {
		desc += " " + label
	}

	return &ParsedLineItem{
		Date:        date,
		Description: desc,
		Quantity:    hours,
		Rate:        rate,
		Total:       total,
		IsHours:     true,
		IsStandby:   standby,
		DutyCode:    code,
	}
}
