// Package reconcile merges parsed line items into billable days and
// applies split-payment proration for jointly commissioned duties.
package reconcile

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rvberkel/waarneemadmin/internal/parse"
)

// Engine pairs same-day hours and travel rows and prorates shared duties.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a reconciliation engine.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Markers that a duty was jointly commissioned and its hours are split
// across billed parties.
var splitMarkers = []string{"verdeelfactor", "verdeelsleutel", "verdeling", "pro rata"}

// factorRe finds split-factor candidates on a breakdown row: a decimal
// fraction below one, or an explicit 1,00.
var factorRe = regexp.MustCompile(`\b(?:0[.,]\d{1,4}|1[.,]0{1,4})\b`)

// Reconcile merges travel items into the hours item sharing the same
// calendar date, then applies the split factor to the hours rows. The
// returned items preserve source order: hours items first as they
// appeared, then any travel rows that found no same-day hours to join.
func (e *Engine) Reconcile(items []parse.ParsedLineItem, docLines []string, clientName string) ([]parse.ParsedLineItem, decimal.Decimal, bool) {
	merged := e.mergeTravel(items)

	factor, isSplit := e.SplitFactor(docLines, clientName)
	if isSplit && !factor.Equal(decimal.NewFromInt(1)) {
		for i := range merged {
			if !merged[i].IsHours {
				continue
			}
			merged[i].Quantity = merged[i].Quantity.Mul(factor)
			merged[i].Total = merged[i].Total.Mul(factor).Round(2)
		}
	}

	return merged, factor, isSplit
}

// mergeTravel folds each travel item into the hours item on the same
// calendar date, producing one composite billable day.
func (e *Engine) mergeTravel(items []parse.ParsedLineItem) []parse.ParsedLineItem {
	byDate := make(map[string]*parse.ParsedLineItem)
	// out never outgrows its capacity, so the byDate pointers stay valid.
	out := make([]parse.ParsedLineItem, 0, len(items))

	for _, it := range items {
		if !it.IsHours {
			continue
		}
		out = append(out, it)
		key := it.Date.Format("2006-01-02")
		if _, seen := byDate[key]; !seen {
			byDate[key] = &out[len(out)-1]
		}
	}

	for _, it := range items {
		if it.IsHours {
			continue
		}
		key := it.Date.Format("2006-01-02")
		if h, ok := byDate[key]; ok {
			h.TravelAmount = h.TravelAmount.Add(it.TravelAmount)
			h.TravelKm = h.TravelKm.Add(it.TravelKm)
			continue
		}
		// No same-day hours; keep the travel row as its own entry.
		out = append(out, it)
	}

	return out
}

// SplitFactor detects shared-duty billing and locates this client's
// verdeelfactor: a decimal token co-occurring with the client name on a
// breakdown row. When the document signals a split but no row matches
// the client, the factor silently defaults to 1; that fallback can
// overstate hours, so it is logged loudly.
func (e *Engine) SplitFactor(docLines []string, clientName string) (decimal.Decimal, bool) {
	one := decimal.NewFromInt(1)

	split := false
	for _, line := range docLines {
		lower := strings.ToLower(line)
		for _, m := range splitMarkers {
			if strings.Contains(lower, m) {
				split = true
				break
			}
		}
		if split {
			break
		}
	}
	if !split {
		return one, false
	}

	client := strings.ToLower(strings.TrimSpace(clientName))
	if client != "" {
		for _, line := range docLines {
			if !strings.Contains(strings.ToLower(line), client) {
				continue
			}
			tok := factorRe.FindString(line)
			if tok == "" {
				continue
			}
			if f, ok := parse.ParseDecimal(tok); ok && f.IsPositive() && f.LessThanOrEqual(one) {
				e.logger.Debug("split factor resolved",
					zap.String("client", clientName),
					zap.String("factor", f.String()))
				return f, true
			}
		}
	}

	e.logger.Warn("split billing detected but no factor row matched the client; hours left unscaled",
		zap.String("client", clientName))
	return one, true
}
