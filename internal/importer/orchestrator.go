// Package importer drives the ingestion of waarneem invoice documents:
// text extraction, layout classification, heuristic line parsing,
// reconciliation, client resolution, dedup and persistence.
package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rvberkel/waarneemadmin/internal/domain/entity"
	"github.com/rvberkel/waarneemadmin/internal/parse"
	"github.com/rvberkel/waarneemadmin/internal/reconcile"
)

// Orchestrator sequences a document import end to end and aggregates
// batch runs over a directory.
type Orchestrator struct {
	extractor TextExtractor
	store     Store
	archiver  Archiver
	parser    *parse.Parser
	engine    *reconcile.Engine
	resolver  *ClientResolver
	gate      *DeduplicationGate
	logger    *zap.Logger
}

// NewOrchestrator wires the import pipeline.
func NewOrchestrator(
	extractor TextExtractor,
	store Store,
	archiver Archiver,
	parser *parse.Parser,
	engine *reconcile.Engine,
	resolver *ClientResolver,
	gate *DeduplicationGate,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		extractor: extractor,
		store:     store,
		archiver:  archiver,
		parser:    parser,
		engine:    engine,
		resolver:  resolver,
		gate:      gate,
		logger:    logger,
	}
}

// ImportDirectory scans a directory (non-recursively) for PDF documents
// and imports them sequentially. One malformed document never aborts the
// batch; its failure becomes a failed ImportResult. Only the directory
// read itself is fatal.
//
// Files are processed sequentially on purpose: the dedup gate must see
// the records created by earlier files in the same run.
func (o *Orchestrator) ImportDirectory(ctx context.Context, dir string) ([]entity.ImportResult, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read import directory: %w", err)
	}

	var names []string
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(de.Name()), ".pdf") {
			names = append(names, de.Name())
		}
	}
	sort.Strings(names)

	o.logger.Info("Starting batch import",
		zap.String("dir", dir),
		zap.Int("documents", len(names)))

	results := make([]entity.ImportResult, 0, len(names))
	for _, name := range names {
		results = append(results, o.ImportFile(ctx, filepath.Join(dir, name)))
	}
	return results, nil
}

// ImportFile imports a single document and always returns a result; all
// per-document failures are converted, never propagated.
func (o *Orchestrator) ImportFile(ctx context.Context, path string) (result entity.ImportResult) {
	defer func() {
		if p := recover(); p != nil {
			o.logger.Error("Panic while importing document",
				zap.String("path", path),
				zap.Any("panic", p))
			result = failedResult(path, fmt.Errorf("internal error: %v", p))
		}
	}()

	result, err := o.importFile(ctx, path)
	if err != nil {
		o.logger.Warn("Document import failed",
			zap.String("path", path),
			zap.Error(err))
		return failedResult(path, err)
	}
	return result
}

func failedResult(path string, err error) entity.ImportResult {
	return entity.ImportResult{
		Success:       false,
		InvoiceNumber: filepath.Base(path),
		Message:       err.Error(),
	}
}

func (o *Orchestrator) importFile(ctx context.Context, path string) (entity.ImportResult, error) {
	o.logger.Info("Importing document", zap.String("path", path))

	pages, err := o.extractor.ExtractPages(path)
	if err != nil {
		return entity.ImportResult{}, fmt.Errorf("%w: %v", ErrUnreadableSource, err)
	}
	text := strings.Join(pages, "\n")
	if strings.TrimSpace(text) == "" {
		return entity.ImportResult{}, ErrNoExtractableText
	}
	lines := splitLines(text)

	variant := parse.Classify(lines)
	o.logger.Debug("Document classified",
		zap.String("path", path),
		zap.String("variant", variant.String()))

	inv := o.parser.ExtractHeader(lines)
	if inv.Number == "" {
		return entity.ImportResult{}, ErrInvoiceNumberNotFound
	}

	existing, err := o.gate.ExistingInvoice(ctx, inv.Number)
	if err != nil {
		return entity.ImportResult{}, err
	}
	if existing != nil {
		return entity.ImportResult{
			Success:       true,
			Skipped:       true,
			InvoiceNumber: inv.Number,
			Message:       fmt.Sprintf("already imported on %s; skipped", existing.CreatedAt.Format("2006-01-02")),
			TotalAmount:   existing.TotalAmount,
		}, nil
	}

	inv.Items = o.parser.ParseLines(variant, lines)
	if len(inv.Items) == 0 {
		return entity.ImportResult{}, ErrNoLineItems
	}

	client, err := o.resolver.Resolve(ctx, inv.ClientName)
	if err != nil {
		return entity.ImportResult{}, err
	}

	merged, factor, isSplit := o.engine.Reconcile(inv.Items, lines, client.Name)
	inv.SplitFactor = factor
	inv.IsSplit = isSplit

	entries, skippedEntries, err := o.buildEntries(ctx, merged, client.ID)
	if err != nil {
		return entity.ImportResult{}, err
	}
	if len(entries) == 0 {
		return entity.ImportResult{
			Success:       true,
			Skipped:       true,
			InvoiceNumber: inv.Number,
			Message:       fmt.Sprintf("all %d entries already imported; skipped", skippedEntries),
		}, nil
	}

	total := inv.Total
	if total.IsZero() {
		for _, e := range entries {
			total = total.Add(e.Amount).Add(e.TravelAmount)
		}
	}

	invoiceDate := inv.Date
	if invoiceDate.IsZero() {
		// Soft fallback: the first billable day stands in for a header
		// date the extraction could not recover.
		invoiceDate = entries[0].Date
		o.logger.Warn("Invoice date not found; falling back to first entry date",
			zap.String("number", inv.Number))
	}

	archivePath := ""
	if o.archiver != nil {
		archivePath, err = o.archiver.Store(ctx, inv.Number, path)
		if err != nil {
			// The records matter more than the copy; keep importing.
			o.logger.Warn("Failed to archive source document",
				zap.String("path", path),
				zap.Error(err))
			archivePath = ""
		}
	}

	record := &entity.Invoice{
		Number:      inv.Number,
		ClientID:    client.ID,
		InvoiceDate: invoiceDate,
		TotalAmount: total,
		SplitFactor: factor,
		IsSplit:     isSplit,
		SourcePath:  path,
		ArchivePath: archivePath,
	}
	if err := o.store.CreateInvoiceWithEntries(ctx, record, entries); err != nil {
		return entity.ImportResult{}, fmt.Errorf("failed to persist invoice %s: %w", inv.Number, err)
	}

	o.logger.Info("Document imported",
		zap.String("number", inv.Number),
		zap.String("client", client.Name),
		zap.Int("entries", len(entries)),
		zap.Int("duplicate_entries_skipped", skippedEntries),
		zap.String("total", total.String()))

	msg := fmt.Sprintf("imported %d entries for %s", len(entries), client.Name)
	if skippedEntries > 0 {
		msg += fmt.Sprintf(" (%d duplicates skipped)", skippedEntries)
	}
	return entity.ImportResult{
		Success:        true,
		InvoiceNumber:  inv.Number,
		Message:        msg,
		EntriesCreated: len(entries),
		TotalAmount:    total,
	}, nil
}

// buildEntries converts reconciled line items into time entries, dropping
// those the dedup gate recognizes.
func (o *Orchestrator) buildEntries(ctx context.Context, items []parse.ParsedLineItem, clientID int64) ([]entity.TimeEntry, int, error) {
	var entries []entity.TimeEntry
	skipped := 0

	for _, it := range items {
		var hours decimal.Decimal
		if it.IsHours {
			hours = it.Quantity
		}

		dup, err := o.gate.EntryExists(ctx, it.Date, hours, clientID)
		if err != nil {
			return nil, 0, err
		}
		if dup {
			skipped++
			continue
		}

		entry := entity.TimeEntry{
			ClientID:     clientID,
			Date:         it.Date,
			Description:  it.Description,
			Hours:        hours,
			Rate:         it.Rate,
			TravelKm:     it.TravelKm,
			TravelAmount: it.TravelAmount,
			Standby:      it.IsStandby,
			DutyCode:     it.DutyCode,
		}
		if it.IsHours {
			entry.Amount = it.Total
		}
		entries = append(entries, entry)
	}

	return entries, skipped, nil
}

func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
