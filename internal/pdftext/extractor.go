// Package pdftext extracts the embedded text layer from invoice PDFs.
// It performs no rasterization or OCR: a scanned document without a text
// layer comes back empty and is handled upstream.
package pdftext

import (
	"fmt"
	"os"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// Extractor reads UTF-8 text per page from a PDF document.
type Extractor struct {
	maxPages int
	logger   *zap.Logger
}

// NewExtractor creates an extractor that reads at most maxPages pages.
func NewExtractor(maxPages int, logger *zap.Logger) *Extractor {
	if maxPages <= 0 {
		maxPages = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{maxPages: maxPages, logger: logger}
}

// ExtractPages returns the text of the document's leading pages, one
// string per page. Pages whose text cannot be read are skipped rather
// than failing the document.
func (e *Extractor) ExtractPages(path string) ([]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("source document not accessible: %w", err)
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer doc.Close()

	n := doc.NumPage()
	if n > e.maxPages {
		n = e.maxPages
	}

	pages := make([]string, 0, n)
	for i := 0; i < n; i++ {
		text, err := doc.Text(i)
		if err != nil {
			e.logger.Warn("Failed to extract page text",
				zap.String("path", path),
				zap.Int("page", i),
				zap.Error(err))
			continue
		}
		pages = append(pages, text)
	}

	e.logger.Debug("Extracted document text",
		zap.String("path", path),
		zap.Int("pages", len(pages)))
	return pages, nil
}
