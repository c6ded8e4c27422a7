// Package storage keeps archived copies of imported source documents so
// the original file can be retrieved per invoice after import.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Archive stores content-addressed copies of source documents under an
// invoice-number-keyed path below a base directory.
type Archive struct {
	baseDir string
	logger  *zap.Logger
}

// NewArchive creates an archive rooted at baseDir.
func NewArchive(baseDir string, logger *zap.Logger) *Archive {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archive{baseDir: baseDir, logger: logger}
}

// Store copies the source document to
// <base>/<invoice-number>/<sha256-prefix><ext> and returns the stored
// path. Storing the same content twice is idempotent.
func (a *Archive) Store(ctx context.Context, invoiceNumber, sourcePath string) (string, error) {
	content, err := os.ReadFile(sourcePath)
	if err != nil {
		return "", fmt.Errorf("failed to read source document: %w", err)
	}

	sum := sha256.Sum256(content)
	name := hex.EncodeToString(sum[:])[:16] + strings.ToLower(filepath.Ext(sourcePath))
	fullPath := filepath.Join(a.baseDir, sanitizeKey(invoiceNumber), name)

	if err := a.validatePath(fullPath); err != nil {
		return "", err
	}

	if _, err := os.Stat(fullPath); err == nil {
		a.logger.Debug("Document already archived", zap.String("path", fullPath))
		return fullPath, nil
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}
	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write archive copy: %w", err)
	}

	a.logger.Debug("Document archived",
		zap.String("invoice_number", invoiceNumber),
		zap.String("path", fullPath),
		zap.Int("size", len(content)))
	return fullPath, nil
}

// sanitizeKey makes an invoice number safe as a directory name.
func sanitizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, key)
}

// validatePath checks that the resolved path stays inside the base dir.
func (a *Archive) validatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	absBase, err := filepath.Abs(a.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}
	if absPath != absBase && !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return fmt.Errorf("path escapes archive directory: %s", fullPath)
	}
	return nil
}
