package importer

import "errors"

// Per-document failure taxonomy. All of these are caught at the
// orchestrator boundary and converted into a failed ImportResult so a
// batch run keeps going; only directory-level I/O errors abort a batch.
var (
	// ErrUnreadableSource: the file could not be opened or decoded.
	ErrUnreadableSource = errors.New("source document could not be read")

	// ErrNoExtractableText: the document has no text layer (a scan
	// needing the separate OCR path).
	ErrNoExtractableText = errors.New("document has no extractable text layer")

	// ErrInvoiceNumberNotFound has no recoverable fallback: without a
	// number the record cannot be keyed or deduplicated.
	ErrInvoiceNumberNotFound = errors.New("invoice number not found in document")

	// ErrNoLineItems: the text was readable but no grammar recovered a
	// single billable row.
	ErrNoLineItems = errors.New("no billable line items recognized")

	// ErrNoClient: no client name could be recovered from the header.
	ErrNoClient = errors.New("client name not found in document")
)
