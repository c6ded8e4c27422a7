package importer

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rvberkel/waarneemadmin/internal/domain/entity"
)

// memStore is an in-memory Store for pipeline tests.
type memStore struct {
	clients    []entity.Client
	invoices   map[string]*entity.Invoice
	entries    []entity.TimeEntry
	nextID     int64
	failCreate bool
}

func newMemStore() *memStore {
	return &memStore{invoices: make(map[string]*entity.Invoice)}
}

func (s *memStore) addClient(c entity.Client) *entity.Client {
	s.nextID++
	c.ID = s.nextID
	s.clients = append(s.clients, c)
	return &s.clients[len(s.clients)-1]
}

func (s *memStore) FindClientByName(_ context.Context, name string) (*entity.Client, error) {
	for i := range s.clients {
		if s.clients[i].Name == name {
			return &s.clients[i], nil
		}
	}
	return nil, nil
}

func (s *memStore) ListClients(_ context.Context) ([]entity.Client, error) {
	out := make([]entity.Client, len(s.clients))
	copy(out, s.clients)
	return out, nil
}

func (s *memStore) CreateClient(_ context.Context, client *entity.Client) error {
	s.nextID++
	client.ID = s.nextID
	s.clients = append(s.clients, *client)
	return nil
}

func (s *memStore) FindInvoiceByNumber(_ context.Context, number string) (*entity.Invoice, error) {
	if inv, ok := s.invoices[number]; ok {
		return inv, nil
	}
	return nil, nil
}

func (s *memStore) CreateInvoiceWithEntries(_ context.Context, invoice *entity.Invoice, entries []entity.TimeEntry) error {
	if s.failCreate {
		return errors.New("database is locked")
	}
	s.nextID++
	invoice.ID = s.nextID
	invoice.CreatedAt = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	s.invoices[invoice.Number] = invoice
	for i := range entries {
		entries[i].InvoiceID = invoice.ID
		s.nextID++
		entries[i].ID = s.nextID
		s.entries = append(s.entries, entries[i])
	}
	return nil
}

func (s *memStore) FindEntryCandidates(_ context.Context, date time.Time, hours decimal.Decimal, clientID int64) ([]entity.TimeEntry, error) {
	var out []entity.TimeEntry
	for _, e := range s.entries {
		if e.ClientID == clientID && e.Date.Equal(date) && e.Hours.Equal(hours) {
			out = append(out, e)
		}
	}
	return out, nil
}

// fakeExtractor serves canned page text keyed by path.
type fakeExtractor struct {
	pages map[string][]string
}

func (f *fakeExtractor) ExtractPages(path string) ([]string, error) {
	pages, ok := f.pages[path]
	if !ok {
		return nil, errors.New("cannot open document")
	}
	return pages, nil
}

// fakeArchiver records calls and returns a deterministic archive path.
type fakeArchiver struct {
	stored []string
	err    error
	panics bool
}

func (f *fakeArchiver) Store(_ context.Context, invoiceNumber, sourcePath string) (string, error) {
	if f.panics {
		panic("archiver exploded")
	}
	if f.err != nil {
		return "", f.err
	}
	f.stored = append(f.stored, sourcePath)
	return "archive/" + invoiceNumber + ".pdf", nil
}

func pageLines(lines ...string) []string {
	return []string{strings.Join(lines, "\n")}
}
