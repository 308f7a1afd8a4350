// Package service implements the customer operations that wire together
// configuration, the record store, the search index, and the notifier.
package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-ports/stratocrm/internal/config"
	"github.com/go-ports/stratocrm/internal/errs"
	"github.com/go-ports/stratocrm/internal/index"
	"github.com/go-ports/stratocrm/internal/logger"
	"github.com/go-ports/stratocrm/internal/models"
	"github.com/go-ports/stratocrm/internal/notify"
	"github.com/go-ports/stratocrm/internal/store"
)

// Service orchestrates all customer operations.
type Service struct {
	Home       string
	RecordsDir string
	Config     *config.Config

	store    *store.Store
	index    *index.Index
	notifier notify.Sender
	log      *logger.Logger
}

// Option customises a Service built by New.
type Option func(*Service)

// WithLogger sets the diagnostics logger. The default discards output.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithConfig supplies an already loaded config instead of reading
// <home>/config.yaml.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) { s.Config = cfg }
}

// WithSender replaces the SMTP notifier built from Config.
func WithSender(sender notify.Sender) Option {
	return func(s *Service) { s.notifier = sender }
}

// New initialises a Service rooted at home.
// If home is empty it is resolved via config.GetHome.
func New(home string, opts ...Option) (*Service, error) {
	if home == "" {
		home = config.GetHome()
	}
	if err := os.MkdirAll(home, 0o755); err != nil {
		return nil, fmt.Errorf("service.New: create home: %w", err)
	}

	s := &Service{Home: home, log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.Config == nil {
		cfg, err := config.Load(filepath.Join(home, "config.yaml"))
		if err != nil {
			return nil, fmt.Errorf("service.New: load config: %w", err)
		}
		s.Config = cfg
	}

	st, err := store.Open(filepath.Join(home, "customers"))
	if err != nil {
		return nil, fmt.Errorf("service.New: open store: %w", err)
	}

	ix, err := index.Open(filepath.Join(home, "index.db"))
	if err != nil {
		return nil, fmt.Errorf("service.New: open index: %w", err)
	}

	s.RecordsDir = st.Dir()
	s.store = st
	s.index = ix
	if s.notifier == nil {
		s.notifier = notify.NewSMTP(s.Config.SMTP)
	}
	s.log = s.log.WithComponent("service")
	return s, nil
}

// Close releases all resources held by the service.
func (s *Service) Close() error {
	return s.index.Close()
}

// ---------------------------------------------------------------------------
// Create / Lookup / AddNote
// ---------------------------------------------------------------------------

// CreateCustomer validates the inputs, assigns the next account number and
// persists a record with no notes. It returns the new account number.
func (s *Service) CreateCustomer(name, email, phone string) (string, error) {
	name, email, phone = strings.TrimSpace(name), strings.TrimSpace(email), strings.TrimSpace(phone)

	var missing []string
	if name == "" {
		missing = append(missing, "name")
	}
	if email == "" {
		missing = append(missing, "email")
	}
	if phone == "" {
		missing = append(missing, "phone")
	}
	if len(missing) > 0 {
		return "", errs.NewValidation(missing...)
	}

	acct, err := s.store.NextAccountNumber()
	if err != nil {
		return "", &errs.StorageError{Op: "next account number", Err: err}
	}

	rec := models.NewCustomer(acct, name, email, phone)
	if err := s.store.Insert(rec); err != nil {
		if errors.Is(err, store.ErrExists) {
			s.log.Error().Str("account", acct).Msg("account number collision; store was modified concurrently or a record was deleted")
		}
		return "", &errs.StorageError{Op: "create", Err: err}
	}

	s.log.WithAccount(acct).Info().Msg("customer created")
	s.reindexOne(rec)
	return acct, nil
}

// LookupCustomer returns the stored record for accountNumber.
func (s *Service) LookupCustomer(accountNumber string) (*models.Customer, error) {
	accountNumber = strings.TrimSpace(accountNumber)
	if accountNumber == "" {
		return nil, errs.NewValidation("account number")
	}
	return s.load(accountNumber)
}

// AddNote appends note, exactly as given, to the record's notes and persists
// the record.
// The read-modify-write is not atomic against another writer of the same
// record.
func (s *Service) AddNote(accountNumber, note string) error {
	accountNumber = strings.TrimSpace(accountNumber)

	var missing []string
	if accountNumber == "" {
		missing = append(missing, "account number")
	}
	if models.Blank(note) {
		missing = append(missing, "note")
	}
	if len(missing) > 0 {
		return errs.NewValidation(missing...)
	}

	rec, err := s.load(accountNumber)
	if err != nil {
		return err
	}
	rec.AppendNote(note)
	if err := s.store.Save(rec); err != nil {
		return &errs.StorageError{Op: "save", Err: err}
	}

	s.log.WithAccount(accountNumber).Info().Int("notes", len(rec.Notes)).Msg("note appended")
	s.reindexOne(rec)
	return nil
}

func (s *Service) load(accountNumber string) (*models.Customer, error) {
	rec, found, err := s.store.Load(accountNumber)
	if err != nil {
		return nil, &errs.StorageError{Op: "load", Err: err}
	}
	if !found {
		return nil, &errs.NotFoundError{AccountNumber: accountNumber}
	}
	return rec, nil
}

// ---------------------------------------------------------------------------
// SendEmail
// ---------------------------------------------------------------------------

// SendEmail transmits msg through the configured notifier. Failures are
// reported once and not retried or queued.
func (s *Service) SendEmail(ctx context.Context, msg models.Email) error {
	if err := s.notifier.Send(ctx, msg); err != nil {
		var se *errs.SendError
		if errors.As(err, &se) {
			s.log.Warn().Err(se.Err).Str("to", msg.To).Msg("email send failed")
		}
		return err
	}
	s.log.Info().Str("to", msg.To).Msg("email sent")
	return nil
}

// ---------------------------------------------------------------------------
// List / Search / Reindex
// ---------------------------------------------------------------------------

// ListCustomers returns every stored record ordered by account number.
func (s *Service) ListCustomers() ([]*models.Customer, error) {
	recs, err := s.store.List()
	if err != nil {
		return nil, &errs.StorageError{Op: "list", Err: err}
	}
	return recs, nil
}

// SearchCustomers queries the search index.
func (s *Service) SearchCustomers(query string, limit int) ([]index.Result, error) {
	return s.index.Search(query, limit)
}

// Reindex rebuilds the search index from the record files and returns the
// number of records indexed. progress, when non-nil, is called once with the
// total before the rebuild starts.
func (s *Service) Reindex(progress func(total int)) (int, error) {
	recs, err := s.ListCustomers()
	if err != nil {
		return 0, err
	}
	if progress != nil {
		progress(len(recs))
	}
	if err := s.index.Rebuild(recs); err != nil {
		return 0, fmt.Errorf("Reindex: %w", err)
	}
	s.log.Info().Int("count", len(recs)).Msg("index rebuilt")
	return len(recs), nil
}

// reindexOne refreshes a single index row. Failures are logged only: the
// record file is authoritative and `crm reindex` repairs the index.
func (s *Service) reindexOne(rec *models.Customer) {
	if err := s.index.Upsert(rec); err != nil {
		s.log.WithAccount(rec.AccountNumber).Warn().Err(err).Msg("index update failed; run 'crm reindex'")
	}
}

// Status summarizes the record store and the derived search index.
type Status struct {
	Records int
	Indexed int
	// LastReindex is zero when the index was never rebuilt.
	LastReindex time.Time
	Recent      []index.Result
}

// Stale reports whether the index row count disagrees with the record files.
func (st *Status) Stale() bool { return st.Records != st.Indexed }

// Status reports record and index counts and up to recent of the most
// recently indexed customers.
func (s *Service) Status(recent int) (*Status, error) {
	n, err := s.store.Count()
	if err != nil {
		return nil, &errs.StorageError{Op: "count", Err: err}
	}
	indexed, err := s.index.Count()
	if err != nil {
		return nil, fmt.Errorf("Status: %w", err)
	}
	last, _, err := s.index.LastReindex()
	if err != nil {
		return nil, fmt.Errorf("Status: %w", err)
	}
	rows, err := s.index.Recent(recent)
	if err != nil {
		return nil, fmt.Errorf("Status: %w", err)
	}
	return &Status{Records: n, Indexed: indexed, LastReindex: last, Recent: rows}, nil
}
