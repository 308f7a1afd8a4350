// Package store persists customer records as one JSON file per account in a
// directory. The presence of a file is what makes a record exist.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-ports/stratocrm/internal/models"
)

const (
	recordExt  = ".json"
	tempPrefix = ".tmp-"
)

// ErrExists is returned by Insert when a record file for the account is
// already present.
var ErrExists = errors.New("record already exists")

// Store is a directory of customer record files keyed by account number.
type Store struct {
	dir string
}

// Open returns a Store rooted at dir, creating the directory if needed.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store.Open: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory holding the record files.
func (s *Store) Dir() string { return s.dir }

// Path returns the file path for accountNumber.
func (s *Store) Path(accountNumber string) string {
	return filepath.Join(s.dir, accountNumber+recordExt)
}

// NextAccountNumber returns the count of stored records plus one, zero-padded
// to models.AccountWidth digits.
//
// The number is only unused while nothing is deleted and no other writer
// creates records concurrently; Insert refuses to overwrite if it collides.
func (s *Store) NextAccountNumber() (string, error) {
	n, err := s.Count()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", models.AccountWidth, n+1), nil
}

// Count returns the number of record files in the store.
func (s *Store) Count() (int, error) {
	names, err := s.recordNames()
	if err != nil {
		return 0, err
	}
	return len(names), nil
}

// Save writes the full record, replacing any previous content atomically.
func (s *Store) Save(c *models.Customer) error {
	tmp, err := s.writeTemp(c)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, s.Path(c.AccountNumber)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("store.Save: %w", err)
	}
	return nil
}

// Insert writes a new record and fails with ErrExists instead of replacing
// an existing one.
func (s *Store) Insert(c *models.Customer) error {
	tmp, err := s.writeTemp(c)
	if err != nil {
		return err
	}
	defer os.Remove(tmp)

	if err := os.Link(tmp, s.Path(c.AccountNumber)); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("store.Insert %s: %w", c.AccountNumber, ErrExists)
		}
		return fmt.Errorf("store.Insert: %w", err)
	}
	return nil
}

// Load returns the record for accountNumber. found is false, with a nil
// error, when no such record exists.
func (s *Store) Load(accountNumber string) (c *models.Customer, found bool, err error) {
	if !validKey(accountNumber) {
		return nil, false, nil
	}

	data, err := os.ReadFile(s.Path(accountNumber))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store.Load: %w", err)
	}

	c, err = decode(data)
	if err != nil {
		return nil, false, fmt.Errorf("store.Load %s: %w", accountNumber, err)
	}
	return c, true, nil
}

// List returns every stored record ordered by account number.
func (s *Store) List() ([]*models.Customer, error) {
	names, err := s.recordNames()
	if err != nil {
		return nil, err
	}

	out := make([]*models.Customer, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return nil, fmt.Errorf("store.List: %w", err)
		}
		c, err := decode(data)
		if err != nil {
			return nil, fmt.Errorf("store.List %s: %w", name, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *Store) writeTemp(c *models.Customer) (string, error) {
	if !validKey(c.AccountNumber) {
		return "", fmt.Errorf("store: invalid account number %q", c.AccountNumber)
	}
	data, err := encode(c)
	if err != nil {
		return "", fmt.Errorf("store: encode: %w", err)
	}

	f, err := os.CreateTemp(s.dir, tempPrefix+c.AccountNumber+"-*")
	if err != nil {
		return "", fmt.Errorf("store: create temp: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return "", fmt.Errorf("store: write temp: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return "", fmt.Errorf("store: sync temp: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("store: close temp: %w", err)
	}
	return tmp, nil
}

// recordNames lists record file names, sorted, skipping temp and hidden files.
func (s *Store) recordNames() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("store: read dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, recordExt) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// validKey reports whether key can name a record file inside the store dir.
func validKey(key string) bool {
	if key == "" || key == "." || key == ".." || strings.HasPrefix(key, ".") {
		return false
	}
	return !strings.ContainsAny(key, `/\`) && filepath.Base(key) == key
}

func encode(c *models.Customer) ([]byte, error) {
	rec := *c
	if rec.Notes == nil {
		rec.Notes = make([]string, 0)
	}
	data, err := json.MarshalIndent(&rec, "", "    ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func decode(data []byte) (*models.Customer, error) {
	var c models.Customer
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if c.Notes == nil {
		c.Notes = make([]string, 0)
	}
	return &c, nil
}
