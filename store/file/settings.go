package file

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"

	"github.com/xraph/folio"
	"github.com/xraph/folio/settings"
)

// SettingsStore keeps the settings record in a single JSON object file.
type SettingsStore struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// NewSettingsStore creates a SettingsStore backed by the file at path.
func NewSettingsStore(path string, logger *slog.Logger) *SettingsStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsStore{path: path, logger: logger}
}

// Path returns the backing file path.
func (s *SettingsStore) Path() string { return s.path }

func (s *SettingsStore) ensureFile() error {
	if err := os.MkdirAll(filepath.Dir(s.path), dirPerm); err != nil {
		return fmt.Errorf("create directory for %s: %w", s.path, err)
	}
	ok, err := exists(s.path)
	if err != nil {
		return err
	}
	if !ok {
		return writeJSON(s.path, settings.Defaults())
	}
	return nil
}

// load returns the stored settings over the defaults. On any failure it logs
// and returns the defaults. The second result is settings.ErrInvalidCounter
// when the stored counter cannot be read; the other fields are still loaded.
func (s *SettingsStore) load() (*settings.Settings, error) {
	cur := settings.Defaults()

	var data []byte
	err := s.ensureFile()
	if err == nil {
		data, err = os.ReadFile(s.path)
	}
	if err == nil {
		err = json.Unmarshal(data, &cur)
	}
	if err != nil {
		s.logger.Error("folio/file: failed to read settings", "path", s.path, "error", err)
		d := settings.Defaults()
		return &d, nil
	}

	if err := settings.CheckCounter(data); err != nil {
		s.logger.Warn("folio/file: unreadable invoice counter", "path", s.path, "error", err)
		return &cur, err
	}
	return &cur, nil
}

// Read returns the stored settings. Missing fields hold their defaults; an
// unreadable file reads as the defaults.
func (s *SettingsStore) Read(_ context.Context) (*settings.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, _ := s.load()
	return cur, nil
}

// Write merges p over the stored settings and persists the result.
func (s *SettingsStore) Write(_ context.Context, p settings.Patch) (*settings.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, counterErr := s.load()
	if counterErr != nil && p.LastInvoiceNumber == nil {
		return nil, fmt.Errorf("%w: settings: %v", folio.ErrCorruptRecord, counterErr)
	}
	cur.Apply(p)
	if err := writeJSON(s.path, cur); err != nil {
		return nil, fmt.Errorf("folio/file: write settings: %w", err)
	}
	return cur, nil
}

// NextInvoiceNumber increments the stored counter and returns it formatted.
func (s *SettingsStore) NextInvoiceNumber(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, counterErr := s.load()
	if counterErr != nil {
		return "", fmt.Errorf("%w: settings: %v", folio.ErrCorruptRecord, counterErr)
	}
	cur.LastInvoiceNumber++
	if err := writeJSON(s.path, cur); err != nil {
		return "", fmt.Errorf("folio/file: write settings: %w", err)
	}
	return settings.FormatInvoiceNumber(cur.LastInvoiceNumber), nil
}
