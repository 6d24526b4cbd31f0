package file

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"sync"
)

// Record is one element of a record file: an arbitrary JSON object.
type Record map[string]any

// KeyFunc extracts the identity of a record.
type KeyFunc func(Record) string

// IDKey reads the "id" field of a record.
func IDKey(r Record) string {
	s, _ := r["id"].(string)
	return s
}

// RecordStore keeps a keyed collection of records in a single JSON array
// file. The file and its directory are created with an empty array on first
// access.
//
// Reads fail soft: a missing, unreadable or corrupt file is logged and read
// as empty. Writes always surface their errors.
type RecordStore struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// NewRecordStore creates a RecordStore backed by the file at path.
func NewRecordStore(path string, logger *slog.Logger) *RecordStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordStore{path: path, logger: logger}
}

// Path returns the backing file path.
func (s *RecordStore) Path() string { return s.path }

func (s *RecordStore) ensureFile() error {
	if err := os.MkdirAll(filepath.Dir(s.path), dirPerm); err != nil {
		return fmt.Errorf("create directory for %s: %w", s.path, err)
	}
	ok, err := exists(s.path)
	if err != nil {
		return err
	}
	if !ok {
		return writeJSON(s.path, []Record{})
	}
	return nil
}

// ReadAll returns every record in file order.
func (s *RecordStore) ReadAll() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll()
}

func (s *RecordStore) readAll() []Record {
	if err := s.ensureFile(); err != nil {
		s.logger.Error("folio/file: failed to read store", "path", s.path, "error", err)
		return []Record{}
	}

	var items []any
	if err := readJSON(s.path, &items); err != nil {
		s.logger.Error("folio/file: failed to read store", "path", s.path, "error", err)
		return []Record{}
	}

	records := make([]Record, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			s.logger.Warn("folio/file: skipping non-object record", "path", s.path, "index", i)
			continue
		}
		records = append(records, Record(obj))
	}
	return records
}

// WriteAll replaces the file content with records.
func (s *RecordStore) WriteAll(records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeAll(records)
}

func (s *RecordStore) writeAll(records []Record) error {
	if err := s.ensureFile(); err != nil {
		return err
	}
	if records == nil {
		records = []Record{}
	}
	return writeJSON(s.path, records)
}

// Upsert stores rec. If a record with the same key exists, the fields of rec
// are merged over it (shallow: every top-level field of rec replaces the old
// value, fields rec does not carry are kept). Otherwise rec is appended.
// It returns the record as stored.
func (s *RecordStore) Upsert(rec Record, keyOf KeyFunc) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.readAll()
	key := keyOf(rec)

	stored := maps.Clone(rec)
	found := false
	for i, existing := range records {
		if keyOf(existing) != key {
			continue
		}
		merged := maps.Clone(existing)
		maps.Copy(merged, rec)
		records[i] = merged
		stored = merged
		found = true
		break
	}
	if !found {
		records = append(records, stored)
	}

	if err := s.writeAll(records); err != nil {
		return nil, err
	}
	return stored, nil
}

// DeleteByID removes every record whose key is recordID. Deleting a missing
// record is not an error.
func (s *RecordStore) DeleteByID(recordID string, keyOf KeyFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.readAll()
	next := make([]Record, 0, len(records))
	for _, r := range records {
		if keyOf(r) != recordID {
			next = append(next, r)
		}
	}
	return s.writeAll(next)
}
