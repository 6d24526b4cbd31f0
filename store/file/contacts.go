package file

import (
	"context"
	"fmt"

	"github.com/xraph/folio/contact"
)

// ContactStore keeps one kind of contact in a record file.
type ContactStore struct {
	kind    contact.Kind
	records *RecordStore
}

// NewContactStore creates a ContactStore over records.
func NewContactStore(kind contact.Kind, records *RecordStore) *ContactStore {
	return &ContactStore{kind: kind, records: records}
}

// List returns the contacts matching query in file order.
func (s *ContactStore) List(_ context.Context, query string) ([]*contact.Contact, error) {
	records := s.records.ReadAll()
	result := make([]*contact.Contact, 0, len(records))
	for _, r := range records {
		c := toContact(r)
		if c.Matches(query) {
			result = append(result, c)
		}
	}
	return result, nil
}

// Save resolves the id of p and upserts it. Only the fields set in p are
// written; every other key of a stored record is kept.
func (s *ContactStore) Save(_ context.Context, p contact.Patch) (*contact.Contact, error) {
	rec := fromPatch(p)
	rec["id"] = p.ResolveID(s.kind)

	stored, err := s.records.Upsert(rec, IDKey)
	if err != nil {
		return nil, fmt.Errorf("folio/file: save %s: %w", s.kind, err)
	}
	return toContact(stored), nil
}

// Delete removes the contact with contactID. Missing ids are ignored.
func (s *ContactStore) Delete(_ context.Context, contactID string) error {
	if err := s.records.DeleteByID(contactID, IDKey); err != nil {
		return fmt.Errorf("folio/file: delete %s %q: %w", s.kind, contactID, err)
	}
	return nil
}

func fromPatch(p contact.Patch) Record {
	fields := p.Fields()
	rec := make(Record, len(fields)+1)
	for key, v := range fields {
		rec[key] = v
	}
	return rec
}

func toContact(r Record) *contact.Contact {
	return &contact.Contact{
		ID:      stringField(r, "id"),
		Name:    stringField(r, "name"),
		Phone:   stringField(r, "phone"),
		Email:   stringField(r, "email"),
		Address: stringField(r, "address"),
	}
}

// stringField reads key as text. Hand-edited files may hold numbers where
// text is expected (a phone number, say); those are printed.
func stringField(r Record, key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
