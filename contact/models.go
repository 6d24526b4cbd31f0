// Package contact defines the address-book records shared by billing
// clients and issuer profiles.
package contact

import (
	"context"
	"strings"

	"github.com/xraph/folio/id"
)

// Kind distinguishes the two contact collections.
type Kind string

const (
	KindClient  Kind = "client"
	KindProfile Kind = "profile"
)

// Prefix returns the fallback id prefix for the kind.
func (k Kind) Prefix() id.Prefix {
	if k == KindProfile {
		return id.PrefixProfile
	}
	return id.PrefixClient
}

// Contact is a client or profile record.
type Contact struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// ResolveID returns the record key for c: the slug of the explicit id, else
// of the name, else a fallback token.
func ResolveID(c *Contact, kind Kind) string {
	text := c.ID
	if text == "" {
		text = c.Name
	}
	return id.FromText(text, kind.Prefix())
}

// Patch is a partial contact. Nil fields are left as stored when the patch
// is saved over an existing record; on a new record they start empty.
type Patch struct {
	ID      *string `json:"id,omitempty"`
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Email   *string `json:"email,omitempty"`
	Address *string `json:"address,omitempty"`
}

// Patch returns a patch setting every field of c.
func (c *Contact) Patch() Patch {
	return Patch{
		ID:      &c.ID,
		Name:    &c.Name,
		Phone:   &c.Phone,
		Email:   &c.Email,
		Address: &c.Address,
	}
}

// Apply copies the set fields of p onto c. The id is left alone.
func (p Patch) Apply(c *Contact) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Address != nil {
		c.Address = *p.Address
	}
}

// Fields returns the set fields of p keyed by their JSON names, without the
// id.
func (p Patch) Fields() map[string]string {
	fields := make(map[string]string, 4)
	for key, v := range map[string]*string{
		"name":    p.Name,
		"phone":   p.Phone,
		"email":   p.Email,
		"address": p.Address,
	} {
		if v != nil {
			fields[key] = *v
		}
	}
	return fields
}

// ResolveID returns the record key p is saved under, following ResolveID.
func (p Patch) ResolveID(kind Kind) string {
	var c Contact
	if p.ID != nil {
		c.ID = *p.ID
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	return ResolveID(&c, kind)
}

// Matches reports whether query occurs in the name, email, phone or address,
// ignoring case. An empty query matches everything.
func (c *Contact) Matches(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	for _, field := range []string{c.Name, c.Email, c.Phone, c.Address} {
		if field != "" && strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Store persists one kind of contact.
type Store interface {
	List(ctx context.Context, query string) ([]*Contact, error)
	Save(ctx context.Context, p Patch) (*Contact, error)
	Delete(ctx context.Context, contactID string) error
}
