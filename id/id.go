// Package id derives the identifiers Folio uses to name records.
//
// Every record (invoice, client, profile) is keyed by a slug: a lowercase,
// hyphenated, filesystem-safe token derived from a human readable name such
// as an invoice number or a client name. When the name yields an empty slug a
// fallback token is generated instead. Fallback tokens are TypeID suffixes
// (UUIDv7-based), so they are K-sortable by creation time and slug-safe.
package id

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"go.jetify.com/typeid/v2"
)

// Prefix identifies the entity type a fallback token is generated for.
type Prefix string

// Prefix constants for all Folio record types.
const (
	PrefixInvoice Prefix = "invoice" // Invoice document
	PrefixClient  Prefix = "client"  // Billing client
	PrefixProfile Prefix = "profile" // Issuer profile
)

// Slugify lowercases text, turns whitespace runs into a single "-", drops
// every character outside [a-z0-9-], collapses repeated "-" and trims
// leading and trailing "-". Empty input yields an empty string.
func Slugify(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	lastDash := false
	for _, r := range strings.ToLower(text) {
		var c rune
		switch {
		case unicode.IsSpace(r), r == '-':
			c = '-'
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			c = r
		default:
			continue
		}

		if c == '-' {
			if lastDash {
				continue
			}
			lastDash = true
		} else {
			lastDash = false
		}
		b.WriteRune(c)
	}

	return strings.Trim(b.String(), "-")
}

// Fallback returns a fresh "<prefix>-<suffix>" token for records whose name
// does not produce a usable slug.
// It panics if prefix is not a valid TypeID prefix (programming error).
func Fallback(prefix Prefix) string {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", prefix, err))
	}

	suffix := strings.TrimPrefix(tid.String(), string(prefix)+"_")

	return string(prefix) + "-" + suffix
}

// FromText slugifies text, falling back to a generated token when the
// slug is empty.
func FromText(text string, prefix Prefix) string {
	if slug := Slugify(text); slug != "" {
		return slug
	}

	return Fallback(prefix)
}

// Valid reports whether s can be used as a record file name: it must be
// non-empty, contain no path separators and not be a relative path element.
func Valid(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	if strings.ContainsAny(s, "/\\\x00") {
		return false
	}

	return filepath.Base(s) == s
}
