package invoice

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xraph/folio/id"
)

// Matches reports whether s matches query on its invoice number, date or
// recipient name, ignoring case. An empty query matches everything.
func (s *Summary) Matches(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	for _, field := range []string{s.InvoiceNumber, s.Date, s.BillTo.Name} {
		if field != "" && strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Arrange filters summaries by query and orders them by date, newest first.
// Dates compare as plain strings; ties keep their input order.
func Arrange(summaries []*Summary, query string) []*Summary {
	result := make([]*Summary, 0, len(summaries))
	for _, s := range summaries {
		if s.Matches(query) {
			result = append(result, s)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date > result[j].Date
	})

	return result
}

// NewID derives the record id for a first save: the slug of the invoice
// number, or a fallback token when that slug is empty. If the candidate is
// taken by another record, "-2", "-3", ... is appended until it is free.
func NewID(invoiceNumber string, taken func(string) (bool, error)) (string, error) {
	base := id.FromText(invoiceNumber, id.PrefixInvoice)

	candidate := base
	for n := 2; ; n++ {
		exists, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}
