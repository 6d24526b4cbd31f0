// Package settings defines the singleton application settings record.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/types"
)

// ErrInvalidCounter reports a stored lastInvoiceNumber that is not a number.
var ErrInvalidCounter = errors.New("settings: lastInvoiceNumber is not a number")

// Settings is the single configuration record persisted next to the data.
type Settings struct {
	TaxRate           types.Amount  `json:"taxRate"`
	Currency          string        `json:"currency"`
	Business          invoice.Party `json:"business"`
	Theme             string        `json:"theme"`
	LastInvoiceNumber int64         `json:"lastInvoiceNumber"`
}

// Defaults returns the fixed defaults every read is backfilled from.
func Defaults() Settings {
	return Settings{
		TaxRate:           types.NewAmountFromInt(25),
		Currency:          "€",
		Business:          invoice.Party{},
		Theme:             "light",
		LastInvoiceNumber: 0,
	}
}

// UnmarshalJSON decodes each field on its own: a field holding the wrong
// type keeps its current value instead of failing the whole record. The
// counter also accepts numeric strings and fractional numbers, truncated.
func (s *Settings) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	decodeField(fields, "taxRate", &s.TaxRate)
	decodeField(fields, "currency", &s.Currency)
	decodeField(fields, "business", &s.Business)
	decodeField(fields, "theme", &s.Theme)
	if raw, ok := fields["lastInvoiceNumber"]; ok {
		if n, err := parseCounter(raw); err == nil {
			s.LastInvoiceNumber = n
		}
	}
	return nil
}

func decodeField(fields map[string]json.RawMessage, key string, v any) {
	raw, ok := fields[key]
	if !ok || string(raw) == "null" {
		return
	}
	_ = json.Unmarshal(raw, v)
}

func parseCounter(raw json.RawMessage) (int64, error) {
	text := string(raw)
	var quoted string
	if err := json.Unmarshal(raw, &quoted); err == nil {
		text = quoted
	}
	d, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidCounter, raw)
	}
	return d.IntPart(), nil
}

// CheckCounter reports ErrInvalidCounter when the settings document data
// holds a lastInvoiceNumber that cannot be read as a number. A missing or
// null counter, or a document that is not an object, is not reported.
func CheckCounter(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil //nolint:nilerr // not an object; the record as a whole is unreadable
	}
	raw, ok := fields["lastInvoiceNumber"]
	if !ok || string(raw) == "null" {
		return nil
	}
	_, err := parseCounter(raw)
	return err
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	TaxRate           *types.Amount  `json:"taxRate,omitempty"`
	Currency          *string        `json:"currency,omitempty"`
	Business          *invoice.Party `json:"business,omitempty"`
	Theme             *string        `json:"theme,omitempty"`
	LastInvoiceNumber *int64         `json:"lastInvoiceNumber,omitempty"`
}

// Apply merges p over s. Business is replaced as a whole.
func (s *Settings) Apply(p Patch) {
	if p.TaxRate != nil {
		s.TaxRate = *p.TaxRate
	}
	if p.Currency != nil {
		s.Currency = *p.Currency
	}
	if p.Business != nil {
		s.Business = *p.Business
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.LastInvoiceNumber != nil {
		s.LastInvoiceNumber = *p.LastInvoiceNumber
	}
}

// FormatInvoiceNumber renders a counter value as a zero-padded invoice
// number: 7 becomes "0007".
func FormatInvoiceNumber(n int64) string {
	return fmt.Sprintf("%04d", n)
}

// Store persists the settings record.
type Store interface {
	// Read returns the stored settings backfilled with defaults.
	Read(ctx context.Context) (*Settings, error)
	// Write merges p over the stored settings and persists the result.
	Write(ctx context.Context, p Patch) (*Settings, error)
	// NextInvoiceNumber increments and persists LastInvoiceNumber and
	// returns it formatted with FormatInvoiceNumber.
	NextInvoiceNumber(ctx context.Context) (string, error)
}
