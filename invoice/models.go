package invoice

import (
	"bytes"

	"github.com/goccy/go-json"

	"github.com/xraph/folio/types"
)

// Status is the payment state of an invoice.
type Status string

const (
	StatusOpen    Status = "open"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

// DefaultCurrency is the symbol used when an invoice carries none.
const DefaultCurrency = "$"

// DateLayout is the ISO-8601 calendar date layout used for Invoice.Date.
const DateLayout = "2006-01-02"

// Party is an address block: the issuer (From) or the recipient (BillTo).
type Party struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

// Invoice is a single invoice document.
//
// ID is the record key. It is empty until the first save and never stored
// in the record body: the record's file name carries it. SubTotal, TaxAmount
// and Total are derived; they are recomputed by Normalize and persisted only
// so listings can read them without touching the items.
type Invoice struct {
	ID            string       `json:"id,omitempty"`
	InvoiceNumber string       `json:"invoiceNumber"`
	Date          string       `json:"date"`
	From          Party        `json:"from"`
	BillTo        Party        `json:"billTo"`
	Items         []Item       `json:"items"`
	Notes         string       `json:"notes"`
	TaxRate       types.Amount `json:"taxRate"`
	Currency      string       `json:"currency"`
	Status        Status       `json:"status"`
	SubTotal      types.Amount `json:"subTotal"`
	TaxAmount     types.Amount `json:"taxAmount"`
	Total         types.Amount `json:"total"`
}

// Item is one invoice line. Quantity and UnitPrice that fail to parse are
// stored as zero. A line without a quantity key counts once.
type Item struct {
	Description string       `json:"description"`
	Quantity    types.Amount `json:"quantity"`
	UnitPrice   types.Amount `json:"unitPrice"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (it *Item) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	type plain Item
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	if _, ok := keys["quantity"]; !ok {
		p.Quantity = types.NewAmountFromInt(1)
	}

	*it = Item(p)
	return nil
}

// Summary is the projection of an invoice shown in listings.
type Summary struct {
	ID            string       `json:"id"`
	InvoiceNumber string       `json:"invoiceNumber"`
	Date          string       `json:"date"`
	BillTo        Party        `json:"billTo"`
	Total         types.Amount `json:"total"`
	Currency      string       `json:"currency"`
	Status        Status       `json:"status"`
}

// Summarize projects inv onto a Summary using its persisted totals.
func Summarize(inv *Invoice) *Summary {
	status := inv.Status
	if status == "" {
		status = StatusOpen
	}
	return &Summary{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		Date:          inv.Date,
		BillTo:        inv.BillTo,
		Total:         inv.Total,
		Currency:      inv.Currency,
		Status:        status,
	}
}

// DegradedSummary is listed in place of a record that could not be parsed.
func DegradedSummary(recordID string) *Summary {
	return &Summary{
		ID:            recordID,
		InvoiceNumber: recordID,
		Total:         types.Zero,
		Currency:      DefaultCurrency,
		Status:        StatusOpen,
	}
}

// Clone returns a deep copy of inv.
func (inv *Invoice) Clone() *Invoice {
	c := *inv
	if inv.Items != nil {
		c.Items = make([]Item, len(inv.Items))
		copy(c.Items, inv.Items)
	}
	return &c
}
