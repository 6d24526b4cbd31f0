package invoice

import (
	"time"

	"github.com/xraph/folio/types"
)

// Totals holds the derived amounts of an invoice.
type Totals struct {
	SubTotal  types.Amount `json:"subTotal"`
	TaxAmount types.Amount `json:"taxAmount"`
	Total     types.Amount `json:"total"`
}

// LineTotal returns round2(quantity * unitPrice).
func (it Item) LineTotal() types.Amount {
	return it.Quantity.Mul(it.UnitPrice).Round2()
}

// ComputeTotals applies staged rounding: every line total is rounded, their
// sum is rounded again, tax is rounded from the rounded subtotal and the
// total is rounded from the two rounded parts. This can differ by a cent from
// rounding once at the end and must not be collapsed into a single pass.
func ComputeTotals(items []Item, taxRate types.Amount) Totals {
	sum := types.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal())
	}

	subTotal := sum.Round2()
	taxAmount := subTotal.Percent(taxRate).Round2()

	return Totals{
		SubTotal:  subTotal,
		TaxAmount: taxAmount,
		Total:     subTotal.Add(taxAmount).Round2(),
	}
}

// Recompute overwrites the derived totals from the current items.
func (inv *Invoice) Recompute() {
	t := ComputeTotals(inv.Items, inv.TaxRate)
	inv.SubTotal = t.SubTotal
	inv.TaxAmount = t.TaxAmount
	inv.Total = t.Total
}

// Normalize fills defaults and recomputes totals. It is applied whenever an
// invoice crosses the store boundary, on save and on load, so caller supplied
// totals are never trusted.
func Normalize(inv *Invoice, now time.Time) {
	if inv.Date == "" {
		inv.Date = Today(now)
	}
	if inv.Currency == "" {
		inv.Currency = DefaultCurrency
	}
	if inv.Status == "" {
		inv.Status = StatusOpen
	}
	if inv.Items == nil {
		inv.Items = []Item{}
	}
	inv.Recompute()
}

// Today formats now as an invoice date in UTC.
func Today(now time.Time) string {
	return now.UTC().Format(DateLayout)
}
