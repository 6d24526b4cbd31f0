package render

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/types"
)

// Page geometry, in points on an A4 page.
const (
	pageMargin  = 40.0
	lineHeight  = 18.0
	textLeading = 14.0
	rowHeight   = 20.0

	metaX      = 400.0
	billToX    = 300.0
	partyWidth = 240.0

	qtyWidth   = 70.0
	moneyWidth = 90.0

	totalsX          = 340.0
	totalsLabelWidth = 160.0
	totalsValueWidth = 120.0

	notesWidth = 520.0

	fontFamily = "Helvetica"
)

// PDF renders invoices as single-column A4 documents.
type PDF struct {
	compress bool
}

// PDFOption configures the PDF formatter.
type PDFOption func(*PDF)

// WithCompression toggles deflate compression of page content streams.
// It is on by default.
func WithCompression(on bool) PDFOption {
	return func(p *PDF) { p.compress = on }
}

// NewPDF returns the PDF formatter.
func NewPDF(opts ...PDFOption) *PDF {
	p := &PDF{compress: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Format implements Formatter.
func (*PDF) Format() string { return FormatPDF }

// Render implements Formatter. Output is byte-stable for a given invoice.
func (f *PDF) Render(ctx context.Context, inv *invoice.Invoice, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	doc := gofpdf.New("P", "pt", "A4", "")
	doc.SetMargins(pageMargin, pageMargin, pageMargin)
	doc.SetAutoPageBreak(true, pageMargin)
	doc.SetCreationDate(documentDate(inv.Date))
	doc.SetCatalogSort(true)
	doc.SetCompression(f.compress)

	// Core fonts use cp1252; this maps UTF-8 input onto it so "€" survives.
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetTitle(tr("Invoice "+inv.InvoiceNumber), false)
	doc.AddPage()

	p := &pdfPage{doc: doc, tr: tr, inv: inv}
	p.header()
	p.parties()
	p.items()
	p.totals()
	p.notes()

	return doc.Output(w)
}

type pdfPage struct {
	doc *gofpdf.Fpdf
	tr  func(string) string
	inv *invoice.Invoice
	y   float64
}

func (p *pdfPage) money(a types.Amount) string {
	return p.tr(a.Format(p.inv.Currency))
}

func (p *pdfPage) header() {
	p.y = pageMargin

	p.doc.SetFont(fontFamily, "B", 24)
	p.doc.Text(pageMargin, p.y, "INVOICE")

	p.doc.SetFont(fontFamily, "", 12)
	p.doc.Text(metaX, p.y, p.tr("Invoice #: "+p.inv.InvoiceNumber))
	p.y += lineHeight
	p.doc.Text(metaX, p.y, p.tr("Date: "+p.inv.Date))
	p.y += lineHeight * 1.5
}

func (p *pdfPage) parties() {
	p.doc.SetFont(fontFamily, "B", 12)
	p.doc.Text(pageMargin, p.y, "From")
	p.doc.Text(billToX, p.y, "Bill To")
	p.y += lineHeight

	p.doc.SetFont(fontFamily, "", 12)
	fromEnd := p.block(p.inv.From, pageMargin, p.y)
	toEnd := p.block(p.inv.BillTo, billToX, p.y)

	p.y = max(p.y+lineHeight*3, fromEnd+lineHeight, toEnd+lineHeight)
}

// block writes a party's name and address wrapped to partyWidth, starting
// with the baseline at y. It returns the baseline of the last line.
func (p *pdfPage) block(party invoice.Party, x, y float64) float64 {
	var lines []string
	if party.Name != "" {
		lines = append(lines, party.Name)
	}
	if party.Address != "" {
		lines = append(lines, strings.Split(party.Address, "\n")...)
	}

	last := y - textLeading
	for _, line := range lines {
		for _, wrapped := range p.doc.SplitLines([]byte(p.tr(line)), partyWidth) {
			last += textLeading
			p.doc.Text(x, last, string(wrapped))
		}
	}
	return max(last, y)
}

func (p *pdfPage) columnWidths() (desc, qty, money float64) {
	pageWidth, _ := p.doc.GetPageSize()
	inner := pageWidth - 2*pageMargin
	return inner - qtyWidth - 2*moneyWidth, qtyWidth, moneyWidth
}

func (p *pdfPage) tableHeader() {
	descW, qtyW, moneyW := p.columnWidths()

	p.doc.SetFont(fontFamily, "B", 11)
	p.doc.SetFillColor(33, 150, 243)
	p.doc.SetTextColor(255, 255, 255)
	p.doc.SetX(pageMargin)
	p.doc.CellFormat(descW, rowHeight, "Description", "", 0, "L", true, 0, "")
	p.doc.CellFormat(qtyW, rowHeight, "Qty", "", 0, "R", true, 0, "")
	p.doc.CellFormat(moneyW, rowHeight, "Unit Price", "", 0, "R", true, 0, "")
	p.doc.CellFormat(moneyW, rowHeight, "Total", "", 1, "R", true, 0, "")

	p.doc.SetTextColor(0, 0, 0)
	p.doc.SetFont(fontFamily, "", 11)
}

func (p *pdfPage) items() {
	descW, qtyW, moneyW := p.columnWidths()
	_, pageHeight := p.doc.GetPageSize()

	p.doc.SetXY(pageMargin, p.y)
	p.tableHeader()

	for i, it := range p.inv.Items {
		desc := p.tr(it.Description)
		n := len(p.doc.SplitLines([]byte(desc), descW-2*p.doc.GetCellMargin()))
		if n < 1 {
			n = 1
		}
		h := float64(n) * rowHeight

		if p.doc.GetY()+h > pageHeight-pageMargin {
			p.doc.AddPage()
			p.doc.SetXY(pageMargin, pageMargin)
			p.tableHeader()
		}

		striped := i%2 == 1
		if striped {
			p.doc.SetFillColor(245, 245, 245)
		}

		x, y := pageMargin, p.doc.GetY()
		p.doc.SetXY(x, y)
		p.doc.MultiCell(descW, rowHeight, desc, "", "L", striped)
		p.doc.SetXY(x+descW, y)
		p.doc.CellFormat(qtyW, h, it.Quantity.String(), "", 0, "RT", striped, 0, "")
		p.doc.CellFormat(moneyW, h, p.money(it.UnitPrice), "", 0, "RT", striped, 0, "")
		p.doc.CellFormat(moneyW, h, p.money(it.LineTotal()), "", 0, "RT", striped, 0, "")
		p.doc.SetXY(pageMargin, y+h)
	}

	p.y = p.doc.GetY()
}

func (p *pdfPage) totals() {
	_, pageHeight := p.doc.GetPageSize()

	y := p.y + 20
	if y+3*rowHeight > pageHeight-pageMargin {
		p.doc.AddPage()
		y = pageMargin
	}

	rows := []struct {
		label, value string
		style        string
	}{
		{"Subtotal", p.money(p.inv.SubTotal), ""},
		{"Tax (" + p.inv.TaxRate.String() + "%)", p.money(p.inv.TaxAmount), ""},
		{"Total", p.money(p.inv.Total), "B"},
	}

	p.doc.SetDrawColor(200, 200, 200)
	p.doc.SetLineWidth(0.5)
	p.doc.SetXY(totalsX, y)
	for _, r := range rows {
		p.doc.SetFont(fontFamily, r.style, 11)
		p.doc.SetX(totalsX)
		p.doc.CellFormat(totalsLabelWidth, rowHeight, r.label, "1", 0, "L", false, 0, "")
		p.doc.CellFormat(totalsValueWidth, rowHeight, r.value, "1", 1, "R", false, 0, "")
	}

	p.y = p.doc.GetY()
}

func (p *pdfPage) notes() {
	if p.inv.Notes == "" {
		return
	}
	_, pageHeight := p.doc.GetPageSize()

	y := p.y + 24
	if y+2*lineHeight > pageHeight-pageMargin {
		p.doc.AddPage()
		y = pageMargin + lineHeight
	}

	p.doc.SetFont(fontFamily, "B", 12)
	p.doc.Text(pageMargin, y, "Notes / Terms")

	p.doc.SetFont(fontFamily, "", 12)
	p.doc.SetXY(pageMargin, y+6)
	p.doc.MultiCell(notesWidth, textLeading, p.tr(p.inv.Notes), "", "L", false)
}

// documentDate returns the invoice date as a timestamp. Unparseable dates
// fall back to the Unix epoch so output stays reproducible.
func documentDate(date string) time.Time {
	if t, err := time.Parse(invoice.DateLayout, date); err == nil {
		return t
	}
	return time.Unix(0, 0).UTC()
}
