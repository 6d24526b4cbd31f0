package render

import (
	"context"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/xraph/folio/invoice"
)

// SheetName is the worksheet the XLSX formatter writes.
const SheetName = "Invoice"

// XLSX renders invoices as a one-sheet workbook laid out like the PDF.
type XLSX struct{}

// NewXLSX returns the XLSX formatter.
func NewXLSX() *XLSX { return &XLSX{} }

// Format implements Formatter.
func (*XLSX) Format() string { return FormatXLSX }

// Render implements Formatter.
func (*XLSX) Render(ctx context.Context, inv *invoice.Invoice, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	s, err := newSheetWriter(f, inv.Currency)
	if err != nil {
		return err
	}

	s.set("A1", "INVOICE", s.bold)
	s.set("C1", "Invoice #:", 0)
	s.set("D1", inv.InvoiceNumber, 0)
	s.set("C2", "Date:", 0)
	s.set("D2", inv.Date, 0)

	s.set("A4", "From", s.bold)
	s.set("C4", "Bill To", s.bold)
	s.set("A5", inv.From.Name, 0)
	s.set("A6", inv.From.Address, 0)
	s.set("C5", inv.BillTo.Name, 0)
	s.set("C6", inv.BillTo.Address, 0)

	row := 8
	for i, h := range []string{"Description", "Qty", "Unit Price", "Total"} {
		s.setAt(i+1, row, h, s.head)
	}
	for _, it := range inv.Items {
		row++
		s.setAt(1, row, it.Description, 0)
		s.setAt(2, row, it.Quantity.Float64(), s.number)
		s.setAt(3, row, it.UnitPrice.Float64(), s.money)
		s.setAt(4, row, it.LineTotal().Float64(), s.money)
	}

	row += 2
	s.setAt(3, row, "Subtotal", 0)
	s.setAt(4, row, inv.SubTotal.Float64(), s.money)
	row++
	s.setAt(3, row, "Tax ("+inv.TaxRate.String()+"%)", 0)
	s.setAt(4, row, inv.TaxAmount.Float64(), s.money)
	row++
	s.setAt(3, row, "Total", s.bold)
	s.setAt(4, row, inv.Total.Float64(), s.boldMoney)

	if inv.Notes != "" {
		row += 2
		s.setAt(1, row, "Notes / Terms", s.bold)
		s.setAt(1, row+1, inv.Notes, s.wrap)
	}

	if s.err != nil {
		return s.err
	}
	if err := f.SetColWidth(SheetName, "A", "A", 40); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "B", "D", 16); err != nil {
		return err
	}
	return f.Write(w)
}

// sheetWriter sets cells on SheetName and keeps the first error.
type sheetWriter struct {
	f   *excelize.File
	err error

	bold, head, number, money, boldMoney, wrap int
}

func newSheetWriter(f *excelize.File, currency string) (*sheetWriter, error) {
	moneyFmt := `"` + strings.ReplaceAll(currency, `"`, "") + `"0.00`

	s := &sheetWriter{f: f}
	styles := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&s.bold, &excelize.Style{Font: &excelize.Font{Bold: true}}},
		{&s.head, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"2196F3"}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		}},
		{&s.number, &excelize.Style{Alignment: &excelize.Alignment{Horizontal: "right"}}},
		{&s.money, &excelize.Style{CustomNumFmt: &moneyFmt}},
		{&s.boldMoney, &excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: &moneyFmt}},
		{&s.wrap, &excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}}},
	}
	for _, st := range styles {
		styleID, err := f.NewStyle(st.style)
		if err != nil {
			return nil, err
		}
		*st.dst = styleID
	}
	return s, nil
}

func (s *sheetWriter) set(cell string, value any, style int) {
	if s.err != nil {
		return
	}
	if s.err = s.f.SetCellValue(SheetName, cell, value); s.err != nil {
		return
	}
	if style != 0 {
		s.err = s.f.SetCellStyle(SheetName, cell, cell, style)
	}
}

func (s *sheetWriter) setAt(col, row int, value any, style int) {
	if s.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		s.err = err
		return
	}
	s.set(cell, value, style)
}
