// Package folio keeps invoices, billing clients and issuer profiles as
// plain JSON records and renders invoices into printable documents.
//
// Folio is designed as a library. Import it into a desktop shell, a CLI or a
// service and back it with a store:
//
//	import (
//	    "github.com/xraph/folio"
//	    "github.com/xraph/folio/store/file"
//	)
//
//	f := folio.New(file.New(dataDir))
//	if err := f.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer f.Stop()
//
// # Records
//
// An invoice is one JSON file named after its id. The id is derived once,
// at the first save, from the invoice number:
//
//	inv, err := f.SaveInvoice(ctx, &folio.Invoice{
//	    InvoiceNumber: "INV-001",
//	    Items: []folio.Item{
//	        {Description: "Design", Quantity: folio.NewAmount(3), UnitPrice: folio.ParseAmount("0.10")},
//	    },
//	    TaxRate: folio.NewAmount(25),
//	})
//	// inv.ID == "inv-001"
//
// Clients and profiles share one record shape and live in one JSON array
// file per kind. Saving a record whose id already exists updates only the
// fields the save carries; PatchClient and PatchProfile take a contact.Patch
// for partial updates.
//
// # Totals
//
// Totals are derived, never trusted from the caller. Every line total is
// rounded to cents, then the subtotal, then the tax, then the total. A
// listing shows the same total the document prints.
//
// # Export
//
// ExportInvoice writes a PDF (or XLSX, by extension) next to the chosen
// path and renames it into place, so a failed export leaves nothing behind.
// Formats can be added with a plugin implementing plugin.InvoiceFormatter.
//
// # Bridge
//
// Package bridge exposes every operation by name with JSON payloads, for a
// UI process or the folio command (cmd/folio).
package folio
