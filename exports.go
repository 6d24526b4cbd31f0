package folio

import (
	"github.com/xraph/folio/contact"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/settings"
	"github.com/xraph/folio/types"
)

// Re-export common types for convenience so users don't have to import the
// record packages.

// Amount is re-exported from types package.
type Amount = types.Amount

// Invoice types are re-exported from invoice package.
type (
	Invoice = invoice.Invoice
	Item    = invoice.Item
	Party   = invoice.Party
	Summary = invoice.Summary
)

// Contact is re-exported from contact package.
type Contact = contact.Contact

// Settings types are re-exported from settings package.
type (
	Settings      = settings.Settings
	SettingsPatch = settings.Patch
)

// Re-export Amount constructors
var (
	NewAmount   = types.NewAmount
	ParseAmount = types.ParseAmount
	Zero        = types.Zero
)

// Re-export the identifier helpers
var Slugify = id.Slugify
