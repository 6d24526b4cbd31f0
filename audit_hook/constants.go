package audithook

// Action constants for audit events.
const (
	// Invoice actions
	ActionInvoiceCreated      = "invoice.created"
	ActionInvoiceUpdated      = "invoice.updated"
	ActionInvoiceDeleted      = "invoice.deleted"
	ActionInvoiceDuplicated   = "invoice.duplicated"
	ActionInvoiceExported     = "invoice.exported"
	ActionInvoiceNumberIssued = "invoice.number_issued"

	// Contact actions
	ActionClientSaved    = "client.saved"
	ActionClientDeleted  = "client.deleted"
	ActionProfileSaved   = "profile.saved"
	ActionProfileDeleted = "profile.deleted"

	// Settings actions
	ActionSettingsSaved = "settings.saved"
)

// Resource constants for audit events.
const (
	ResourceInvoice  = "invoice"
	ResourceDocument = "document"
	ResourceClient   = "client"
	ResourceProfile  = "profile"
	ResourceSettings = "settings"
)

// Category constants for audit events.
const (
	CategoryBilling       = "billing"
	CategoryAddressBook   = "address_book"
	CategoryConfiguration = "configuration"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
