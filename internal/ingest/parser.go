package ingest

// OrderRecord is the semi-structured order header a vendor parser extracts
// from one receipt. Every field is the raw extracted string; normalization
// happens downstream.
type OrderRecord struct {
	Vendor        string
	PurchaseOrder string
	Invoice       string
	InvoiceDate   string
	PaymentDate   string
	AccountNumber string
	Merchandise   string
	Shipping      string
	SalesTax      string
	Total         string
}

// LineRecord is one extracted receipt line, raw strings throughout.
type LineRecord struct {
	Line            string
	SKU             string
	MfgPart         string
	CountryOfOrigin string
	Description     string
	Ordered         string
	Shipped         string
	Balance         string
	UnitPrice       string
	LineTotal       string
}

// Parser extracts semi-structured records from one vendor's receipt layout.
// Implementations live outside this module and are injected; the pipeline
// only needs Matches to route a file and the two extraction calls.
type Parser interface {
	Vendor() string
	Matches(path string) bool
	ParseOrder(path string) (OrderRecord, error)
	ParseLineItems(path string) ([]LineRecord, error)
}
