// Package business holds the business record: fiscal identity, the default
// sale point, and the per-family document numbering counters.
package business

import (
	"time"

	"github.com/google/uuid"
)

// CounterFamily identifies one of the five locally numbered document
// families. Fiscal credit and debit notes have no local counter: their
// number is assigned by the fiscal authority.
type CounterFamily string

const (
	CounterQuotation    CounterFamily = "quotation"
	CounterDeliveryNote CounterFamily = "delivery_note"
	CounterInvoiceA     CounterFamily = "invoice_a"
	CounterInvoiceB     CounterFamily = "invoice_b"
	CounterInvoiceC     CounterFamily = "invoice_c"
)

// Column returns the businesses column storing the counter for the family.
// The closed switch keeps an unhandled family from silently defaulting.
func (f CounterFamily) Column() (string, bool) {
	switch f {
	case CounterQuotation:
		return "last_quotation_number", true
	case CounterDeliveryNote:
		return "last_delivery_note_number", true
	case CounterInvoiceA:
		return "last_invoice_a_number", true
	case CounterInvoiceB:
		return "last_invoice_b_number", true
	case CounterInvoiceC:
		return "last_invoice_c_number", true
	}
	return "", false
}

// Business is the commercial entity issuing documents. Counters are mutated
// only by number reservation inside the document-insert transaction and are
// never decremented.
type Business struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	TaxID        string    `json:"tax_id"`
	TaxCondition string    `json:"tax_condition"`
	SalePoint    string    `json:"sale_point"`

	LastQuotationNumber    int64 `json:"last_quotation_number"`
	LastDeliveryNoteNumber int64 `json:"last_delivery_note_number"`
	LastInvoiceANumber     int64 `json:"last_invoice_a_number"`
	LastInvoiceBNumber     int64 `json:"last_invoice_b_number"`
	LastInvoiceCNumber     int64 `json:"last_invoice_c_number"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
