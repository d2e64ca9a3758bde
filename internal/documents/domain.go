// Package documents issues commercial and fiscal documents: quotations,
// delivery notes, invoices and credit/debit notes. Issuing runs as one
// transaction covering number reservation, line math, stock movement,
// payment settlement, and the cash ledger entry.
package documents

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/australsoft/comercia/internal/business"
)

// Type identifies a document kind. Fiscal letters are part of the type,
// since letter A and letter B invoices number independently.
type Type string

const (
	TypeQuotation    Type = "QUOTATION"
	TypeDeliveryNote Type = "DELIVERY_NOTE"
	TypeInvoiceA     Type = "INVOICE_A"
	TypeInvoiceB     Type = "INVOICE_B"
	TypeInvoiceC     Type = "INVOICE_C"
	TypeCreditNoteA  Type = "CREDIT_NOTE_A"
	TypeCreditNoteB  Type = "CREDIT_NOTE_B"
	TypeCreditNoteC  Type = "CREDIT_NOTE_C"
	TypeDebitNoteA   Type = "DEBIT_NOTE_A"
	TypeDebitNoteB   Type = "DEBIT_NOTE_B"
	TypeDebitNoteC   Type = "DEBIT_NOTE_C"
)

// Valid reports whether t is a known document type.
func (t Type) Valid() bool {
	switch t {
	case TypeQuotation, TypeDeliveryNote,
		TypeInvoiceA, TypeInvoiceB, TypeInvoiceC,
		TypeCreditNoteA, TypeCreditNoteB, TypeCreditNoteC,
		TypeDebitNoteA, TypeDebitNoteB, TypeDebitNoteC:
		return true
	}
	return false
}

// NumberingFamily maps the type to its local counter. Credit and debit
// notes have none: the fiscal authority assigns their number.
func (t Type) NumberingFamily() (business.CounterFamily, bool) {
	switch t {
	case TypeQuotation:
		return business.CounterQuotation, true
	case TypeDeliveryNote:
		return business.CounterDeliveryNote, true
	case TypeInvoiceA:
		return business.CounterInvoiceA, true
	case TypeInvoiceB:
		return business.CounterInvoiceB, true
	case TypeInvoiceC:
		return business.CounterInvoiceC, true
	}
	return "", false
}

// IsFiscal reports whether the document requires authorization before it
// is committed.
func (t Type) IsFiscal() bool {
	switch t {
	case TypeInvoiceA, TypeInvoiceB, TypeInvoiceC,
		TypeCreditNoteA, TypeCreditNoteB, TypeCreditNoteC,
		TypeDebitNoteA, TypeDebitNoteB, TypeDebitNoteC:
		return true
	}
	return false
}

// IsInvoice reports whether the document is a sale invoice.
func (t Type) IsInvoice() bool {
	return t == TypeInvoiceA || t == TypeInvoiceB || t == TypeInvoiceC
}

// IsCreditNote reports whether the document reverses a prior invoice.
func (t Type) IsCreditNote() bool {
	return t == TypeCreditNoteA || t == TypeCreditNoteB || t == TypeCreditNoteC
}

// IsDebitNote reports whether the document adds charges to a prior invoice.
func (t Type) IsDebitNote() bool {
	return t == TypeDebitNoteA || t == TypeDebitNoteB || t == TypeDebitNoteC
}

// Letter returns the fiscal letter of the type, empty for non-lettered
// documents.
func (t Type) Letter() string {
	switch t {
	case TypeInvoiceA, TypeCreditNoteA, TypeDebitNoteA:
		return "A"
	case TypeInvoiceB, TypeCreditNoteB, TypeDebitNoteB:
		return "B"
	case TypeInvoiceC, TypeCreditNoteC, TypeDebitNoteC:
		return "C"
	}
	return ""
}

// StockDirection returns the sign applied to line quantities when the
// document moves stock. Only invoices and delivery notes consume goods;
// quotations reserve nothing, and credit and debit notes move money only.
// A returned item re-enters stock through a manual catalog adjustment.
func (t Type) StockDirection() int64 {
	if t.IsInvoice() || t == TypeDeliveryNote {
		return -1
	}
	return 0
}

// CreditNoteFor returns the credit note type matching an invoice letter.
func CreditNoteFor(invoice Type) (Type, bool) {
	switch invoice {
	case TypeInvoiceA:
		return TypeCreditNoteA, true
	case TypeInvoiceB:
		return TypeCreditNoteB, true
	case TypeInvoiceC:
		return TypeCreditNoteC, true
	}
	return "", false
}

// DebitNoteFor returns the debit note type matching an invoice letter.
func DebitNoteFor(invoice Type) (Type, bool) {
	switch invoice {
	case TypeInvoiceA:
		return TypeDebitNoteA, true
	case TypeInvoiceB:
		return TypeDebitNoteB, true
	case TypeInvoiceC:
		return TypeDebitNoteC, true
	}
	return "", false
}

// Status tracks the document lifecycle. Draft exists only as a schema
// default: every document this engine issues is confirmed in the issuing
// transaction. Cancelling hides a document without reversing ledger
// effects.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

// Document is an issued commercial document with its monetary totals.
// Subtotal, TaxAmount and Total always equal the sums over the lines;
// credit notes carry negated amounts.
type Document struct {
	ID         uuid.UUID `json:"id"`
	BusinessID uuid.UUID `json:"business_id"`
	ClientID   uuid.UUID `json:"client_id"`

	Type   Type   `json:"type"`
	Number string `json:"number"`
	Status Status `json:"status"`

	IssueDate time.Time `json:"issue_date"`

	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Total     decimal.Decimal `json:"total"`

	Notes *string `json:"notes,omitempty"`

	// Fiscal authorization, present once the authority accepted the
	// document.
	AuthorizationCode   *string    `json:"authorization_code,omitempty"`
	AuthorizationExpiry *time.Time `json:"authorization_expiry,omitempty"`

	// InvoicedDocumentID links a quotation to the single invoice that
	// consumed it.
	InvoicedDocumentID *uuid.UUID `json:"invoiced_document_id,omitempty"`
	// RelatedDocumentID links a credit note back to the invoice it
	// reverses.
	RelatedDocumentID *uuid.UUID `json:"related_document_id,omitempty"`

	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Deletion is an audit marker: stock, payments and cash movements
	// are never reversed by it.
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	DeletedBy      *uuid.UUID `json:"deleted_by,omitempty"`
	DeletionReason *string    `json:"deletion_reason,omitempty"`

	Lines    []Line    `json:"lines,omitempty"`
	Payments []Payment `json:"payments,omitempty"`
}

// Line is one document position. UnitPrice snapshots the product's net
// price at issue time; later catalog changes never touch issued documents.
type Line struct {
	ID         uuid.UUID `json:"id"`
	DocumentID uuid.UUID `json:"document_id"`
	ProductID  uuid.UUID `json:"product_id"`

	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
	TaxRate     decimal.Decimal `json:"tax_rate"`

	NetAmount decimal.Decimal `json:"net_amount"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Total     decimal.Decimal `json:"total"`

	Position int `json:"position"`
}

// Payment settles part of a document total against one method.
type Payment struct {
	ID              uuid.UUID `json:"id"`
	DocumentID      uuid.UUID `json:"document_id"`
	PaymentMethodID uuid.UUID `json:"payment_method_id"`

	MethodCode string          `json:"method_code"`
	Amount     decimal.Decimal `json:"amount"`
	Reference  *string         `json:"reference,omitempty"`
}
