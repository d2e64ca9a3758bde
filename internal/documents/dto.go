package documents

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateLineRequest is one requested document position. Pricing comes from
// the catalog at issue time; the caller only chooses quantity and discount.
type CreateLineRequest struct {
	ProductID   uuid.UUID       `json:"product_id" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
}

// CreatePaymentRequest is one requested settlement split.
type CreatePaymentRequest struct {
	PaymentMethodID uuid.UUID       `json:"payment_method_id" validate:"required"`
	Amount          decimal.Decimal `json:"amount"`
	Reference       *string         `json:"reference,omitempty"`
}

// CreateDocumentRequest is the payload for issuing a document.
type CreateDocumentRequest struct {
	Type     Type                   `json:"type" validate:"required"`
	ClientID uuid.UUID              `json:"client_id" validate:"required"`
	Lines    []CreateLineRequest    `json:"lines" validate:"required,min=1,dive"`
	Payments []CreatePaymentRequest `json:"payments" validate:"dive"`
	Notes    *string                `json:"notes,omitempty"`
}

// ConvertQuotationRequest optionally overrides the settlement when a
// quotation becomes an invoice.
type ConvertQuotationRequest struct {
	Payments []CreatePaymentRequest `json:"payments" validate:"dive"`
	Notes    *string                `json:"notes,omitempty"`
}

// CreditNoteLineRequest selects how much of one original line is returned.
type CreditNoteLineRequest struct {
	ProductID uuid.UUID       `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CreateCreditNoteRequest is the payload for reversing an invoice.
type CreateCreditNoteRequest struct {
	Reason string                  `json:"reason" validate:"required"`
	Lines  []CreditNoteLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// CreateDebitNoteRequest adds charges against an authorized invoice.
// Lines are priced from the current catalog, like a fresh sale.
type CreateDebitNoteRequest struct {
	Reason string              `json:"reason" validate:"required"`
	Lines  []CreateLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// SoftDeleteRequest records who removed the document and why.
type SoftDeleteRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// ListDocumentsRequest filters the document listing.
type ListDocumentsRequest struct {
	BusinessID uuid.UUID
	Type       *Type
	Status     *Status
	ClientID   *uuid.UUID
	Search     *string
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	PerPage    int
}
