// Package fiscal talks to the tax authority. Issuance of lettered
// documents blocks on authorization: no authorization, no document.
package fiscal

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Authorizer requests fiscal authorization for a document. Implementations
// must be safe for concurrent use.
type Authorizer interface {
	Authorize(ctx context.Context, req Request) (*Authorization, error)
}

// TaxEntry is one tax-rate bucket of the document totals.
type TaxEntry struct {
	Rate   decimal.Decimal `json:"rate"`
	Base   decimal.Decimal `json:"base"`
	Amount decimal.Decimal `json:"amount"`
}

// AssociatedDocument references the original invoice a credit or debit
// note amends.
type AssociatedDocument struct {
	VoucherType int    `json:"voucher_type"`
	SalePoint   string `json:"sale_point"`
	Number      string `json:"number"`
}

// Request carries everything the authority needs to authorize a document.
type Request struct {
	BusinessTaxID string `json:"business_tax_id"`
	SalePoint     string `json:"sale_point"`
	VoucherType   int    `json:"voucher_type"`

	// Number is the locally reserved document number. Empty for credit
	// notes, where the authority assigns the number itself.
	Number string `json:"number,omitempty"`

	ClientTaxID *string   `json:"client_tax_id,omitempty"`
	IssueDate   time.Time `json:"issue_date"`

	NetAmount decimal.Decimal `json:"net_amount"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Total     decimal.Decimal `json:"total"`

	Taxes      []TaxEntry          `json:"taxes,omitempty"`
	Associated *AssociatedDocument `json:"associated,omitempty"`
}

// Authorization is the authority's acceptance of a document.
type Authorization struct {
	Code   string    `json:"code"`
	Expiry time.Time `json:"expiry"`

	// Number echoes the request number, or carries the authority-assigned
	// one when the request left it empty.
	Number string `json:"number"`
}
