// Package paymentmethods manages the tender types a business accepts and
// serves the active set through a Redis-backed cache, since every sale
// settlement validates its methods against it.
package paymentmethods

import (
	"time"

	"github.com/google/uuid"
)

// Well-known method codes. Cash movements group by these codes when a
// session summary is built; unknown codes fall into the OTHER bucket.
const (
	CodeCash     = "CASH"
	CodeCard     = "CARD"
	CodeTransfer = "TRANSFER"
	CodeCheck    = "CHECK"
	CodeOther    = "OTHER"
)

// PaymentMethod is a tender type. RequiresReference forces payments using
// the method to carry an external reference, such as a card voucher number.
type PaymentMethod struct {
	ID         uuid.UUID `json:"id"`
	BusinessID uuid.UUID `json:"business_id"`

	Code              string `json:"code"`
	Name              string `json:"name"`
	RequiresReference bool   `json:"requires_reference"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreatePaymentMethodRequest is the payload for registering a method.
type CreatePaymentMethodRequest struct {
	Code              string `json:"code" validate:"required,oneof=CASH CARD TRANSFER CHECK OTHER"`
	Name              string `json:"name" validate:"required,max=100"`
	RequiresReference bool   `json:"requires_reference"`
}

// UpdatePaymentMethodRequest carries partial updates; nil fields are untouched.
type UpdatePaymentMethodRequest struct {
	Name              *string `json:"name,omitempty" validate:"omitempty,max=100"`
	RequiresReference *bool   `json:"requires_reference,omitempty"`
	IsActive          *bool   `json:"is_active,omitempty"`
}
