// Package clients manages counterparties. A client's tax condition decides
// the letter of fiscal invoices issued against it.
package clients

import (
	"time"

	"github.com/google/uuid"
)

// Tax conditions recognized by the fiscal authority. TaxConditionRI is the
// only condition that receives letter A invoices.
const (
	TaxConditionRI          = "RI"
	TaxConditionMonotributo = "MONOTRIBUTO"
	TaxConditionExempt      = "EXENTO"
	TaxConditionConsumer    = "CF"
)

// Client is a counterparty documents are issued to.
type Client struct {
	ID         uuid.UUID `json:"id"`
	BusinessID uuid.UUID `json:"business_id"`

	Name         string  `json:"name"`
	TaxID        *string `json:"tax_id,omitempty"`
	TaxCondition string  `json:"tax_condition"`
	Address      *string `json:"address,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Email        *string `json:"email,omitempty"`
	Notes        *string `json:"notes,omitempty"`

	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// IsRegisteredTaxpayer reports whether fiscal invoices to this client use
// letter A.
func (c Client) IsRegisteredTaxpayer() bool {
	return c.TaxCondition == TaxConditionRI
}

// CreateClientRequest is the payload for registering a client.
type CreateClientRequest struct {
	Name         string  `json:"name" validate:"required,max=200"`
	TaxID        *string `json:"tax_id,omitempty" validate:"omitempty,max=20"`
	TaxCondition string  `json:"tax_condition" validate:"required,oneof=RI MONOTRIBUTO EXENTO CF"`
	Address      *string `json:"address,omitempty" validate:"omitempty,max=300"`
	Phone        *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
	Notes        *string `json:"notes,omitempty"`
}

// UpdateClientRequest carries partial updates; nil fields are untouched.
type UpdateClientRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,max=200"`
	TaxID        *string `json:"tax_id,omitempty" validate:"omitempty,max=20"`
	TaxCondition *string `json:"tax_condition,omitempty" validate:"omitempty,oneof=RI MONOTRIBUTO EXENTO CF"`
	Address      *string `json:"address,omitempty" validate:"omitempty,max=300"`
	Phone        *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
	Notes        *string `json:"notes,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

// ListClientsRequest filters the client listing.
type ListClientsRequest struct {
	BusinessID uuid.UUID
	Search     string
	IsActive   *bool
	Page       int
	PerPage    int
}
