// Package products manages the product catalog: codes, pricing chain
// inputs, derived prices, and stock levels.
package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is an inventory item. NetPrice and SalePrice are derived from the
// pricing chain and recomputed whenever any pricing input changes; NetPrice
// is the unit price copied into document lines.
type Product struct {
	ID         uuid.UUID  `json:"id"`
	BusinessID uuid.UUID  `json:"business_id"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	SupplierID *uuid.UUID `json:"supplier_id,omitempty"`

	Code         string  `json:"code"`
	SupplierCode *string `json:"supplier_code,omitempty"`
	Description  string  `json:"description"`
	Unit         string  `json:"unit"`

	ListPrice    decimal.Decimal `json:"list_price"`
	Discount1    decimal.Decimal `json:"discount_1"`
	Discount2    decimal.Decimal `json:"discount_2"`
	Discount3    decimal.Decimal `json:"discount_3"`
	ExtraCostPct decimal.Decimal `json:"extra_cost"`
	TaxRate      decimal.Decimal `json:"tax_rate"`

	NetPrice        decimal.Decimal `json:"net_price"`
	SalePrice       decimal.Decimal `json:"sale_price"`
	DiscountDisplay *string         `json:"discount_display,omitempty"`

	CurrentStock int64 `json:"current_stock"`
	MinimumStock int64 `json:"minimum_stock"`

	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// IsLowStock reports whether the product sits at or below its minimum.
func (p Product) IsLowStock() bool {
	return p.CurrentStock <= p.MinimumStock
}

// CreateProductRequest is the payload for registering a product.
type CreateProductRequest struct {
	Code         string          `json:"code" validate:"required,max=50"`
	SupplierCode *string         `json:"supplier_code,omitempty" validate:"omitempty,max=50"`
	Description  string          `json:"description" validate:"required,max=500"`
	Unit         string          `json:"unit" validate:"omitempty,max=20"`
	CategoryID   *uuid.UUID      `json:"category_id,omitempty"`
	SupplierID   *uuid.UUID      `json:"supplier_id,omitempty"`
	ListPrice    decimal.Decimal `json:"list_price"`
	Discount1    decimal.Decimal `json:"discount_1"`
	Discount2    decimal.Decimal `json:"discount_2"`
	Discount3    decimal.Decimal `json:"discount_3"`
	ExtraCostPct decimal.Decimal `json:"extra_cost"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	CurrentStock int64           `json:"current_stock"`
	MinimumStock int64           `json:"minimum_stock" validate:"gte=0"`
}

// UpdateProductRequest carries partial updates; nil fields are untouched.
type UpdateProductRequest struct {
	Description  *string          `json:"description,omitempty" validate:"omitempty,max=500"`
	Unit         *string          `json:"unit,omitempty" validate:"omitempty,max=20"`
	ListPrice    *decimal.Decimal `json:"list_price,omitempty"`
	Discount1    *decimal.Decimal `json:"discount_1,omitempty"`
	Discount2    *decimal.Decimal `json:"discount_2,omitempty"`
	Discount3    *decimal.Decimal `json:"discount_3,omitempty"`
	ExtraCostPct *decimal.Decimal `json:"extra_cost,omitempty"`
	TaxRate      *decimal.Decimal `json:"tax_rate,omitempty"`
	MinimumStock *int64           `json:"minimum_stock,omitempty" validate:"omitempty,gte=0"`
	IsActive     *bool            `json:"is_active,omitempty"`
}

// ListProductsRequest filters the catalog listing.
type ListProductsRequest struct {
	BusinessID uuid.UUID
	Search     string
	LowStock   bool
	IsActive   *bool
	Page       int
	PerPage    int
}
