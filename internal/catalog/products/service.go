package products

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/australsoft/comercia/internal/pricing"
)

// Service applies catalog business rules: derived prices always follow the
// pricing chain, stock adjustments from the catalog side clamp at zero.
type Service struct {
	repo Repository
}

// NewService constructs a product Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a product with freshly computed prices.
func (s *Service) Create(ctx context.Context, businessID uuid.UUID, req CreateProductRequest) (*Product, error) {
	result, err := pricing.Calculate(pricing.Input{
		ListPrice:    req.ListPrice,
		Discount1:    req.Discount1,
		Discount2:    req.Discount2,
		Discount3:    req.Discount3,
		ExtraCostPct: req.ExtraCostPct,
		TaxRate:      req.TaxRate,
	})
	if err != nil {
		return nil, err
	}

	unit := req.Unit
	if unit == "" {
		unit = "unit"
	}

	p := Product{
		ID:           uuid.New(),
		BusinessID:   businessID,
		CategoryID:   req.CategoryID,
		SupplierID:   req.SupplierID,
		Code:         req.Code,
		SupplierCode: req.SupplierCode,
		Description:  req.Description,
		Unit:         unit,
		ListPrice:    req.ListPrice,
		Discount1:    req.Discount1,
		Discount2:    req.Discount2,
		Discount3:    req.Discount3,
		ExtraCostPct: req.ExtraCostPct,
		TaxRate:      req.TaxRate,
		NetPrice:     result.NetPrice,
		SalePrice:    result.SalePrice,
		CurrentStock: req.CurrentStock,
		MinimumStock: req.MinimumStock,
		IsActive:     true,
	}
	if result.DiscountLabel != "" {
		label := result.DiscountLabel
		p.DiscountDisplay = &label
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("products: create: %w", err)
	}
	return s.repo.Get(ctx, businessID, p.ID)
}

// Update patches a product and recomputes prices when a pricing input changed.
func (s *Service) Update(ctx context.Context, businessID, id uuid.UUID, req UpdateProductRequest) (*Product, error) {
	p, err := s.repo.Get(ctx, businessID, id)
	if err != nil {
		return nil, err
	}

	priceInputChanged := false
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Unit != nil {
		p.Unit = *req.Unit
	}
	if req.MinimumStock != nil {
		p.MinimumStock = *req.MinimumStock
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if req.ListPrice != nil {
		p.ListPrice = *req.ListPrice
		priceInputChanged = true
	}
	if req.Discount1 != nil {
		p.Discount1 = *req.Discount1
		priceInputChanged = true
	}
	if req.Discount2 != nil {
		p.Discount2 = *req.Discount2
		priceInputChanged = true
	}
	if req.Discount3 != nil {
		p.Discount3 = *req.Discount3
		priceInputChanged = true
	}
	if req.ExtraCostPct != nil {
		p.ExtraCostPct = *req.ExtraCostPct
		priceInputChanged = true
	}
	if req.TaxRate != nil {
		p.TaxRate = *req.TaxRate
		priceInputChanged = true
	}

	if priceInputChanged {
		result, err := pricing.Calculate(pricing.Input{
			ListPrice:    p.ListPrice,
			Discount1:    p.Discount1,
			Discount2:    p.Discount2,
			Discount3:    p.Discount3,
			ExtraCostPct: p.ExtraCostPct,
			TaxRate:      p.TaxRate,
		})
		if err != nil {
			return nil, err
		}
		p.NetPrice = result.NetPrice
		p.SalePrice = result.SalePrice
		p.DiscountDisplay = nil
		if result.DiscountLabel != "" {
			label := result.DiscountLabel
			p.DiscountDisplay = &label
		}
	}

	if err := s.repo.Update(ctx, *p); err != nil {
		return nil, fmt.Errorf("products: update: %w", err)
	}
	return s.repo.Get(ctx, businessID, id)
}

// Get loads one product.
func (s *Service) Get(ctx context.Context, businessID, id uuid.UUID) (*Product, error) {
	return s.repo.Get(ctx, businessID, id)
}

// List returns a filtered catalog page with the total match count.
func (s *Service) List(ctx context.Context, req ListProductsRequest) ([]Product, int, error) {
	return s.repo.List(ctx, req)
}

// SoftDelete hides a product from the catalog without destroying history.
func (s *Service) SoftDelete(ctx context.Context, businessID, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, businessID, id)
}

// AdjustStock applies a manual stock correction. Unlike the sales path,
// manual corrections clamp at zero.
func (s *Service) AdjustStock(ctx context.Context, businessID, id uuid.UUID, delta int64) (*Product, error) {
	p, err := s.repo.Get(ctx, businessID, id)
	if err != nil {
		return nil, err
	}
	next := p.CurrentStock + delta
	if next < 0 {
		next = 0
	}
	if err := s.repo.SetStock(ctx, businessID, id, next); err != nil {
		return nil, fmt.Errorf("products: adjust stock: %w", err)
	}
	return s.repo.Get(ctx, businessID, id)
}
