package paymentmethods

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Service manages payment methods and keeps the active-set cache coherent
// with mutations.
type Service struct {
	repo  Repository
	cache *Cache
}

// NewService constructs a payment method Service.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Create registers a payment method.
func (s *Service) Create(ctx context.Context, businessID uuid.UUID, req CreatePaymentMethodRequest) (*PaymentMethod, error) {
	m := PaymentMethod{
		ID:                uuid.New(),
		BusinessID:        businessID,
		Code:              req.Code,
		Name:              req.Name,
		RequiresReference: req.RequiresReference,
		IsActive:          true,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("paymentmethods: create: %w", err)
	}
	if err := s.cache.Bump(ctx); err != nil {
		return nil, fmt.Errorf("paymentmethods: cache bump: %w", err)
	}
	return s.repo.Get(ctx, businessID, m.ID)
}

// Update patches a payment method and invalidates the active-set cache.
func (s *Service) Update(ctx context.Context, businessID, id uuid.UUID, req UpdatePaymentMethodRequest) (*PaymentMethod, error) {
	m, err := s.repo.Get(ctx, businessID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		m.Name = *req.Name
	}
	if req.RequiresReference != nil {
		m.RequiresReference = *req.RequiresReference
	}
	if req.IsActive != nil {
		m.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, *m); err != nil {
		return nil, fmt.Errorf("paymentmethods: update: %w", err)
	}
	if err := s.cache.Bump(ctx); err != nil {
		return nil, fmt.Errorf("paymentmethods: cache bump: %w", err)
	}
	return s.repo.Get(ctx, businessID, id)
}

// Get loads one payment method.
func (s *Service) Get(ctx context.Context, businessID, id uuid.UUID) (*PaymentMethod, error) {
	return s.repo.Get(ctx, businessID, id)
}

// List returns all methods, active or not, for configuration screens.
func (s *Service) List(ctx context.Context, businessID uuid.UUID) ([]PaymentMethod, error) {
	return s.repo.List(ctx, businessID)
}

// ListActive returns the methods sales may settle with, served from cache.
func (s *Service) ListActive(ctx context.Context, businessID uuid.UUID) ([]PaymentMethod, error) {
	return s.cache.FetchActive(ctx, businessID, func(ctx context.Context) ([]PaymentMethod, error) {
		return s.repo.ListActive(ctx, businessID)
	})
}
