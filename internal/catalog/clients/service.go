package clients

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/australsoft/comercia/internal/shared"
)

// Service applies counterparty rules. Tax condition values are normalized
// to upper case so the invoice letter decision never depends on input casing.
type Service struct {
	repo Repository
}

// NewService constructs a client Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a client. Registered taxpayers must carry a tax id.
func (s *Service) Create(ctx context.Context, businessID uuid.UUID, req CreateClientRequest) (*Client, error) {
	condition := strings.ToUpper(req.TaxCondition)
	if condition == TaxConditionRI && (req.TaxID == nil || *req.TaxID == "") {
		return nil, fmt.Errorf("%w: registered taxpayers require a tax id", shared.ErrValidation)
	}

	c := Client{
		ID:           uuid.New(),
		BusinessID:   businessID,
		Name:         req.Name,
		TaxID:        req.TaxID,
		TaxCondition: condition,
		Address:      req.Address,
		Phone:        req.Phone,
		Email:        req.Email,
		Notes:        req.Notes,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("clients: create: %w", err)
	}
	return s.repo.Get(ctx, businessID, c.ID)
}

// Update patches a client.
func (s *Service) Update(ctx context.Context, businessID, id uuid.UUID, req UpdateClientRequest) (*Client, error) {
	c, err := s.repo.Get(ctx, businessID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.TaxID != nil {
		c.TaxID = req.TaxID
	}
	if req.TaxCondition != nil {
		c.TaxCondition = strings.ToUpper(*req.TaxCondition)
	}
	if req.Address != nil {
		c.Address = req.Address
	}
	if req.Phone != nil {
		c.Phone = req.Phone
	}
	if req.Email != nil {
		c.Email = req.Email
	}
	if req.Notes != nil {
		c.Notes = req.Notes
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	if c.TaxCondition == TaxConditionRI && (c.TaxID == nil || *c.TaxID == "") {
		return nil, fmt.Errorf("%w: registered taxpayers require a tax id", shared.ErrValidation)
	}

	if err := s.repo.Update(ctx, *c); err != nil {
		return nil, fmt.Errorf("clients: update: %w", err)
	}
	return s.repo.Get(ctx, businessID, id)
}

// Get loads one client.
func (s *Service) Get(ctx context.Context, businessID, id uuid.UUID) (*Client, error) {
	return s.repo.Get(ctx, businessID, id)
}

// List returns a filtered client page with the total match count.
func (s *Service) List(ctx context.Context, req ListClientsRequest) ([]Client, int, error) {
	return s.repo.List(ctx, req)
}

// SoftDelete hides a client without breaking document references.
func (s *Service) SoftDelete(ctx context.Context, businessID, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, businessID, id)
}
