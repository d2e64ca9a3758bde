package products

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/australsoft/comercia/internal/shared"
)

type mockRepository struct {
	products map[uuid.UUID]Product
}

func newMockRepository() *mockRepository {
	return &mockRepository{products: make(map[uuid.UUID]Product)}
}

func (m *mockRepository) Create(_ context.Context, p Product) error {
	m.products[p.ID] = p
	return nil
}

func (m *mockRepository) Get(_ context.Context, businessID, id uuid.UUID) (*Product, error) {
	p, ok := m.products[id]
	if !ok || p.BusinessID != businessID || p.DeletedAt != nil {
		return nil, fmt.Errorf("%w: product %s", shared.ErrNotFound, id)
	}
	copied := p
	return &copied, nil
}

func (m *mockRepository) List(_ context.Context, req ListProductsRequest) ([]Product, int, error) {
	var result []Product
	for _, p := range m.products {
		if p.BusinessID != req.BusinessID || p.DeletedAt != nil {
			continue
		}
		if req.LowStock && !p.IsLowStock() {
			continue
		}
		result = append(result, p)
	}
	return result, len(result), nil
}

func (m *mockRepository) Update(_ context.Context, p Product) error {
	if _, ok := m.products[p.ID]; !ok {
		return fmt.Errorf("%w: product %s", shared.ErrNotFound, p.ID)
	}
	m.products[p.ID] = p
	return nil
}

func (m *mockRepository) SetStock(_ context.Context, businessID, id uuid.UUID, stock int64) error {
	p, ok := m.products[id]
	if !ok || p.BusinessID != businessID {
		return fmt.Errorf("%w: product %s", shared.ErrNotFound, id)
	}
	p.CurrentStock = stock
	m.products[id] = p
	return nil
}

func (m *mockRepository) SoftDelete(_ context.Context, businessID, id uuid.UUID) error {
	p, ok := m.products[id]
	if !ok || p.BusinessID != businessID {
		return fmt.Errorf("%w: product %s", shared.ErrNotFound, id)
	}
	now := p.UpdatedAt
	p.DeletedAt = &now
	m.products[id] = p
	return nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCreateComputesDerivedPrices(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	businessID := uuid.New()

	p, err := svc.Create(context.Background(), businessID, CreateProductRequest{
		Code:        "CAB-001",
		Description: "Cable unipolar 2.5mm",
		ListPrice:   dec("1000"),
		Discount1:   dec("10"),
		Discount2:   dec("5"),
		TaxRate:     dec("21"),
	})
	require.NoError(t, err)

	assert.True(t, p.NetPrice.Equal(dec("855.00")), "net price %s", p.NetPrice)
	assert.True(t, p.SalePrice.Equal(dec("1034.55")), "sale price %s", p.SalePrice)
	require.NotNil(t, p.DiscountDisplay)
	assert.Equal(t, "10+5", *p.DiscountDisplay)
	assert.Equal(t, "unit", p.Unit)
	assert.True(t, p.IsActive)
}

func TestCreateRejectsNegativeDiscount(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.Create(context.Background(), uuid.New(), CreateProductRequest{
		Code:        "X",
		Description: "broken",
		ListPrice:   dec("100"),
		Discount1:   dec("-5"),
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdateRecomputesPricesOnlyWhenInputChanges(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	businessID := uuid.New()

	p, err := svc.Create(context.Background(), businessID, CreateProductRequest{
		Code:        "CAB-001",
		Description: "Cable",
		ListPrice:   dec("1000"),
		TaxRate:     dec("21"),
	})
	require.NoError(t, err)

	newDesc := "Cable unipolar"
	updated, err := svc.Update(context.Background(), businessID, p.ID, UpdateProductRequest{
		Description: &newDesc,
	})
	require.NoError(t, err)
	assert.Equal(t, "Cable unipolar", updated.Description)
	assert.True(t, updated.NetPrice.Equal(p.NetPrice))

	newList := dec("2000")
	updated, err = svc.Update(context.Background(), businessID, p.ID, UpdateProductRequest{
		ListPrice: &newList,
	})
	require.NoError(t, err)
	assert.True(t, updated.NetPrice.Equal(dec("2000.00")), "net price %s", updated.NetPrice)
	assert.True(t, updated.SalePrice.Equal(dec("2420.00")), "sale price %s", updated.SalePrice)
}

func TestUpdateClearsDiscountDisplayWhenDiscountsRemoved(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	businessID := uuid.New()

	p, err := svc.Create(context.Background(), businessID, CreateProductRequest{
		Code:        "CAB-001",
		Description: "Cable",
		ListPrice:   dec("1000"),
		Discount1:   dec("10"),
	})
	require.NoError(t, err)
	require.NotNil(t, p.DiscountDisplay)

	zero := decimal.Zero
	updated, err := svc.Update(context.Background(), businessID, p.ID, UpdateProductRequest{
		Discount1: &zero,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.DiscountDisplay)
}

func TestAdjustStockClampsAtZero(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	businessID := uuid.New()

	p, err := svc.Create(context.Background(), businessID, CreateProductRequest{
		Code:         "CAB-001",
		Description:  "Cable",
		ListPrice:    dec("100"),
		CurrentStock: 5,
	})
	require.NoError(t, err)

	updated, err := svc.AdjustStock(context.Background(), businessID, p.ID, -3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.CurrentStock)

	updated, err = svc.AdjustStock(context.Background(), businessID, p.ID, -10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated.CurrentStock)
}

func TestGetScopesByBusiness(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	p, err := svc.Create(context.Background(), uuid.New(), CreateProductRequest{
		Code:        "CAB-001",
		Description: "Cable",
		ListPrice:   dec("100"),
	})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), uuid.New(), p.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
