package clients

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/australsoft/comercia/internal/shared"
)

type mockRepository struct {
	clients map[uuid.UUID]Client
}

func newMockRepository() *mockRepository {
	return &mockRepository{clients: make(map[uuid.UUID]Client)}
}

func (m *mockRepository) Create(_ context.Context, c Client) error {
	m.clients[c.ID] = c
	return nil
}

func (m *mockRepository) Get(_ context.Context, businessID, id uuid.UUID) (*Client, error) {
	c, ok := m.clients[id]
	if !ok || c.BusinessID != businessID || c.DeletedAt != nil {
		return nil, fmt.Errorf("%w: client %s", shared.ErrNotFound, id)
	}
	copied := c
	return &copied, nil
}

func (m *mockRepository) List(_ context.Context, req ListClientsRequest) ([]Client, int, error) {
	var result []Client
	for _, c := range m.clients {
		if c.BusinessID != req.BusinessID || c.DeletedAt != nil {
			continue
		}
		result = append(result, c)
	}
	return result, len(result), nil
}

func (m *mockRepository) Update(_ context.Context, c Client) error {
	if _, ok := m.clients[c.ID]; !ok {
		return fmt.Errorf("%w: client %s", shared.ErrNotFound, c.ID)
	}
	m.clients[c.ID] = c
	return nil
}

func (m *mockRepository) SoftDelete(_ context.Context, businessID, id uuid.UUID) error {
	c, ok := m.clients[id]
	if !ok || c.BusinessID != businessID {
		return fmt.Errorf("%w: client %s", shared.ErrNotFound, id)
	}
	now := c.UpdatedAt
	c.DeletedAt = &now
	m.clients[id] = c
	return nil
}

func strPtr(s string) *string { return &s }

func TestCreateNormalizesTaxCondition(t *testing.T) {
	svc := NewService(newMockRepository())

	c, err := svc.Create(context.Background(), uuid.New(), CreateClientRequest{
		Name:         "Electro SRL",
		TaxID:        strPtr("30-11111111-1"),
		TaxCondition: "ri",
	})
	require.NoError(t, err)
	assert.Equal(t, TaxConditionRI, c.TaxCondition)
	assert.True(t, c.IsRegisteredTaxpayer())
}

func TestCreateRequiresTaxIDForRegisteredTaxpayer(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.Create(context.Background(), uuid.New(), CreateClientRequest{
		Name:         "Electro SRL",
		TaxCondition: TaxConditionRI,
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdateToRegisteredTaxpayerNeedsTaxID(t *testing.T) {
	svc := NewService(newMockRepository())
	businessID := uuid.New()

	c, err := svc.Create(context.Background(), businessID, CreateClientRequest{
		Name:         "Consumidor",
		TaxCondition: TaxConditionConsumer,
	})
	require.NoError(t, err)

	condition := TaxConditionRI
	_, err = svc.Update(context.Background(), businessID, c.ID, UpdateClientRequest{
		TaxCondition: &condition,
	})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Update(context.Background(), businessID, c.ID, UpdateClientRequest{
		TaxCondition: &condition,
		TaxID:        strPtr("30-22222222-2"),
	})
	require.NoError(t, err)
}

func TestConsumerClientIsNotRegisteredTaxpayer(t *testing.T) {
	svc := NewService(newMockRepository())

	c, err := svc.Create(context.Background(), uuid.New(), CreateClientRequest{
		Name:         "Juan Perez",
		TaxCondition: TaxConditionConsumer,
	})
	require.NoError(t, err)
	assert.False(t, c.IsRegisteredTaxpayer())
}
