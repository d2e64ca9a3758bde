package paymentmethods

import (
	"context"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/australsoft/comercia/internal/shared"
)

type mockRepository struct {
	methods         map[uuid.UUID]PaymentMethod
	listActiveCalls int
}

func newMockRepository() *mockRepository {
	return &mockRepository{methods: make(map[uuid.UUID]PaymentMethod)}
}

func (m *mockRepository) Create(_ context.Context, pm PaymentMethod) error {
	m.methods[pm.ID] = pm
	return nil
}

func (m *mockRepository) Get(_ context.Context, businessID, id uuid.UUID) (*PaymentMethod, error) {
	pm, ok := m.methods[id]
	if !ok || pm.BusinessID != businessID {
		return nil, fmt.Errorf("%w: payment method %s", shared.ErrNotFound, id)
	}
	copied := pm
	return &copied, nil
}

func (m *mockRepository) ListActive(_ context.Context, businessID uuid.UUID) ([]PaymentMethod, error) {
	m.listActiveCalls++
	var result []PaymentMethod
	for _, pm := range m.methods {
		if pm.BusinessID == businessID && pm.IsActive {
			result = append(result, pm)
		}
	}
	return result, nil
}

func (m *mockRepository) List(_ context.Context, businessID uuid.UUID) ([]PaymentMethod, error) {
	var result []PaymentMethod
	for _, pm := range m.methods {
		if pm.BusinessID == businessID {
			result = append(result, pm)
		}
	}
	return result, nil
}

func (m *mockRepository) Update(_ context.Context, pm PaymentMethod) error {
	if _, ok := m.methods[pm.ID]; !ok {
		return fmt.Errorf("%w: payment method %s", shared.ErrNotFound, pm.ID)
	}
	m.methods[pm.ID] = pm
	return nil
}

func newTestService(t *testing.T, repo Repository) (*Service, func()) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute)
	svc := NewService(repo, cache)
	return svc, func() {
		_ = client.Close()
		mr.Close()
	}
}

func TestListActiveCaches(t *testing.T) {
	repo := newMockRepository()
	svc, cleanup := newTestService(t, repo)
	defer cleanup()
	businessID := uuid.New()

	_, err := svc.Create(context.Background(), businessID, CreatePaymentMethodRequest{
		Code: CodeCash,
		Name: "Efectivo",
	})
	require.NoError(t, err)

	first, err := svc.ListActive(context.Background(), businessID)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.ListActive(context.Background(), businessID)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, 1, repo.listActiveCalls, "second read should come from cache")
}

func TestUpdateInvalidatesCache(t *testing.T) {
	repo := newMockRepository()
	svc, cleanup := newTestService(t, repo)
	defer cleanup()
	businessID := uuid.New()

	m, err := svc.Create(context.Background(), businessID, CreatePaymentMethodRequest{
		Code: CodeCard,
		Name: "Tarjeta",
	})
	require.NoError(t, err)

	active, err := svc.ListActive(context.Background(), businessID)
	require.NoError(t, err)
	require.Len(t, active, 1)

	inactive := false
	_, err = svc.Update(context.Background(), businessID, m.ID, UpdatePaymentMethodRequest{
		IsActive: &inactive,
	})
	require.NoError(t, err)

	active, err = svc.ListActive(context.Background(), businessID)
	require.NoError(t, err)
	assert.Empty(t, active, "deactivated method must not be served from cache")
}

func TestListActiveScopesByBusiness(t *testing.T) {
	repo := newMockRepository()
	svc, cleanup := newTestService(t, repo)
	defer cleanup()

	_, err := svc.Create(context.Background(), uuid.New(), CreatePaymentMethodRequest{
		Code: CodeCash,
		Name: "Efectivo",
	})
	require.NoError(t, err)

	active, err := svc.ListActive(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, active)
}
