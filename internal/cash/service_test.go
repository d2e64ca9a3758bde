package cash

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/australsoft/comercia/internal/shared"
)

type mockRepository struct {
	sessions  map[uuid.UUID]Session
	movements map[uuid.UUID][]Movement
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		sessions:  make(map[uuid.UUID]Session),
		movements: make(map[uuid.UUID][]Movement),
	}
}

func (m *mockRepository) Insert(_ context.Context, s Session) error {
	for _, existing := range m.sessions {
		if existing.BusinessID == s.BusinessID && existing.Status == SessionOpen {
			return fmt.Errorf("%w: a session is already open", shared.ErrConflict)
		}
	}
	m.sessions[s.ID] = s
	return nil
}

func (m *mockRepository) GetOpen(_ context.Context, businessID uuid.UUID) (*Session, error) {
	for _, s := range m.sessions {
		if s.BusinessID == businessID && s.Status == SessionOpen {
			copied := s
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("%w: no open cash session", shared.ErrNotFound)
}

func (m *mockRepository) Get(_ context.Context, businessID, id uuid.UUID) (*Session, error) {
	s, ok := m.sessions[id]
	if !ok || s.BusinessID != businessID {
		return nil, fmt.Errorf("%w: cash session %s", shared.ErrNotFound, id)
	}
	copied := s
	return &copied, nil
}

func (m *mockRepository) Close(_ context.Context, s Session) error {
	existing, ok := m.sessions[s.ID]
	if !ok || existing.Status != SessionOpen {
		return fmt.Errorf("%w: session %s is not open", shared.ErrConflict, s.ID)
	}
	m.sessions[s.ID] = s
	return nil
}

func (m *mockRepository) ListClosed(_ context.Context, businessID uuid.UUID, _, _ int) ([]Session, int, error) {
	var result []Session
	for _, s := range m.sessions {
		if s.BusinessID == businessID && s.Status == SessionClosed {
			result = append(result, s)
		}
	}
	return result, len(result), nil
}

func (m *mockRepository) InsertMovement(_ context.Context, mv Movement) error {
	m.movements[mv.SessionID] = append(m.movements[mv.SessionID], mv)
	return nil
}

func (m *mockRepository) ListMovements(_ context.Context, sessionID uuid.UUID) ([]Movement, error) {
	return m.movements[sessionID], nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func strPtr(s string) *string { return &s }


func addMovement(repo *mockRepository, sessionID, businessID uuid.UUID, kind MovementKind, method MovementMethod, amount string) {
	repo.movements[sessionID] = append(repo.movements[sessionID], Movement{
		ID: uuid.New(), SessionID: sessionID, BusinessID: businessID,
		Kind: kind, Method: method, Amount: dec(amount),
	})
}

func TestOpenRejectsSecondSession(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	businessID := uuid.New()
	actor := uuid.New()

	_, err := svc.Open(context.Background(), businessID, actor, OpenSessionRequest{OpeningAmount: dec("500")})
	require.NoError(t, err)

	_, err = svc.Open(context.Background(), businessID, actor, OpenSessionRequest{OpeningAmount: dec("100")})
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestOpenReportsExpiredSessionDistinctly(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	businessID := uuid.New()
	actor := uuid.New()

	session, err := svc.Open(context.Background(), businessID, actor, OpenSessionRequest{OpeningAmount: dec("500")})
	require.NoError(t, err)

	stale := repo.sessions[session.ID]
	stale.OpenedAt = time.Now().Add(-25 * time.Hour)
	repo.sessions[session.ID] = stale

	_, err = svc.Open(context.Background(), businessID, actor, OpenSessionRequest{OpeningAmount: dec("100")})
	require.ErrorIs(t, err, shared.ErrConflict)
	assert.Contains(t, err.Error(), "expired")
}

type failingRepository struct {
	*mockRepository
	getOpenErr error
}

func (f *failingRepository) GetOpen(ctx context.Context, businessID uuid.UUID) (*Session, error) {
	if f.getOpenErr != nil {
		return nil, f.getOpenErr
	}
	return f.mockRepository.GetOpen(ctx, businessID)
}

func TestOpenPropagatesRepositoryErrors(t *testing.T) {
	repo := &failingRepository{
		mockRepository: newMockRepository(),
		getOpenErr:     fmt.Errorf("%w: connection reset", shared.ErrUpstream),
	}
	svc := NewService(repo)

	_, err := svc.Open(context.Background(), uuid.New(), uuid.New(), OpenSessionRequest{OpeningAmount: dec("100")})
	require.ErrorIs(t, err, shared.ErrUpstream, "a transient failure must not look like no open session")
}

func TestSessionExpiresAfterLifetime(t *testing.T) {
	opened := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	s := Session{Status: SessionOpen, OpenedAt: opened}

	assert.False(t, s.IsExpired(opened.Add(23*time.Hour)))
	assert.False(t, s.IsExpired(opened.Add(24*time.Hour)), "the 24h instant itself is still valid")
	assert.True(t, s.IsExpired(opened.Add(24*time.Hour+time.Second)))
	assert.True(t, s.IsExpired(opened.Add(25*time.Hour)))
}

func TestCloseComputesDifferenceAndDemandsReason(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	businessID := uuid.New()
	actor := uuid.New()

	session, err := svc.Open(context.Background(), businessID, actor, OpenSessionRequest{OpeningAmount: dec("500")})
	require.NoError(t, err)

	addMovement(repo, session.ID, businessID, MovementSale, MethodCash, "1000")
	addMovement(repo, session.ID, businessID, MovementExpense, MethodCash, "200")
	// expected cash: 500 + 1000 - 200 = 1300

	_, err = svc.Close(context.Background(), businessID, actor, CloseSessionRequest{
		CountedAmount: dec("1250"),
	})
	require.ErrorIs(t, err, shared.ErrValidation)

	view, err := svc.Close(context.Background(), businessID, actor, CloseSessionRequest{
		CountedAmount: dec("1250"),
		Reason:        strPtr("missing change"),
	})
	require.NoError(t, err)

	assert.Equal(t, SessionClosed, view.Session.Status)
	require.NotNil(t, view.Session.Difference)
	assert.True(t, view.Session.Difference.Equal(dec("-50")), "difference %s", view.Session.Difference)
	require.NotNil(t, view.Session.ExpectedCash)
	assert.True(t, view.Session.ExpectedCash.Equal(dec("1300")))
}

func TestCloseExactCountNeedsNoReason(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	businessID := uuid.New()
	actor := uuid.New()

	session, err := svc.Open(context.Background(), businessID, actor, OpenSessionRequest{OpeningAmount: dec("500")})
	require.NoError(t, err)

	addMovement(repo, session.ID, businessID, MovementSale, MethodCash, "1000")

	view, err := svc.Close(context.Background(), businessID, actor, CloseSessionRequest{
		CountedAmount: dec("1500"),
	})
	require.NoError(t, err)
	assert.True(t, view.Session.Difference.IsZero())
}

func TestBuildSummaryGroupsByMethod(t *testing.T) {
	businessID := uuid.New()
	session := Session{ID: uuid.New(), BusinessID: businessID, OpeningAmount: dec("500")}

	movements := []Movement{
		{Kind: MovementSale, Method: MethodCash, Amount: dec("1000")},
		{Kind: MovementSale, Method: MethodCard, Amount: dec("1210")},
		{Kind: MovementCollection, Method: MethodCash, Amount: dec("300")},
		{Kind: MovementIncome, Method: MethodCash, Amount: dec("50")},
		{Kind: MovementExpense, Method: MethodCash, Amount: dec("150")},
	}

	summary := BuildSummary(session, movements)

	assert.True(t, summary.TotalSales.Equal(dec("2210")), "total sales %s", summary.TotalSales)
	// cash net: 1000 + 300 + 50 - 150 = 1200; card net: 1210
	assert.True(t, summary.TotalNet.Equal(dec("2410")), "total net %s", summary.TotalNet)
	assert.True(t, summary.ExpectedCash.Equal(dec("1700")), "expected cash %s", summary.ExpectedCash)

	require.Len(t, summary.ByMethod, 2)
	assert.Equal(t, MethodCash, summary.ByMethod[0].Method)
	assert.True(t, summary.ByMethod[0].Net.Equal(dec("1200")))
	assert.Equal(t, MethodCard, summary.ByMethod[1].Method)
	assert.True(t, summary.ByMethod[1].Net.Equal(dec("1210")))
}

func TestRecordMovementOnlyManualKinds(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	businessID := uuid.New()
	actor := uuid.New()

	_, err := svc.Open(context.Background(), businessID, actor, OpenSessionRequest{OpeningAmount: dec("500")})
	require.NoError(t, err)

	_, err = svc.RecordMovement(context.Background(), businessID, actor, RecordMovementRequest{
		Kind: MovementSale, Amount: dec("100"), Description: "nope",
	})
	require.ErrorIs(t, err, shared.ErrValidation)

	mv, err := svc.RecordMovement(context.Background(), businessID, actor, RecordMovementRequest{
		Kind: MovementExpense, Amount: dec("100"), Description: "paper rolls",
	})
	require.NoError(t, err)
	assert.Equal(t, MethodCash, mv.Method, "manual movements default to cash")
}

func TestRecordMovementRejectsExpiredSession(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	businessID := uuid.New()
	actor := uuid.New()

	session, err := svc.Open(context.Background(), businessID, actor, OpenSessionRequest{OpeningAmount: dec("500")})
	require.NoError(t, err)

	stale := repo.sessions[session.ID]
	stale.OpenedAt = time.Now().Add(-25 * time.Hour)
	repo.sessions[session.ID] = stale

	_, err = svc.RecordMovement(context.Background(), businessID, actor, RecordMovementRequest{
		Kind: MovementIncome, Amount: dec("100"), Description: "change fund",
	})
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestMovementMethodFromCodeFallsBackToOther(t *testing.T) {
	assert.Equal(t, MethodCash, MovementMethodFromCode("CASH"))
	assert.Equal(t, MethodCard, MovementMethodFromCode("CARD"))
	assert.Equal(t, MethodOther, MovementMethodFromCode("CRYPTO"))
}
