package cash

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/australsoft/comercia/internal/shared"
)

// Service manages the register lifecycle and the manual side of the
// ledger. Sales movements arrive through document issuance, not here.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs a cash Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// OpenSessionRequest is the payload for opening a register.
type OpenSessionRequest struct {
	OpeningAmount decimal.Decimal `json:"opening_amount"`
}

// CloseSessionRequest is the payload for closing a register. Reason is
// mandatory exactly when the counted drawer differs from expectation.
type CloseSessionRequest struct {
	CountedAmount decimal.Decimal `json:"counted_amount"`
	Reason        *string         `json:"reason,omitempty"`
}

// RecordMovementRequest is the payload for a manual ledger entry.
type RecordMovementRequest struct {
	Kind        MovementKind    `json:"kind" validate:"required"`
	Method      MovementMethod  `json:"method"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" validate:"required,max=300"`
}

// SessionView is a session together with its reconciliation summary.
type SessionView struct {
	Session   Session    `json:"session"`
	Summary   Summary    `json:"summary"`
	Movements []Movement `json:"movements,omitempty"`
}

// Open starts a register session. Only one session per business may be
// open; an expired one must still be closed before a new open succeeds.
func (s *Service) Open(ctx context.Context, businessID, actorID uuid.UUID, req OpenSessionRequest) (*Session, error) {
	if req.OpeningAmount.IsNegative() {
		return nil, fmt.Errorf("%w: opening amount cannot be negative", shared.ErrValidation)
	}

	existing, err := s.repo.GetOpen(ctx, businessID)
	switch {
	case err == nil && existing.IsExpired(s.now()):
		return nil, fmt.Errorf("%w: the previous session expired and must be closed first", shared.ErrConflict)
	case err == nil:
		return nil, fmt.Errorf("%w: a session is already open", shared.ErrConflict)
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	session := Session{
		ID:            uuid.New(),
		BusinessID:    businessID,
		Status:        SessionOpen,
		OpeningAmount: req.OpeningAmount,
		OpenedBy:      actorID,
		OpenedAt:      s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, session); err != nil {
		return nil, err
	}
	return s.repo.GetOpen(ctx, businessID)
}

// Close reconciles and closes the open session. The difference is the
// counted drawer minus expected cash; any nonzero difference demands a
// reason.
func (s *Service) Close(ctx context.Context, businessID, actorID uuid.UUID, req CloseSessionRequest) (*SessionView, error) {
	session, err := s.repo.GetOpen(ctx, businessID)
	if err != nil {
		return nil, err
	}

	movements, err := s.repo.ListMovements(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	summary := BuildSummary(*session, movements)

	difference := req.CountedAmount.Sub(summary.ExpectedCash)
	if !difference.IsZero() && (req.Reason == nil || *req.Reason == "") {
		return nil, fmt.Errorf("%w: a difference of %s requires a reason", shared.ErrValidation, FormatAmount(difference))
	}

	now := s.now().UTC()
	session.Status = SessionClosed
	session.ClosedBy = &actorID
	session.ClosedAt = &now
	session.CountedAmount = &req.CountedAmount
	session.ExpectedCash = &summary.ExpectedCash
	session.Difference = &difference
	session.CloseReason = req.Reason

	if err := s.repo.Close(ctx, *session); err != nil {
		return nil, err
	}

	closed, err := s.repo.Get(ctx, businessID, session.ID)
	if err != nil {
		return nil, err
	}
	return &SessionView{Session: *closed, Summary: summary}, nil
}

// RecordMovement writes a manual income or expense into the open session.
func (s *Service) RecordMovement(ctx context.Context, businessID, actorID uuid.UUID, req RecordMovementRequest) (*Movement, error) {
	if req.Kind != MovementIncome && req.Kind != MovementExpense {
		return nil, fmt.Errorf("%w: only income and expense movements are recorded manually", shared.ErrValidation)
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", shared.ErrValidation)
	}
	method := req.Method
	if method == "" {
		method = MethodCash
	}
	method = MovementMethodFromCode(string(method))

	session, err := s.repo.GetOpen(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(s.now()) {
		return nil, fmt.Errorf("%w: the session expired and accepts no further movements", shared.ErrConflict)
	}

	movement := Movement{
		ID:          uuid.New(),
		SessionID:   session.ID,
		BusinessID:  businessID,
		Kind:        req.Kind,
		Method:      method,
		Amount:      req.Amount,
		Description: req.Description,
		CreatedBy:   actorID,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.InsertMovement(ctx, movement); err != nil {
		return nil, err
	}
	return &movement, nil
}

// GetCurrent returns the open session with its live summary and movements.
func (s *Service) GetCurrent(ctx context.Context, businessID uuid.UUID) (*SessionView, error) {
	session, err := s.repo.GetOpen(ctx, businessID)
	if err != nil {
		return nil, err
	}
	movements, err := s.repo.ListMovements(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	return &SessionView{
		Session:   *session,
		Summary:   BuildSummary(*session, movements),
		Movements: movements,
	}, nil
}

// History lists closed sessions, newest first.
func (s *Service) History(ctx context.Context, businessID uuid.UUID, page, perPage int) ([]Session, int, error) {
	return s.repo.ListClosed(ctx, businessID, page, perPage)
}
