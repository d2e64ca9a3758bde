package cash

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/australsoft/comercia/internal/platform/db"
	"github.com/australsoft/comercia/internal/shared"
)

// Repository persists register sessions and movements. A partial unique
// index on (business_id) WHERE status = 'OPEN' backs the one-open-session
// rule; a racing second open surfaces as a unique violation.
type Repository interface {
	Insert(ctx context.Context, s Session) error
	GetOpen(ctx context.Context, businessID uuid.UUID) (*Session, error)
	Get(ctx context.Context, businessID, id uuid.UUID) (*Session, error)
	Close(ctx context.Context, s Session) error
	ListClosed(ctx context.Context, businessID uuid.UUID, page, perPage int) ([]Session, int, error)

	InsertMovement(ctx context.Context, m Movement) error
	ListMovements(ctx context.Context, sessionID uuid.UUID) ([]Movement, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a pgx-backed cash repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const sessionColumns = `id, business_id, status, opening_amount, opened_by,
	opened_at, closed_by, closed_at, counted_amount, expected_cash,
	difference, close_reason, created_at, updated_at`

func (r *repository) Insert(ctx context.Context, s Session) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO cash_sessions (
			id, business_id, status, opening_amount, opened_by, opened_at,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW())
	`, s.ID, s.BusinessID, s.Status, db.Numeric(s.OpeningAmount), s.OpenedBy, s.OpenedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: a session is already open", shared.ErrConflict)
		}
		return fmt.Errorf("cash: insert session: %w", err)
	}
	return nil
}

func (r *repository) GetOpen(ctx context.Context, businessID uuid.UUID) (*Session, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM cash_sessions
		WHERE business_id = $1 AND status = $2
	`, businessID, SessionOpen)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no open cash session", shared.ErrNotFound)
		}
		return nil, fmt.Errorf("cash: get open session: %w", err)
	}
	return s, nil
}

func (r *repository) Get(ctx context.Context, businessID, id uuid.UUID) (*Session, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM cash_sessions
		WHERE id = $1 AND business_id = $2
	`, id, businessID)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: cash session %s", shared.ErrNotFound, id)
		}
		return nil, fmt.Errorf("cash: get session: %w", err)
	}
	return s, nil
}

// Close persists the closing figures. The status guard means a second
// close sees zero rows affected and reports a conflict.
func (r *repository) Close(ctx context.Context, s Session) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE cash_sessions SET
			status = $3, closed_by = $4, closed_at = $5, counted_amount = $6,
			expected_cash = $7, difference = $8, close_reason = $9, updated_at = NOW()
		WHERE id = $1 AND business_id = $2 AND status = $10
	`,
		s.ID, s.BusinessID, SessionClosed, s.ClosedBy, s.ClosedAt,
		db.Numeric(*s.CountedAmount), db.Numeric(*s.ExpectedCash),
		db.Numeric(*s.Difference), s.CloseReason, SessionOpen,
	)
	if err != nil {
		return fmt.Errorf("cash: close session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: session %s is not open", shared.ErrConflict, s.ID)
	}
	return nil
}

func (r *repository) ListClosed(ctx context.Context, businessID uuid.UUID, pageNum, perPage int) ([]Session, int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM cash_sessions
		WHERE business_id = $1 AND status = $2
	`, businessID, SessionClosed).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("cash: count sessions: %w", err)
	}

	page := shared.NewPagination(pageNum, perPage, total)
	rows, err := r.pool.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM cash_sessions
		WHERE business_id = $1 AND status = $2
		ORDER BY opened_at DESC
		LIMIT $3 OFFSET $4
	`, businessID, SessionClosed, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("cash: list sessions: %w", err)
	}
	defer rows.Close()

	var result []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("cash: scan session: %w", err)
		}
		result = append(result, *s)
	}
	return result, total, rows.Err()
}

func (r *repository) InsertMovement(ctx context.Context, m Movement) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO cash_movements (
			id, session_id, business_id, kind, method, amount, description,
			document_id, created_by, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW())
	`, m.ID, m.SessionID, m.BusinessID, m.Kind, m.Method, db.Numeric(m.Amount),
		m.Description, m.DocumentID, m.CreatedBy)
	if err != nil {
		return fmt.Errorf("cash: insert movement: %w", err)
	}
	return nil
}

func (r *repository) ListMovements(ctx context.Context, sessionID uuid.UUID) ([]Movement, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, session_id, business_id, kind, method, amount, description,
			document_id, created_by, created_at
		FROM cash_movements
		WHERE session_id = $1
		ORDER BY created_at
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("cash: list movements: %w", err)
	}
	defer rows.Close()

	var result []Movement
	for rows.Next() {
		var m Movement
		var amount pgtype.Numeric
		err := rows.Scan(&m.ID, &m.SessionID, &m.BusinessID, &m.Kind, &m.Method,
			&amount, &m.Description, &m.DocumentID, &m.CreatedBy, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("cash: scan movement: %w", err)
		}
		m.Amount = db.Decimal(amount)
		result = append(result, m)
	}
	return result, rows.Err()
}

func scanSession(row pgx.Row) (*Session, error) {
	var s Session
	var opening pgtype.Numeric
	var counted, expected, difference *pgtype.Numeric
	err := row.Scan(
		&s.ID, &s.BusinessID, &s.Status, &opening, &s.OpenedBy, &s.OpenedAt,
		&s.ClosedBy, &s.ClosedAt, &counted, &expected, &difference,
		&s.CloseReason, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.OpeningAmount = db.Decimal(opening)
	if counted != nil {
		v := db.Decimal(*counted)
		s.CountedAmount = &v
	}
	if expected != nil {
		v := db.Decimal(*expected)
		s.ExpectedCash = &v
	}
	if difference != nil {
		v := db.Decimal(*difference)
		s.Difference = &v
	}
	return &s, nil
}
