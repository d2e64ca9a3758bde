package paymentmethods

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/australsoft/comercia/internal/shared"
)

// Repository persists payment methods.
type Repository interface {
	Create(ctx context.Context, m PaymentMethod) error
	Get(ctx context.Context, businessID, id uuid.UUID) (*PaymentMethod, error)
	ListActive(ctx context.Context, businessID uuid.UUID) ([]PaymentMethod, error)
	List(ctx context.Context, businessID uuid.UUID) ([]PaymentMethod, error)
	Update(ctx context.Context, m PaymentMethod) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a pgx-backed payment method repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const methodColumns = `id, business_id, code, name, requires_reference,
	is_active, created_at, updated_at`

func (r *repository) Create(ctx context.Context, m PaymentMethod) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO payment_methods (
			id, business_id, code, name, requires_reference, is_active,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW())
	`, m.ID, m.BusinessID, m.Code, m.Name, m.RequiresReference, m.IsActive)
	if err != nil {
		return fmt.Errorf("paymentmethods: insert: %w", err)
	}
	return nil
}

func (r *repository) Get(ctx context.Context, businessID, id uuid.UUID) (*PaymentMethod, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+methodColumns+`
		FROM payment_methods
		WHERE id = $1 AND business_id = $2
	`, id, businessID)
	m, err := scanMethod(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: payment method %s", shared.ErrNotFound, id)
		}
		return nil, fmt.Errorf("paymentmethods: get: %w", err)
	}
	return m, nil
}

func (r *repository) ListActive(ctx context.Context, businessID uuid.UUID) ([]PaymentMethod, error) {
	return r.query(ctx, `
		SELECT `+methodColumns+`
		FROM payment_methods
		WHERE business_id = $1 AND is_active
		ORDER BY name
	`, businessID)
}

func (r *repository) List(ctx context.Context, businessID uuid.UUID) ([]PaymentMethod, error) {
	return r.query(ctx, `
		SELECT `+methodColumns+`
		FROM payment_methods
		WHERE business_id = $1
		ORDER BY name
	`, businessID)
}

func (r *repository) Update(ctx context.Context, m PaymentMethod) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE payment_methods SET
			name = $3, requires_reference = $4, is_active = $5, updated_at = NOW()
		WHERE id = $1 AND business_id = $2
	`, m.ID, m.BusinessID, m.Name, m.RequiresReference, m.IsActive)
	if err != nil {
		return fmt.Errorf("paymentmethods: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: payment method %s", shared.ErrNotFound, m.ID)
	}
	return nil
}

func (r *repository) query(ctx context.Context, sql string, args ...any) ([]PaymentMethod, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("paymentmethods: query: %w", err)
	}
	defer rows.Close()

	var result []PaymentMethod
	for rows.Next() {
		m, err := scanMethod(rows)
		if err != nil {
			return nil, fmt.Errorf("paymentmethods: scan: %w", err)
		}
		result = append(result, *m)
	}
	return result, rows.Err()
}

func scanMethod(row pgx.Row) (*PaymentMethod, error) {
	var m PaymentMethod
	err := row.Scan(
		&m.ID, &m.BusinessID, &m.Code, &m.Name, &m.RequiresReference,
		&m.IsActive, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
