package clients

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/australsoft/comercia/internal/shared"
)

// Repository persists clients.
type Repository interface {
	Create(ctx context.Context, c Client) error
	Get(ctx context.Context, businessID, id uuid.UUID) (*Client, error)
	List(ctx context.Context, req ListClientsRequest) ([]Client, int, error)
	Update(ctx context.Context, c Client) error
	SoftDelete(ctx context.Context, businessID, id uuid.UUID) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a pgx-backed client repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const clientColumns = `id, business_id, name, tax_id, tax_condition, address,
	phone, email, notes, is_active, created_at, updated_at, deleted_at`

func (r *repository) Create(ctx context.Context, c Client) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO clients (
			id, business_id, name, tax_id, tax_condition, address, phone,
			email, notes, is_active, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW(),NOW())
	`,
		c.ID, c.BusinessID, c.Name, c.TaxID, c.TaxCondition, c.Address,
		c.Phone, c.Email, c.Notes, c.IsActive,
	)
	if err != nil {
		return fmt.Errorf("clients: insert: %w", err)
	}
	return nil
}

func (r *repository) Get(ctx context.Context, businessID, id uuid.UUID) (*Client, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE id = $1 AND business_id = $2 AND deleted_at IS NULL
	`, id, businessID)
	c, err := scanClient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: client %s", shared.ErrNotFound, id)
		}
		return nil, fmt.Errorf("clients: get: %w", err)
	}
	return c, nil
}

func (r *repository) List(ctx context.Context, req ListClientsRequest) ([]Client, int, error) {
	conditions := []string{"business_id = $1", "deleted_at IS NULL"}
	args := []any{req.BusinessID}
	argPos := 2

	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(name ILIKE $%d OR tax_id ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+req.Search+"%")
		argPos++
	}
	if req.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argPos))
		args = append(args, *req.IsActive)
		argPos++
	}

	where := "WHERE " + conditions[0]
	for _, c := range conditions[1:] {
		where += " AND " + c
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM clients "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("clients: count: %w", err)
	}

	page := shared.NewPagination(req.Page, req.PerPage, total)
	query := fmt.Sprintf(`
		SELECT %s FROM clients %s
		ORDER BY name
		LIMIT $%d OFFSET $%d
	`, clientColumns, where, argPos, argPos+1)
	args = append(args, page.PerPage, page.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("clients: list: %w", err)
	}
	defer rows.Close()

	var result []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("clients: scan: %w", err)
		}
		result = append(result, *c)
	}
	return result, total, rows.Err()
}

func (r *repository) Update(ctx context.Context, c Client) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE clients SET
			name = $3, tax_id = $4, tax_condition = $5, address = $6,
			phone = $7, email = $8, notes = $9, is_active = $10, updated_at = NOW()
		WHERE id = $1 AND business_id = $2 AND deleted_at IS NULL
	`,
		c.ID, c.BusinessID, c.Name, c.TaxID, c.TaxCondition, c.Address,
		c.Phone, c.Email, c.Notes, c.IsActive,
	)
	if err != nil {
		return fmt.Errorf("clients: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: client %s", shared.ErrNotFound, c.ID)
	}
	return nil
}

func (r *repository) SoftDelete(ctx context.Context, businessID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE clients SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND business_id = $2 AND deleted_at IS NULL
	`, id, businessID)
	if err != nil {
		return fmt.Errorf("clients: soft delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: client %s", shared.ErrNotFound, id)
	}
	return nil
}

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	err := row.Scan(
		&c.ID, &c.BusinessID, &c.Name, &c.TaxID, &c.TaxCondition, &c.Address,
		&c.Phone, &c.Email, &c.Notes, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
		&c.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
