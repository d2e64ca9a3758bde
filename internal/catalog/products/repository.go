package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/australsoft/comercia/internal/platform/db"
	"github.com/australsoft/comercia/internal/shared"
)

// Repository persists products.
type Repository interface {
	Create(ctx context.Context, p Product) error
	Get(ctx context.Context, businessID, id uuid.UUID) (*Product, error)
	List(ctx context.Context, req ListProductsRequest) ([]Product, int, error)
	Update(ctx context.Context, p Product) error
	SetStock(ctx context.Context, businessID, id uuid.UUID, stock int64) error
	SoftDelete(ctx context.Context, businessID, id uuid.UUID) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a pgx-backed product repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const productColumns = `id, business_id, category_id, supplier_id, code, supplier_code,
	description, unit, list_price, discount_1, discount_2, discount_3, extra_cost,
	tax_rate, net_price, sale_price, discount_display, current_stock, minimum_stock,
	is_active, created_at, updated_at, deleted_at`

func (r *repository) Create(ctx context.Context, p Product) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO products (
			id, business_id, category_id, supplier_id, code, supplier_code,
			description, unit, list_price, discount_1, discount_2, discount_3,
			extra_cost, tax_rate, net_price, sale_price, discount_display,
			current_stock, minimum_stock, is_active, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,NOW(),NOW())
	`,
		p.ID, p.BusinessID, p.CategoryID, p.SupplierID, p.Code, p.SupplierCode,
		p.Description, p.Unit, db.Numeric(p.ListPrice), db.Numeric(p.Discount1),
		db.Numeric(p.Discount2), db.Numeric(p.Discount3), db.Numeric(p.ExtraCostPct),
		db.Numeric(p.TaxRate), db.Numeric(p.NetPrice), db.Numeric(p.SalePrice),
		p.DiscountDisplay, p.CurrentStock, p.MinimumStock, p.IsActive,
	)
	if err != nil {
		return fmt.Errorf("products: insert: %w", err)
	}
	return nil
}

func (r *repository) Get(ctx context.Context, businessID, id uuid.UUID) (*Product, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1 AND business_id = $2 AND deleted_at IS NULL
	`, id, businessID)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: product %s", shared.ErrNotFound, id)
		}
		return nil, fmt.Errorf("products: get: %w", err)
	}
	return p, nil
}

func (r *repository) List(ctx context.Context, req ListProductsRequest) ([]Product, int, error) {
	conditions := []string{"business_id = $1", "deleted_at IS NULL"}
	args := []any{req.BusinessID}
	argPos := 2

	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(code ILIKE $%d OR supplier_code ILIKE $%d OR description ILIKE $%d)", argPos, argPos, argPos))
		args = append(args, "%"+req.Search+"%")
		argPos++
	}
	if req.LowStock {
		conditions = append(conditions, "current_stock <= minimum_stock")
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
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM products "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("products: count: %w", err)
	}

	page := shared.NewPagination(req.Page, req.PerPage, total)
	query := fmt.Sprintf(`
		SELECT %s FROM products %s
		ORDER BY description
		LIMIT $%d OFFSET $%d
	`, productColumns, where, argPos, argPos+1)
	args = append(args, page.PerPage, page.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("products: list: %w", err)
	}
	defer rows.Close()

	var result []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("products: scan: %w", err)
		}
		result = append(result, *p)
	}
	return result, total, rows.Err()
}

func (r *repository) Update(ctx context.Context, p Product) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products SET
			description = $3, unit = $4, list_price = $5, discount_1 = $6,
			discount_2 = $7, discount_3 = $8, extra_cost = $9, tax_rate = $10,
			net_price = $11, sale_price = $12, discount_display = $13,
			minimum_stock = $14, is_active = $15, updated_at = NOW()
		WHERE id = $1 AND business_id = $2 AND deleted_at IS NULL
	`,
		p.ID, p.BusinessID, p.Description, p.Unit, db.Numeric(p.ListPrice),
		db.Numeric(p.Discount1), db.Numeric(p.Discount2), db.Numeric(p.Discount3),
		db.Numeric(p.ExtraCostPct), db.Numeric(p.TaxRate), db.Numeric(p.NetPrice),
		db.Numeric(p.SalePrice), p.DiscountDisplay, p.MinimumStock, p.IsActive,
	)
	if err != nil {
		return fmt.Errorf("products: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %s", shared.ErrNotFound, p.ID)
	}
	return nil
}

func (r *repository) SetStock(ctx context.Context, businessID, id uuid.UUID, stock int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products SET current_stock = $3, updated_at = NOW()
		WHERE id = $1 AND business_id = $2 AND deleted_at IS NULL
	`, id, businessID, stock)
	if err != nil {
		return fmt.Errorf("products: set stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %s", shared.ErrNotFound, id)
	}
	return nil
}

func (r *repository) SoftDelete(ctx context.Context, businessID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND business_id = $2 AND deleted_at IS NULL
	`, id, businessID)
	if err != nil {
		return fmt.Errorf("products: soft delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %s", shared.ErrNotFound, id)
	}
	return nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	var listPrice, d1, d2, d3, extra, tax, net, sale pgtype.Numeric
	err := row.Scan(
		&p.ID, &p.BusinessID, &p.CategoryID, &p.SupplierID, &p.Code, &p.SupplierCode,
		&p.Description, &p.Unit, &listPrice, &d1, &d2, &d3, &extra,
		&tax, &net, &sale, &p.DiscountDisplay, &p.CurrentStock, &p.MinimumStock,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	p.ListPrice = db.Decimal(listPrice)
	p.Discount1 = db.Decimal(d1)
	p.Discount2 = db.Decimal(d2)
	p.Discount3 = db.Decimal(d3)
	p.ExtraCostPct = db.Decimal(extra)
	p.TaxRate = db.Decimal(tax)
	p.NetPrice = db.Decimal(net)
	p.SalePrice = db.Decimal(sale)
	return &p, nil
}
