package business

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/australsoft/comercia/internal/shared"
)

const businessColumns = `id, name, tax_id, tax_condition, sale_point,
	last_quotation_number, last_delivery_note_number,
	last_invoice_a_number, last_invoice_b_number, last_invoice_c_number,
	created_at, updated_at`

type dbtx interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository loads business records.
type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*Business, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a pgx-backed business repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Business, error) {
	return Get(ctx, r.pool, id)
}

// Get scans a business row from any pgx querier, so document transactions
// can reuse it against their own tx handle.
func Get(ctx context.Context, q dbtx, id uuid.UUID) (*Business, error) {
	row := q.QueryRow(ctx, `SELECT `+businessColumns+` FROM businesses WHERE id = $1`, id)
	var b Business
	err := row.Scan(
		&b.ID, &b.Name, &b.TaxID, &b.TaxCondition, &b.SalePoint,
		&b.LastQuotationNumber, &b.LastDeliveryNoteNumber,
		&b.LastInvoiceANumber, &b.LastInvoiceBNumber, &b.LastInvoiceCNumber,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: business %s", shared.ErrNotFound, id)
		}
		return nil, fmt.Errorf("business: get: %w", err)
	}
	return &b, nil
}

// ReserveNumber advances the counter for the family and returns the reserved
// sequence value, zero-padded to 8 digits. It must run on the same
// transaction as the document insert consuming the number: the single-statement
// read-modify-write takes a row lock on the business, so two concurrent
// reservations for the same business and family serialize, and a rolled-back
// transaction leaves the counter untouched.
func ReserveNumber(ctx context.Context, q dbtx, businessID uuid.UUID, family CounterFamily) (string, error) {
	column, ok := family.Column()
	if !ok {
		return "", fmt.Errorf("business: no local counter for family %q", family)
	}
	var seq int64
	query := fmt.Sprintf(
		`UPDATE businesses SET %s = %s + 1, updated_at = NOW() WHERE id = $1 RETURNING %s`,
		column, column, column,
	)
	if err := q.QueryRow(ctx, query, businessID).Scan(&seq); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: business %s", shared.ErrNotFound, businessID)
		}
		return "", fmt.Errorf("business: reserve number: %w", err)
	}
	return FormatNumber(seq), nil
}

// FormatNumber renders a counter value as the 8-digit document number.
func FormatNumber(seq int64) string {
	return fmt.Sprintf("%08d", seq)
}
