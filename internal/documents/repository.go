package documents

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/australsoft/comercia/internal/business"
	"github.com/australsoft/comercia/internal/cash"
	"github.com/australsoft/comercia/internal/catalog/clients"
	"github.com/australsoft/comercia/internal/catalog/paymentmethods"
	"github.com/australsoft/comercia/internal/catalog/products"
	"github.com/australsoft/comercia/internal/platform/db"
	"github.com/australsoft/comercia/internal/shared"
)

// Repository provides PostgreSQL backed persistence for document issuance.
// Issuing crosses several tables, so the write side runs through WithTx and
// every mutation lands on the same transaction.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the operations available inside an issuance
// transaction.
type TxRepository interface {
	GetBusiness(ctx context.Context, id uuid.UUID) (*business.Business, error)
	ReserveNumber(ctx context.Context, businessID uuid.UUID, family business.CounterFamily) (string, error)

	GetClient(ctx context.Context, businessID, id uuid.UUID) (*clients.Client, error)
	GetProduct(ctx context.Context, businessID, id uuid.UUID) (*products.Product, error)
	AdjustStock(ctx context.Context, businessID, productID uuid.UUID, delta int64) error
	GetActivePaymentMethod(ctx context.Context, businessID, id uuid.UUID) (*paymentmethods.PaymentMethod, error)

	InsertDocument(ctx context.Context, d Document) error
	InsertLine(ctx context.Context, l Line) error
	InsertPayment(ctx context.Context, p Payment) error
	GetDocument(ctx context.Context, businessID, id uuid.UUID) (*Document, error)
	ClaimQuotation(ctx context.Context, businessID, quotationID, invoiceID uuid.UUID) error

	GetOpenCashSession(ctx context.Context, businessID uuid.UUID) (*cash.Session, error)
	InsertCashMovement(ctx context.Context, m cash.Movement) error
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps the callback in a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("documents: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, &txRepo{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (t *txRepo) GetBusiness(ctx context.Context, id uuid.UUID) (*business.Business, error) {
	return business.Get(ctx, t.tx, id)
}

func (t *txRepo) ReserveNumber(ctx context.Context, businessID uuid.UUID, family business.CounterFamily) (string, error) {
	return business.ReserveNumber(ctx, t.tx, businessID, family)
}

func (t *txRepo) GetClient(ctx context.Context, businessID, id uuid.UUID) (*clients.Client, error) {
	row := t.tx.QueryRow(ctx, `
		SELECT id, business_id, name, tax_id, tax_condition, is_active
		FROM clients
		WHERE id = $1 AND business_id = $2 AND deleted_at IS NULL
	`, id, businessID)
	var c clients.Client
	err := row.Scan(&c.ID, &c.BusinessID, &c.Name, &c.TaxID, &c.TaxCondition, &c.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: client %s", shared.ErrNotFound, id)
		}
		return nil, fmt.Errorf("documents: get client: %w", err)
	}
	return &c, nil
}

func (t *txRepo) GetProduct(ctx context.Context, businessID, id uuid.UUID) (*products.Product, error) {
	row := t.tx.QueryRow(ctx, `
		SELECT id, business_id, code, description, unit, net_price, tax_rate,
			current_stock, is_active
		FROM products
		WHERE id = $1 AND business_id = $2 AND deleted_at IS NULL
	`, id, businessID)
	var p products.Product
	var net, tax pgtype.Numeric
	err := row.Scan(&p.ID, &p.BusinessID, &p.Code, &p.Description, &p.Unit,
		&net, &tax, &p.CurrentStock, &p.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: product %s", shared.ErrNotFound, id)
		}
		return nil, fmt.Errorf("documents: get product: %w", err)
	}
	p.NetPrice = db.Decimal(net)
	p.TaxRate = db.Decimal(tax)
	return &p, nil
}

// AdjustStock applies a relative stock change in one statement, so two
// concurrent sales of the same product serialize on the row instead of
// overwriting each other. Negative resulting stock is allowed.
func (t *txRepo) AdjustStock(ctx context.Context, businessID, productID uuid.UUID, delta int64) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE products SET current_stock = current_stock + $3, updated_at = NOW()
		WHERE id = $1 AND business_id = $2 AND deleted_at IS NULL
	`, productID, businessID, delta)
	if err != nil {
		return fmt.Errorf("documents: adjust stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %s", shared.ErrNotFound, productID)
	}
	return nil
}

func (t *txRepo) GetActivePaymentMethod(ctx context.Context, businessID, id uuid.UUID) (*paymentmethods.PaymentMethod, error) {
	row := t.tx.QueryRow(ctx, `
		SELECT id, business_id, code, name, requires_reference, is_active
		FROM payment_methods
		WHERE id = $1 AND business_id = $2
	`, id, businessID)
	var m paymentmethods.PaymentMethod
	err := row.Scan(&m.ID, &m.BusinessID, &m.Code, &m.Name, &m.RequiresReference, &m.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: payment method %s", shared.ErrNotFound, id)
		}
		return nil, fmt.Errorf("documents: get payment method: %w", err)
	}
	return &m, nil
}

func (t *txRepo) InsertDocument(ctx context.Context, d Document) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO documents (
			id, business_id, client_id, type, number, status, issue_date,
			subtotal, tax_amount, total, notes, authorization_code,
			authorization_expiry, invoiced_document_id, related_document_id,
			created_by, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,NOW(),NOW())
	`,
		d.ID, d.BusinessID, d.ClientID, d.Type, d.Number, d.Status, d.IssueDate,
		db.Numeric(d.Subtotal), db.Numeric(d.TaxAmount), db.Numeric(d.Total),
		d.Notes, d.AuthorizationCode, d.AuthorizationExpiry,
		d.InvoicedDocumentID, d.RelatedDocumentID, d.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("documents: insert document: %w", err)
	}
	return nil
}

func (t *txRepo) InsertLine(ctx context.Context, l Line) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO document_lines (
			id, document_id, product_id, description, quantity, unit_price,
			discount_pct, tax_rate, net_amount, tax_amount, total, position
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		l.ID, l.DocumentID, l.ProductID, l.Description, db.Numeric(l.Quantity),
		db.Numeric(l.UnitPrice), db.Numeric(l.DiscountPct), db.Numeric(l.TaxRate),
		db.Numeric(l.NetAmount), db.Numeric(l.TaxAmount), db.Numeric(l.Total),
		l.Position,
	)
	if err != nil {
		return fmt.Errorf("documents: insert line: %w", err)
	}
	return nil
}

func (t *txRepo) InsertPayment(ctx context.Context, p Payment) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO document_payments (
			id, document_id, payment_method_id, method_code, amount, reference
		) VALUES ($1,$2,$3,$4,$5,$6)
	`, p.ID, p.DocumentID, p.PaymentMethodID, p.MethodCode, db.Numeric(p.Amount), p.Reference)
	if err != nil {
		return fmt.Errorf("documents: insert payment: %w", err)
	}
	return nil
}

func (t *txRepo) GetDocument(ctx context.Context, businessID, id uuid.UUID) (*Document, error) {
	return getDocument(ctx, t.tx, businessID, id)
}

// ClaimQuotation links the quotation to the invoice consuming it. The
// guarded update makes conversion one-shot: a second converter sees zero
// rows affected and fails with a conflict.
func (t *txRepo) ClaimQuotation(ctx context.Context, businessID, quotationID, invoiceID uuid.UUID) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE documents SET invoiced_document_id = $3, updated_at = NOW()
		WHERE id = $1 AND business_id = $2 AND type = $4
			AND invoiced_document_id IS NULL AND deleted_at IS NULL
	`, quotationID, businessID, invoiceID, TypeQuotation)
	if err != nil {
		return fmt.Errorf("documents: claim quotation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: quotation %s already invoiced or missing", shared.ErrConflict, quotationID)
	}
	return nil
}

func (t *txRepo) GetOpenCashSession(ctx context.Context, businessID uuid.UUID) (*cash.Session, error) {
	row := t.tx.QueryRow(ctx, `
		SELECT id, business_id, status, opening_amount, opened_by, opened_at
		FROM cash_sessions
		WHERE business_id = $1 AND status = $2
	`, businessID, cash.SessionOpen)
	var s cash.Session
	var opening pgtype.Numeric
	err := row.Scan(&s.ID, &s.BusinessID, &s.Status, &opening, &s.OpenedBy, &s.OpenedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no open cash session", shared.ErrPreconditionFailed)
		}
		return nil, fmt.Errorf("documents: get open session: %w", err)
	}
	s.OpeningAmount = db.Decimal(opening)
	return &s, nil
}

func (t *txRepo) InsertCashMovement(ctx context.Context, m cash.Movement) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO cash_movements (
			id, session_id, business_id, kind, method, amount, description,
			document_id, created_by, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW())
	`, m.ID, m.SessionID, m.BusinessID, m.Kind, m.Method, db.Numeric(m.Amount),
		m.Description, m.DocumentID, m.CreatedBy)
	if err != nil {
		return fmt.Errorf("documents: insert cash movement: %w", err)
	}
	return nil
}

const documentColumns = `id, business_id, client_id, type, number, status,
	issue_date, subtotal, tax_amount, total, notes, authorization_code,
	authorization_expiry, invoiced_document_id, related_document_id,
	created_by, created_at, updated_at, deleted_at, deleted_by,
	deletion_reason`

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Get loads one document with its lines and payments.
func (r *Repository) Get(ctx context.Context, businessID, id uuid.UUID) (*Document, error) {
	return getDocument(ctx, r.pool, businessID, id)
}

func getDocument(ctx context.Context, q querier, businessID, id uuid.UUID) (*Document, error) {
	row := q.QueryRow(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE id = $1 AND business_id = $2 AND deleted_at IS NULL
	`, id, businessID)
	d, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: document %s", shared.ErrNotFound, id)
		}
		return nil, fmt.Errorf("documents: get: %w", err)
	}

	lines, err := loadLines(ctx, q, d.ID)
	if err != nil {
		return nil, err
	}
	d.Lines = lines

	payments, err := loadPayments(ctx, q, d.ID)
	if err != nil {
		return nil, err
	}
	d.Payments = payments
	return d, nil
}

// List returns a filtered document page with the total match count. Lines
// and payments are not loaded on the list path.
func (r *Repository) List(ctx context.Context, req ListDocumentsRequest) ([]Document, int, error) {
	conditions := []string{"business_id = $1", "deleted_at IS NULL"}
	args := []any{req.BusinessID}
	argPos := 2

	if req.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argPos))
		args = append(args, *req.Type)
		argPos++
	}
	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.Search != nil && *req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(number ILIKE $%d OR notes ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+*req.Search+"%")
		argPos++
	}
	if req.ClientID != nil {
		conditions = append(conditions, fmt.Sprintf("client_id = $%d", argPos))
		args = append(args, *req.ClientID)
		argPos++
	}
	if req.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("issue_date >= $%d", argPos))
		args = append(args, *req.DateFrom)
		argPos++
	}
	if req.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("issue_date <= $%d", argPos))
		args = append(args, *req.DateTo)
		argPos++
	}

	where := "WHERE " + conditions[0]
	for _, c := range conditions[1:] {
		where += " AND " + c
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM documents "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("documents: count: %w", err)
	}

	page := shared.NewPagination(req.Page, req.PerPage, total)
	query := fmt.Sprintf(`
		SELECT %s FROM documents %s
		ORDER BY issue_date DESC, created_at DESC
		LIMIT $%d OFFSET $%d
	`, documentColumns, where, argPos, argPos+1)
	args = append(args, page.PerPage, page.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("documents: list: %w", err)
	}
	defer rows.Close()

	var result []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("documents: scan: %w", err)
		}
		result = append(result, *d)
	}
	return result, total, rows.Err()
}

// ListPendingQuotations returns quotations and delivery notes not yet
// consumed by an invoice.
func (r *Repository) ListPendingQuotations(ctx context.Context, businessID uuid.UUID) ([]Document, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE business_id = $1 AND type IN ($2, $3) AND status = $4
			AND invoiced_document_id IS NULL AND deleted_at IS NULL
		ORDER BY issue_date DESC
	`, businessID, TypeQuotation, TypeDeliveryNote, StatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("documents: list pending quotations: %w", err)
	}
	defer rows.Close()

	var result []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("documents: scan: %w", err)
		}
		result = append(result, *d)
	}
	return result, rows.Err()
}

// SoftDelete cancels a document, keeping who and why. An already-deleted
// row reports not found.
func (r *Repository) SoftDelete(ctx context.Context, businessID, actorID, id uuid.UUID, reason string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE documents SET status = $3, deleted_at = NOW(), deleted_by = $4,
			deletion_reason = $5, updated_at = NOW()
		WHERE id = $1 AND business_id = $2 AND deleted_at IS NULL
	`, id, businessID, StatusCancelled, actorID, reason)
	if err != nil {
		return fmt.Errorf("documents: soft delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: document %s", shared.ErrNotFound, id)
	}
	return nil
}

func scanDocument(row pgx.Row) (*Document, error) {
	var d Document
	var subtotal, tax, total pgtype.Numeric
	err := row.Scan(
		&d.ID, &d.BusinessID, &d.ClientID, &d.Type, &d.Number, &d.Status,
		&d.IssueDate, &subtotal, &tax, &total, &d.Notes, &d.AuthorizationCode,
		&d.AuthorizationExpiry, &d.InvoicedDocumentID, &d.RelatedDocumentID,
		&d.CreatedBy, &d.CreatedAt, &d.UpdatedAt, &d.DeletedAt, &d.DeletedBy,
		&d.DeletionReason,
	)
	if err != nil {
		return nil, err
	}
	d.Subtotal = db.Decimal(subtotal)
	d.TaxAmount = db.Decimal(tax)
	d.Total = db.Decimal(total)
	return &d, nil
}

func loadLines(ctx context.Context, q querier, documentID uuid.UUID) ([]Line, error) {
	rows, err := q.Query(ctx, `
		SELECT id, document_id, product_id, description, quantity, unit_price,
			discount_pct, tax_rate, net_amount, tax_amount, total, position
		FROM document_lines
		WHERE document_id = $1
		ORDER BY position
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("documents: load lines: %w", err)
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var l Line
		var qty, price, disc, rate, net, tax, total pgtype.Numeric
		err := rows.Scan(&l.ID, &l.DocumentID, &l.ProductID, &l.Description,
			&qty, &price, &disc, &rate, &net, &tax, &total, &l.Position)
		if err != nil {
			return nil, fmt.Errorf("documents: scan line: %w", err)
		}
		l.Quantity = db.Decimal(qty)
		l.UnitPrice = db.Decimal(price)
		l.DiscountPct = db.Decimal(disc)
		l.TaxRate = db.Decimal(rate)
		l.NetAmount = db.Decimal(net)
		l.TaxAmount = db.Decimal(tax)
		l.Total = db.Decimal(total)
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func loadPayments(ctx context.Context, q querier, documentID uuid.UUID) ([]Payment, error) {
	rows, err := q.Query(ctx, `
		SELECT id, document_id, payment_method_id, method_code, amount, reference
		FROM document_payments
		WHERE document_id = $1
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("documents: load payments: %w", err)
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		var p Payment
		var amount pgtype.Numeric
		err := rows.Scan(&p.ID, &p.DocumentID, &p.PaymentMethodID, &p.MethodCode,
			&amount, &p.Reference)
		if err != nil {
			return nil, fmt.Errorf("documents: scan payment: %w", err)
		}
		p.Amount = db.Decimal(amount)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
