package documents

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/australsoft/comercia/internal/business"
	"github.com/australsoft/comercia/internal/cash"
	"github.com/australsoft/comercia/internal/catalog/clients"
	"github.com/australsoft/comercia/internal/fiscal"
	"github.com/australsoft/comercia/internal/shared"
)

// paymentTolerance is the largest gap allowed between the settled sum and
// the document total, absorbing per-split rounding.
var paymentTolerance = decimal.NewFromFloat(0.01)

var hundred = decimal.NewFromInt(100)

type repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, businessID, id uuid.UUID) (*Document, error)
	List(ctx context.Context, req ListDocumentsRequest) ([]Document, int, error)
	ListPendingQuotations(ctx context.Context, businessID uuid.UUID) ([]Document, error)
	SoftDelete(ctx context.Context, businessID, actorID, id uuid.UUID, reason string) error
}

// Service issues documents. All invariants that span tables live here:
// numbering, stock, settlement, the cash ledger, and fiscal authorization
// commit or roll back as one unit.
type Service struct {
	repo       repository
	authorizer fiscal.Authorizer
	now        func() time.Time
}

// NewService constructs a document Service.
func NewService(repo repository, authorizer fiscal.Authorizer) *Service {
	return &Service{
		repo:       repo,
		authorizer: authorizer,
		now:        time.Now,
	}
}

// Create issues a document of any directly issuable type. Credit and debit
// notes go through their own entry points, since they need an original
// invoice.
func (s *Service) Create(ctx context.Context, businessID, actorID uuid.UUID, req CreateDocumentRequest) (*Document, error) {
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown document type %q", shared.ErrValidation, req.Type)
	}
	if req.Type.IsCreditNote() || req.Type.IsDebitNote() {
		return nil, fmt.Errorf("%w: %s is issued against an invoice", shared.ErrValidation, req.Type)
	}
	if !req.Type.IsInvoice() && len(req.Payments) > 0 {
		return nil, fmt.Errorf("%w: only invoices carry payments", shared.ErrValidation)
	}

	var docID uuid.UUID
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		biz, err := tx.GetBusiness(ctx, businessID)
		if err != nil {
			return err
		}
		client, err := tx.GetClient(ctx, businessID, req.ClientID)
		if err != nil {
			return err
		}
		if err := checkLetter(req.Type, client); err != nil {
			return err
		}

		// Invoices need the register before anything else happens, so a
		// closed drawer never costs an authority round trip.
		var session *cash.Session
		if req.Type.IsInvoice() {
			if session, err = s.openSession(ctx, tx, businessID); err != nil {
				return err
			}
		}

		doc, lines, err := s.buildDocument(ctx, tx, businessID, actorID, req)
		if err != nil {
			return err
		}

		family, hasCounter := req.Type.NumberingFamily()
		if !hasCounter {
			return fmt.Errorf("%w: type %q has no local numbering", shared.ErrValidation, req.Type)
		}
		number, err := tx.ReserveNumber(ctx, businessID, family)
		if err != nil {
			return err
		}
		doc.Number = number

		if req.Type.IsFiscal() {
			auth, err := s.authorize(ctx, biz, client, doc, lines, nil)
			if err != nil {
				return err
			}
			doc.AuthorizationCode = &auth.Code
			doc.AuthorizationExpiry = &auth.Expiry
		}

		if err := persistDocument(ctx, tx, doc, lines); err != nil {
			return err
		}
		if err := applyStock(ctx, tx, doc, lines); err != nil {
			return err
		}
		if session != nil && len(req.Payments) > 0 {
			if err := s.allocatePayments(ctx, tx, doc, session, req.Payments, actorID); err != nil {
				return err
			}
		}
		docID = doc.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, businessID, docID)
}

// Convert turns a pending quotation into an invoice. The letter follows the
// client's current tax condition and prices are taken fresh from the
// catalog; a quotation converts at most once.
func (s *Service) Convert(ctx context.Context, businessID, actorID, quotationID uuid.UUID, req ConvertQuotationRequest) (*Document, error) {
	var docID uuid.UUID
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		quotation, err := tx.GetDocument(ctx, businessID, quotationID)
		if err != nil {
			return err
		}
		if quotation.Type != TypeQuotation {
			return fmt.Errorf("%w: document %s is not a quotation", shared.ErrValidation, quotationID)
		}
		if quotation.InvoicedDocumentID != nil {
			return fmt.Errorf("%w: quotation %s already invoiced", shared.ErrConflict, quotationID)
		}

		biz, err := tx.GetBusiness(ctx, businessID)
		if err != nil {
			return err
		}
		client, err := tx.GetClient(ctx, businessID, quotation.ClientID)
		if err != nil {
			return err
		}

		invoiceType := TypeInvoiceB
		if client.IsRegisteredTaxpayer() {
			invoiceType = TypeInvoiceA
		}

		session, err := s.openSession(ctx, tx, businessID)
		if err != nil {
			return err
		}

		createReq := CreateDocumentRequest{
			Type:     invoiceType,
			ClientID: quotation.ClientID,
			Notes:    req.Notes,
		}
		for _, l := range quotation.Lines {
			createReq.Lines = append(createReq.Lines, CreateLineRequest{
				ProductID:   l.ProductID,
				Quantity:    l.Quantity,
				DiscountPct: l.DiscountPct,
			})
		}

		doc, lines, err := s.buildDocument(ctx, tx, businessID, actorID, createReq)
		if err != nil {
			return err
		}

		family, _ := invoiceType.NumberingFamily()
		number, err := tx.ReserveNumber(ctx, businessID, family)
		if err != nil {
			return err
		}
		doc.Number = number

		auth, err := s.authorize(ctx, biz, client, doc, lines, nil)
		if err != nil {
			return err
		}
		doc.AuthorizationCode = &auth.Code
		doc.AuthorizationExpiry = &auth.Expiry

		if err := persistDocument(ctx, tx, doc, lines); err != nil {
			return err
		}
		if err := applyStock(ctx, tx, doc, lines); err != nil {
			return err
		}
		if len(req.Payments) > 0 {
			if err := s.allocatePayments(ctx, tx, doc, session, req.Payments, actorID); err != nil {
				return err
			}
		}
		if err := tx.ClaimQuotation(ctx, businessID, quotationID, doc.ID); err != nil {
			return err
		}
		docID = doc.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, businessID, docID)
}

// IssueCreditNote reverses part or all of an authorized invoice. Returned
// quantities are bounded by the original lines, amounts are negated, and
// the authority assigns the number. The reversal is monetary only: stock
// is not restored.
func (s *Service) IssueCreditNote(ctx context.Context, businessID, actorID, invoiceID uuid.UUID, req CreateCreditNoteRequest) (*Document, error) {
	var docID uuid.UUID
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		original, err := tx.GetDocument(ctx, businessID, invoiceID)
		if err != nil {
			return err
		}
		if !original.Type.IsInvoice() {
			return fmt.Errorf("%w: document %s is not an invoice", shared.ErrValidation, invoiceID)
		}
		if original.AuthorizationCode == nil {
			return fmt.Errorf("%w: invoice %s was never authorized", shared.ErrValidation, invoiceID)
		}

		cnType, ok := CreditNoteFor(original.Type)
		if !ok {
			return fmt.Errorf("%w: no credit note type for %q", shared.ErrValidation, original.Type)
		}

		biz, err := tx.GetBusiness(ctx, businessID)
		if err != nil {
			return err
		}
		client, err := tx.GetClient(ctx, businessID, original.ClientID)
		if err != nil {
			return err
		}

		// Sales settle while a register is open; so do their reversals.
		if _, err := s.openSession(ctx, tx, businessID); err != nil {
			return err
		}

		byProduct := make(map[uuid.UUID]Line, len(original.Lines))
		for _, l := range original.Lines {
			byProduct[l.ProductID] = l
		}

		doc := &Document{
			ID:                uuid.New(),
			BusinessID:        businessID,
			ClientID:          original.ClientID,
			Type:              cnType,
			Status:            StatusConfirmed,
			IssueDate:         s.now().UTC(),
			Notes:             &req.Reason,
			RelatedDocumentID: &original.ID,
			CreatedBy:         actorID,
		}

		var lines []Line
		for i, rl := range req.Lines {
			orig, ok := byProduct[rl.ProductID]
			if !ok {
				return fmt.Errorf("%w: product %s is not on the original invoice", shared.ErrValidation, rl.ProductID)
			}
			if rl.Quantity.LessThanOrEqual(decimal.Zero) {
				return fmt.Errorf("%w: returned quantity must be positive", shared.ErrValidation)
			}
			if rl.Quantity.GreaterThan(orig.Quantity) {
				return fmt.Errorf("%w: returned quantity %s exceeds invoiced %s", shared.ErrValidation, rl.Quantity, orig.Quantity)
			}

			net, tax, total := lineAmounts(orig.UnitPrice, rl.Quantity, orig.DiscountPct, orig.TaxRate)
			lines = append(lines, Line{
				ID:          uuid.New(),
				DocumentID:  doc.ID,
				ProductID:   rl.ProductID,
				Description: orig.Description,
				Quantity:    rl.Quantity,
				UnitPrice:   orig.UnitPrice,
				DiscountPct: orig.DiscountPct,
				TaxRate:     orig.TaxRate,
				NetAmount:   net.Neg(),
				TaxAmount:   tax.Neg(),
				Total:       total.Neg(),
				Position:    i + 1,
			})
			doc.Subtotal = doc.Subtotal.Sub(net)
			doc.TaxAmount = doc.TaxAmount.Sub(tax)
			doc.Total = doc.Total.Sub(total)
		}

		if doc.Total.Abs().GreaterThan(original.Total) {
			return fmt.Errorf("%w: credit note %s exceeds invoice total %s", shared.ErrValidation, doc.Total.Abs(), original.Total)
		}

		auth, err := s.authorize(ctx, biz, client, doc, lines, original)
		if err != nil {
			return err
		}
		doc.Number = auth.Number
		doc.AuthorizationCode = &auth.Code
		doc.AuthorizationExpiry = &auth.Expiry

		if err := persistDocument(ctx, tx, doc, lines); err != nil {
			return err
		}
		docID = doc.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, businessID, docID)
}

// IssueDebitNote charges additional amounts against an authorized invoice:
// interest, freight, or a price correction. Lines are priced from the
// current catalog, amounts stay positive, and no stock moves. The authority
// assigns the number.
func (s *Service) IssueDebitNote(ctx context.Context, businessID, actorID, invoiceID uuid.UUID, req CreateDebitNoteRequest) (*Document, error) {
	var docID uuid.UUID
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		original, err := tx.GetDocument(ctx, businessID, invoiceID)
		if err != nil {
			return err
		}
		if !original.Type.IsInvoice() {
			return fmt.Errorf("%w: document %s is not an invoice", shared.ErrValidation, invoiceID)
		}
		if original.AuthorizationCode == nil {
			return fmt.Errorf("%w: invoice %s was never authorized", shared.ErrValidation, invoiceID)
		}

		dnType, ok := DebitNoteFor(original.Type)
		if !ok {
			return fmt.Errorf("%w: no debit note type for %q", shared.ErrValidation, original.Type)
		}

		biz, err := tx.GetBusiness(ctx, businessID)
		if err != nil {
			return err
		}
		client, err := tx.GetClient(ctx, businessID, original.ClientID)
		if err != nil {
			return err
		}

		if _, err := s.openSession(ctx, tx, businessID); err != nil {
			return err
		}

		doc, lines, err := s.buildDocument(ctx, tx, businessID, actorID, CreateDocumentRequest{
			Type:     dnType,
			ClientID: original.ClientID,
			Lines:    req.Lines,
			Notes:    &req.Reason,
		})
		if err != nil {
			return err
		}
		doc.RelatedDocumentID = &original.ID

		auth, err := s.authorize(ctx, biz, client, doc, lines, original)
		if err != nil {
			return err
		}
		doc.Number = auth.Number
		doc.AuthorizationCode = &auth.Code
		doc.AuthorizationExpiry = &auth.Expiry

		if err := persistDocument(ctx, tx, doc, lines); err != nil {
			return err
		}
		docID = doc.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, businessID, docID)
}

// Get loads one document with lines and payments.
func (s *Service) Get(ctx context.Context, businessID, id uuid.UUID) (*Document, error) {
	return s.repo.Get(ctx, businessID, id)
}

// List returns a filtered document page with the total match count.
func (s *Service) List(ctx context.Context, req ListDocumentsRequest) ([]Document, int, error) {
	return s.repo.List(ctx, req)
}

// ListPendingQuotations returns quotations still convertible to invoices.
func (s *Service) ListPendingQuotations(ctx context.Context, businessID uuid.UUID) ([]Document, error) {
	return s.repo.ListPendingQuotations(ctx, businessID)
}

// SoftDelete cancels a document as an audit marker. Stock, payments and
// cash movements stay untouched; value on a fiscal document is reversed
// with a credit note, not a deletion.
func (s *Service) SoftDelete(ctx context.Context, businessID, actorID, id uuid.UUID, reason string) error {
	if reason == "" {
		return fmt.Errorf("%w: a deletion reason is required", shared.ErrValidation)
	}
	return s.repo.SoftDelete(ctx, businessID, actorID, id, reason)
}

// buildDocument resolves lines against the catalog and computes totals.
// The number is left empty for the caller to reserve.
func (s *Service) buildDocument(ctx context.Context, tx TxRepository, businessID, actorID uuid.UUID, req CreateDocumentRequest) (*Document, []Line, error) {
	doc := &Document{
		ID:         uuid.New(),
		BusinessID: businessID,
		ClientID:   req.ClientID,
		Type:       req.Type,
		Status:     StatusConfirmed,
		IssueDate:  s.now().UTC(),
		Notes:      req.Notes,
		CreatedBy:  actorID,
	}

	var lines []Line
	for i, rl := range req.Lines {
		if rl.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, nil, fmt.Errorf("%w: line %d: quantity must be positive", shared.ErrValidation, i+1)
		}
		if rl.DiscountPct.IsNegative() || rl.DiscountPct.GreaterThan(hundred) {
			return nil, nil, fmt.Errorf("%w: line %d: discount must be between 0 and 100", shared.ErrValidation, i+1)
		}

		product, err := tx.GetProduct(ctx, businessID, rl.ProductID)
		if err != nil {
			return nil, nil, err
		}
		if !product.IsActive {
			return nil, nil, fmt.Errorf("%w: product %s is inactive", shared.ErrValidation, product.Code)
		}

		net, tax, total := lineAmounts(product.NetPrice, rl.Quantity, rl.DiscountPct, product.TaxRate)
		lines = append(lines, Line{
			ID:          uuid.New(),
			DocumentID:  doc.ID,
			ProductID:   product.ID,
			Description: product.Description,
			Quantity:    rl.Quantity,
			UnitPrice:   product.NetPrice,
			DiscountPct: rl.DiscountPct,
			TaxRate:     product.TaxRate,
			NetAmount:   net,
			TaxAmount:   tax,
			Total:       total,
			Position:    i + 1,
		})
		doc.Subtotal = doc.Subtotal.Add(net)
		doc.TaxAmount = doc.TaxAmount.Add(tax)
		doc.Total = doc.Total.Add(total)
	}
	return doc, lines, nil
}

// lineAmounts computes one line's money. The discount applies to the net
// price, tax applies to the discounted net, and each amount rounds to
// cents independently.
func lineAmounts(unitPrice, quantity, discountPct, taxRate decimal.Decimal) (net, tax, total decimal.Decimal) {
	factor := decimal.NewFromInt(1).Sub(discountPct.Div(hundred))
	net = unitPrice.Mul(quantity).Mul(factor).Round(2)
	tax = net.Mul(taxRate).Div(hundred).Round(2)
	total = net.Add(tax)
	return net, tax, total
}

// checkLetter enforces the letter against the client's tax condition:
// letter A only for registered taxpayers, letter B only for everyone else.
func checkLetter(t Type, client *clients.Client) error {
	switch t.Letter() {
	case "A":
		if !client.IsRegisteredTaxpayer() {
			return fmt.Errorf("%w: letter A requires a registered taxpayer", shared.ErrValidation)
		}
	case "B":
		if client.IsRegisteredTaxpayer() {
			return fmt.Errorf("%w: letter B is not valid for registered taxpayers", shared.ErrValidation)
		}
	}
	return nil
}

func persistDocument(ctx context.Context, tx TxRepository, doc *Document, lines []Line) error {
	if err := tx.InsertDocument(ctx, *doc); err != nil {
		return err
	}
	for _, l := range lines {
		if err := tx.InsertLine(ctx, l); err != nil {
			return err
		}
	}
	return nil
}

// applyStock moves whole units per line in the direction the type dictates.
// Fractional quantities move their integer part, mirroring how the counter
// register tracks stock.
func applyStock(ctx context.Context, tx TxRepository, doc *Document, lines []Line) error {
	direction := doc.Type.StockDirection()
	if direction == 0 {
		return nil
	}
	for _, l := range lines {
		units := l.Quantity.IntPart()
		if units == 0 {
			continue
		}
		if err := tx.AdjustStock(ctx, doc.BusinessID, l.ProductID, direction*units); err != nil {
			return err
		}
	}
	return nil
}

// openSession loads the register session issuance settles into. Invoices
// may not be issued without an open, non-expired session, whether or not
// they carry payments.
func (s *Service) openSession(ctx context.Context, tx TxRepository, businessID uuid.UUID) (*cash.Session, error) {
	session, err := tx.GetOpenCashSession(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(s.now()) {
		return nil, fmt.Errorf("%w: cash session expired", shared.ErrPreconditionFailed)
	}
	return session, nil
}

// allocatePayments settles an invoice: the splits must cover the total
// within tolerance, every method must be active, and each payment lands in
// the given cash session as a SALE movement. Unsettled invoices skip this
// entirely and are collected later.
func (s *Service) allocatePayments(ctx context.Context, tx TxRepository, doc *Document, session *cash.Session, reqs []CreatePaymentRequest, actorID uuid.UUID) error {
	sum := decimal.Zero
	for _, pr := range reqs {
		if pr.Amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: payment amounts must be positive", shared.ErrValidation)
		}

		method, err := tx.GetActivePaymentMethod(ctx, doc.BusinessID, pr.PaymentMethodID)
		if err != nil {
			return err
		}
		if !method.IsActive {
			return fmt.Errorf("%w: payment method %s is inactive", shared.ErrValidation, method.Name)
		}
		if method.RequiresReference && (pr.Reference == nil || *pr.Reference == "") {
			return fmt.Errorf("%w: payment method %s requires a reference", shared.ErrValidation, method.Name)
		}

		payment := Payment{
			ID:              uuid.New(),
			DocumentID:      doc.ID,
			PaymentMethodID: method.ID,
			MethodCode:      method.Code,
			Amount:          pr.Amount,
			Reference:       pr.Reference,
		}
		if err := tx.InsertPayment(ctx, payment); err != nil {
			return err
		}

		movement := cash.Movement{
			ID:          uuid.New(),
			SessionID:   session.ID,
			BusinessID:  doc.BusinessID,
			Kind:        cash.MovementSale,
			Method:      cash.MovementMethodFromCode(method.Code),
			Amount:      pr.Amount,
			Description: fmt.Sprintf("Sale %s %s", doc.Type, doc.Number),
			DocumentID:  &doc.ID,
			CreatedBy:   actorID,
		}
		if err := tx.InsertCashMovement(ctx, movement); err != nil {
			return err
		}

		sum = sum.Add(pr.Amount)
	}

	if sum.Sub(doc.Total).Abs().GreaterThan(paymentTolerance) {
		return fmt.Errorf("%w: payments %s do not match total %s", shared.ErrValidation, sum, doc.Total)
	}
	return nil
}

// authorize builds the authority request from the document. Tax amounts
// are grouped by rate; credit and debit notes reference the original
// invoice and send absolute amounts with no local number.
func (s *Service) authorize(ctx context.Context, biz *business.Business, client *clients.Client, doc *Document, lines []Line, original *Document) (*fiscal.Authorization, error) {
	kind := fiscal.KindInvoice
	switch {
	case doc.Type.IsCreditNote():
		kind = fiscal.KindCreditNote
	case doc.Type.IsDebitNote():
		kind = fiscal.KindDebitNote
	}
	voucherType, err := fiscal.VoucherTypeFor(doc.Type.Letter(), kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	byRate := make(map[string]*fiscal.TaxEntry)
	var rates []string
	for _, l := range lines {
		key := l.TaxRate.String()
		entry, ok := byRate[key]
		if !ok {
			entry = &fiscal.TaxEntry{Rate: l.TaxRate}
			byRate[key] = entry
			rates = append(rates, key)
		}
		entry.Base = entry.Base.Add(l.NetAmount.Abs())
		entry.Amount = entry.Amount.Add(l.TaxAmount.Abs())
	}
	taxes := make([]fiscal.TaxEntry, 0, len(rates))
	for _, key := range rates {
		taxes = append(taxes, *byRate[key])
	}

	req := fiscal.Request{
		BusinessTaxID: biz.TaxID,
		SalePoint:     biz.SalePoint,
		VoucherType:   voucherType,
		Number:        doc.Number,
		ClientTaxID:   client.TaxID,
		IssueDate:     doc.IssueDate,
		NetAmount:     doc.Subtotal.Abs(),
		TaxAmount:     doc.TaxAmount.Abs(),
		Total:         doc.Total.Abs(),
		Taxes:         taxes,
	}
	if original != nil {
		origVoucher, err := fiscal.VoucherTypeFor(original.Type.Letter(), fiscal.KindInvoice)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
		}
		req.Associated = &fiscal.AssociatedDocument{
			VoucherType: origVoucher,
			SalePoint:   biz.SalePoint,
			Number:      original.Number,
		}
	}
	return s.authorizer.Authorize(ctx, req)
}
