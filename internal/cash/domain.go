// Package cash tracks register sessions and the movement ledger. A business
// holds at most one open session, and every settled sale writes its
// movements into it.
package cash

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessionStatus is the register session lifecycle.
type SessionStatus string

const (
	SessionOpen   SessionStatus = "OPEN"
	SessionClosed SessionStatus = "CLOSED"
)

// SessionTTL bounds how long a session stays usable after opening.
const SessionTTL = 24 * time.Hour

// Session is one register shift. ExpectedCash and Difference are computed
// at close and stay immutable afterwards.
type Session struct {
	ID         uuid.UUID `json:"id"`
	BusinessID uuid.UUID `json:"business_id"`

	Status        SessionStatus   `json:"status"`
	OpeningAmount decimal.Decimal `json:"opening_amount"`

	OpenedBy uuid.UUID `json:"opened_by"`
	OpenedAt time.Time `json:"opened_at"`

	ClosedBy      *uuid.UUID       `json:"closed_by,omitempty"`
	ClosedAt      *time.Time       `json:"closed_at,omitempty"`
	CountedAmount *decimal.Decimal `json:"counted_amount,omitempty"`
	ExpectedCash  *decimal.Decimal `json:"expected_cash,omitempty"`
	Difference    *decimal.Decimal `json:"difference,omitempty"`
	CloseReason   *string          `json:"close_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ExpiresAt returns the instant the session stops accepting movements.
func (s Session) ExpiresAt() time.Time {
	return s.OpenedAt.Add(SessionTTL)
}

// IsExpired reports whether the session has been open for more than its
// lifetime at the given instant. The expiry instant itself is still valid.
func (s Session) IsExpired(now time.Time) bool {
	return s.Status == SessionOpen && now.After(s.ExpiresAt())
}

// MovementKind classifies a ledger entry.
type MovementKind string

const (
	MovementSale       MovementKind = "SALE"
	MovementCollection MovementKind = "COLLECTION"
	MovementIncome     MovementKind = "INCOME"
	MovementExpense    MovementKind = "EXPENSE"
)

// Valid reports whether k is a known movement kind.
func (k MovementKind) Valid() bool {
	switch k {
	case MovementSale, MovementCollection, MovementIncome, MovementExpense:
		return true
	}
	return false
}

// MovementMethod is the tender bucket a movement settles in. Summaries
// group by it, and only the CASH bucket counts toward expected cash.
type MovementMethod string

const (
	MethodCash     MovementMethod = "CASH"
	MethodCard     MovementMethod = "CARD"
	MethodTransfer MovementMethod = "TRANSFER"
	MethodCheck    MovementMethod = "CHECK"
	MethodOther    MovementMethod = "OTHER"
)

// MovementMethodFromCode maps a payment method code onto its tender
// bucket. Unknown codes land in OTHER.
func MovementMethodFromCode(code string) MovementMethod {
	switch code {
	case "CASH":
		return MethodCash
	case "CARD":
		return MethodCard
	case "TRANSFER":
		return MethodTransfer
	case "CHECK":
		return MethodCheck
	}
	return MethodOther
}

// Movement is one ledger entry inside a session. Amounts are always
// positive; the kind decides the sign during aggregation.
type Movement struct {
	ID         uuid.UUID `json:"id"`
	SessionID  uuid.UUID `json:"session_id"`
	BusinessID uuid.UUID `json:"business_id"`

	Kind   MovementKind   `json:"kind"`
	Method MovementMethod `json:"method"`

	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`

	// DocumentID links movements written by document issuance.
	DocumentID *uuid.UUID `json:"document_id,omitempty"`

	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}
