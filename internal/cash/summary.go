package cash

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MethodTotals aggregates one tender bucket within a session.
type MethodTotals struct {
	Method      MovementMethod  `json:"method"`
	Sales       decimal.Decimal `json:"sales"`
	Collections decimal.Decimal `json:"collections"`
	Income      decimal.Decimal `json:"income"`
	Expense     decimal.Decimal `json:"expense"`
	Net         decimal.Decimal `json:"net"`
	Display     string          `json:"display"`
}

// Summary is the reconciliation view of a session: per-method nets plus
// the cash expectation the close compares the drawer against.
type Summary struct {
	OpeningAmount decimal.Decimal `json:"opening_amount"`
	ByMethod      []MethodTotals  `json:"by_method"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	TotalNet      decimal.Decimal `json:"total_net"`
	ExpectedCash  decimal.Decimal `json:"expected_cash"`
	Display       string          `json:"display"`
}

var summaryOrder = []MovementMethod{MethodCash, MethodCard, MethodTransfer, MethodCheck, MethodOther}

var amountPrinter = message.NewPrinter(language.MustParse("es-AR"))

// FormatAmount renders a money amount with the register's locale, so the
// printed summaries match the tickets the counter staff reads.
func FormatAmount(d decimal.Decimal) string {
	return amountPrinter.Sprintf("$ %.2f", d.InexactFloat64())
}

// BuildSummary aggregates a session's movements. Net per bucket is
// sales + collections + income - expense; expected cash is the opening
// amount plus the CASH bucket's net.
func BuildSummary(session Session, movements []Movement) Summary {
	totals := make(map[MovementMethod]*MethodTotals)
	for _, m := range movements {
		t, ok := totals[m.Method]
		if !ok {
			t = &MethodTotals{Method: m.Method}
			totals[m.Method] = t
		}
		switch m.Kind {
		case MovementSale:
			t.Sales = t.Sales.Add(m.Amount)
		case MovementCollection:
			t.Collections = t.Collections.Add(m.Amount)
		case MovementIncome:
			t.Income = t.Income.Add(m.Amount)
		case MovementExpense:
			t.Expense = t.Expense.Add(m.Amount)
		}
	}

	summary := Summary{
		OpeningAmount: session.OpeningAmount,
		ExpectedCash:  session.OpeningAmount,
	}
	for _, method := range summaryOrder {
		t, ok := totals[method]
		if !ok {
			continue
		}
		t.Net = t.Sales.Add(t.Collections).Add(t.Income).Sub(t.Expense)
		t.Display = FormatAmount(t.Net)
		summary.ByMethod = append(summary.ByMethod, *t)
		summary.TotalSales = summary.TotalSales.Add(t.Sales)
		summary.TotalNet = summary.TotalNet.Add(t.Net)
		if method == MethodCash {
			summary.ExpectedCash = summary.ExpectedCash.Add(t.Net)
		}
	}
	summary.Display = FormatAmount(summary.ExpectedCash)
	return summary
}
