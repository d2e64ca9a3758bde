// Package pricing computes product prices from a list price and a chain of
// percentage adjustments. It is pure: same input, same output, no state.
package pricing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/australsoft/comercia/internal/shared"
)

var hundred = decimal.NewFromInt(100)

// Input holds the pricing chain for a product.
type Input struct {
	ListPrice    decimal.Decimal
	Discount1    decimal.Decimal
	Discount2    decimal.Decimal
	Discount3    decimal.Decimal
	ExtraCostPct decimal.Decimal
	TaxRate      decimal.Decimal
}

// Result holds the derived prices and the display label for the discounts.
type Result struct {
	NetPrice      decimal.Decimal
	SalePrice     decimal.Decimal
	DiscountLabel string
}

// Calculate applies the chained discounts and the extra-cost percentage to
// the list price, then the tax rate on top:
//
//	net  = list × (1 − d1/100) × (1 − d2/100) × (1 − d3/100) × (1 + extra/100)
//	sale = net × (1 + tax/100)
//
// Both results are rounded to 2 decimal places only at the end, never per
// factor. Any negative input is rejected.
func Calculate(in Input) (Result, error) {
	for _, f := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"list_price", in.ListPrice},
		{"discount_1", in.Discount1},
		{"discount_2", in.Discount2},
		{"discount_3", in.Discount3},
		{"extra_cost", in.ExtraCostPct},
		{"tax_rate", in.TaxRate},
	} {
		if f.value.IsNegative() {
			return Result{}, fmt.Errorf("%w: %s cannot be negative", shared.ErrValidation, f.name)
		}
	}

	one := decimal.NewFromInt(1)
	net := in.ListPrice.
		Mul(one.Sub(in.Discount1.Div(hundred))).
		Mul(one.Sub(in.Discount2.Div(hundred))).
		Mul(one.Sub(in.Discount3.Div(hundred))).
		Mul(one.Add(in.ExtraCostPct.Div(hundred)))
	sale := net.Mul(one.Add(in.TaxRate.Div(hundred)))

	return Result{
		NetPrice:      net.Round(2),
		SalePrice:     sale.Round(2),
		DiscountLabel: discountLabel(in.Discount1, in.Discount2, in.Discount3),
	}, nil
}

// discountLabel joins the non-zero discounts with "+", e.g. "10+5".
func discountLabel(discounts ...decimal.Decimal) string {
	var parts []string
	for _, d := range discounts {
		if d.IsPositive() {
			parts = append(parts, strconv.FormatInt(d.IntPart(), 10))
		}
	}
	return strings.Join(parts, "+")
}
