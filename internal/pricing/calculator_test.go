package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCalculateChainedDiscounts(t *testing.T) {
	got, err := Calculate(Input{
		ListPrice: dec("1000"),
		Discount1: dec("10"),
		Discount2: dec("5"),
		TaxRate:   dec("21"),
	})
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}
	if !got.NetPrice.Equal(dec("855.00")) {
		t.Fatalf("expected net 855.00 got %s", got.NetPrice)
	}
	if !got.SalePrice.Equal(dec("1034.55")) {
		t.Fatalf("expected sale 1034.55 got %s", got.SalePrice)
	}
	if got.DiscountLabel != "10+5" {
		t.Fatalf("expected label 10+5 got %q", got.DiscountLabel)
	}
}

func TestCalculateExtraCost(t *testing.T) {
	got, err := Calculate(Input{
		ListPrice:    dec("200"),
		Discount1:    dec("50"),
		ExtraCostPct: dec("10"),
		TaxRate:      dec("10.5"),
	})
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}
	// 200 × 0.5 × 1.10 = 110; 110 × 1.105 = 121.55
	if !got.NetPrice.Equal(dec("110.00")) {
		t.Fatalf("expected net 110.00 got %s", got.NetPrice)
	}
	if !got.SalePrice.Equal(dec("121.55")) {
		t.Fatalf("expected sale 121.55 got %s", got.SalePrice)
	}
}

func TestCalculateRoundsOnlyAtTheEnd(t *testing.T) {
	got, err := Calculate(Input{
		ListPrice: dec("99.99"),
		Discount1: dec("33.33"),
		TaxRate:   dec("21"),
	})
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}
	// 99.99 × 0.6667 = 66.663333; sale from the unrounded net: 80.662633
	if !got.NetPrice.Equal(dec("66.66")) {
		t.Fatalf("expected net 66.66 got %s", got.NetPrice)
	}
	if !got.SalePrice.Equal(dec("80.66")) {
		t.Fatalf("expected sale 80.66 got %s", got.SalePrice)
	}
}

func TestCalculateDeterministic(t *testing.T) {
	in := Input{ListPrice: dec("1234.56"), Discount1: dec("12"), Discount3: dec("3"), TaxRate: dec("27")}
	first, err := Calculate(in)
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}
	second, err := Calculate(in)
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}
	if !first.NetPrice.Equal(second.NetPrice) || !first.SalePrice.Equal(second.SalePrice) {
		t.Fatalf("expected identical results, got %+v vs %+v", first, second)
	}
	if first.DiscountLabel != "12+3" {
		t.Fatalf("expected label 12+3 got %q", first.DiscountLabel)
	}
}

func TestCalculateEmptyLabelWithoutDiscounts(t *testing.T) {
	got, err := Calculate(Input{ListPrice: dec("10"), TaxRate: dec("21")})
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}
	if got.DiscountLabel != "" {
		t.Fatalf("expected empty label got %q", got.DiscountLabel)
	}
}

func TestCalculateRejectsNegativeInput(t *testing.T) {
	cases := map[string]Input{
		"list":     {ListPrice: dec("-1")},
		"discount": {ListPrice: dec("10"), Discount2: dec("-5")},
		"extra":    {ListPrice: dec("10"), ExtraCostPct: dec("-1")},
		"tax":      {ListPrice: dec("10"), TaxRate: dec("-21")},
	}
	for name, in := range cases {
		if _, err := Calculate(in); err == nil {
			t.Fatalf("%s: expected error for negative input", name)
		}
	}
}
