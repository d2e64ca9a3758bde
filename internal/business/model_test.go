package business

import "testing"

func TestCounterFamilyColumn(t *testing.T) {
	cases := []struct {
		family CounterFamily
		column string
	}{
		{CounterQuotation, "last_quotation_number"},
		{CounterDeliveryNote, "last_delivery_note_number"},
		{CounterInvoiceA, "last_invoice_a_number"},
		{CounterInvoiceB, "last_invoice_b_number"},
		{CounterInvoiceC, "last_invoice_c_number"},
	}
	for _, tc := range cases {
		column, ok := tc.family.Column()
		if !ok {
			t.Fatalf("family %s not mapped", tc.family)
		}
		if column != tc.column {
			t.Fatalf("family %s: got column %s, want %s", tc.family, column, tc.column)
		}
	}

	if _, ok := CounterFamily("credit_note_a").Column(); ok {
		t.Fatal("unknown family must not map to a column")
	}
}

func TestFormatNumber(t *testing.T) {
	if got := FormatNumber(1); got != "00000001" {
		t.Fatalf("got %s", got)
	}
	if got := FormatNumber(12345678); got != "12345678" {
		t.Fatalf("got %s", got)
	}
}
