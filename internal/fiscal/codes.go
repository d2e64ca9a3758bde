package fiscal

import "fmt"

// Voucher type codes used by the authority's billing service.
const (
	VoucherInvoiceA    = 1
	VoucherDebitNoteA  = 2
	VoucherCreditNoteA = 3
	VoucherInvoiceB    = 6
	VoucherDebitNoteB  = 7
	VoucherCreditNoteB = 8
	VoucherInvoiceC    = 11
	VoucherDebitNoteC  = 12
	VoucherCreditNoteC = 13
)

// VoucherKind distinguishes the three fiscal document shapes that share a
// letter.
type VoucherKind int

const (
	KindInvoice VoucherKind = iota
	KindCreditNote
	KindDebitNote
)

// VoucherTypeFor resolves the voucher code for a letter and kind.
func VoucherTypeFor(letter string, kind VoucherKind) (int, error) {
	codes, ok := map[string][3]int{
		"A": {VoucherInvoiceA, VoucherCreditNoteA, VoucherDebitNoteA},
		"B": {VoucherInvoiceB, VoucherCreditNoteB, VoucherDebitNoteB},
		"C": {VoucherInvoiceC, VoucherCreditNoteC, VoucherDebitNoteC},
	}[letter]
	if !ok {
		return 0, fmt.Errorf("fiscal: unknown letter %q", letter)
	}
	switch kind {
	case KindInvoice:
		return codes[0], nil
	case KindCreditNote:
		return codes[1], nil
	case KindDebitNote:
		return codes[2], nil
	}
	return 0, fmt.Errorf("fiscal: unknown voucher kind %d", kind)
}
