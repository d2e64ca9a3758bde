package fiscal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/australsoft/comercia/internal/shared"
)

func sampleRequest() Request {
	return Request{
		BusinessTaxID: "30-71234567-8",
		SalePoint:     "0001",
		VoucherType:   VoucherInvoiceB,
		Number:        "00000042",
		IssueDate:     time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestArcaAuthorizeGrants(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/vouchers", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"result":  "A",
			"cae":     "70001234567890",
			"cae_due": "2026-03-20",
		})
	}))
	defer srv.Close()

	client := NewArcaClient(srv.URL, "secret", time.Second)
	auth, err := client.Authorize(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, "70001234567890", auth.Code)
	assert.Equal(t, time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC), auth.Expiry)
	assert.Equal(t, "00000042", auth.Number, "falls back to the requested number")
	assert.Equal(t, VoucherInvoiceB, got.VoucherType)
}

func TestArcaAuthorizeUsesAssignedNumber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"result":  "A",
			"cae":     "70009999999999",
			"cae_due": "2026-03-20",
			"number":  "00000107",
		})
	}))
	defer srv.Close()

	req := sampleRequest()
	req.Number = ""
	auth, err := NewArcaClient(srv.URL, "secret", time.Second).Authorize(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "00000107", auth.Number)
}

func TestArcaAuthorizeRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"result": "R",
			"reason": "invalid tax id",
		})
	}))
	defer srv.Close()

	_, err := NewArcaClient(srv.URL, "secret", time.Second).Authorize(context.Background(), sampleRequest())
	require.ErrorIs(t, err, shared.ErrUpstream)
	assert.Contains(t, err.Error(), "invalid tax id")
}

func TestArcaAuthorizeStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewArcaClient(srv.URL, "secret", time.Second).Authorize(context.Background(), sampleRequest())
	require.ErrorIs(t, err, shared.ErrUpstream)
}

func TestArcaAuthorizeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := NewArcaClient(srv.URL, "secret", time.Second).Authorize(context.Background(), sampleRequest())
	require.ErrorIs(t, err, shared.ErrUpstream)
}

func TestStaticAuthorizerAssignsNumbers(t *testing.T) {
	auth := NewStaticAuthorizer()

	req := sampleRequest()
	req.Number = ""
	first, err := auth.Authorize(context.Background(), req)
	require.NoError(t, err)
	second, err := auth.Authorize(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "00000001", first.Number)
	assert.Equal(t, "00000002", second.Number)
	assert.NotEqual(t, first.Code, second.Code)
	assert.Equal(t, req.IssueDate.Add(240*time.Hour), first.Expiry)

	req.Number = "00000042"
	kept, err := auth.Authorize(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "00000042", kept.Number)
}

func TestVoucherTypeFor(t *testing.T) {
	cases := []struct {
		letter string
		kind   VoucherKind
		want   int
	}{
		{"A", KindInvoice, VoucherInvoiceA},
		{"A", KindCreditNote, VoucherCreditNoteA},
		{"A", KindDebitNote, VoucherDebitNoteA},
		{"B", KindInvoice, VoucherInvoiceB},
		{"B", KindCreditNote, VoucherCreditNoteB},
		{"B", KindDebitNote, VoucherDebitNoteB},
		{"C", KindInvoice, VoucherInvoiceC},
		{"C", KindCreditNote, VoucherCreditNoteC},
		{"C", KindDebitNote, VoucherDebitNoteC},
	}
	for _, tc := range cases {
		got, err := VoucherTypeFor(tc.letter, tc.kind)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	_, err := VoucherTypeFor("X", KindInvoice)
	assert.Error(t, err)
}
