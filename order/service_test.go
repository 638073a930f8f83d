package order

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"apotek/advisor"
	"apotek/catalog"
	"apotek/loader"
	"apotek/model"
	"apotek/supplier"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 9, 8, 30, 0, 0, time.UTC)

type fakeAdvisor struct {
	got         []model.Medicine
	suggestions []model.OrderSuggestion
	err         error
}

func (f *fakeAdvisor) ExplainDiscrepancy(context.Context, advisor.Discrepancy) (string, error) {
	return "", nil
}

func (f *fakeAdvisor) SuggestOrder(_ context.Context, meds []model.Medicine) ([]model.OrderSuggestion, error) {
	f.got = meds
	return f.suggestions, f.err
}

type fakePrinter struct {
	html string
}

func (p *fakePrinter) PDF(_ context.Context, html string) ([]byte, error) {
	p.html = html
	return []byte("%PDF-1.4 fake"), nil
}

type fixture struct {
	store    *catalog.Store
	svc      *Service
	adv      *fakeAdvisor
	printer  *fakePrinter
	amx, pct *model.Medicine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := loader.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := catalog.NewStore(db, nil)
	store.SetClock(func() time.Time { return fixedNow })

	f := &fixture{store: store, adv: &fakeAdvisor{}, printer: &fakePrinter{}}
	f.svc = NewService(store, f.adv, f.printer, func() int { return 50 }, nil)

	f.amx, err = store.RegisterMedicine(context.Background(), model.MedicineInput{Name: "Amoxicillin 500mg", Unit: "Strip", InitialStock: 120, HNA: 5000})
	require.NoError(t, err)
	f.pct, err = store.RegisterMedicine(context.Background(), model.MedicineInput{Name: "Paracetamol 500mg", Unit: "Box", InitialStock: 45, HNA: 12000})
	require.NoError(t, err)
	return f
}

func countOrders(t *testing.T, svc *Service) int {
	t.Helper()
	orders, err := svc.List(context.Background())
	require.NoError(t, err)
	return len(orders)
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	d := NewDraft()
	d.Add(*f.amx)
	d.Add(*f.pct)
	d.SetQuantity(f.amx.ID, 10)
	d.SetQuantity(f.pct.ID, 0)
	d.SetSupplier("", "PBF Sehat")

	po, err := f.svc.Submit(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, "PO-000001", po.ID)
	assert.Equal(t, model.OrderSent, po.Status)
	assert.Equal(t, fixedNow, po.Date)
	assert.False(t, po.IsPaid)
	require.Len(t, po.Items, 2)
	assert.Equal(t, 5550.0, po.Items[0].UnitCost)
	assert.Equal(t, 1, po.Items[1].Quantity)
	assert.Equal(t, 10*5550.0+13320.0, po.TotalAmount)

	stored, err := f.svc.Get(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, "PBF Sehat", stored.SupplierName)
	assert.Len(t, stored.Items, 2)
}

func TestSubmitRejectsIncompleteDraft(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	empty := NewDraft()
	empty.SetSupplier("", "PBF Sehat")
	_, err := f.svc.Submit(ctx, empty)
	assert.ErrorIs(t, err, ErrNoItems)

	noSupplier := NewDraft()
	noSupplier.Add(*f.amx)
	noSupplier.SetSupplier("  ", " ")
	_, err = f.svc.Submit(ctx, noSupplier)
	assert.ErrorIs(t, err, ErrSupplierRequired)

	unknown := NewDraft()
	unknown.Add(*f.amx)
	unknown.SetSupplier("SUP-999999", "")
	_, err = f.svc.Submit(ctx, unknown)
	assert.ErrorIs(t, err, ErrSupplierNotFound)

	assert.Zero(t, countOrders(t, f.svc))

	next := NewDraft()
	next.Add(*f.amx)
	next.SetSupplier("", "PBF Sehat")
	po, err := f.svc.Submit(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, "PO-000001", po.ID, "failed submissions consume no order number")
}

func TestSubmitWithRegisteredSupplier(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sup, err := supplier.NewService(f.store.DB(), nil).Register(ctx, supplier.Input{Name: "PT Kimia Farma", Address: "Jl. Veteran 9"})
	require.NoError(t, err)

	d := NewDraft()
	d.Add(*f.amx)
	d.SetSupplier(sup.ID, "ignored")
	po, err := f.svc.Submit(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, "PT Kimia Farma", po.SupplierName)

	html, err := f.svc.Document(ctx, po.ID)
	require.NoError(t, err)
	assert.Contains(t, html, "Jl. Veteran 9")
	assert.Contains(t, html, "Rp 5.550")

	pdf, err := f.svc.PrintPDF(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(pdf))
	assert.Equal(t, html, f.printer.html)

	_, err = f.svc.Document(ctx, "PO-404")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestSetPaidAndList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for i := 0; i < 3; i++ {
		d := NewDraft()
		d.Add(*f.amx)
		d.SetSupplier("", "PBF Sehat")
		_, err := f.svc.Submit(ctx, d)
		require.NoError(t, err)
	}

	po, err := f.svc.SetPaid(ctx, "PO-000002", true)
	require.NoError(t, err)
	assert.True(t, po.IsPaid)
	assert.Equal(t, model.OrderSent, po.Status)

	_, err = f.svc.SetPaid(ctx, "PO-404", true)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	orders, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "PO-000003", orders[0].ID)
	assert.Len(t, orders[0].Items, 1)

	received, err := f.svc.ListByStatus(ctx, model.OrderReceived)
	require.NoError(t, err)
	assert.Empty(t, received)
}

func TestSuggest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.adv.suggestions = []model.OrderSuggestion{{MedicineID: f.pct.ID, SuggestedQty: 100, Reasoning: "below threshold"}}

	got := f.svc.Suggest(ctx)
	require.Len(t, got, 1)
	require.Len(t, f.adv.got, 1)
	assert.Equal(t, f.pct.ID, f.adv.got[0].ID)

	f.adv.err = errors.New("quota exceeded")
	assert.Nil(t, f.svc.Suggest(ctx))
}

func TestHandlers(t *testing.T) {
	f := newFixture(t)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/orders", ListOrdersHandler(f.svc))
	mux.HandleFunc("POST /api/orders", SubmitOrderHandler(f.svc, f.store))
	mux.HandleFunc("GET /api/orders/suggestions", SuggestionsHandler(f.svc))
	mux.HandleFunc("GET /api/orders/{id}", GetOrderHandler(f.svc))
	mux.HandleFunc("POST /api/orders/{id}/paid", SetPaidHandler(f.svc))
	mux.HandleFunc("GET /api/orders/{id}/document", DocumentHandler(f.svc))
	mux.HandleFunc("GET /api/orders/{id}/pdf", PDFHandler(f.svc))

	do := func(method, path, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
		return rec
	}

	rec := do(http.MethodPost, "/api/orders", `{"supplier":"","items":[{"medicineId":"`+f.amx.ID+`","quantity":2}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(http.MethodPost, "/api/orders", `{"supplier":"PBF Sehat","items":[{"medicineId":"MED-404","quantity":2}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(http.MethodPost, "/api/orders", `{"supplier":"PBF Sehat","items":[{"medicineId":"`+f.amx.ID+`","quantity":2}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"id":"PO-000001"`)

	rec = do(http.MethodPost, "/api/orders/PO-000001/paid", `{"paid":true}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"isPaid":true`)

	rec = do(http.MethodGet, "/api/orders?status=Sent", "")
	assert.Contains(t, rec.Body.String(), "PO-000001")
	rec = do(http.MethodGet, "/api/orders?status=Received", "")
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(http.MethodGet, "/api/orders/PO-404", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(http.MethodGet, "/api/orders/PO-000001/document", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	rec = do(http.MethodGet, "/api/orders/PO-000001/pdf", "")
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))

	rec = do(http.MethodGet, "/api/orders/suggestions", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
}
