package returns

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"apotek/catalog"
	"apotek/loader"
	"apotek/metrics"
	"apotek/model"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*Service, *catalog.Store, *metrics.Metrics) {
	t.Helper()
	db, err := loader.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store := catalog.NewStore(db, nil)
	store.SetClock(func() time.Time { return time.Date(2026, 3, 9, 16, 0, 0, 0, time.UTC) })
	m := metrics.New()
	return NewService(store, m, nil), store, m
}

func register(t *testing.T, s *catalog.Store, stock int) *model.Medicine {
	t.Helper()
	med, err := s.RegisterMedicine(context.Background(), model.MedicineInput{Name: "Cetirizine 10mg", InitialStock: stock, HNA: 3500})
	require.NoError(t, err)
	return med
}

func TestRecord(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		stock     int
		qty       int
		typ       model.ReturnType
		wantStock int
	}{
		{"sales return adds", 10, 5, model.ReturnSales, 15},
		{"purchase return subtracts", 10, 4, model.ReturnPurchase, 6},
		{"purchase return floors at zero", 3, 5, model.ReturnPurchase, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, m := newService(t)
			med := register(t, store, tt.stock)

			rec, updated, err := svc.Record(ctx, med.ID, tt.qty, tt.typ, " rusak ")
			require.NoError(t, err)
			assert.Equal(t, "RET-000001", rec.ID)
			assert.Equal(t, model.ReturnPending, rec.Status)
			assert.Equal(t, "Cetirizine 10mg", rec.MedicineName)
			assert.Equal(t, "rusak", rec.Reason)
			assert.Equal(t, tt.wantStock, updated.SystemStock)
			assert.Equal(t, 1.0, testutil.ToFloat64(m.ReturnsRecorded.WithLabelValues(string(tt.typ))))
		})
	}
}

func TestRecordRejects(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService(t)
	med := register(t, store, 10)

	_, _, err := svc.Record(ctx, "MED-404", 1, model.ReturnSales, "")
	assert.ErrorIs(t, err, ErrMedicineNotFound)
	_, _, err = svc.Record(ctx, med.ID, 0, model.ReturnSales, "")
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, _, err = svc.Record(ctx, med.ID, 1, "Exchange", "")
	assert.ErrorIs(t, err, ErrInvalidType)

	records, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	got, err := store.GetMedicine(ctx, med.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.SystemStock)
}

func TestHandlers(t *testing.T) {
	svc, store, _ := newService(t)
	med := register(t, store, 10)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/returns", ListReturnsHandler(svc))
	mux.HandleFunc("POST /api/returns", RecordReturnHandler(svc))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/returns",
		strings.NewReader(`{"medicineId":"`+med.ID+`","quantity":2,"type":"Purchase","reason":"expired"}`)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"systemStock":8`)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/returns",
		strings.NewReader(`{"medicineId":"MED-404","quantity":2,"type":"Sales"}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/returns",
		strings.NewReader(`{"medicineId":"`+med.ID+`","quantity":2,"type":"Other"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/returns", nil))
	assert.Contains(t, rec.Body.String(), `"type":"Purchase"`)
}
