package catalog

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"apotek/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogMux(s *Store) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/medicines", ListMedicinesHandler(s, func() int { return 2 }))
	mux.HandleFunc("POST /api/medicines", RegisterMedicineHandler(s))
	mux.HandleFunc("GET /api/medicines/{id}", GetMedicineHandler(s))
	mux.HandleFunc("GET /api/medicines/by_barcode/{code}", GetMedicineByBarcodeHandler(s))
	mux.HandleFunc("POST /api/medicines/import", ImportMedicinesHandler(s))
	mux.HandleFunc("GET /api/invoices", ListInvoicesHandler(s))
	return mux
}

func TestRegisterMedicineHandler(t *testing.T) {
	s := createTestStore(t)
	mux := newCatalogMux(s)

	body := `{"name":"Ibuprofen 400mg","unit":"box","hna":10000,"initialStock":12}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/medicines", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var got model.Medicine
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "MED-000001", got.ID)
	assert.Equal(t, "Box", got.Unit)
	assert.Equal(t, 1100.0, got.PPN)
	assert.Equal(t, 13320.0, got.SellingPrice)

	t.Run("missing name", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/medicines", strings.NewReader(`{"name":"  "}`)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), ErrNameRequired.Error())
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/medicines", strings.NewReader(`{`)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetMedicineHandlers(t *testing.T) {
	s := createTestStore(t)
	mux := newCatalogMux(s)
	m := createTestMedicine(t, s, "Amoxicillin 500mg", 10)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/medicines/"+m.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Amoxicillin 500mg")

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/medicines/MED-999999", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/medicines/by_barcode/"+m.Barcode, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), m.ID)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/medicines/by_barcode/NOPE", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListMedicinesHandler(t *testing.T) {
	s := createTestStore(t)
	mux := newCatalogMux(s)
	for _, name := range []string{"Cetirizine", "Amlodipine", "Metformin"} {
		createTestMedicine(t, s, name, 5)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/medicines?sort=name&page=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var page Page
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 2, page.PageSize)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Amlodipine", page.Items[0].Name)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/medicines?q=met&pageSize=10", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 1, page.TotalItems)
	assert.Equal(t, 10, page.PageSize)
}

func TestImportMedicinesHandler(t *testing.T) {
	s := createTestStore(t)
	mux := newCatalogMux(s)

	csv := "name,barcode,category,unit,stock,hna,margin\n" +
		"Paracetamol 500mg,PCT-002,Analgesik,Box,45,12000,15\n" +
		",MISSING,,,1,1,1\n"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "catalog.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/medicines/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res importResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Imported, 1)
	assert.Equal(t, "PCT-002", res.Imported[0].Barcode)
	assert.Len(t, res.Skipped, 1)

	t.Run("no file", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/medicines/import", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListInvoicesHandlerEmpty(t *testing.T) {
	s := createTestStore(t)
	rec := httptest.NewRecorder()
	newCatalogMux(s).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/invoices", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}
