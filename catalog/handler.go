package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"apotek/logger"
	"apotek/model"
	"apotek/parsers"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = validator.New()

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// writeStoreError maps domain errors onto status codes.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNameRequired), errors.Is(err, ErrNegativeStock),
		errors.Is(err, ErrInvalidCount), errors.Is(err, ErrInvalidReturnType),
		errors.Is(err, ErrInvalidQuantity):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrMedicineNotFound):
		writeJSONError(w, err.Error(), http.StatusNotFound)
	default:
		logger.FromContext(r.Context()).Error("catalog request failed", zap.Error(err))
		writeJSONError(w, "internal error", http.StatusInternalServerError)
	}
}

// ListMedicinesHandler serves GET /api/medicines?q=&sort=&order=&page=.
// pageSize is read per request so settings changes apply immediately.
func ListMedicinesHandler(store *Store, pageSize func() int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, _ := strconv.Atoi(q.Get("page"))
		size, _ := strconv.Atoi(q.Get("pageSize"))
		if size <= 0 && pageSize != nil {
			size = pageSize()
		}

		result, err := store.ListMedicines(r.Context(), ListQuery{
			Search:   q.Get("q"),
			SortBy:   SortKey(q.Get("sort")),
			Desc:     q.Get("order") == "desc",
			Page:     page,
			PageSize: size,
		})
		if err != nil {
			writeStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

type registerRequest struct {
	Name         string   `json:"name"`
	Barcode      string   `json:"barcode" validate:"max=64"`
	Category     string   `json:"category" validate:"max=64"`
	Unit         string   `json:"unit" validate:"max=32"`
	InitialStock int      `json:"initialStock"`
	HNA          float64  `json:"hna"`
	Margin       *float64 `json:"margin"`
}

func RegisterMedicineHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}

		m, err := store.RegisterMedicine(r.Context(), model.MedicineInput{
			Name:         req.Name,
			Barcode:      req.Barcode,
			Category:     req.Category,
			Unit:         req.Unit,
			InitialStock: req.InitialStock,
			HNA:          req.HNA,
			Margin:       req.Margin,
		})
		if err != nil {
			writeStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, m)
	}
}

func GetMedicineHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := store.GetMedicine(r.Context(), r.PathValue("id"))
		if err != nil {
			writeStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func GetMedicineByBarcodeHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.PathValue("code")
		if code == "" {
			writeJSONError(w, "barcode is required", http.StatusBadRequest)
			return
		}
		m, err := store.FindByBarcode(r.Context(), code)
		if err != nil {
			writeStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

type importResult struct {
	Imported []model.Medicine     `json:"imported"`
	Skipped  []parsers.SkippedRow `json:"skipped"`
}

// ImportMedicinesHandler registers every row of an uploaded catalog CSV
// (multipart field "file", optional "encoding").
func ImportMedicinesHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		file, _, err := r.FormFile("file")
		if err != nil {
			writeJSONError(w, "file upload is required", http.StatusBadRequest)
			return
		}
		defer file.Close()

		decoded, err := parsers.Decode(file, r.FormValue("encoding"))
		if err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		rows, skipped, err := parsers.ParseMedicineCSV(decoded, log)
		if err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}

		result := importResult{Imported: []model.Medicine{}, Skipped: skipped}
		for _, row := range rows {
			m, err := store.RegisterMedicine(r.Context(), row)
			if err != nil {
				writeStoreError(w, r, err)
				return
			}
			result.Imported = append(result.Imported, *m)
		}
		log.Info("catalog import finished",
			zap.Int("imported", len(result.Imported)), zap.Int("skipped", len(skipped)))
		writeJSON(w, http.StatusOK, result)
	}
}

func ListInvoicesHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invoices, err := store.ListInvoices(r.Context())
		if err != nil {
			writeStoreError(w, r, err)
			return
		}
		if invoices == nil {
			invoices = []model.Invoice{}
		}
		writeJSON(w, http.StatusOK, invoices)
	}
}
