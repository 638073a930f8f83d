package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"apotek/catalog"
	"apotek/logger"
	"apotek/model"

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

func writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNoItems), errors.Is(err, ErrSupplierRequired),
		errors.Is(err, ErrSupplierNotFound), errors.Is(err, catalog.ErrMedicineNotFound):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrOrderNotFound):
		writeJSONError(w, err.Error(), http.StatusNotFound)
	default:
		logger.FromContext(r.Context()).Error("order request failed", zap.Error(err))
		writeJSONError(w, "internal error", http.StatusInternalServerError)
	}
}

type submitRequest struct {
	SupplierID string `json:"supplierId" validate:"max=64"`
	Supplier   string `json:"supplier" validate:"max=128"`
	Items      []struct {
		MedicineID string `json:"medicineId" validate:"required"`
		Quantity   int    `json:"quantity"`
	} `json:"items" validate:"dive"`
}

// SubmitOrderHandler builds a draft from the request and submits it.
func SubmitOrderHandler(svc *Service, store *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}

		d := NewDraft()
		d.SetSupplier(req.SupplierID, req.Supplier)
		for _, it := range req.Items {
			m, err := store.GetMedicine(r.Context(), it.MedicineID)
			if err != nil {
				writeOrderError(w, r, fmt.Errorf("%s: %w", it.MedicineID, err))
				return
			}
			d.Add(*m)
			d.SetQuantity(it.MedicineID, it.Quantity)
		}

		po, err := svc.Submit(r.Context(), d)
		if err != nil {
			writeOrderError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, po)
	}
}

// ListOrdersHandler serves GET /api/orders?status=Sent,Received.
func ListOrdersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var statuses []model.OrderStatus
		if raw := r.URL.Query().Get("status"); raw != "" {
			for _, s := range strings.Split(raw, ",") {
				if s = strings.TrimSpace(s); s != "" {
					statuses = append(statuses, model.OrderStatus(s))
				}
			}
		}
		orders, err := svc.ListByStatus(r.Context(), statuses...)
		if err != nil {
			writeOrderError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, orders)
	}
}

func GetOrderHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		po, err := svc.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			writeOrderError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, po)
	}
}

// SetPaidHandler accepts {"paid": bool}.
func SetPaidHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Paid bool `json:"paid"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, "invalid request body", http.StatusBadRequest)
			return
		}
		po, err := svc.SetPaid(r.Context(), r.PathValue("id"), req.Paid)
		if err != nil {
			writeOrderError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, po)
	}
}

func DocumentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		html, err := svc.Document(r.Context(), r.PathValue("id"))
		if err != nil {
			writeOrderError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(html))
	}
}

func PDFHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		pdf, err := svc.PrintPDF(r.Context(), id)
		if err != nil {
			writeOrderError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="SP_%s.pdf"`, id))
		w.Write(pdf)
	}
}

// SuggestionsHandler returns the advisor's proposal, or null when none is
// available.
func SuggestionsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Suggest(r.Context()))
	}
}
