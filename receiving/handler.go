package receiving

import (
	"encoding/json"
	"errors"
	"net/http"

	"apotek/logger"

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

func writeReceivingError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvoiceNumberRequired), errors.Is(err, ErrNoLines),
		errors.Is(err, ErrLineNotFound), errors.Is(err, ErrUnknownField),
		errors.Is(err, ErrInvalidQuantity):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrOrderNotFound):
		writeJSONError(w, err.Error(), http.StatusNotFound)
	default:
		logger.FromContext(r.Context()).Error("receiving request failed", zap.Error(err))
		writeJSONError(w, "internal error", http.StatusInternalServerError)
	}
}

// DraftHandler serves GET /api/receiving/draft?poId=.
func DraftHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		poID := r.URL.Query().Get("poId")
		if poID == "" {
			writeJSONError(w, "poId is required", http.StatusBadRequest)
			return
		}
		d, err := svc.Start(r.Context(), poID)
		if err != nil {
			writeReceivingError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}

type finalizeRequest struct {
	POID          string `json:"poId" validate:"required"`
	InvoiceNumber string `json:"invoiceNumber" validate:"max=64"`
	Edits         []struct {
		MedicineID string  `json:"medicineId" validate:"required"`
		Field      string  `json:"field" validate:"required,oneof=quantity hna ppn sellingPrice"`
		Value      float64 `json:"value"`
	} `json:"edits" validate:"dive"`
}

// FinalizeHandler rebuilds the draft from the order, replays the
// operator's edits in order and records the invoice.
func FinalizeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req finalizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}

		d, err := svc.Start(r.Context(), req.POID)
		if err != nil {
			writeReceivingError(w, r, err)
			return
		}
		for _, e := range req.Edits {
			edit, err := EditFromField(e.Field, e.Value)
			if err != nil {
				writeReceivingError(w, r, err)
				return
			}
			if err := svc.Edit(r.Context(), d, e.MedicineID, edit); err != nil {
				writeReceivingError(w, r, err)
				return
			}
		}

		receipt, err := svc.Finalize(r.Context(), d, req.InvoiceNumber)
		if err != nil {
			writeReceivingError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, receipt)
	}
}
