package returns

import (
	"encoding/json"
	"errors"
	"net/http"

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

type recordRequest struct {
	MedicineID string           `json:"medicineId" validate:"required"`
	Quantity   int              `json:"quantity"`
	Type       model.ReturnType `json:"type"`
	Reason     string           `json:"reason" validate:"max=512"`
}

type recordResponse struct {
	Return   *model.ReturnRecord `json:"return"`
	Medicine *model.Medicine     `json:"medicine"`
}

func RecordReturnHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}

		rec, med, err := svc.Record(r.Context(), req.MedicineID, req.Quantity, req.Type, req.Reason)
		switch {
		case err == nil:
			writeJSON(w, http.StatusCreated, recordResponse{Return: rec, Medicine: med})
		case errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrInvalidType):
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrMedicineNotFound):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		default:
			logger.FromContext(r.Context()).Error("failed to record return", zap.Error(err))
			writeJSONError(w, "internal error", http.StatusInternalServerError)
		}
	}
}

func ListReturnsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := svc.List(r.Context())
		if err != nil {
			logger.FromContext(r.Context()).Error("failed to list returns", zap.Error(err))
			writeJSONError(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, records)
	}
}
