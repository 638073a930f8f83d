package supplier

import (
	"encoding/json"
	"errors"
	"net/http"

	"apotek/logger"

	"go.uber.org/zap"
)

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// ListSuppliersHandler returns every supplier ordered by id.
func ListSuppliersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		suppliers, err := svc.List(r.Context())
		if err != nil {
			logger.FromContext(r.Context()).Error("failed to list suppliers", zap.Error(err))
			writeJSONError(w, "failed to list suppliers", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(suppliers)
	}
}

// CreateSupplierHandler registers a new supplier.
func CreateSupplierHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input Input
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeJSONError(w, "invalid request body", http.StatusBadRequest)
			return
		}

		sup, err := svc.Register(r.Context(), input)
		if err != nil {
			if errors.Is(err, ErrNameRequired) || errors.Is(err, ErrInvalidEmail) {
				writeJSONError(w, err.Error(), http.StatusBadRequest)
				return
			}
			logger.FromContext(r.Context()).Error("failed to create supplier",
				zap.String("name", input.Name), zap.Error(err))
			writeJSONError(w, "failed to create supplier", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(sup)
	}
}
