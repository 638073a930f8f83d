package opname

import (
	"encoding/json"
	"errors"
	"net/http"

	"apotek/catalog"
	"apotek/logger"

	"go.uber.org/zap"
)

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

func writeOpnameError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrInvalidCount), errors.Is(err, catalog.ErrNegativeStock):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, catalog.ErrMedicineNotFound):
		writeJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrSessionClosed):
		writeJSONError(w, err.Error(), http.StatusConflict)
	default:
		logger.FromContext(r.Context()).Error("stock count request failed", zap.Error(err))
		writeJSONError(w, "internal error", http.StatusInternalServerError)
	}
}

func OpenSessionHandler(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := m.Open()
		writeJSON(w, http.StatusCreated, s.Summary())
	}
}

func GetSessionHandler(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := m.Get(r.PathValue("id"))
		if err != nil {
			writeOpnameError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, s.Summary())
	}
}

// CountHandler accepts {"medicineId": "...", "count": "12"}. The count is
// sent as the operator typed it.
func CountHandler(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := m.Get(r.PathValue("id"))
		if err != nil {
			writeOpnameError(w, r, err)
			return
		}
		var req struct {
			MedicineID string          `json:"medicineId"`
			Count      json.RawMessage `json:"count"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, "invalid request body", http.StatusBadRequest)
			return
		}
		raw := string(req.Count)
		var str string
		if json.Unmarshal(req.Count, &str) == nil {
			raw = str
		}

		change, err := s.Count(r.Context(), req.MedicineID, raw)
		if err != nil {
			writeOpnameError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, change)
	}
}

func CloseSessionHandler(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum, err := m.Close(r.PathValue("id"))
		if err != nil {
			writeOpnameError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sum)
	}
}
