package barcode

import (
	"encoding/json"
	"net/http"
)

// ParseHandler serves GET /api/barcode/{code} and reports what a scan
// decodes to.
func ParseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := Parse(r.PathValue("code"))
		w.Header().Set("Content-Type", "application/json")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"message": err.Error()})
			return
		}
		json.NewEncoder(w).Encode(res)
	}
}
