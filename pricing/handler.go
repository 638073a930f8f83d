package pricing

import (
	"encoding/json"
	"net/http"
	"strconv"
)

func writeJSONError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// PreviewHandler returns the price breakdown for ?hna=&margin= without
// touching the catalog. Unparseable values count as zero.
func PreviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeJSONError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		q := r.URL.Query()
		hna, _ := strconv.ParseFloat(q.Get("hna"), 64)
		margin, _ := strconv.ParseFloat(q.Get("margin"), 64)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(QuoteFor(Coerce(hna), Coerce(margin)))
	}
}
