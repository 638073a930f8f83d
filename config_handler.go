package main

import (
	"encoding/json"
	"net/http"

	"apotek/config"
	"apotek/logger"

	"go.uber.org/zap"
)

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// GetConfigHandler returns the settings editable from the settings screen.
// Secrets never leave the server.
func GetConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(config.GetConfig().Inventory)
	}
}

func SaveConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// omitted fields keep their current values
		inv := config.GetConfig().Inventory
		if err := json.NewDecoder(r.Body).Decode(&inv); err != nil {
			writeJSONError(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if inv.LowStockThreshold < 0 || inv.PageSize < 0 {
			writeJSONError(w, "settings must not be negative", http.StatusBadRequest)
			return
		}

		saved, err := config.SaveInventory(inv)
		if err != nil {
			logger.FromContext(r.Context()).Error("failed to save config", zap.Error(err))
			writeJSONError(w, "failed to save settings", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(saved.Inventory)
	}
}
