package units

import (
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	DefaultUnit     = "Strip"
	DefaultCategory = "Umum"
)

// Units and Categories are the choices offered on the registration form.
// Free text outside these lists is accepted.
var (
	Units      = []string{"Strip", "Box", "Botol", "Tube", "Tablet"}
	Categories = []string{"Umum", "Antibiotik", "Analgesik", "Narkotika", "Psikotropika"}
)

// normalize maps input onto a known spelling when it matches one
// case-insensitively, title-cases unknown input and falls back to def.
func normalize(s string, known []string, def string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return def
	}
	// Casers keep state, so each call builds its own.
	fold := cases.Fold()
	key := fold.String(s)
	for _, k := range known {
		if fold.String(k) == key {
			return k
		}
	}
	return cases.Title(language.Indonesian).String(s)
}

func NormalizeUnit(s string) string {
	return normalize(s, Units, DefaultUnit)
}

func NormalizeCategory(s string) string {
	return normalize(s, Categories, DefaultCategory)
}

// GetOptionsHandler returns the unit and category choices.
func GetOptionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string][]string{
			"units":      Units,
			"categories": Categories,
		})
	}
}
