package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"apotek/model"

	"go.uber.org/zap"
)

// MedicineCSVHeaders lists the accepted columns; only name is required.
var MedicineCSVHeaders = []string{"name", "category", "unit", "barcode", "stock", "hna", "margin"}

// SkippedRow explains why an input line produced no record.
type SkippedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ParseMedicineCSV reads a catalog export. Rows with an empty name or
// unreadable numbers are skipped and reported, not fatal.
func ParseMedicineCSV(r io.Reader, log *zap.Logger) ([]model.MedicineInput, []SkippedRow, error) {
	if log == nil {
		log = zap.NewNop()
	}
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("CSV file is empty")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIndex, err := getColIndex(header, []string{"name"})
	if err != nil {
		return nil, nil, err
	}

	var (
		records []model.MedicineInput
		skipped []SkippedRow
	)
	line := 1
	for {
		line++
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Warn("skipping unreadable medicine CSV row", zap.Int("line", line), zap.Error(err))
			skipped = append(skipped, SkippedRow{Line: line, Reason: err.Error()})
			continue
		}

		get := func(key string) string {
			if idx, ok := colIndex[key]; ok && idx < len(rec) {
				return strings.TrimSpace(rec[idx])
			}
			return ""
		}

		name := get("name")
		if name == "" {
			skipped = append(skipped, SkippedRow{Line: line, Reason: "name is empty"})
			continue
		}

		in := model.MedicineInput{
			Name:     name,
			Category: get("category"),
			Unit:     get("unit"),
			Barcode:  get("barcode"),
		}
		if in.InitialStock, err = parseIntField(get("stock")); err != nil {
			skipped = append(skipped, SkippedRow{Line: line, Reason: "stock: " + err.Error()})
			continue
		}
		if in.HNA, err = parseFloatField(get("hna")); err != nil {
			skipped = append(skipped, SkippedRow{Line: line, Reason: "hna: " + err.Error()})
			continue
		}
		if raw := get("margin"); raw != "" {
			m, err := parseFloatField(raw)
			if err != nil {
				skipped = append(skipped, SkippedRow{Line: line, Reason: "margin: " + err.Error()})
				continue
			}
			in.Margin = &m
		}
		records = append(records, in)
	}
	return records, skipped, nil
}

func parseIntField(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

var dotThousands = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)

// parseFloatField accepts plain numbers as well as Indonesian formatting
// ("12.500", "1.234,50").
func parseFloatField(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else if dotThousands.MatchString(s) {
		s = strings.ReplaceAll(s, ".", "")
	}
	return strconv.ParseFloat(s, 64)
}
