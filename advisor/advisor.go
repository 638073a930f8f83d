// Package advisor asks a generative model to explain stock discrepancies
// and to propose reorder quantities.
package advisor

import (
	"context"
	"errors"
	"fmt"

	"apotek/model"
)

const (
	MissingKeyText = "AI analysis unavailable (Missing API Key)"
	NoAnalysisText = "No analysis provided."
	FailedText     = "Failed to analyze discrepancy."
)

var ErrUnavailable = errors.New("advisor is not configured")

// Discrepancy is a counted quantity that differs from the system figure.
type Discrepancy struct {
	Medicine model.Medicine
	Actual   int
}

func (d Discrepancy) Delta() int {
	return d.Actual - d.Medicine.SystemStock
}

type Advisor interface {
	// ExplainDiscrepancy returns a short list of likely causes and
	// prevention steps.
	ExplainDiscrepancy(ctx context.Context, d Discrepancy) (string, error)
	// SuggestOrder proposes quantities for the given low-stock medicines.
	SuggestOrder(ctx context.Context, meds []model.Medicine) ([]model.OrderSuggestion, error)
}

// Disabled stands in when no API key is configured.
type Disabled struct{}

func (Disabled) ExplainDiscrepancy(context.Context, Discrepancy) (string, error) {
	return MissingKeyText, nil
}

func (Disabled) SuggestOrder(context.Context, []model.Medicine) ([]model.OrderSuggestion, error) {
	return nil, ErrUnavailable
}

func explainPrompt(d Discrepancy) string {
	m := d.Medicine
	return fmt.Sprintf(`Medicine: %s
System Stock: %d %s
Actual Stock: %d %s
Discrepancy: %d

Analyze this stock discrepancy for a pharmacy. Provide 2-3 bullet points on possible causes and recommendations for prevention.`,
		m.Name, m.SystemStock, m.Unit, d.Actual, m.Unit, d.Delta())
}
