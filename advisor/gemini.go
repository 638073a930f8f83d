package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"apotek/model"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// generator is the slice of the genai client this package calls.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Gemini struct {
	models       generator
	explainModel string
	suggestModel string
	log          *zap.Logger
}

// NewGemini connects to the Gemini API. An empty key yields Disabled.
func NewGemini(ctx context.Context, apiKey, explainModel, suggestModel string, log *zap.Logger) (Advisor, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if apiKey == "" {
		log.Warn("advisor API key missing, AI analysis disabled")
		return Disabled{}, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return newGemini(client.Models, explainModel, suggestModel, log), nil
}

func newGemini(models generator, explainModel, suggestModel string, log *zap.Logger) *Gemini {
	return &Gemini{
		models:       models,
		explainModel: explainModel,
		suggestModel: suggestModel,
		log:          log.Named("advisor"),
	}
}

func (g *Gemini) ExplainDiscrepancy(ctx context.Context, d Discrepancy) (string, error) {
	resp, err := g.models.GenerateContent(ctx, g.explainModel, genai.Text(explainPrompt(d)), nil)
	if err != nil {
		g.log.Error("discrepancy analysis failed", zap.String("medicine_id", d.Medicine.ID), zap.Error(err))
		return "", err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return NoAnalysisText, nil
	}
	return text, nil
}

var suggestionSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"medicineId":   {Type: genai.TypeString},
			"suggestedQty": {Type: genai.TypeNumber},
			"reasoning":    {Type: genai.TypeString},
		},
		Required: []string{"medicineId", "suggestedQty", "reasoning"},
	},
}

func (g *Gemini) SuggestOrder(ctx context.Context, meds []model.Medicine) ([]model.OrderSuggestion, error) {
	payload, err := json.Marshal(meds)
	if err != nil {
		return nil, err
	}
	prompt := "Based on this low stock list, suggest quantities to order for next month: " + string(payload)

	resp, err := g.models.GenerateContent(ctx, g.suggestModel, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   suggestionSchema,
	})
	if err != nil {
		g.log.Error("order suggestion failed", zap.Int("medicines", len(meds)), zap.Error(err))
		return nil, err
	}

	raw := strings.TrimSpace(resp.Text())
	if raw == "" {
		raw = "[]"
	}
	// suggestedQty is a JSON number and may carry a fraction.
	var decoded []struct {
		MedicineID   string  `json:"medicineId"`
		SuggestedQty float64 `json:"suggestedQty"`
		Reasoning    string  `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		g.log.Error("order suggestion response is not valid JSON", zap.Error(err))
		return nil, fmt.Errorf("decode suggestions: %w", err)
	}
	out := make([]model.OrderSuggestion, 0, len(decoded))
	for _, d := range decoded {
		out = append(out, model.OrderSuggestion{
			MedicineID:   d.MedicineID,
			SuggestedQty: int(math.Round(d.SuggestedQty)),
			Reasoning:    d.Reasoning,
		})
	}
	return out, nil
}
