package pricing

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPPN(t *testing.T) {
	tests := []struct {
		hna  float64
		want float64
	}{
		{0, 0},
		{5000, 550},
		{12000, 1320},
		{3500, 385},
		{2500, 275},
		{4200, 462},
		{4550, 501}, // 500.5 rounds up
		{1234, 136}, // 135.74
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PPN(tt.hna), "hna=%v", tt.hna)
	}
}

func TestSellingPrice(t *testing.T) {
	t.Run("matches formula for seeded catalog", func(t *testing.T) {
		assert.Equal(t, 6660.0, SellingPrice(5000, 550, 20))
		assert.Equal(t, 15318.0, SellingPrice(12000, 1320, 15))
		assert.Equal(t, 4856.0, SellingPrice(3500, 385, 25))
		assert.Equal(t, 3330.0, SellingPrice(2500, 275, 20))
		assert.Equal(t, 5501.0, SellingPrice(4200, 462, 18)) // 5501.16
	})

	t.Run("half rounds up", func(t *testing.T) {
		// (1 + 0) * 1.5 = 1.5
		assert.Equal(t, 2.0, SellingPrice(1, 0, 50))
		// (5 + 0) * 1.1 = 5.5
		assert.Equal(t, 6.0, SellingPrice(5, 0, 10))
	})

	t.Run("zero margin is price plus tax", func(t *testing.T) {
		assert.Equal(t, 5550.0, SellingPrice(5000, 550, 0))
	})

	t.Run("recomputing is idempotent", func(t *testing.T) {
		for hna := 0.0; hna <= 20000; hna += 777 {
			ppn := PPN(hna)
			for margin := 0.0; margin <= 60; margin += 7 {
				first := SellingPrice(hna, ppn, margin)
				second := SellingPrice(hna, ppn, margin)
				require.Equal(t, first, second)
				expected := math.Floor((hna+ppn)*(1+margin/100) + 0.5)
				assert.InDelta(t, expected, first, 1, "hna=%v margin=%v", hna, margin)
			}
		}
	})
}

func TestQuoteFor(t *testing.T) {
	q := QuoteFor(5000, 20)
	assert.Equal(t, Quote{HNA: 5000, PPN: 550, Margin: 20, SellingPrice: 6660}, q)
}

func TestCoerce(t *testing.T) {
	assert.Equal(t, 0.0, Coerce(-5))
	assert.Equal(t, 0.0, Coerce(math.NaN()))
	assert.Equal(t, 0.0, Coerce(math.Inf(1)))
	assert.Equal(t, 12.5, Coerce(12.5))
}

func TestPreviewHandler(t *testing.T) {
	t.Run("returns quote", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/pricing/preview?hna=12000&margin=15", nil)
		rec := httptest.NewRecorder()
		PreviewHandler()(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var got Quote
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, 1320.0, got.PPN)
		assert.Equal(t, 15318.0, got.SellingPrice)
	})

	t.Run("invalid input coerces to zero", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/pricing/preview?hna=abc&margin=-3", nil)
		rec := httptest.NewRecorder()
		PreviewHandler()(rec, req)

		var got Quote
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, Quote{}, got)
	})

	t.Run("rejects non-GET", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/pricing/preview", nil)
		rec := httptest.NewRecorder()
		PreviewHandler()(rec, req)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
