package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

// PPNRate is the fixed value-added tax rate applied to HNA.
var PPNRate = decimal.RequireFromString("0.11")

var (
	half    = decimal.RequireFromString("0.5")
	hundred = decimal.NewFromInt(100)
)

// Quote is the full price breakdown of one medicine.
type Quote struct {
	HNA          float64 `json:"hna"`
	PPN          float64 `json:"ppn"`
	Margin       float64 `json:"margin"`
	SellingPrice float64 `json:"sellingPrice"`
}

// round rounds half toward positive infinity: 2.5 -> 3, -2.5 -> -2.
func round(d decimal.Decimal) decimal.Decimal {
	return d.Add(half).Floor()
}

// PPN returns round(hna * 0.11).
func PPN(hna float64) float64 {
	v := round(decimal.NewFromFloat(hna).Mul(PPNRate))
	return v.InexactFloat64()
}

// SellingPrice returns round((hna + ppn) * (1 + margin/100)).
func SellingPrice(hna, ppn, margin float64) float64 {
	base := decimal.NewFromFloat(hna).Add(decimal.NewFromFloat(ppn))
	factor := decimal.NewFromInt(1).Add(decimal.NewFromFloat(margin).Div(hundred))
	return round(base.Mul(factor)).InexactFloat64()
}

// QuoteFor derives PPN and selling price from a net price and margin.
func QuoteFor(hna, margin float64) Quote {
	ppn := PPN(hna)
	return Quote{
		HNA:          hna,
		PPN:          ppn,
		Margin:       margin,
		SellingPrice: SellingPrice(hna, ppn, margin),
	}
}

// Coerce maps negative and non-finite input to zero.
func Coerce(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
