package receiving

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func margins(m map[string]float64) MarginSource {
	return func(id string) (float64, bool) {
		v, ok := m[id]
		return v, ok
	}
}

func newDraft() *Draft {
	return &Draft{
		POID: "PO-000001",
		Lines: []Line{
			{MedicineID: "A", Name: "Amoxicillin 500mg", Quantity: 10, HNA: 5000, PPN: 550, SellingPrice: 6660},
			{MedicineID: "B", Name: "Paracetamol 500mg", Quantity: 5, HNA: 12000, PPN: 1320, SellingPrice: 15318},
		},
	}
}

func TestEdits(t *testing.T) {
	current := margins(map[string]float64{"A": 50, "B": 15})

	tests := []struct {
		name string
		edit Edit
		want Line
	}{
		{"quantity leaves prices", SetQuantity{Value: 12},
			Line{MedicineID: "A", Name: "Amoxicillin 500mg", Quantity: 12, HNA: 5000, PPN: 550, SellingPrice: 6660}},
		{"negative quantity floors at zero", SetQuantity{Value: -4},
			Line{MedicineID: "A", Name: "Amoxicillin 500mg", Quantity: 0, HNA: 5000, PPN: 550, SellingPrice: 6660}},
		{"hna reprices with current margin", SetHNA{Value: 6000},
			Line{MedicineID: "A", Name: "Amoxicillin 500mg", Quantity: 10, HNA: 6000, PPN: 550, SellingPrice: 9825}},
		{"ppn reprices with current margin", SetPPN{Value: 660},
			Line{MedicineID: "A", Name: "Amoxicillin 500mg", Quantity: 10, HNA: 5000, PPN: 660, SellingPrice: 8490}},
		{"selling price does not back-propagate", SetSellingPrice{Value: 7000},
			Line{MedicineID: "A", Name: "Amoxicillin 500mg", Quantity: 10, HNA: 5000, PPN: 550, SellingPrice: 7000}},
		{"negative hna coerces to zero", SetHNA{Value: -1},
			Line{MedicineID: "A", Name: "Amoxicillin 500mg", Quantity: 10, HNA: 0, PPN: 550, SellingPrice: 825}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDraft()
			require.NoError(t, d.Apply("A", tt.edit, current))
			assert.Equal(t, tt.want, d.Lines[0])
			assert.Equal(t, 15318.0, d.Lines[1].SellingPrice, "other lines untouched")
		})
	}
}

func TestEditUnknownLineAndVanishedMedicine(t *testing.T) {
	d := newDraft()
	assert.ErrorIs(t, d.Apply("Z", SetQuantity{Value: 1}, nil), ErrLineNotFound)

	require.NoError(t, d.Apply("B", SetHNA{Value: 10000}, margins(nil)))
	assert.Equal(t, 10000.0, d.Lines[1].HNA)
	assert.Equal(t, 15318.0, d.Lines[1].SellingPrice, "no margin, no reprice")
}

func TestEditFromField(t *testing.T) {
	e, err := EditFromField("quantity", 7)
	require.NoError(t, err)
	assert.Equal(t, SetQuantity{Value: 7}, e)

	_, err = EditFromField("quantity", 2.7)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	e, err = EditFromField("sellingPrice", 100)
	require.NoError(t, err)
	assert.Equal(t, SetSellingPrice{Value: 100}, e)

	_, err = EditFromField("margin", 1)
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestTotal(t *testing.T) {
	assert.Equal(t, 10*5550.0+5*13320.0, newDraft().Total())
}
