package receiving

import (
	"errors"
	"math"

	"apotek/model"
	"apotek/pricing"
)

var (
	ErrLineNotFound          = errors.New("invoice line not found")
	ErrInvoiceNumberRequired = errors.New("invoice number is required")
	ErrNoLines               = errors.New("invoice has no lines")
	ErrOrderNotFound         = errors.New("purchase order not found")
	ErrUnknownField          = errors.New("unknown invoice line field")
	ErrInvalidQuantity       = errors.New("quantity must be a whole number")
)

// Line is an editable invoice line. Prices are snapshots taken when the
// draft was started.
type Line struct {
	MedicineID   string  `json:"medicineId"`
	Name         string  `json:"name"`
	Quantity     int     `json:"quantity"`
	HNA          float64 `json:"hna"`
	PPN          float64 `json:"ppn"`
	SellingPrice float64 `json:"sellingPrice"`
}

// Draft is an invoice being checked against a delivery.
type Draft struct {
	POID         string `json:"poId"`
	SupplierName string `json:"supplier"`
	Lines        []Line `json:"lines"`
}

// MarginSource returns the catalog's current margin for a medicine.
type MarginSource func(medicineID string) (float64, bool)

// Edit changes one field of one line. Each kind states its own
// recomputation rule.
type Edit interface {
	apply(l *Line, margin MarginSource)
}

// SetQuantity changes the delivered quantity only.
type SetQuantity struct{ Value int }

// SetHNA changes the net price and recomputes the selling price with the
// medicine's current catalog margin.
type SetHNA struct{ Value float64 }

// SetPPN changes the tax amount and recomputes the selling price with the
// medicine's current catalog margin.
type SetPPN struct{ Value float64 }

// SetSellingPrice overrides the selling price. Nothing else changes.
type SetSellingPrice struct{ Value float64 }

func (e SetQuantity) apply(l *Line, _ MarginSource) {
	l.Quantity = e.Value
	if l.Quantity < 0 {
		l.Quantity = 0
	}
}

func (e SetHNA) apply(l *Line, margin MarginSource) {
	l.HNA = pricing.Coerce(e.Value)
	reprice(l, margin)
}

func (e SetPPN) apply(l *Line, margin MarginSource) {
	l.PPN = pricing.Coerce(e.Value)
	reprice(l, margin)
}

func (e SetSellingPrice) apply(l *Line, _ MarginSource) {
	l.SellingPrice = pricing.Coerce(e.Value)
}

// reprice leaves the selling price alone when the medicine has left the
// catalog.
func reprice(l *Line, margin MarginSource) {
	if margin == nil {
		return
	}
	if m, ok := margin(l.MedicineID); ok {
		l.SellingPrice = pricing.SellingPrice(l.HNA, l.PPN, m)
	}
}

// EditFromField maps a wire edit ({field, value}) onto its typed variant.
func EditFromField(field string, value float64) (Edit, error) {
	switch field {
	case "quantity":
		if value != math.Trunc(value) || math.IsInf(value, 0) {
			return nil, ErrInvalidQuantity
		}
		return SetQuantity{Value: int(value)}, nil
	case "hna":
		return SetHNA{Value: value}, nil
	case "ppn":
		return SetPPN{Value: value}, nil
	case "sellingPrice":
		return SetSellingPrice{Value: value}, nil
	default:
		return nil, ErrUnknownField
	}
}

// Apply performs e on the line for medicineID.
func (d *Draft) Apply(medicineID string, e Edit, margin MarginSource) error {
	for i := range d.Lines {
		if d.Lines[i].MedicineID == medicineID {
			e.apply(&d.Lines[i], margin)
			return nil
		}
	}
	return ErrLineNotFound
}

// Total is Σ quantity × (hna + ppn).
func (d *Draft) Total() float64 {
	var total float64
	for _, l := range d.Lines {
		total += float64(l.Quantity) * (l.HNA + l.PPN)
	}
	return total
}

func (d *Draft) invoiceItems() []model.InvoiceItem {
	items := make([]model.InvoiceItem, 0, len(d.Lines))
	for _, l := range d.Lines {
		items = append(items, model.InvoiceItem{
			MedicineID:   l.MedicineID,
			Name:         l.Name,
			Quantity:     l.Quantity,
			HNA:          l.HNA,
			PPN:          l.PPN,
			SellingPrice: l.SellingPrice,
		})
	}
	return items
}
