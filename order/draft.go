package order

import (
	"strings"

	"apotek/model"
)

// Line is one selected medicine in a draft order.
type Line struct {
	Medicine model.Medicine `json:"medicine"`
	Quantity int            `json:"quantity"`
}

// Draft is an order being assembled. It is never persisted; Submit turns
// it into a Sent purchase order.
type Draft struct {
	lines        []Line
	supplierID   string
	supplierName string
}

func NewDraft() *Draft {
	return &Draft{}
}

// Add selects m with quantity 1. Selecting the same medicine twice is a
// no-op.
func (d *Draft) Add(m model.Medicine) {
	if d.index(m.ID) >= 0 {
		return
	}
	d.lines = append(d.lines, Line{Medicine: m, Quantity: 1})
}

// SetQuantity raises anything below 1 to 1.
func (d *Draft) SetQuantity(medicineID string, q int) bool {
	i := d.index(medicineID)
	if i < 0 {
		return false
	}
	if q < 1 {
		q = 1
	}
	d.lines[i].Quantity = q
	return true
}

func (d *Draft) Remove(medicineID string) {
	if i := d.index(medicineID); i >= 0 {
		d.lines = append(d.lines[:i], d.lines[i+1:]...)
	}
}

// SetSupplier records either a registered supplier id or a free-text
// supplier name.
func (d *Draft) SetSupplier(id, name string) {
	d.supplierID = strings.TrimSpace(id)
	d.supplierName = strings.TrimSpace(name)
}

func (d *Draft) Supplier() (id, name string) {
	return d.supplierID, d.supplierName
}

func (d *Draft) Items() []Line {
	out := make([]Line, len(d.lines))
	copy(out, d.lines)
	return out
}

func (d *Draft) index(medicineID string) int {
	for i, l := range d.lines {
		if l.Medicine.ID == medicineID {
			return i
		}
	}
	return -1
}
