package model

import "time"

// Medicine is one catalog entry. SellingPrice is derived from HNA, PPN and
// Margin on every read and has no column of its own.
type Medicine struct {
	ID              string     `db:"id" json:"id"`
	Barcode         string     `db:"barcode" json:"barcode"`
	Name            string     `db:"name" json:"name"`
	Category        string     `db:"category" json:"category"`
	Unit            string     `db:"unit" json:"unit"`
	SystemStock     int        `db:"system_stock" json:"systemStock"`
	HNA             float64    `db:"hna" json:"hna"`
	PPN             float64    `db:"ppn" json:"ppn"`
	Margin          float64    `db:"margin" json:"margin"`
	LastStockOpname *time.Time `db:"last_stock_opname" json:"lastStockOpname,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`

	SellingPrice float64 `db:"-" json:"sellingPrice"`
}

// MedicineInput carries the caller-supplied fields of a registration. A nil
// Margin means the default margin.
type MedicineInput struct {
	Name         string   `json:"name"`
	Barcode      string   `json:"barcode"`
	Category     string   `json:"category"`
	Unit         string   `json:"unit"`
	InitialStock int      `json:"initialStock"`
	HNA          float64  `json:"hna"`
	Margin       *float64 `json:"margin"`
}

// StockCountChange is one correction recorded during an opname session.
type StockCountChange struct {
	MedicineID      string    `json:"id"`
	Name            string    `json:"name"`
	Unit            string    `json:"unit"`
	OldStock        int       `json:"oldStock"`
	NewStock        int       `json:"newStock"`
	Analysis        string    `json:"analysis,omitempty"`
	AnalysisPending bool      `json:"analysisPending"`
	CountedAt       time.Time `json:"countedAt"`
}

// OrderSuggestion is one line of an advisory restock proposal.
type OrderSuggestion struct {
	MedicineID   string `json:"medicineId"`
	SuggestedQty int    `json:"suggestedQty"`
	Reasoning    string `json:"reasoning"`
}
