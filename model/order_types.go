package model

import "time"

type OrderStatus string

const (
	OrderDraft    OrderStatus = "Draft"
	OrderSent     OrderStatus = "Sent"
	OrderReceived OrderStatus = "Received"
)

// PurchaseOrder is immutable after submission apart from IsPaid and the
// Received status set by the receiving side.
type PurchaseOrder struct {
	ID           string      `db:"id" json:"id"`
	Date         time.Time   `db:"order_date" json:"date"`
	SupplierID   string      `db:"supplier_id" json:"supplierId,omitempty"`
	SupplierName string      `db:"supplier_name" json:"supplier"`
	Status       OrderStatus `db:"status" json:"status"`
	TotalAmount  float64     `db:"total_amount" json:"totalAmount"`
	IsPaid       bool        `db:"is_paid" json:"isPaid"`
	Items        []OrderItem `db:"-" json:"items"`
}

type OrderItem struct {
	OrderID    string  `db:"order_id" json:"-"`
	MedicineID string  `db:"medicine_id" json:"medicineId"`
	Name       string  `db:"name" json:"name"`
	Quantity   int     `db:"quantity" json:"quantity"`
	Unit       string  `db:"unit" json:"unit"`
	UnitCost   float64 `db:"unit_cost" json:"unitCost"`
}

// Invoice records one receipt against a purchase order. Each line carries
// its own price snapshot taken at receiving time.
type Invoice struct {
	ID            string        `db:"id" json:"id"`
	POID          string        `db:"po_id" json:"poId"`
	InvoiceNumber string        `db:"invoice_number" json:"invoiceNumber"`
	Date          time.Time     `db:"invoice_date" json:"date"`
	TotalAmount   float64       `db:"total_amount" json:"totalAmount"`
	Items         []InvoiceItem `db:"-" json:"items"`
}

type InvoiceItem struct {
	InvoiceID    string  `db:"invoice_id" json:"-"`
	MedicineID   string  `db:"medicine_id" json:"medicineId"`
	Name         string  `db:"name" json:"name"`
	Quantity     int     `db:"quantity" json:"quantity"`
	HNA          float64 `db:"hna" json:"hna"`
	PPN          float64 `db:"ppn" json:"ppn"`
	SellingPrice float64 `db:"selling_price" json:"sellingPrice"`
}

type ReturnType string

const (
	ReturnPurchase ReturnType = "Purchase"
	ReturnSales    ReturnType = "Sales"
)

type ReturnStatus string

const (
	ReturnPending   ReturnStatus = "Pending"
	ReturnCompleted ReturnStatus = "Completed"
)

type ReturnRecord struct {
	ID           string       `db:"id" json:"id"`
	Date         time.Time    `db:"return_date" json:"date"`
	MedicineID   string       `db:"medicine_id" json:"medicineId"`
	MedicineName string       `db:"medicine_name" json:"medicineName"`
	Quantity     int          `db:"quantity" json:"quantity"`
	Type         ReturnType   `db:"return_type" json:"type"`
	Reason       string       `db:"reason" json:"reason"`
	Status       ReturnStatus `db:"status" json:"status"`
}
