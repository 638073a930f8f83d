// Package finance summarizes supplier debt and stock value.
package finance

import (
	"context"

	"apotek/catalog"
	"apotek/database"
	"apotek/model"

	"go.uber.org/zap"
)

type Service struct {
	store     *catalog.Store
	threshold func() int
	log       *zap.Logger
}

// NewService reads the low-stock threshold on every Dashboard call.
func NewService(store *catalog.Store, threshold func() int, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if threshold == nil {
		threshold = func() int { return 50 }
	}
	return &Service{store: store, threshold: threshold, log: log.Named("finance")}
}

// Summary covers what the pharmacy owes its suppliers.
type Summary struct {
	UnpaidOrders []model.PurchaseOrder `json:"unpaidOrders"`
	TotalDebt    float64               `json:"totalDebt"`
	TotalPaid    float64               `json:"totalPaid"`
	OrderCount   int                   `json:"orderCount"`
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	orders, err := database.GetOrders(ctx, s.store.DB())
	if err != nil {
		return nil, err
	}
	sum := &Summary{UnpaidOrders: []model.PurchaseOrder{}, OrderCount: len(orders)}
	for _, po := range orders {
		if po.IsPaid {
			sum.TotalPaid += po.TotalAmount
			continue
		}
		sum.UnpaidOrders = append(sum.UnpaidOrders, po)
		sum.TotalDebt += po.TotalAmount
	}
	return sum, nil
}

type Dashboard struct {
	MedicineCount  int                         `json:"medicineCount"`
	TotalUnits     int                         `json:"totalUnits"`
	InventoryValue float64                     `json:"inventoryValue"`
	LowStock       []model.Medicine            `json:"lowStock"`
	LowStockLimit  int                         `json:"lowStockThreshold"`
	OrdersByStatus []database.OrderStatusCount `json:"ordersByStatus"`
	InvoiceCount   int                         `json:"invoiceCount"`
	ReturnCount    int                         `json:"returnCount"`
}

// Dashboard values stock at HNA.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	db := s.store.DB()
	totals, err := database.GetInventoryTotals(ctx, db)
	if err != nil {
		return nil, err
	}
	limit := s.threshold()
	low, err := s.store.LowStock(ctx, limit)
	if err != nil {
		return nil, err
	}
	byStatus, err := database.CountOrdersByStatus(ctx, db)
	if err != nil {
		return nil, err
	}
	invoices, err := database.CountInvoices(ctx, db)
	if err != nil {
		return nil, err
	}
	returns, err := database.CountReturns(ctx, db)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		MedicineCount:  totals.MedicineCount,
		TotalUnits:     totals.TotalUnits,
		InventoryValue: totals.Value,
		LowStock:       low,
		LowStockLimit:  limit,
		OrdersByStatus: byStatus,
		InvoiceCount:   invoices,
		ReturnCount:    returns,
	}
	if d.LowStock == nil {
		d.LowStock = []model.Medicine{}
	}
	if d.OrdersByStatus == nil {
		d.OrdersByStatus = []database.OrderStatusCount{}
	}
	return d, nil
}
