package receiving

import (
	"context"
	"errors"
	"strings"

	"apotek/catalog"
	"apotek/database"
	"apotek/metrics"
	"apotek/model"

	"go.uber.org/zap"
)

type Service struct {
	store   *catalog.Store
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewService(store *catalog.Store, m *metrics.Metrics, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, metrics: m, log: log.Named("receiving")}
}

// Start builds a draft invoice from a purchase order, one line per order
// item, priced from the catalog as it is now. Items whose medicine is no
// longer in the catalog are left out. The order's status is not checked.
func (s *Service) Start(ctx context.Context, poID string) (*Draft, error) {
	po, err := database.GetOrderByID(ctx, s.store.DB(), poID)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, ErrOrderNotFound
	}

	d := &Draft{POID: po.ID, SupplierName: po.SupplierName, Lines: []Line{}}
	for _, it := range po.Items {
		m, err := s.store.GetMedicine(ctx, it.MedicineID)
		if errors.Is(err, catalog.ErrMedicineNotFound) {
			s.log.Warn("order item no longer in catalog", zap.String("po_id", po.ID), zap.String("medicine_id", it.MedicineID))
			continue
		}
		if err != nil {
			return nil, err
		}
		d.Lines = append(d.Lines, Line{
			MedicineID:   m.ID,
			Name:         m.Name,
			Quantity:     it.Quantity,
			HNA:          m.HNA,
			PPN:          m.PPN,
			SellingPrice: m.SellingPrice,
		})
	}
	return d, nil
}

// CurrentMargin looks margins up in the live catalog, so a margin change
// between ordering and receiving shows up in recomputed prices.
func (s *Service) CurrentMargin(ctx context.Context) MarginSource {
	return func(medicineID string) (float64, bool) {
		m, err := s.store.GetMedicine(ctx, medicineID)
		if err != nil {
			return 0, false
		}
		return m.Margin, true
	}
}

// Edit applies one line edit using the current catalog margin.
func (s *Service) Edit(ctx context.Context, d *Draft, medicineID string, e Edit) error {
	return d.Apply(medicineID, e, s.CurrentMargin(ctx))
}

// Finalize records the invoice and books its stock.
func (s *Service) Finalize(ctx context.Context, d *Draft, invoiceNumber string) (*catalog.Receipt, error) {
	invoiceNumber = strings.TrimSpace(invoiceNumber)
	if invoiceNumber == "" {
		return nil, ErrInvoiceNumberRequired
	}
	if d == nil || len(d.Lines) == 0 {
		return nil, ErrNoLines
	}

	receipt, err := s.store.ReceiveInvoice(ctx, model.Invoice{
		POID:          d.POID,
		InvoiceNumber: invoiceNumber,
		Items:         d.invoiceItems(),
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.InvoicesReceived.Inc()
	}
	return receipt, nil
}
