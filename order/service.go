package order

import (
	"context"
	"errors"
	"fmt"

	"apotek/advisor"
	"apotek/catalog"
	"apotek/database"
	"apotek/model"
	"apotek/render"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

var (
	ErrNoItems          = errors.New("order has no items")
	ErrSupplierRequired = errors.New("supplier is required")
	ErrSupplierNotFound = errors.New("supplier not found")
	ErrOrderNotFound    = errors.New("purchase order not found")
)

// PDFPrinter prints a rendered HTML document.
type PDFPrinter interface {
	PDF(ctx context.Context, html string) ([]byte, error)
}

type Service struct {
	store     *catalog.Store
	advisor   advisor.Advisor
	printer   PDFPrinter
	threshold func() int
	log       *zap.Logger
}

// NewService wires the order workflow. threshold supplies the low-stock
// limit used by Suggest and is read on every call.
func NewService(store *catalog.Store, adv advisor.Advisor, printer PDFPrinter, threshold func() int, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if adv == nil {
		adv = advisor.Disabled{}
	}
	if threshold == nil {
		threshold = func() int { return 50 }
	}
	return &Service{
		store:     store,
		advisor:   adv,
		printer:   printer,
		threshold: threshold,
		log:       log.Named("order"),
	}
}

// Submit moves a draft to Sent. Nothing is stored unless every check
// passes.
func (s *Service) Submit(ctx context.Context, d *Draft) (*model.PurchaseOrder, error) {
	lines := d.Items()
	if len(lines) == 0 {
		return nil, ErrNoItems
	}
	supplierID, supplierName := d.Supplier()
	if supplierID == "" && supplierName == "" {
		return nil, ErrSupplierRequired
	}

	po := &model.PurchaseOrder{
		Date:         s.store.Now(),
		SupplierID:   supplierID,
		SupplierName: supplierName,
		Status:       model.OrderSent,
	}
	for _, l := range lines {
		qty := l.Quantity
		if qty < 1 {
			qty = 1
		}
		item := model.OrderItem{
			MedicineID: l.Medicine.ID,
			Name:       l.Medicine.Name,
			Quantity:   qty,
			Unit:       l.Medicine.Unit,
			UnitCost:   l.Medicine.HNA + l.Medicine.PPN,
		}
		po.TotalAmount += float64(item.Quantity) * item.UnitCost
		po.Items = append(po.Items, item)
	}

	err := database.InTx(ctx, s.store.DB(), func(tx *sqlx.Tx) error {
		if supplierID != "" {
			sup, err := database.GetSupplierByID(ctx, tx, supplierID)
			if err != nil {
				return err
			}
			if sup == nil {
				return ErrSupplierNotFound
			}
			po.SupplierName = sup.Name
		}
		id, err := database.NextSequenceInTx(ctx, tx, database.OrderSequence)
		if err != nil {
			return err
		}
		po.ID = id
		for i := range po.Items {
			po.Items[i].OrderID = id
		}
		return database.InsertOrderInTx(ctx, tx, po)
	})
	if err != nil {
		if errors.Is(err, ErrSupplierNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("submit order: %w", err)
	}

	s.log.Info("purchase order submitted",
		zap.String("id", po.ID), zap.String("supplier", po.SupplierName),
		zap.Int("items", len(po.Items)), zap.Float64("total", po.TotalAmount))
	return po, nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.PurchaseOrder, error) {
	po, err := database.GetOrderByID(ctx, s.store.DB(), id)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, ErrOrderNotFound
	}
	return po, nil
}

// List returns every order, newest first.
func (s *Service) List(ctx context.Context) ([]model.PurchaseOrder, error) {
	return s.ListByStatus(ctx)
}

func (s *Service) ListByStatus(ctx context.Context, statuses ...model.OrderStatus) ([]model.PurchaseOrder, error) {
	orders, err := database.GetOrders(ctx, s.store.DB(), statuses...)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []model.PurchaseOrder{}
	}
	return orders, nil
}

// SetPaid is the only change allowed on a submitted order.
func (s *Service) SetPaid(ctx context.Context, id string, paid bool) (*model.PurchaseOrder, error) {
	found, err := database.SetOrderPaid(ctx, s.store.DB(), id, paid)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrOrderNotFound
	}
	s.log.Info("purchase order payment updated", zap.String("id", id), zap.Bool("paid", paid))
	return s.Get(ctx, id)
}

// Suggest asks the advisor for reorder quantities for every medicine under
// the low-stock threshold. Any failure yields nil.
func (s *Service) Suggest(ctx context.Context) []model.OrderSuggestion {
	low, err := s.store.LowStock(ctx, s.threshold())
	if err != nil {
		s.log.Warn("failed to load low-stock medicines", zap.Error(err))
		return nil
	}
	suggestions, err := s.advisor.SuggestOrder(ctx, low)
	if err != nil {
		s.log.Warn("order suggestion unavailable", zap.Error(err))
		return nil
	}
	return suggestions
}

// Document renders the Surat Pesanan for an order.
func (s *Service) Document(ctx context.Context, id string) (string, error) {
	po, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	var sup *model.Supplier
	if po.SupplierID != "" {
		if sup, err = database.GetSupplierByID(ctx, s.store.DB(), po.SupplierID); err != nil {
			return "", err
		}
	}
	return render.OrderDocumentHTML(*po, sup), nil
}

func (s *Service) PrintPDF(ctx context.Context, id string) ([]byte, error) {
	if s.printer == nil {
		return nil, errors.New("pdf printing is not configured")
	}
	html, err := s.Document(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.printer.PDF(ctx, html)
}
