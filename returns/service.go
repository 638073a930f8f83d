package returns

import (
	"context"
	"strings"

	"apotek/catalog"
	"apotek/metrics"
	"apotek/model"

	"go.uber.org/zap"
)

var (
	ErrMedicineNotFound = catalog.ErrMedicineNotFound
	ErrInvalidQuantity  = catalog.ErrInvalidQuantity
	ErrInvalidType      = catalog.ErrInvalidReturnType
)

// Service is the returns ledger. Records are created Pending and stay so.
type Service struct {
	store   *catalog.Store
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewService(store *catalog.Store, m *metrics.Metrics, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, metrics: m, log: log.Named("returns")}
}

// Record books a return and moves stock at once: Sales returns add,
// Purchase returns subtract, never below zero.
func (s *Service) Record(ctx context.Context, medicineID string, quantity int, typ model.ReturnType, reason string) (*model.ReturnRecord, *model.Medicine, error) {
	rec, med, err := s.store.ApplyReturn(ctx, model.ReturnRecord{
		MedicineID: medicineID,
		Quantity:   quantity,
		Type:       typ,
		Reason:     strings.TrimSpace(reason),
		Status:     model.ReturnPending,
	})
	if err != nil {
		return nil, nil, err
	}
	if s.metrics != nil {
		s.metrics.ReturnsRecorded.WithLabelValues(string(typ)).Inc()
	}
	return rec, med, nil
}

// List returns the ledger newest first.
func (s *Service) List(ctx context.Context) ([]model.ReturnRecord, error) {
	records, err := s.store.ListReturns(ctx)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []model.ReturnRecord{}
	}
	return records, nil
}
