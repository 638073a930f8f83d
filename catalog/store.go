package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"apotek/barcode"
	"apotek/database"
	"apotek/model"
	"apotek/pricing"
	"apotek/units"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const DefaultMargin = 20.0

var (
	ErrNameRequired      = errors.New("medicine name is required")
	ErrMedicineNotFound  = errors.New("medicine not found")
	ErrNegativeStock     = errors.New("stock count cannot be negative")
	ErrInvalidCount      = errors.New("stock count is not a number")
	ErrInvalidReturnType = errors.New("return type must be Purchase or Sales")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
)

// Store owns the catalog and every mutation of medicine stock. Workflows
// receive it explicitly instead of sharing global state.
type Store struct {
	db  *sqlx.DB
	log *zap.Logger
	now func() time.Time
}

func NewStore(db *sqlx.DB, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		db:  db,
		log: log.Named("catalog"),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Store) Now() time.Time {
	return s.now()
}

// DB exposes the connection for read-side packages that query the same
// tables.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

func withPrice(m *model.Medicine) *model.Medicine {
	if m != nil {
		m.SellingPrice = pricing.SellingPrice(m.HNA, m.PPN, m.Margin)
	}
	return m
}

func withPrices(meds []model.Medicine) []model.Medicine {
	for i := range meds {
		withPrice(&meds[i])
	}
	return meds
}

// RegisterMedicine adds a medicine to the catalog. PPN is always derived
// from HNA; negative numbers are treated as zero.
func (s *Store) RegisterMedicine(ctx context.Context, in model.MedicineInput) (*model.Medicine, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	now := s.now()
	hna := pricing.Coerce(in.HNA)
	margin := DefaultMargin
	if in.Margin != nil {
		margin = pricing.Coerce(*in.Margin)
	}
	stock := in.InitialStock
	if stock < 0 {
		stock = 0
	}
	code := strings.TrimSpace(in.Barcode)
	generated := code == ""
	if generated {
		code = barcode.Generate(now)
	}

	m := &model.Medicine{
		Barcode:         code,
		Name:            name,
		Category:        units.NormalizeCategory(in.Category),
		Unit:            units.NormalizeUnit(in.Unit),
		SystemStock:     stock,
		HNA:             hna,
		PPN:             pricing.PPN(hna),
		Margin:          margin,
		LastStockOpname: &now,
		CreatedAt:       now,
	}

	err := database.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		id, err := database.NextSequenceInTx(ctx, tx, database.MedicineSequence)
		if err != nil {
			return err
		}
		m.ID = id
		if generated {
			// registrations within one millisecond share a clock code
			taken, err := database.GetMedicineByBarcode(ctx, tx, m.Barcode)
			if err != nil {
				return err
			}
			if taken != nil {
				m.Barcode += "-" + strings.TrimPrefix(id, database.MedicineSequence.Prefix)
			}
		}
		return database.InsertMedicineInTx(ctx, tx, m)
	})
	if err != nil {
		return nil, fmt.Errorf("register medicine: %w", err)
	}

	s.log.Info("medicine registered",
		zap.String("id", m.ID), zap.String("name", m.Name), zap.Int("stock", m.SystemStock))
	return withPrice(m), nil
}

func (s *Store) GetMedicine(ctx context.Context, id string) (*model.Medicine, error) {
	m, err := database.GetMedicineByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMedicineNotFound
	}
	return withPrice(m), nil
}

// FindByBarcode matches the code verbatim first, then by GTIN so that an
// EAN-13 scan finds a medicine stored under its GTIN-14 and vice versa.
func (s *Store) FindByBarcode(ctx context.Context, code string) (*model.Medicine, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrMedicineNotFound
	}
	m, err := database.GetMedicineByBarcode(ctx, s.db, code)
	if err != nil {
		return nil, err
	}
	if m != nil {
		return withPrice(m), nil
	}
	if !barcode.IsNumeric(code) && !strings.HasPrefix(code, "01") {
		return nil, ErrMedicineNotFound
	}

	res, err := barcode.Parse(code)
	if err != nil {
		return nil, ErrMedicineNotFound
	}
	candidates := []string{res.Gtin14, strings.TrimPrefix(res.Gtin14, "0")}
	for _, c := range candidates {
		if c == code {
			continue
		}
		m, err := database.GetMedicineByBarcode(ctx, s.db, c)
		if err != nil {
			return nil, err
		}
		if m != nil {
			return withPrice(m), nil
		}
	}
	return nil, ErrMedicineNotFound
}

func (s *Store) AllMedicines(ctx context.Context) ([]model.Medicine, error) {
	meds, err := database.GetAllMedicines(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return withPrices(meds), nil
}

// LowStock returns medicines with stock strictly below threshold.
func (s *Store) LowStock(ctx context.Context, threshold int) ([]model.Medicine, error) {
	meds, err := database.GetLowStockMedicines(ctx, s.db, threshold)
	if err != nil {
		return nil, err
	}
	return withPrices(meds), nil
}

// ParseCount reads an operator-entered count.
func ParseCount(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, ErrInvalidCount
	}
	return n, nil
}

// StockCorrection is the outcome of a stock count.
type StockCorrection struct {
	Medicine *model.Medicine `json:"medicine"`
	Previous int             `json:"previous"`
}

func (c StockCorrection) Changed() bool {
	return c.Medicine.SystemStock != c.Previous
}

// ApplyStockCount overwrites system stock with the counted quantity and
// stamps the opname time. The count is absolute, not a delta.
func (s *Store) ApplyStockCount(ctx context.Context, id string, counted int) (*StockCorrection, error) {
	if counted < 0 {
		return nil, ErrNegativeStock
	}

	var corr *StockCorrection
	err := database.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		m, err := database.GetMedicineByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if m == nil {
			return ErrMedicineNotFound
		}
		at := s.now()
		if _, err := database.SetMedicineStock(ctx, tx, id, counted, at); err != nil {
			return err
		}
		previous := m.SystemStock
		m.SystemStock = counted
		m.LastStockOpname = &at
		corr = &StockCorrection{Medicine: withPrice(m), Previous: previous}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("stock count applied",
		zap.String("id", id), zap.Int("previous", corr.Previous), zap.Int("counted", counted))
	return corr, nil
}

// Receipt reports what ReceiveInvoice stored and which lines named
// medicines the catalog does not know.
type Receipt struct {
	Invoice *model.Invoice `json:"invoice"`
	Skipped []string       `json:"skipped,omitempty"`
}

// ReceiveInvoice records the invoice, adds each line's quantity to its
// medicine and marks the purchase order Received, all in one transaction.
// Lines for unknown medicines are kept on the invoice but move no stock.
func (s *Store) ReceiveInvoice(ctx context.Context, inv model.Invoice) (*Receipt, error) {
	if inv.Date.IsZero() {
		inv.Date = s.now()
	}
	inv.TotalAmount = 0
	for _, it := range inv.Items {
		inv.TotalAmount += float64(it.Quantity) * (it.HNA + it.PPN)
	}

	receipt := &Receipt{Invoice: &inv}
	err := database.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		id, err := database.NextSequenceInTx(ctx, tx, database.InvoiceSequence)
		if err != nil {
			return err
		}
		inv.ID = id
		if err := database.InsertInvoiceInTx(ctx, tx, &inv); err != nil {
			return err
		}

		for _, it := range inv.Items {
			found, err := database.IncrementMedicineStock(ctx, tx, it.MedicineID, it.Quantity)
			if err != nil {
				return err
			}
			if !found {
				receipt.Skipped = append(receipt.Skipped, it.MedicineID)
			}
		}

		if inv.POID != "" {
			found, err := database.SetOrderStatus(ctx, tx, inv.POID, model.OrderReceived)
			if err != nil {
				return err
			}
			if !found {
				s.log.Warn("invoice references unknown purchase order", zap.String("po_id", inv.POID))
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("receive invoice: %w", err)
	}

	for _, id := range receipt.Skipped {
		s.log.Warn("invoice line skipped, medicine not in catalog",
			zap.String("invoice", inv.ID), zap.String("medicine_id", id))
	}
	s.log.Info("invoice received",
		zap.String("id", inv.ID), zap.String("number", inv.InvoiceNumber),
		zap.String("po_id", inv.POID), zap.Int("lines", len(inv.Items)))
	return receipt, nil
}

func (s *Store) ListInvoices(ctx context.Context) ([]model.Invoice, error) {
	return database.GetAllInvoices(ctx, s.db)
}

// ReturnSign is +1 for Sales returns (goods back from a customer) and -1
// for Purchase returns (goods back to the supplier).
func ReturnSign(t model.ReturnType) (int, error) {
	switch t {
	case model.ReturnSales:
		return 1, nil
	case model.ReturnPurchase:
		return -1, nil
	default:
		return 0, ErrInvalidReturnType
	}
}

// ApplyReturn stores the record and adjusts stock by sign*quantity,
// flooring at zero.
func (s *Store) ApplyReturn(ctx context.Context, rec model.ReturnRecord) (*model.ReturnRecord, *model.Medicine, error) {
	sign, err := ReturnSign(rec.Type)
	if err != nil {
		return nil, nil, err
	}
	if rec.Quantity < 1 {
		return nil, nil, ErrInvalidQuantity
	}
	if rec.Date.IsZero() {
		rec.Date = s.now()
	}
	if rec.Status == "" {
		rec.Status = model.ReturnPending
	}

	var med *model.Medicine
	err = database.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		m, err := database.GetMedicineByID(ctx, tx, rec.MedicineID)
		if err != nil {
			return err
		}
		if m == nil {
			return ErrMedicineNotFound
		}
		rec.MedicineName = m.Name

		id, err := database.NextSequenceInTx(ctx, tx, database.ReturnSequence)
		if err != nil {
			return err
		}
		rec.ID = id
		if err := database.InsertReturnInTx(ctx, tx, &rec); err != nil {
			return err
		}
		if _, err := database.AdjustMedicineStockFloored(ctx, tx, rec.MedicineID, sign*rec.Quantity); err != nil {
			return err
		}
		med, err = database.GetMedicineByID(ctx, tx, rec.MedicineID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.log.Info("return applied",
		zap.String("id", rec.ID), zap.String("type", string(rec.Type)),
		zap.String("medicine_id", rec.MedicineID), zap.Int("quantity", rec.Quantity),
		zap.Int("stock", med.SystemStock))
	return &rec, withPrice(med), nil
}

func (s *Store) ListReturns(ctx context.Context) ([]model.ReturnRecord, error) {
	return database.GetAllReturns(ctx, s.db)
}
