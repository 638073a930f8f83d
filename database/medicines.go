package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"apotek/model"

	"github.com/jmoiron/sqlx"
)

const medicineColumns = `
	id, barcode, name, category, unit, system_stock, hna, ppn, margin,
	last_stock_opname, created_at`

func InsertMedicineInTx(ctx context.Context, tx *sqlx.Tx, m *model.Medicine) error {
	const q = `
		INSERT INTO medicines (` + medicineColumns + `)
		VALUES (
			:id, :barcode, :name, :category, :unit, :system_stock, :hna, :ppn, :margin,
			:last_stock_opname, :created_at
		)`
	if _, err := tx.NamedExecContext(ctx, q, m); err != nil {
		return fmt.Errorf("failed to insert medicine %s: %w", m.Name, err)
	}
	return nil
}

// GetMedicineByID returns nil without error when no row matches.
func GetMedicineByID(ctx context.Context, db DBTX, id string) (*model.Medicine, error) {
	var m model.Medicine
	err := db.GetContext(ctx, &m, `SELECT `+medicineColumns+` FROM medicines WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get medicine %s: %w", id, err)
	}
	return &m, nil
}

// GetMedicineByBarcode returns nil without error when no row matches.
func GetMedicineByBarcode(ctx context.Context, db DBTX, barcode string) (*model.Medicine, error) {
	var m model.Medicine
	err := db.GetContext(ctx, &m,
		`SELECT `+medicineColumns+` FROM medicines WHERE barcode = ? ORDER BY id LIMIT 1`, barcode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get medicine by barcode %s: %w", barcode, err)
	}
	return &m, nil
}

func GetAllMedicines(ctx context.Context, db DBTX) ([]model.Medicine, error) {
	var meds []model.Medicine
	if err := db.SelectContext(ctx, &meds, `SELECT `+medicineColumns+` FROM medicines ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to get all medicines: %w", err)
	}
	return meds, nil
}

// GetLowStockMedicines returns medicines whose stock is strictly below threshold.
func GetLowStockMedicines(ctx context.Context, db DBTX, threshold int) ([]model.Medicine, error) {
	var meds []model.Medicine
	err := db.SelectContext(ctx, &meds,
		`SELECT `+medicineColumns+` FROM medicines WHERE system_stock < ? ORDER BY system_stock, id`, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to get low stock medicines: %w", err)
	}
	return meds, nil
}

// SetMedicineStock overwrites system_stock and stamps last_stock_opname.
// It reports whether a row was updated.
func SetMedicineStock(ctx context.Context, db DBTX, id string, counted int, at time.Time) (bool, error) {
	res, err := db.ExecContext(ctx,
		`UPDATE medicines SET system_stock = ?, last_stock_opname = ? WHERE id = ?`, counted, at, id)
	if err != nil {
		return false, fmt.Errorf("failed to set stock for %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected for %s: %w", id, err)
	}
	return n > 0, nil
}

// IncrementMedicineStock adds qty to system_stock. It reports whether the
// medicine exists.
func IncrementMedicineStock(ctx context.Context, db DBTX, id string, qty int) (bool, error) {
	res, err := db.ExecContext(ctx,
		`UPDATE medicines SET system_stock = system_stock + ? WHERE id = ?`, qty, id)
	if err != nil {
		return false, fmt.Errorf("failed to increment stock for %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected for %s: %w", id, err)
	}
	return n > 0, nil
}

// AdjustMedicineStockFloored applies delta and clamps the result at zero.
func AdjustMedicineStockFloored(ctx context.Context, db DBTX, id string, delta int) (bool, error) {
	res, err := db.ExecContext(ctx,
		`UPDATE medicines SET system_stock = MAX(0, system_stock + ?) WHERE id = ?`, delta, id)
	if err != nil {
		return false, fmt.Errorf("failed to adjust stock for %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected for %s: %w", id, err)
	}
	return n > 0, nil
}

// InventoryTotals aggregates the whole catalog.
type InventoryTotals struct {
	MedicineCount int     `db:"medicine_count"`
	TotalUnits    int     `db:"total_units"`
	Value         float64 `db:"inventory_value"`
}

// GetInventoryTotals values stock at HNA, without tax or margin.
func GetInventoryTotals(ctx context.Context, db DBTX) (InventoryTotals, error) {
	var t InventoryTotals
	err := db.GetContext(ctx, &t, `
		SELECT
			COUNT(*) AS medicine_count,
			COALESCE(SUM(system_stock), 0) AS total_units,
			COALESCE(SUM(system_stock * hna), 0) AS inventory_value
		FROM medicines`)
	if err != nil {
		return InventoryTotals{}, fmt.Errorf("failed to get inventory totals: %w", err)
	}
	return t, nil
}
