package database

import (
	"context"
	"fmt"

	"apotek/model"

	"github.com/jmoiron/sqlx"
)

const returnColumns = `id, return_date, medicine_id, medicine_name, quantity, return_type, reason, status`

func InsertReturnInTx(ctx context.Context, tx *sqlx.Tx, rec *model.ReturnRecord) error {
	const q = `
		INSERT INTO returns (` + returnColumns + `)
		VALUES (:id, :return_date, :medicine_id, :medicine_name, :quantity, :return_type, :reason, :status)`
	if _, err := tx.NamedExecContext(ctx, q, rec); err != nil {
		return fmt.Errorf("failed to insert return for %s: %w", rec.MedicineID, err)
	}
	return nil
}

// GetAllReturns lists return records newest first.
func GetAllReturns(ctx context.Context, db DBTX) ([]model.ReturnRecord, error) {
	var records []model.ReturnRecord
	err := db.SelectContext(ctx, &records,
		`SELECT `+returnColumns+` FROM returns ORDER BY return_date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get returns: %w", err)
	}
	return records, nil
}

func CountReturns(ctx context.Context, db DBTX) (int, error) {
	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM returns`); err != nil {
		return 0, fmt.Errorf("failed to count returns: %w", err)
	}
	return n, nil
}
