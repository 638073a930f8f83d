package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"apotek/model"

	"github.com/jmoiron/sqlx"
)

func GetAllSuppliers(ctx context.Context, db DBTX) ([]model.Supplier, error) {
	var suppliers []model.Supplier
	err := db.SelectContext(ctx, &suppliers,
		"SELECT id, name, phone, email, address, created_at FROM suppliers ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to get all suppliers: %w", err)
	}
	return suppliers, nil
}

// GetSupplierByID returns nil without error when no row matches.
func GetSupplierByID(ctx context.Context, db DBTX, id string) (*model.Supplier, error) {
	var s model.Supplier
	err := db.GetContext(ctx, &s,
		"SELECT id, name, phone, email, address, created_at FROM suppliers WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get supplier %s: %w", id, err)
	}
	return &s, nil
}

func InsertSupplierInTx(ctx context.Context, tx *sqlx.Tx, s *model.Supplier) error {
	const q = `
		INSERT INTO suppliers (id, name, phone, email, address, created_at)
		VALUES (:id, :name, :phone, :email, :address, :created_at)`
	if _, err := tx.NamedExecContext(ctx, q, s); err != nil {
		return fmt.Errorf("InsertSupplierInTx (Name: %s) failed: %w", s.Name, err)
	}
	return nil
}
