package database

import (
	"context"
	"fmt"

	"apotek/model"

	"github.com/jmoiron/sqlx"
)

func InsertInvoiceInTx(ctx context.Context, tx *sqlx.Tx, inv *model.Invoice) error {
	const header = `
		INSERT INTO invoices (id, po_id, invoice_number, invoice_date, total_amount)
		VALUES (:id, :po_id, :invoice_number, :invoice_date, :total_amount)`
	if _, err := tx.NamedExecContext(ctx, header, inv); err != nil {
		return fmt.Errorf("failed to insert invoice %s: %w", inv.InvoiceNumber, err)
	}

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO invoice_items (invoice_id, line_no, medicine_id, name, quantity, hna, ppn, selling_price)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare invoice item insert statement: %w", err)
	}
	defer stmt.Close()

	for i, it := range inv.Items {
		_, err := stmt.ExecContext(ctx,
			inv.ID, i+1, it.MedicineID, it.Name, it.Quantity, it.HNA, it.PPN, it.SellingPrice)
		if err != nil {
			return fmt.Errorf("failed to execute invoice item insert for %s: %w", it.MedicineID, err)
		}
	}
	return nil
}

// GetAllInvoices lists invoices newest first with their lines.
func GetAllInvoices(ctx context.Context, db DBTX) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := db.SelectContext(ctx, &invoices, `
		SELECT id, po_id, invoice_number, invoice_date, total_amount
		FROM invoices ORDER BY invoice_date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoices: %w", err)
	}

	var items []model.InvoiceItem
	err = db.SelectContext(ctx, &items, `
		SELECT invoice_id, medicine_id, name, quantity, hna, ppn, selling_price
		FROM invoice_items ORDER BY invoice_id, line_no`)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice items: %w", err)
	}

	byInvoice := make(map[string][]model.InvoiceItem, len(invoices))
	for _, it := range items {
		byInvoice[it.InvoiceID] = append(byInvoice[it.InvoiceID], it)
	}
	for i := range invoices {
		invoices[i].Items = byInvoice[invoices[i].ID]
	}
	return invoices, nil
}

func CountInvoices(ctx context.Context, db DBTX) (int, error) {
	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM invoices`); err != nil {
		return 0, fmt.Errorf("failed to count invoices: %w", err)
	}
	return n, nil
}
