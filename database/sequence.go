package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Sequence describes one code series, e.g. MED-000001.
type Sequence struct {
	Name    string
	Table   string
	Prefix  string
	Padding int
}

var (
	MedicineSequence = Sequence{Name: "MED", Table: "medicines", Prefix: "MED-", Padding: 6}
	SupplierSequence = Sequence{Name: "SUP", Table: "suppliers", Prefix: "SUP-", Padding: 6}
	OrderSequence    = Sequence{Name: "PO", Table: "purchase_orders", Prefix: "PO-", Padding: 6}
	InvoiceSequence  = Sequence{Name: "INV", Table: "invoices", Prefix: "INV-", Padding: 6}
	ReturnSequence   = Sequence{Name: "RET", Table: "returns", Prefix: "RET-", Padding: 6}
)

var AllSequences = []Sequence{
	MedicineSequence, SupplierSequence, OrderSequence, InvoiceSequence, ReturnSequence,
}

// NextSequenceInTx bumps the counter for seq and returns the formatted code.
func NextSequenceInTx(ctx context.Context, tx *sqlx.Tx, seq Sequence) (string, error) {
	var lastNo int
	err := tx.GetContext(ctx, &lastNo, "SELECT last_no FROM code_sequences WHERE name = ?", seq.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("sequence '%s' not found", seq.Name)
		}
		return "", fmt.Errorf("failed to get sequence '%s': %w", seq.Name, err)
	}

	newNo := lastNo + 1
	if _, err := tx.ExecContext(ctx, `UPDATE code_sequences SET last_no = ? WHERE name = ?`, newNo, seq.Name); err != nil {
		return "", fmt.Errorf("failed to update sequence '%s': %w", seq.Name, err)
	}

	format := fmt.Sprintf("%s%%0%dd", seq.Prefix, seq.Padding)
	return fmt.Sprintf(format, newNo), nil
}

// SyncSequenceInTx raises the counter to the highest code already present
// in the sequence's table, so rows inserted outside NextSequenceInTx
// (imports, restored databases) never collide with new codes.
func SyncSequenceInTx(ctx context.Context, tx *sqlx.Tx, seq Sequence) (int, error) {
	var maxCode sql.NullString
	q := fmt.Sprintf("SELECT id FROM %s WHERE id LIKE ? ORDER BY id DESC LIMIT 1", seq.Table)
	err := tx.GetContext(ctx, &maxCode, q, seq.Prefix+"%")
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to read max code for '%s': %w", seq.Name, err)
	}

	maxNum := 0
	if maxCode.Valid {
		maxNum, _ = strconv.Atoi(strings.TrimPrefix(maxCode.String, seq.Prefix))
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE code_sequences SET last_no = MAX(last_no, ?) WHERE name = ?`, maxNum, seq.Name)
	if err != nil {
		return 0, fmt.Errorf("failed to sync sequence '%s': %w", seq.Name, err)
	}
	return maxNum, nil
}
