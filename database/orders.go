package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"apotek/model"

	"github.com/jmoiron/sqlx"
)

const orderColumns = `id, order_date, supplier_id, supplier_name, status, total_amount, is_paid`

// InsertOrderInTx stores the order header and its items.
func InsertOrderInTx(ctx context.Context, tx *sqlx.Tx, po *model.PurchaseOrder) error {
	const header = `
		INSERT INTO purchase_orders (` + orderColumns + `)
		VALUES (:id, :order_date, :supplier_id, :supplier_name, :status, :total_amount, :is_paid)`
	if _, err := tx.NamedExecContext(ctx, header, po); err != nil {
		return fmt.Errorf("failed to insert purchase order %s: %w", po.ID, err)
	}

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO purchase_order_items (order_id, medicine_id, name, quantity, unit, unit_cost)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare order item insert statement: %w", err)
	}
	defer stmt.Close()

	for _, it := range po.Items {
		if _, err := stmt.ExecContext(ctx, po.ID, it.MedicineID, it.Name, it.Quantity, it.Unit, it.UnitCost); err != nil {
			return fmt.Errorf("failed to execute order item insert for %s: %w", it.MedicineID, err)
		}
	}
	return nil
}

// GetOrderByID returns nil without error when no row matches.
func GetOrderByID(ctx context.Context, db DBTX, id string) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	err := db.GetContext(ctx, &po, `SELECT `+orderColumns+` FROM purchase_orders WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get purchase order %s: %w", id, err)
	}
	if err := db.SelectContext(ctx, &po.Items, `
		SELECT order_id, medicine_id, name, quantity, unit, unit_cost
		FROM purchase_order_items WHERE order_id = ? ORDER BY rowid`, id); err != nil {
		return nil, fmt.Errorf("failed to get items for purchase order %s: %w", id, err)
	}
	return &po, nil
}

// GetOrders lists orders newest first, optionally restricted to statuses.
func GetOrders(ctx context.Context, db DBTX, statuses ...model.OrderStatus) ([]model.PurchaseOrder, error) {
	q := `SELECT ` + orderColumns + ` FROM purchase_orders`
	var args []interface{}
	if len(statuses) > 0 {
		var err error
		q, args, err = sqlx.In(q+` WHERE status IN (?)`, statuses)
		if err != nil {
			return nil, fmt.Errorf("failed to build order status filter: %w", err)
		}
		q = db.Rebind(q)
	}
	q += ` ORDER BY order_date DESC, id DESC`

	var orders []model.PurchaseOrder
	if err := db.SelectContext(ctx, &orders, q, args...); err != nil {
		return nil, fmt.Errorf("failed to get purchase orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	itemQ, itemArgs, err := sqlx.In(`
		SELECT order_id, medicine_id, name, quantity, unit, unit_cost
		FROM purchase_order_items WHERE order_id IN (?) ORDER BY rowid`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build order item query: %w", err)
	}
	var items []model.OrderItem
	if err := db.SelectContext(ctx, &items, db.Rebind(itemQ), itemArgs...); err != nil {
		return nil, fmt.Errorf("failed to get purchase order items: %w", err)
	}

	byOrder := make(map[string][]model.OrderItem, len(orders))
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}
	for i := range orders {
		orders[i].Items = byOrder[orders[i].ID]
	}
	return orders, nil
}

// SetOrderPaid reports whether the order exists.
func SetOrderPaid(ctx context.Context, db DBTX, id string, paid bool) (bool, error) {
	res, err := db.ExecContext(ctx, `UPDATE purchase_orders SET is_paid = ? WHERE id = ?`, paid, id)
	if err != nil {
		return false, fmt.Errorf("failed to set paid flag for %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected for %s: %w", id, err)
	}
	return n > 0, nil
}

func SetOrderStatus(ctx context.Context, db DBTX, id string, status model.OrderStatus) (bool, error) {
	res, err := db.ExecContext(ctx, `UPDATE purchase_orders SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return false, fmt.Errorf("failed to set status for %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected for %s: %w", id, err)
	}
	return n > 0, nil
}

// OrderStatusCount is one row of the per-status breakdown.
type OrderStatusCount struct {
	Status model.OrderStatus `db:"status" json:"status"`
	Count  int               `db:"cnt" json:"count"`
}

func CountOrdersByStatus(ctx context.Context, db DBTX) ([]OrderStatusCount, error) {
	var counts []OrderStatusCount
	err := db.SelectContext(ctx, &counts,
		`SELECT status, COUNT(*) AS cnt FROM purchase_orders GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}
	return counts, nil
}
