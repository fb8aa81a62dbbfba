package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pharmacy-backoffice/internal/core"
)

// OrderStore is a pgx-backed core.OrderRepository. Update enforces the
// optimistic version check with a conditional UPDATE, so two racing writers
// on the same order can never both succeed.
type OrderStore struct {
	pool *pgxpool.Pool
}

// NewOrderStore constructs an OrderStore on the given pool.
func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

func (s *OrderStore) Create(ctx context.Context, po *core.PurchaseOrder) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	po.Version = 1
	if _, err := tx.Exec(ctx, `
		INSERT INTO purchase_orders
		       (id, supplier_id, status, priority, subtotal, bulk_discount, tax_amount,
		        shipping_cost, grand_total, approval_level, required_approvals,
		        completed_approvals, notes, created_at, submitted_at, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		po.ID, po.SupplierID, po.Status, po.Priority,
		po.Totals.Subtotal, po.Totals.BulkDiscount, po.Totals.TaxAmount,
		po.Totals.ShippingCost, po.Totals.GrandTotal,
		po.ApprovalLevel, po.RequiredApprovals, po.CompletedApprovals,
		po.Notes, po.CreatedAt, po.SubmittedAt, po.Version); err != nil {
		return fmt.Errorf("insert order %s: %w", po.ID, err)
	}
	if err := insertChildren(ctx, tx, po); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit order %s: %w", po.ID, err)
	}
	return nil
}

func (s *OrderStore) Get(ctx context.Context, orderID string) (*core.PurchaseOrder, error) {
	po, err := scanOrder(s.pool.QueryRow(ctx,
		"SELECT "+orderColumns+" FROM purchase_orders WHERE id = $1", orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %s: %w", orderID, core.ErrNotFound)
		}
		return nil, fmt.Errorf("get order %s: %w", orderID, err)
	}
	if err := s.loadChildren(ctx, &po); err != nil {
		return nil, err
	}
	return &po, nil
}

func (s *OrderStore) List(ctx context.Context, status core.OrderStatus) ([]core.PurchaseOrder, error) {
	query := "SELECT " + orderColumns + " FROM purchase_orders"
	var args []any
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []core.PurchaseOrder
	for rows.Next() {
		po, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, po)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := s.loadChildren(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *OrderStore) Update(ctx context.Context, po *core.PurchaseOrder) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE purchase_orders SET
		    status = $2, priority = $3, subtotal = $4, bulk_discount = $5,
		    tax_amount = $6, shipping_cost = $7, grand_total = $8,
		    approval_level = $9, required_approvals = $10, completed_approvals = $11,
		    notes = $12, submitted_at = $13, version = version + 1
		WHERE id = $1 AND version = $14`,
		po.ID, po.Status, po.Priority,
		po.Totals.Subtotal, po.Totals.BulkDiscount, po.Totals.TaxAmount,
		po.Totals.ShippingCost, po.Totals.GrandTotal,
		po.ApprovalLevel, po.RequiredApprovals, po.CompletedApprovals,
		po.Notes, po.SubmittedAt, po.Version)
	if err != nil {
		return fmt.Errorf("update order %s: %w", po.ID, err)
	}
	if tag.RowsAffected() == 0 {
		// Either the order vanished or another writer got there first.
		var exists bool
		if err := tx.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM purchase_orders WHERE id = $1)", po.ID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("check order %s: %w", po.ID, err)
		}
		if !exists {
			return fmt.Errorf("order %s: %w", po.ID, core.ErrNotFound)
		}
		return fmt.Errorf("order %s version %d superseded: %w", po.ID, po.Version, core.ErrStaleOrderState)
	}

	if _, err := tx.Exec(ctx, "DELETE FROM purchase_order_lines WHERE order_id = $1", po.ID); err != nil {
		return fmt.Errorf("clear lines for order %s: %w", po.ID, err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM approval_records WHERE order_id = $1", po.ID); err != nil {
		return fmt.Errorf("clear approvals for order %s: %w", po.ID, err)
	}
	if err := insertChildren(ctx, tx, po); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit order %s: %w", po.ID, err)
	}
	po.Version++
	return nil
}

const orderColumns = `id, supplier_id, status, priority, subtotal, bulk_discount,
       tax_amount, shipping_cost, grand_total, approval_level,
       required_approvals, completed_approvals, notes, created_at,
       submitted_at, version`

func scanOrder(row pgx.Row) (core.PurchaseOrder, error) {
	var po core.PurchaseOrder
	err := row.Scan(&po.ID, &po.SupplierID, &po.Status, &po.Priority,
		&po.Totals.Subtotal, &po.Totals.BulkDiscount, &po.Totals.TaxAmount,
		&po.Totals.ShippingCost, &po.Totals.GrandTotal,
		&po.ApprovalLevel, &po.RequiredApprovals, &po.CompletedApprovals,
		&po.Notes, &po.CreatedAt, &po.SubmittedAt, &po.Version)
	return po, err
}

func insertChildren(ctx context.Context, tx pgx.Tx, po *core.PurchaseOrder) error {
	for i, li := range po.LineItems {
		if _, err := tx.Exec(ctx, `
			INSERT INTO purchase_order_lines
			       (order_id, position, line_id, drug_id, drug_name, quantity, unit_price, total)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			po.ID, i, li.ID, li.DrugID, li.DrugName, li.Quantity, li.UnitPrice, li.Total); err != nil {
			return fmt.Errorf("insert line %d for order %s: %w", i, po.ID, err)
		}
	}
	for i, rec := range po.ApprovalHistory {
		if _, err := tx.Exec(ctx, `
			INSERT INTO approval_records
			       (order_id, position, approver_id, role, action, level, recorded_at, comments)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			po.ID, i, rec.ApproverID, rec.Role, rec.Action, rec.Level, rec.Timestamp, rec.Comments); err != nil {
			return fmt.Errorf("insert approval %d for order %s: %w", i, po.ID, err)
		}
	}
	return nil
}

func (s *OrderStore) loadChildren(ctx context.Context, po *core.PurchaseOrder) error {
	rows, err := s.pool.Query(ctx, `
		SELECT line_id, drug_id, drug_name, quantity, unit_price, total
		FROM purchase_order_lines
		WHERE order_id = $1
		ORDER BY position`, po.ID)
	if err != nil {
		return fmt.Errorf("fetch lines for order %s: %w", po.ID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var li core.OrderLineItem
		if err := rows.Scan(&li.ID, &li.DrugID, &li.DrugName, &li.Quantity, &li.UnitPrice, &li.Total); err != nil {
			return fmt.Errorf("scan line: %w", err)
		}
		po.LineItems = append(po.LineItems, li)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	recs, err := s.pool.Query(ctx, `
		SELECT approver_id, role, action, level, recorded_at, comments
		FROM approval_records
		WHERE order_id = $1
		ORDER BY position`, po.ID)
	if err != nil {
		return fmt.Errorf("fetch approvals for order %s: %w", po.ID, err)
	}
	defer recs.Close()
	for recs.Next() {
		var rec core.ApprovalRecord
		if err := recs.Scan(&rec.ApproverID, &rec.Role, &rec.Action, &rec.Level, &rec.Timestamp, &rec.Comments); err != nil {
			return fmt.Errorf("scan approval: %w", err)
		}
		po.ApprovalHistory = append(po.ApprovalHistory, rec)
	}
	return recs.Err()
}
