// Package postgres implements the engine's repositories on PostgreSQL via
// pgx. It mirrors the memory store's error taxonomy and version semantics.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pharmacy-backoffice/internal/core"
)

// CatalogStore is a pgx-backed core.CatalogRepository.
type CatalogStore struct {
	pool *pgxpool.Pool
}

// NewCatalogStore constructs a CatalogStore on the given pool.
func NewCatalogStore(pool *pgxpool.Pool) *CatalogStore {
	return &CatalogStore{pool: pool}
}

const drugColumns = `id, name, generic_name, category, current_stock, min_stock_level,
       max_stock_level, reorder_level, unit_price, selling_price,
       controlled_substance, refrigeration_required, prescription_required`

func scanDrug(row pgx.Row) (core.Drug, error) {
	var d core.Drug
	err := row.Scan(&d.ID, &d.Name, &d.GenericName, &d.Category, &d.CurrentStock,
		&d.MinStockLevel, &d.MaxStockLevel, &d.ReorderLevel, &d.UnitPrice,
		&d.SellingPrice, &d.ControlledSubstance, &d.RefrigerationRequired,
		&d.PrescriptionRequired)
	return d, err
}

func (s *CatalogStore) GetDrug(ctx context.Context, drugID string) (*core.Drug, error) {
	d, err := scanDrug(s.pool.QueryRow(ctx,
		"SELECT "+drugColumns+" FROM drugs WHERE id = $1", drugID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("drug %s: %w", drugID, core.ErrNotFound)
		}
		return nil, fmt.Errorf("get drug %s: %w", drugID, err)
	}
	return &d, nil
}

func (s *CatalogStore) ListDrugs(ctx context.Context) ([]core.Drug, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+drugColumns+" FROM drugs ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list drugs: %w", err)
	}
	defer rows.Close()

	var out []core.Drug
	for rows.Next() {
		d, err := scanDrug(rows)
		if err != nil {
			return nil, fmt.Errorf("scan drug: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

const batchColumns = `id, drug_id, batch_number, manufacturing_date, expiry_date,
       quantity, remaining_quantity, status`

func (s *CatalogStore) listBatches(ctx context.Context, query string, args ...any) ([]core.Batch, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var out []core.Batch
	for rows.Next() {
		var b core.Batch
		if err := rows.Scan(&b.ID, &b.DrugID, &b.BatchNumber, &b.ManufacturingDate,
			&b.ExpiryDate, &b.Quantity, &b.RemainingQuantity, &b.Status); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *CatalogStore) ListBatches(ctx context.Context) ([]core.Batch, error) {
	return s.listBatches(ctx,
		"SELECT "+batchColumns+" FROM batches ORDER BY drug_id, batch_number")
}

func (s *CatalogStore) ListBatchesForDrug(ctx context.Context, drugID string) ([]core.Batch, error) {
	return s.listBatches(ctx,
		"SELECT "+batchColumns+" FROM batches WHERE drug_id = $1 ORDER BY batch_number", drugID)
}

func (s *CatalogStore) GetSupplier(ctx context.Context, supplierID string) (*core.Supplier, error) {
	var sup core.Supplier
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, payment_terms, minimum_order_amount, shipping_cost,
		       free_shipping_threshold, lead_time_days
		FROM suppliers WHERE id = $1`, supplierID,
	).Scan(&sup.ID, &sup.Name, &sup.PaymentTerms, &sup.MinimumOrderAmount,
		&sup.ShippingCost, &sup.FreeShippingThreshold, &sup.LeadTimeDays)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("supplier %s: %w", supplierID, core.ErrNotFound)
		}
		return nil, fmt.Errorf("get supplier %s: %w", supplierID, err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT min_quantity, discount_percent
		FROM supplier_bulk_discounts
		WHERE supplier_id = $1
		ORDER BY min_quantity`, supplierID)
	if err != nil {
		return nil, fmt.Errorf("list bulk discounts for %s: %w", supplierID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var t core.BulkDiscountTier
		if err := rows.Scan(&t.MinQuantity, &t.DiscountPercent); err != nil {
			return nil, fmt.Errorf("scan bulk discount: %w", err)
		}
		sup.BulkDiscounts = append(sup.BulkDiscounts, t)
	}
	return &sup, rows.Err()
}

func (s *CatalogStore) GetSupplierPricing(ctx context.Context, supplierID, drugID string) (*core.SupplierPricing, error) {
	var sp core.SupplierPricing
	err := s.pool.QueryRow(ctx, `
		SELECT supplier_id, drug_id, contract_price, list_price, minimum_order_qty
		FROM supplier_pricing
		WHERE supplier_id = $1 AND drug_id = $2`, supplierID, drugID,
	).Scan(&sp.SupplierID, &sp.DrugID, &sp.ContractPrice, &sp.ListPrice, &sp.MinimumOrderQty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("pricing for supplier %s drug %s: %w",
				supplierID, drugID, core.ErrPricingNotFound)
		}
		return nil, fmt.Errorf("get pricing %s/%s: %w", supplierID, drugID, err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT min_qty, price
		FROM supplier_price_breaks
		WHERE supplier_id = $1 AND drug_id = $2
		ORDER BY min_qty`, supplierID, drugID)
	if err != nil {
		return nil, fmt.Errorf("list price breaks %s/%s: %w", supplierID, drugID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var pb core.PriceBreak
		if err := rows.Scan(&pb.MinQty, &pb.Price); err != nil {
			return nil, fmt.Errorf("scan price break: %w", err)
		}
		sp.PriceBreaks = append(sp.PriceBreaks, pb)
	}
	return &sp, rows.Err()
}

func (s *CatalogStore) PutDrug(ctx context.Context, d core.Drug) error {
	if err := d.Validate(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO drugs (`+drugColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (id) DO UPDATE SET
		    name = EXCLUDED.name, generic_name = EXCLUDED.generic_name,
		    category = EXCLUDED.category, current_stock = EXCLUDED.current_stock,
		    min_stock_level = EXCLUDED.min_stock_level,
		    max_stock_level = EXCLUDED.max_stock_level,
		    reorder_level = EXCLUDED.reorder_level,
		    unit_price = EXCLUDED.unit_price, selling_price = EXCLUDED.selling_price,
		    controlled_substance = EXCLUDED.controlled_substance,
		    refrigeration_required = EXCLUDED.refrigeration_required,
		    prescription_required = EXCLUDED.prescription_required`,
		d.ID, d.Name, d.GenericName, d.Category, d.CurrentStock, d.MinStockLevel,
		d.MaxStockLevel, d.ReorderLevel, d.UnitPrice, d.SellingPrice,
		d.ControlledSubstance, d.RefrigerationRequired, d.PrescriptionRequired)
	if err != nil {
		return fmt.Errorf("upsert drug %s: %w", d.ID, err)
	}
	return nil
}

func (s *CatalogStore) PutBatch(ctx context.Context, b core.Batch) error {
	if err := b.Validate(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO batches (`+batchColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (drug_id, batch_number) DO UPDATE SET
		    manufacturing_date = EXCLUDED.manufacturing_date,
		    expiry_date = EXCLUDED.expiry_date,
		    quantity = EXCLUDED.quantity,
		    remaining_quantity = EXCLUDED.remaining_quantity,
		    status = EXCLUDED.status`,
		b.ID, b.DrugID, b.BatchNumber, b.ManufacturingDate, b.ExpiryDate,
		b.Quantity, b.RemainingQuantity, b.Status)
	if err != nil {
		return fmt.Errorf("upsert batch %s/%s: %w", b.DrugID, b.BatchNumber, err)
	}
	return nil
}

func (s *CatalogStore) PutSupplier(ctx context.Context, sup core.Supplier) error {
	if err := sup.Validate(); err != nil {
		return err
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO suppliers (id, name, payment_terms, minimum_order_amount,
		                       shipping_cost, free_shipping_threshold, lead_time_days)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET
		    name = EXCLUDED.name, payment_terms = EXCLUDED.payment_terms,
		    minimum_order_amount = EXCLUDED.minimum_order_amount,
		    shipping_cost = EXCLUDED.shipping_cost,
		    free_shipping_threshold = EXCLUDED.free_shipping_threshold,
		    lead_time_days = EXCLUDED.lead_time_days`,
		sup.ID, sup.Name, sup.PaymentTerms, sup.MinimumOrderAmount,
		sup.ShippingCost, sup.FreeShippingThreshold, sup.LeadTimeDays); err != nil {
		return fmt.Errorf("upsert supplier %s: %w", sup.ID, err)
	}

	if _, err := tx.Exec(ctx,
		"DELETE FROM supplier_bulk_discounts WHERE supplier_id = $1", sup.ID); err != nil {
		return fmt.Errorf("clear bulk discounts for %s: %w", sup.ID, err)
	}
	for _, t := range sup.BulkDiscounts {
		if _, err := tx.Exec(ctx, `
			INSERT INTO supplier_bulk_discounts (supplier_id, min_quantity, discount_percent)
			VALUES ($1,$2,$3)`, sup.ID, t.MinQuantity, t.DiscountPercent); err != nil {
			return fmt.Errorf("insert bulk discount for %s: %w", sup.ID, err)
		}
	}
	return tx.Commit(ctx)
}

func (s *CatalogStore) PutSupplierPricing(ctx context.Context, sp core.SupplierPricing) error {
	if err := sp.Validate(); err != nil {
		return err
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO supplier_pricing (supplier_id, drug_id, contract_price, list_price, minimum_order_qty)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (supplier_id, drug_id) DO UPDATE SET
		    contract_price = EXCLUDED.contract_price,
		    list_price = EXCLUDED.list_price,
		    minimum_order_qty = EXCLUDED.minimum_order_qty`,
		sp.SupplierID, sp.DrugID, sp.ContractPrice, sp.ListPrice, sp.MinimumOrderQty); err != nil {
		return fmt.Errorf("upsert pricing %s/%s: %w", sp.SupplierID, sp.DrugID, err)
	}

	if _, err := tx.Exec(ctx,
		"DELETE FROM supplier_price_breaks WHERE supplier_id = $1 AND drug_id = $2",
		sp.SupplierID, sp.DrugID); err != nil {
		return fmt.Errorf("clear price breaks %s/%s: %w", sp.SupplierID, sp.DrugID, err)
	}
	for _, pb := range sp.PriceBreaks {
		if _, err := tx.Exec(ctx, `
			INSERT INTO supplier_price_breaks (supplier_id, drug_id, min_qty, price)
			VALUES ($1,$2,$3,$4)`, sp.SupplierID, sp.DrugID, pb.MinQty, pb.Price); err != nil {
			return fmt.Errorf("insert price break %s/%s: %w", sp.SupplierID, sp.DrugID, err)
		}
	}
	return tx.Commit(ctx)
}
