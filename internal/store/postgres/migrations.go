package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied idempotently at startup. Orders are normalized into a
// header table plus line and approval-record tables; the header carries the
// version column backing the optimistic concurrency check.
const schema = `
CREATE TABLE IF NOT EXISTS drugs (
    id                     TEXT PRIMARY KEY,
    name                   TEXT NOT NULL,
    generic_name           TEXT NOT NULL DEFAULT '',
    category               TEXT NOT NULL DEFAULT '',
    current_stock          INTEGER NOT NULL CHECK (current_stock >= 0),
    min_stock_level        INTEGER NOT NULL CHECK (min_stock_level >= 0),
    max_stock_level        INTEGER NOT NULL CHECK (max_stock_level >= min_stock_level),
    reorder_level          INTEGER NOT NULL CHECK (reorder_level >= 0),
    unit_price             NUMERIC(14,4) NOT NULL CHECK (unit_price >= 0),
    selling_price          NUMERIC(14,4) NOT NULL CHECK (selling_price >= 0),
    controlled_substance   BOOLEAN NOT NULL DEFAULT FALSE,
    refrigeration_required BOOLEAN NOT NULL DEFAULT FALSE,
    prescription_required  BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS batches (
    id                 TEXT NOT NULL,
    drug_id            TEXT NOT NULL REFERENCES drugs(id),
    batch_number       TEXT NOT NULL,
    manufacturing_date TIMESTAMPTZ NOT NULL,
    expiry_date        TIMESTAMPTZ NOT NULL,
    quantity           INTEGER NOT NULL CHECK (quantity >= 0),
    remaining_quantity INTEGER NOT NULL CHECK (remaining_quantity >= 0 AND remaining_quantity <= quantity),
    status             TEXT NOT NULL,
    PRIMARY KEY (drug_id, batch_number),
    CHECK (manufacturing_date < expiry_date)
);

CREATE TABLE IF NOT EXISTS suppliers (
    id                      TEXT PRIMARY KEY,
    name                    TEXT NOT NULL,
    payment_terms           TEXT NOT NULL DEFAULT '',
    minimum_order_amount    NUMERIC(14,2) NOT NULL CHECK (minimum_order_amount >= 0),
    shipping_cost           NUMERIC(14,2) NOT NULL CHECK (shipping_cost >= 0),
    free_shipping_threshold NUMERIC(14,2) NOT NULL CHECK (free_shipping_threshold >= 0),
    lead_time_days          INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS supplier_bulk_discounts (
    supplier_id      TEXT NOT NULL REFERENCES suppliers(id) ON DELETE CASCADE,
    min_quantity     NUMERIC(14,2) NOT NULL,
    discount_percent NUMERIC(5,2) NOT NULL CHECK (discount_percent >= 0 AND discount_percent <= 100),
    PRIMARY KEY (supplier_id, min_quantity)
);

CREATE TABLE IF NOT EXISTS supplier_pricing (
    supplier_id       TEXT NOT NULL REFERENCES suppliers(id),
    drug_id           TEXT NOT NULL REFERENCES drugs(id),
    contract_price    NUMERIC(14,4) NOT NULL CHECK (contract_price >= 0),
    list_price        NUMERIC(14,4) NOT NULL CHECK (list_price >= 0),
    minimum_order_qty INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (supplier_id, drug_id)
);

CREATE TABLE IF NOT EXISTS supplier_price_breaks (
    supplier_id TEXT NOT NULL,
    drug_id     TEXT NOT NULL,
    min_qty     INTEGER NOT NULL CHECK (min_qty > 0),
    price       NUMERIC(14,4) NOT NULL CHECK (price >= 0),
    PRIMARY KEY (supplier_id, drug_id, min_qty),
    FOREIGN KEY (supplier_id, drug_id) REFERENCES supplier_pricing(supplier_id, drug_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS purchase_orders (
    id                  TEXT PRIMARY KEY,
    supplier_id         TEXT NOT NULL REFERENCES suppliers(id),
    status              TEXT NOT NULL,
    priority            TEXT NOT NULL,
    subtotal            NUMERIC(14,2) NOT NULL DEFAULT 0,
    bulk_discount       NUMERIC(14,2) NOT NULL DEFAULT 0,
    tax_amount          NUMERIC(14,2) NOT NULL DEFAULT 0,
    shipping_cost       NUMERIC(14,2) NOT NULL DEFAULT 0,
    grand_total         NUMERIC(14,2) NOT NULL DEFAULT 0,
    approval_level      TEXT NOT NULL DEFAULT '',
    required_approvals  INTEGER NOT NULL DEFAULT 0,
    completed_approvals INTEGER NOT NULL DEFAULT 0,
    notes               TEXT NOT NULL DEFAULT '',
    created_at          TIMESTAMPTZ NOT NULL,
    submitted_at        TIMESTAMPTZ,
    version             BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS purchase_order_lines (
    order_id   TEXT NOT NULL REFERENCES purchase_orders(id) ON DELETE CASCADE,
    position   INTEGER NOT NULL,
    line_id    TEXT NOT NULL,
    drug_id    TEXT NOT NULL,
    drug_name  TEXT NOT NULL,
    quantity   INTEGER NOT NULL CHECK (quantity > 0),
    unit_price NUMERIC(14,4) NOT NULL,
    total      NUMERIC(14,2) NOT NULL,
    PRIMARY KEY (order_id, position)
);

CREATE TABLE IF NOT EXISTS approval_records (
    order_id    TEXT NOT NULL REFERENCES purchase_orders(id) ON DELETE CASCADE,
    position    INTEGER NOT NULL,
    approver_id TEXT NOT NULL,
    role        TEXT NOT NULL DEFAULT '',
    action      TEXT NOT NULL,
    level       TEXT NOT NULL,
    recorded_at TIMESTAMPTZ NOT NULL,
    comments    TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (order_id, position)
);

CREATE INDEX IF NOT EXISTS idx_purchase_orders_status ON purchase_orders(status);
CREATE INDEX IF NOT EXISTS idx_batches_expiry ON batches(expiry_date);
`

// Migrate applies the schema. Safe to run on every startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
