package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// postgresSchema creates the hosted-database tables. Statements are
// idempotent so Migrate can run on every start.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS products (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    price       NUMERIC(14,4) NOT NULL DEFAULT 0,
    sku         TEXT,
    category    TEXT,
    image       TEXT,
    stock       INTEGER NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_products_sku ON products(sku);

CREATE TABLE IF NOT EXISTS categories (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL UNIQUE,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS customers (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    email       TEXT,
    phone       TEXT,
    address     TEXT,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS delivery_providers (
    id             TEXT PRIMARY KEY,
    name           TEXT NOT NULL,
    contact_phone  TEXT,
    contact_email  TEXT,
    is_active      BOOLEAN NOT NULL DEFAULT TRUE,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS orders (
    id                      TEXT PRIMARY KEY,
    store_id                TEXT,
    customer_id             TEXT,
    customer_name           TEXT NOT NULL DEFAULT 'Guest',
    subtotal                NUMERIC(14,4) NOT NULL DEFAULT 0,
    tax_amount              NUMERIC(14,4) NOT NULL DEFAULT 0,
    total_amount            NUMERIC(14,4) NOT NULL DEFAULT 0,
    total_discount          NUMERIC(14,4) NOT NULL DEFAULT 0,
    total_fees              NUMERIC(14,4) NOT NULL DEFAULT 0,
    order_discount_percent  NUMERIC(7,4) NOT NULL DEFAULT 0,
    fees                    JSONB NOT NULL DEFAULT '[]',
    amount_paid             NUMERIC(14,4) NOT NULL DEFAULT 0,
    change_due              NUMERIC(14,4) NOT NULL DEFAULT 0,
    payment_method          TEXT NOT NULL DEFAULT 'cash',
    status                  TEXT NOT NULL DEFAULT 'completed',
    payment_status          TEXT NOT NULL DEFAULT 'paid',
    notes                   TEXT,
    shipping_address        TEXT,
    shipping_cost           NUMERIC(14,4) NOT NULL DEFAULT 0,
    delivery_provider_id    TEXT,
    delivery_provider_name  TEXT,
    order_type              TEXT NOT NULL DEFAULT 'retail',
    voided_at               TIMESTAMPTZ,
    refunded_at             TIMESTAMPTZ,
    refund_reason           TEXT,
    refund_amount           NUMERIC(14,4) NOT NULL DEFAULT 0,
    created_at              TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at              TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC);

CREATE TABLE IF NOT EXISTS order_items (
    id          TEXT PRIMARY KEY,
    order_id    TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
    product_id  TEXT NOT NULL,
    name        TEXT,
    quantity    INTEGER NOT NULL CHECK (quantity > 0),
    price       NUMERIC(14,4) NOT NULL,
    discount    NUMERIC(7,4) NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);

CREATE TABLE IF NOT EXISTS settings (
    id          INTEGER PRIMARY KEY DEFAULT 1 CHECK (id = 1),
    data        JSONB NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS z_reports (
    id            TEXT PRIMARY KEY,
    register_id   TEXT NOT NULL,
    start_amount  NUMERIC(14,4) NOT NULL,
    end_amount    NUMERIC(14,4) NOT NULL,
    cash_in       NUMERIC(14,4) NOT NULL,
    cash_out      NUMERIC(14,4) NOT NULL,
    cash_sales    NUMERIC(14,4) NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// MoneyScale is the scale of every money and percentage column. It bounds
// Settings.DecimalPlaces so stored orders keep the figures they were rung
// up with.
const MoneyScale = 4

// widenColumns upgrades tables created with the earlier two-place
// columns. Re-running it against the current schema is a no-op.
const widenColumns = `
ALTER TABLE products ALTER COLUMN price TYPE NUMERIC(14,4);
ALTER TABLE orders
    ALTER COLUMN subtotal TYPE NUMERIC(14,4),
    ALTER COLUMN tax_amount TYPE NUMERIC(14,4),
    ALTER COLUMN total_amount TYPE NUMERIC(14,4),
    ALTER COLUMN total_discount TYPE NUMERIC(14,4),
    ALTER COLUMN total_fees TYPE NUMERIC(14,4),
    ALTER COLUMN order_discount_percent TYPE NUMERIC(7,4),
    ALTER COLUMN amount_paid TYPE NUMERIC(14,4),
    ALTER COLUMN change_due TYPE NUMERIC(14,4),
    ALTER COLUMN shipping_cost TYPE NUMERIC(14,4),
    ALTER COLUMN refund_amount TYPE NUMERIC(14,4);
ALTER TABLE order_items
    ALTER COLUMN price TYPE NUMERIC(14,4),
    ALTER COLUMN discount TYPE NUMERIC(7,4);
ALTER TABLE z_reports
    ALTER COLUMN start_amount TYPE NUMERIC(14,4),
    ALTER COLUMN end_amount TYPE NUMERIC(14,4),
    ALTER COLUMN cash_in TYPE NUMERIC(14,4),
    ALTER COLUMN cash_out TYPE NUMERIC(14,4),
    ALTER COLUMN cash_sales TYPE NUMERIC(14,4);
`

// Migrate applies the Postgres schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if _, err := db.ExecContext(ctx, widenColumns); err != nil {
		return fmt.Errorf("migrate: widen money columns: %w", err)
	}
	return nil
}
