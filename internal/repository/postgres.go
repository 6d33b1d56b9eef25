package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

// PostgresStore is the hosted relational backend.
type PostgresStore struct {
	db     *sql.DB
	logger *logging.LoggerV2
}

// NewPostgresStore creates a store over an open lib/pq connection pool.
func NewPostgresStore(db *sql.DB, logger *logging.LoggerV2) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: logger,
	}
}

func (r *PostgresStore) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *PostgresStore) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// execAffecting runs a statement and maps zero affected rows to ErrNotFound.
func (r *PostgresStore) execAffecting(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.ErrNotFound
	}
	return nil
}

// Products

const productColumns = `id, name, price, COALESCE(sku, ''), COALESCE(category, ''), COALESCE(image, ''), stock, created_at, updated_at`

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.SKU, &p.Category, &p.Image, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostgresStore) GetProducts(ctx context.Context) ([]*models.Product, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY name`)
	if err != nil {
		r.logger.Error("Failed to list products", logging.Fields{"error": err.Error()})
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *PostgresStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return scanProduct(r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
}

func (r *PostgresStore) AddProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	id := p.ID
	if id == "" {
		id = uuid.NewString()
	}

	created, err := scanProduct(r.db.QueryRowContext(ctx, `
		INSERT INTO products (id, name, price, sku, category, image, stock)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7)
		RETURNING `+productColumns,
		id, p.Name, p.Price, p.SKU, p.Category, p.Image, p.Stock,
	))
	if err != nil {
		r.logger.Error("Failed to add product", logging.Fields{"name": p.Name, "error": err.Error()})
		return nil, err
	}

	r.logger.Info("Product added", logging.Fields{"product_id": created.ID})
	return created, nil
}

func (r *PostgresStore) UpdateProduct(ctx context.Context, id string, u *models.ProductUpdate) (*models.Product, error) {
	return scanProduct(r.db.QueryRowContext(ctx, `
		UPDATE products SET
			name = COALESCE($2, name),
			price = COALESCE($3, price),
			sku = COALESCE($4, sku),
			category = COALESCE($5, category),
			image = COALESCE($6, image),
			stock = COALESCE($7, stock),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+productColumns,
		id, u.Name, u.Price, u.SKU, u.Category, u.Image, u.Stock,
	))
}

func (r *PostgresStore) DeleteProduct(ctx context.Context, id string) error {
	return r.execAffecting(ctx, `DELETE FROM products WHERE id = $1`, id)
}

func (r *PostgresStore) DeleteProducts(ctx context.Context, ids []string) error {
	return r.execAffecting(ctx, `DELETE FROM products WHERE id = ANY($1)`, pq.Array(ids))
}

// Customers

const customerColumns = `id, name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(address, ''), created_at`

func scanCustomer(row rowScanner) (*models.Customer, error) {
	var c models.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PostgresStore) GetCustomers(ctx context.Context) ([]*models.Customer, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *PostgresStore) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	return scanCustomer(r.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
}

func (r *PostgresStore) AddCustomer(ctx context.Context, c *models.Customer) (*models.Customer, error) {
	id := c.ID
	if id == "" {
		id = uuid.NewString()
	}
	return scanCustomer(r.db.QueryRowContext(ctx, `
		INSERT INTO customers (id, name, email, phone, address)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''))
		RETURNING `+customerColumns,
		id, c.Name, c.Email, c.Phone, c.Address,
	))
}

func (r *PostgresStore) UpdateCustomer(ctx context.Context, id string, u *models.CustomerUpdate) (*models.Customer, error) {
	return scanCustomer(r.db.QueryRowContext(ctx, `
		UPDATE customers SET
			name = COALESCE($2, name),
			email = COALESCE($3, email),
			phone = COALESCE($4, phone),
			address = COALESCE($5, address)
		WHERE id = $1
		RETURNING `+customerColumns,
		id, u.Name, u.Email, u.Phone, u.Address,
	))
}

func (r *PostgresStore) DeleteCustomer(ctx context.Context, id string) error {
	return r.execAffecting(ctx, `DELETE FROM customers WHERE id = $1`, id)
}

// Categories

func (r *PostgresStore) GetCategories(ctx context.Context) ([]*models.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, &c)
	}
	return categories, rows.Err()
}

func (r *PostgresStore) AddCategory(ctx context.Context, c *models.Category) (*models.Category, error) {
	created := models.Category{ID: c.ID, Name: c.Name}
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO categories (id, name) VALUES ($1, $2) RETURNING created_at`,
		created.ID, created.Name,
	).Scan(&created.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, errors.NewValidationError("name", "category already exists")
		}
		return nil, err
	}
	return &created, nil
}

func (r *PostgresStore) DeleteCategory(ctx context.Context, id string) error {
	return r.execAffecting(ctx, `DELETE FROM categories WHERE id = $1`, id)
}

// Delivery providers

const providerColumns = `id, name, COALESCE(contact_phone, ''), COALESCE(contact_email, ''), is_active, created_at`

func scanProvider(row rowScanner) (*models.DeliveryProvider, error) {
	var d models.DeliveryProvider
	err := row.Scan(&d.ID, &d.Name, &d.ContactPhone, &d.ContactEmail, &d.IsActive, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *PostgresStore) GetDeliveryProviders(ctx context.Context) ([]*models.DeliveryProvider, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+providerColumns+` FROM delivery_providers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var providers []*models.DeliveryProvider
	for rows.Next() {
		d, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		providers = append(providers, d)
	}
	return providers, rows.Err()
}

func (r *PostgresStore) GetDeliveryProvider(ctx context.Context, id string) (*models.DeliveryProvider, error) {
	return scanProvider(r.db.QueryRowContext(ctx, `SELECT `+providerColumns+` FROM delivery_providers WHERE id = $1`, id))
}

func (r *PostgresStore) AddDeliveryProvider(ctx context.Context, d *models.DeliveryProvider) (*models.DeliveryProvider, error) {
	id := d.ID
	if id == "" {
		id = uuid.NewString()
	}
	return scanProvider(r.db.QueryRowContext(ctx, `
		INSERT INTO delivery_providers (id, name, contact_phone, contact_email, is_active)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5)
		RETURNING `+providerColumns,
		id, d.Name, d.ContactPhone, d.ContactEmail, d.IsActive,
	))
}

func (r *PostgresStore) UpdateDeliveryProvider(ctx context.Context, id string, u *models.DeliveryProviderUpdate) (*models.DeliveryProvider, error) {
	return scanProvider(r.db.QueryRowContext(ctx, `
		UPDATE delivery_providers SET
			name = COALESCE($2, name),
			contact_phone = COALESCE($3, contact_phone),
			contact_email = COALESCE($4, contact_email),
			is_active = COALESCE($5, is_active)
		WHERE id = $1
		RETURNING `+providerColumns,
		id, u.Name, u.ContactPhone, u.ContactEmail, u.IsActive,
	))
}

func (r *PostgresStore) DeleteDeliveryProvider(ctx context.Context, id string) error {
	return r.execAffecting(ctx, `DELETE FROM delivery_providers WHERE id = $1`, id)
}

// Orders

const orderColumns = `
	id, COALESCE(store_id, ''), COALESCE(customer_id, ''), customer_name,
	subtotal, tax_amount, total_amount, total_discount, total_fees,
	order_discount_percent, fees, amount_paid, change_due, payment_method,
	status, payment_status, COALESCE(notes, ''), COALESCE(shipping_address, ''),
	shipping_cost, COALESCE(delivery_provider_id, ''), COALESCE(delivery_provider_name, ''),
	order_type, voided_at, refunded_at, COALESCE(refund_reason, ''), refund_amount,
	created_at, updated_at`

func scanOrder(row rowScanner) (*models.Order, error) {
	var o models.Order
	var feesJSON []byte
	var voidedAt, refundedAt sql.NullTime

	err := row.Scan(
		&o.ID, &o.StoreID, &o.CustomerID, &o.CustomerName,
		&o.Subtotal, &o.TaxAmount, &o.TotalAmount, &o.TotalDiscount, &o.TotalFees,
		&o.OrderDiscountPercent, &feesJSON, &o.AmountPaid, &o.ChangeDue, &o.PaymentMethod,
		&o.Status, &o.PaymentStatus, &o.Notes, &o.ShippingAddress,
		&o.ShippingCost, &o.DeliveryProviderID, &o.DeliveryProviderName,
		&o.OrderType, &voidedAt, &refundedAt, &o.RefundReason, &o.RefundAmount,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if len(feesJSON) > 0 {
		if err := json.Unmarshal(feesJSON, &o.Fees); err != nil {
			return nil, err
		}
	}
	if voidedAt.Valid {
		o.VoidedAt = &voidedAt.Time
	}
	if refundedAt.Valid {
		o.RefundedAt = &refundedAt.Time
	}
	return &o, nil
}

func (r *PostgresStore) GetOrders(ctx context.Context, filter *models.OrderListFilter) ([]*models.Order, error) {
	if filter == nil {
		filter = &models.OrderListFilter{}
	}

	var where []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != "" {
		where = append(where, "status = "+arg(string(filter.Status)))
	}
	if filter.StartDate != nil {
		where = append(where, "created_at >= "+arg(*filter.StartDate))
	}
	if filter.EndDate != nil {
		where = append(where, "created_at < "+arg(filter.EndDate.Add(24*time.Hour)))
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		where = append(where, "(id ILIKE "+p+" OR customer_name ILIKE "+p+")")
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list orders", logging.Fields{"error": err.Error()})
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *PostgresStore) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	r.logger.Debug("Fetching order by ID", logging.Fields{"order_id": id})

	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	o.Items, err = r.GetOrderItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PostgresStore) InsertOrder(ctx context.Context, o *models.Order) (*models.Order, error) {
	id := o.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := o.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	feesJSON, err := json.Marshal(o.Fees)
	if err != nil {
		return nil, err
	}

	created, err := scanOrder(r.db.QueryRowContext(ctx, `
		INSERT INTO orders (
			id, store_id, customer_id, customer_name, subtotal, tax_amount,
			total_amount, total_discount, total_fees, order_discount_percent,
			fees, amount_paid, change_due, payment_method, status, payment_status,
			notes, shipping_address, shipping_cost, delivery_provider_id,
			delivery_provider_name, order_type, created_at, updated_at
		) VALUES (
			$1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, NULLIF($17, ''), NULLIF($18, ''), $19,
			NULLIF($20, ''), NULLIF($21, ''), $22, $23, $23
		)
		RETURNING `+orderColumns,
		id, o.StoreID, o.CustomerID, o.CustomerName, o.Subtotal, o.TaxAmount,
		o.TotalAmount, o.TotalDiscount, o.TotalFees, o.OrderDiscountPercent,
		string(feesJSON), o.AmountPaid, o.ChangeDue, o.PaymentMethod, string(o.Status), string(o.PaymentStatus),
		o.Notes, o.ShippingAddress, o.ShippingCost, o.DeliveryProviderID,
		o.DeliveryProviderName, string(o.OrderType), createdAt,
	))
	if err != nil {
		r.logger.Error("Failed to insert order", logging.Fields{"order_id": id, "error": err.Error()})
		return nil, err
	}

	r.logger.Info("Order inserted", logging.Fields{
		"order_id": created.ID,
		"total":    created.TotalAmount.String(),
	})
	return created, nil
}

// InsertOrderItems writes all lines in one multi-row statement.
func (r *PostgresStore) InsertOrderItems(ctx context.Context, orderID string, items []models.OrderItem) ([]models.OrderItem, error) {
	if len(items) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	created := make([]models.OrderItem, len(items))
	values := make([]string, 0, len(items))
	args := make([]interface{}, 0, len(items)*8)

	for i, item := range items {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		item.OrderID = orderID
		item.CreatedAt = now
		created[i] = item

		n := len(args)
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5, n+6, n+7, n+8))
		args = append(args, item.ID, item.OrderID, item.ProductID, item.Name, item.Quantity, item.Price, item.Discount, item.CreatedAt)
	}

	query := `INSERT INTO order_items (id, order_id, product_id, name, quantity, price, discount, created_at) VALUES ` +
		strings.Join(values, ", ")
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("Failed to insert order items", logging.Fields{"order_id": orderID, "error": err.Error()})
		return nil, err
	}
	return created, nil
}

func (r *PostgresStore) GetOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, COALESCE(name, ''), quantity, price, discount, created_at
		FROM order_items WHERE order_id = $1 ORDER BY created_at, id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Name, &item.Quantity, &item.Price, &item.Discount, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *PostgresStore) UpdateOrder(ctx context.Context, id string, u *models.OrderUpdate) (*models.Order, error) {
	r.logger.Debug("Updating order", logging.Fields{"order_id": id})

	return scanOrder(r.db.QueryRowContext(ctx, `
		UPDATE orders SET
			status = COALESCE($2, status),
			payment_status = COALESCE($3, payment_status),
			voided_at = COALESCE($4, voided_at),
			refunded_at = COALESCE($5, refunded_at),
			refund_reason = COALESCE($6, refund_reason),
			refund_amount = COALESCE($7, refund_amount),
			notes = COALESCE($8, notes),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+orderColumns,
		id, u.Status, u.PaymentStatus, u.VoidedAt, u.RefundedAt, u.RefundReason, u.RefundAmount, u.Notes,
	))
}

// DeleteOrder removes the order; its lines go with it through the
// foreign key cascade.
func (r *PostgresStore) DeleteOrder(ctx context.Context, id string) error {
	return r.execAffecting(ctx, `DELETE FROM orders WHERE id = $1`, id)
}

// Settings

func (r *PostgresStore) GetSettings(ctx context.Context) (*models.Settings, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `SELECT data FROM settings WHERE id = 1`).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	s := models.DefaultSettings()
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PostgresStore) SaveSettings(ctx context.Context, s *models.Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO settings (id, data, updated_at) VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`, string(data))
	return err
}

// Z-reports

func (r *PostgresStore) GetZReports(ctx context.Context, registerID string) ([]*models.ZReport, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, register_id, start_amount, end_amount, cash_in, cash_out, cash_sales, created_at
		FROM z_reports
		WHERE $1::text = '' OR register_id = $1
		ORDER BY created_at DESC
	`, registerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*models.ZReport
	for rows.Next() {
		var z models.ZReport
		if err := rows.Scan(&z.ID, &z.RegisterID, &z.StartAmount, &z.EndAmount, &z.CashIn, &z.CashOut, &z.CashSales, &z.CreatedAt); err != nil {
			return nil, err
		}
		reports = append(reports, &z)
	}
	return reports, rows.Err()
}

func (r *PostgresStore) AddZReport(ctx context.Context, z *models.ZReport) (*models.ZReport, error) {
	created := *z
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO z_reports (id, register_id, start_amount, end_amount, cash_in, cash_out, cash_sales, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, created.ID, created.RegisterID, created.StartAmount, created.EndAmount, created.CashIn, created.CashOut, created.CashSales, created.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &created, nil
}
