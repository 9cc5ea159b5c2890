package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fruitbox-be/internal/payment"

	"github.com/lib/pq"
)

type Repository interface {
	Save(ctx context.Context, o *Order) error
	GetByProviderOrderID(ctx context.Context, providerOrderID string) (*Order, error)
	UpdateStatus(ctx context.Context, providerOrderID string, from, to Status, providerPaymentID string) error
	UpdateDeliveryStatus(ctx context.Context, providerOrderID string, status DeliveryStatus) error
	List(ctx context.Context, filter ListFilter) ([]*Order, error)
	ListByStatus(ctx context.Context, status Status) ([]*Order, error)
	ListCreatedBetween(ctx context.Context, from, to time.Time, status Status) ([]*Order, error)
	ListStale(ctx context.Context, statuses []Status, createdBefore time.Time, limit int) ([]*Order, error)
	Analytics(ctx context.Context) (*Analytics, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `
	provider_order_id,
	receipt,
	COALESCE(provider_payment_id, ''),
	amount_minor,
	currency,
	status,
	delivery_status,
	COALESCE(customer_id, ''),
	COALESCE(customer_email, ''),
	COALESCE(customer_name, ''),
	COALESCE(delivery_address, ''),
	delivery_lat,
	delivery_lng,
	created_at,
	updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var (
		o        Order
		lat, lng sql.NullFloat64
	)
	err := row.Scan(
		&o.ProviderOrderID, &o.Receipt, &o.ProviderPaymentID, &o.AmountMinor, &o.Currency,
		&o.Status, &o.DeliveryStatus, &o.CustomerID, &o.CustomerEmail, &o.CustomerName,
		&o.DeliveryAddress, &lat, &lng,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lat.Valid && lng.Valid {
		o.DeliveryLocation = &payment.Location{Lat: lat.Float64, Lng: lng.Float64}
	}
	return &o, nil
}

func scanOrders(rows *sql.Rows) ([]*Order, error) {
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// Save inserts the order; a second save of the same provider order is a no-op.
func (r *repository) Save(ctx context.Context, o *Order) error {
	const q = `
	INSERT INTO orders (
		provider_order_id,
		receipt,
		amount_minor,
		currency,
		status,
		delivery_status,
		customer_id,
		customer_email,
		customer_name,
		delivery_address,
		delivery_lat,
		delivery_lng
	)
	VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''), $11, $12)
	ON CONFLICT (provider_order_id) DO NOTHING
	`

	var lat, lng sql.NullFloat64
	if o.DeliveryLocation != nil {
		lat = sql.NullFloat64{Float64: o.DeliveryLocation.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: o.DeliveryLocation.Lng, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, q,
		o.ProviderOrderID, o.Receipt, o.AmountMinor, o.Currency, o.Status, o.DeliveryStatus,
		o.CustomerID, o.CustomerEmail, o.CustomerName,
		o.DeliveryAddress, lat, lng,
	)
	return err
}

func (r *repository) GetByProviderOrderID(ctx context.Context, providerOrderID string) (*Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE provider_order_id = $1`,
		providerOrderID,
	)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

// UpdateStatus is a compare-and-set: it only applies while the row is still
// in status from, and returns ErrStatusConflict otherwise.
func (r *repository) UpdateStatus(ctx context.Context, providerOrderID string, from, to Status, providerPaymentID string) error {
	const q = `
	UPDATE orders
	SET status = $3,
		provider_payment_id = COALESCE(NULLIF($4, ''), provider_payment_id),
		updated_at = now()
	WHERE provider_order_id = $1 AND status = $2
	`

	res, err := r.db.ExecContext(ctx, q, providerOrderID, from, to, providerPaymentID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStatusConflict
	}
	return nil
}

func (r *repository) UpdateDeliveryStatus(ctx context.Context, providerOrderID string, status DeliveryStatus) error {
	const q = `
	UPDATE orders
	SET delivery_status = $2,
		updated_at = now()
	WHERE provider_order_id = $1
	`

	res, err := r.db.ExecContext(ctx, q, providerOrderID, status)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]*Order, error) {
	const q = `
	SELECT ` + orderColumns + `
	FROM orders
	WHERE ($1 = '' OR status = $1)
	  AND ($2 = '' OR delivery_status = $2)
	ORDER BY created_at DESC
	LIMIT $3 OFFSET $4
	`

	rows, err := r.db.QueryContext(ctx, q, filter.Status, filter.DeliveryStatus, filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

func (r *repository) ListByStatus(ctx context.Context, status Status) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE status = $1 ORDER BY created_at DESC`,
		status,
	)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

func (r *repository) ListCreatedBetween(ctx context.Context, from, to time.Time, status Status) ([]*Order, error) {
	const q = `
	SELECT ` + orderColumns + `
	FROM orders
	WHERE created_at >= $1 AND created_at < $2 AND status = $3
	ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, q, from, to, status)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

func (r *repository) ListStale(ctx context.Context, statuses []Status, createdBefore time.Time, limit int) ([]*Order, error) {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}

	const q = `
	SELECT ` + orderColumns + `
	FROM orders
	WHERE status = ANY($1) AND created_at < $2
	ORDER BY created_at ASC
	LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, q, pq.Array(names), createdBefore, limit)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

// Analytics counts orders by status and sums confirmed revenue per currency.
func (r *repository) Analytics(ctx context.Context) (*Analytics, error) {
	a := &Analytics{
		ByStatus: make(map[Status]int),
		Revenue:  make(map[string]int64),
	}

	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status Status
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		a.ByStatus[status] = n
		a.TotalOrders += n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const revenueQ = `
	SELECT currency, COALESCE(SUM(amount_minor), 0)
	FROM orders
	WHERE status = $1
	GROUP BY currency
	`
	revRows, err := r.db.QueryContext(ctx, revenueQ, StatusConfirmed)
	if err != nil {
		return nil, err
	}
	defer revRows.Close()
	for revRows.Next() {
		var (
			currency string
			total    int64
		)
		if err := revRows.Scan(&currency, &total); err != nil {
			return nil, err
		}
		a.Revenue[currency] = total
	}
	if err := revRows.Err(); err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT customer_id) FROM orders WHERE status = $1 AND customer_id IS NOT NULL`,
		StatusConfirmed,
	).Scan(&a.Customers)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}
