package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atolyeshop/etsysync/internal/domain"
	"github.com/atolyeshop/etsysync/pkg/errors"
)

type orderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB, logger *zap.Logger) *orderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert writes an order keyed by its Etsy order id and replaces its line
// items when the remote payload carried any. Everything happens in one
// transaction so an observer never sees an order with zero items mid-sync.
// The ON CONFLICT clause keeps a closed status pinned even if a concurrent
// run computed a stale one, and never touches archived or delivered_at.
func (r *orderRepository) Upsert(ctx context.Context, order *domain.Order, items []domain.OrderItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin upsert transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}

	query := `
		INSERT INTO orders (id, account_id, etsy_order_id, status, buyer_name, buyer_email, total_amount, currency, order_created_at, shipped_at, last_synced_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (etsy_order_id) DO UPDATE SET
			status = CASE WHEN orders.status = 'closed' THEN orders.status ELSE EXCLUDED.status END,
			buyer_name = EXCLUDED.buyer_name,
			buyer_email = EXCLUDED.buyer_email,
			total_amount = EXCLUDED.total_amount,
			currency = EXCLUDED.currency,
			order_created_at = EXCLUDED.order_created_at,
			shipped_at = EXCLUDED.shipped_at,
			last_synced_at = EXCLUDED.last_synced_at,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`

	err = tx.QueryRowContext(ctx, query,
		order.ID,
		order.AccountID,
		order.EtsyOrderID,
		order.Status,
		order.BuyerName,
		order.BuyerEmail,
		order.TotalAmount,
		order.Currency,
		order.OrderCreatedAt,
		order.ShippedAt,
		order.LastSyncedAt,
		now,
		now,
	).Scan(&order.ID)
	if err != nil {
		r.logger.Error("Failed to upsert order",
			zap.Int64("etsy_order_id", order.EtsyOrderID),
			zap.Error(err),
		)
		return err
	}

	// An empty remote item list means "no new data", not "no items"
	if len(items) > 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, order.ID); err != nil {
			r.logger.Error("Failed to clear order items", zap.Error(err))
			return err
		}

		itemQuery := `
			INSERT INTO order_items (id, order_id, etsy_listing_id, title, quantity, price_amount, price_currency)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		for _, item := range items {
			if item.ID == uuid.Nil {
				item.ID = uuid.New()
			}
			_, err := tx.ExecContext(ctx, itemQuery,
				item.ID,
				order.ID,
				item.EtsyListingID,
				item.Title,
				item.Quantity,
				item.PriceAmount,
				item.PriceCurrency,
			)
			if err != nil {
				r.logger.Error("Failed to insert order item", zap.Error(err))
				return err
			}
		}
	}

	return tx.Commit()
}

const orderColumns = `id, account_id, etsy_order_id, status, buyer_name, buyer_email, total_amount, currency, order_created_at, shipped_at, delivered_at, archived, last_synced_at, created_at, updated_at`

func scanOrder(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Order, error) {
	var order domain.Order
	var totalAmount sql.NullInt64
	var orderCreatedAt, shippedAt, deliveredAt, lastSyncedAt sql.NullTime

	err := row.Scan(
		&order.ID,
		&order.AccountID,
		&order.EtsyOrderID,
		&order.Status,
		&order.BuyerName,
		&order.BuyerEmail,
		&totalAmount,
		&order.Currency,
		&orderCreatedAt,
		&shippedAt,
		&deliveredAt,
		&order.Archived,
		&lastSyncedAt,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if totalAmount.Valid {
		order.TotalAmount = &totalAmount.Int64
	}
	if orderCreatedAt.Valid {
		order.OrderCreatedAt = &orderCreatedAt.Time
	}
	if shippedAt.Valid {
		order.ShippedAt = &shippedAt.Time
	}
	if deliveredAt.Valid {
		order.DeliveredAt = &deliveredAt.Time
	}
	if lastSyncedAt.Valid {
		order.LastSyncedAt = &lastSyncedAt.Time
	}

	return &order, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1
	`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get order by ID", zap.Error(err))
		return nil, err
	}

	return order, nil
}

func (r *orderRepository) GetStatusByEtsyOrderID(ctx context.Context, accountID uuid.UUID, etsyOrderID int64) (domain.OrderStatus, bool, error) {
	query := `
		SELECT status
		FROM orders
		WHERE account_id = $1 AND etsy_order_id = $2
	`

	var status domain.OrderStatus
	err := r.db.QueryRowContext(ctx, query, accountID, etsyOrderID).Scan(&status)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		r.logger.Error("Failed to get order status", zap.Error(err))
		return "", false, err
	}

	return status, true, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus, deliveredAt *time.Time) error {
	// delivered_at is only ever set once; later signals never move it
	query := `
		UPDATE orders
		SET status = $2, delivered_at = COALESCE(delivered_at, $3), updated_at = $4
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, status, deliveredAt, time.Now())
	if err != nil {
		r.logger.Error("Failed to update order status", zap.Error(err))
		return err
	}

	return nil
}

func (r *orderRepository) SetArchived(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE orders
		SET archived = true, updated_at = $2
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		r.logger.Error("Failed to archive order", zap.Error(err))
		return err
	}

	return nil
}

func (r *orderRepository) ListRecent(ctx context.Context, accountID uuid.UUID, since time.Time) ([]*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE account_id = $1 AND archived = false AND order_created_at >= $2
		ORDER BY order_created_at DESC, etsy_order_id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, accountID, since)
	if err != nil {
		r.logger.Error("Failed to list recent orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			r.logger.Error("Failed to scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, order)
	}

	return orders, rows.Err()
}

func (r *orderRepository) GetItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	query := `
		SELECT id, order_id, etsy_listing_id, title, quantity, price_amount, price_currency
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		r.logger.Error("Failed to get order items", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		var listingID, priceAmount sql.NullInt64

		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&listingID,
			&item.Title,
			&item.Quantity,
			&priceAmount,
			&item.PriceCurrency,
		)
		if err != nil {
			return nil, err
		}

		if listingID.Valid {
			item.EtsyListingID = &listingID.Int64
		}
		if priceAmount.Valid {
			item.PriceAmount = &priceAmount.Int64
		}

		items = append(items, item)
	}

	return items, rows.Err()
}
