package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atolyeshop/etsysync/internal/domain"
	"github.com/atolyeshop/etsysync/pkg/errors"
)

type shipmentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewShipmentRepository creates a new shipment repository
func NewShipmentRepository(db *sql.DB, logger *zap.Logger) *shipmentRepository {
	return &shipmentRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert creates the shipment on first sight of a tracking number and
// updates it in place on later syncs. One shipment per order.
func (r *shipmentRepository) Upsert(ctx context.Context, shipment *domain.Shipment) error {
	if shipment.ID == uuid.Nil {
		shipment.ID = uuid.New()
	}

	query := `
		INSERT INTO shipments (id, order_id, tracking_number, carrier_name, carrier_status, carrier_status_raw, shipped_at, delivered_at, last_checked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (order_id) DO UPDATE SET
			tracking_number = EXCLUDED.tracking_number,
			carrier_name = EXCLUDED.carrier_name,
			carrier_status = EXCLUDED.carrier_status,
			carrier_status_raw = EXCLUDED.carrier_status_raw,
			shipped_at = EXCLUDED.shipped_at,
			delivered_at = COALESCE(EXCLUDED.delivered_at, shipments.delivered_at),
			last_checked_at = EXCLUDED.last_checked_at
	`

	_, err := r.db.ExecContext(ctx, query,
		shipment.ID,
		shipment.OrderID,
		shipment.TrackingNumber,
		shipment.CarrierName,
		shipment.CarrierStatus,
		shipment.CarrierStatusRaw,
		shipment.ShippedAt,
		shipment.DeliveredAt,
		shipment.LastCheckedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert shipment",
			zap.String("tracking_number", shipment.TrackingNumber),
			zap.Error(err),
		)
		return err
	}

	return nil
}

func (r *shipmentRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Shipment, error) {
	query := `
		SELECT id, order_id, tracking_number, carrier_name, carrier_status, carrier_status_raw, shipped_at, delivered_at, last_checked_at
		FROM shipments
		WHERE order_id = $1
	`

	var shipment domain.Shipment
	var shippedAt, deliveredAt, lastCheckedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, orderID).Scan(
		&shipment.ID,
		&shipment.OrderID,
		&shipment.TrackingNumber,
		&shipment.CarrierName,
		&shipment.CarrierStatus,
		&shipment.CarrierStatusRaw,
		&shippedAt,
		&deliveredAt,
		&lastCheckedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "shipment", ID: orderID.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get shipment", zap.Error(err))
		return nil, err
	}

	if shippedAt.Valid {
		shipment.ShippedAt = &shippedAt.Time
	}
	if deliveredAt.Valid {
		shipment.DeliveredAt = &deliveredAt.Time
	}
	if lastCheckedAt.Valid {
		shipment.LastCheckedAt = &lastCheckedAt.Time
	}

	return &shipment, nil
}
