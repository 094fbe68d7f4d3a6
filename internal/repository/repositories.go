package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/atolyeshop/etsysync/internal/domain"
)

// AccountRepository manages seller accounts
type AccountRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByAPIKey(ctx context.Context, apiKey string) (*domain.Account, error)
	Create(ctx context.Context, account *domain.Account) error
	SaveShop(ctx context.Context, id uuid.UUID, shopID int64, shopName string) error
}

// OrderRepository manages synced orders and their line items
type OrderRepository interface {
	// Upsert inserts or updates an order by its Etsy order id and, when
	// items is non-empty, replaces the line item set in the same
	// transaction. An empty item list leaves existing items untouched.
	Upsert(ctx context.Context, order *domain.Order, items []domain.OrderItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetStatusByEtsyOrderID(ctx context.Context, accountID uuid.UUID, etsyOrderID int64) (domain.OrderStatus, bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus, deliveredAt *time.Time) error
	SetArchived(ctx context.Context, id uuid.UUID) error
	ListRecent(ctx context.Context, accountID uuid.UUID, since time.Time) ([]*domain.Order, error)
	GetItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error)
}

// ShipmentRepository manages the one-to-one carrier tracking records
type ShipmentRepository interface {
	Upsert(ctx context.Context, shipment *domain.Shipment) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Shipment, error)
}

// Repositories aggregates all repository implementations
type Repositories struct {
	Account  AccountRepository
	Order    OrderRepository
	Shipment ShipmentRepository
}
