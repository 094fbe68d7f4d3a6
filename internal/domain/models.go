package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account represents a seller account linked to an Etsy shop
type Account struct {
	ID          uuid.UUID
	Name        string
	APIKeyHash  string
	EtsyUserID  *int64
	AccessToken string
	ShopID      *int64
	ShopName    string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Order represents a synced Etsy receipt
type Order struct {
	ID             uuid.UUID
	AccountID      uuid.UUID
	EtsyOrderID    int64
	Status         OrderStatus
	BuyerName      string
	BuyerEmail     string
	TotalAmount    *int64
	Currency       string
	OrderCreatedAt *time.Time
	ShippedAt      *time.Time
	DeliveredAt    *time.Time
	Archived       bool
	LastSyncedAt   *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OrderItem represents a line item of a synced order
type OrderItem struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	EtsyListingID *int64
	Title         string
	Quantity      int
	PriceAmount   *int64
	PriceCurrency string
}

// Shipment holds carrier tracking state, one-to-one with an order
type Shipment struct {
	ID               uuid.UUID
	OrderID          uuid.UUID
	TrackingNumber   string
	CarrierName      string
	CarrierStatus    string
	CarrierStatusRaw string
	ShippedAt        *time.Time
	DeliveredAt      *time.Time
	LastCheckedAt    *time.Time
}
