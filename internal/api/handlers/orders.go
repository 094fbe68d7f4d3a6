package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atolyeshop/etsysync/internal/api/middleware"
	"github.com/atolyeshop/etsysync/internal/config"
	"github.com/atolyeshop/etsysync/internal/domain"
	"github.com/atolyeshop/etsysync/internal/repository"
	"github.com/atolyeshop/etsysync/internal/service"
	"github.com/atolyeshop/etsysync/pkg/errors"
)

// OrderResponse represents the order response
type OrderResponse struct {
	ID             string              `json:"id"`
	EtsyOrderID    int64               `json:"etsy_order_id"`
	Status         domain.OrderStatus  `json:"status"`
	BuyerName      string              `json:"buyer_name,omitempty"`
	BuyerEmail     string              `json:"buyer_email,omitempty"`
	TotalAmount    *int64              `json:"total_amount,omitempty"`
	Currency       string              `json:"currency,omitempty"`
	OrderCreatedAt *string             `json:"order_created_at,omitempty"`
	ShippedAt      *string             `json:"shipped_at,omitempty"`
	DeliveredAt    *string             `json:"delivered_at,omitempty"`
	Archived       bool                `json:"archived"`
	LastSyncedAt   *string             `json:"last_synced_at,omitempty"`
	Items          []OrderItemResponse `json:"items"`
	Shipment       *ShipmentResponse   `json:"shipment,omitempty"`
}

type OrderItemResponse struct {
	EtsyListingID *int64 `json:"etsy_listing_id,omitempty"`
	Title         string `json:"title"`
	Quantity      int    `json:"quantity"`
	PriceAmount   *int64 `json:"price_amount,omitempty"`
	PriceCurrency string `json:"price_currency,omitempty"`
}

type ShipmentResponse struct {
	TrackingNumber string  `json:"tracking_number"`
	CarrierName    string  `json:"carrier_name,omitempty"`
	CarrierStatus  string  `json:"carrier_status,omitempty"`
	ShippedAt      *string `json:"shipped_at,omitempty"`
	DeliveredAt    *string `json:"delivered_at,omitempty"`
	LastCheckedAt  *string `json:"last_checked_at,omitempty"`
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func buildOrderResponse(order *domain.Order, items []domain.OrderItem, shipment *domain.Shipment) OrderResponse {
	itemResponses := make([]OrderItemResponse, len(items))
	for i, item := range items {
		itemResponses[i] = OrderItemResponse{
			EtsyListingID: item.EtsyListingID,
			Title:         item.Title,
			Quantity:      item.Quantity,
			PriceAmount:   item.PriceAmount,
			PriceCurrency: item.PriceCurrency,
		}
	}

	response := OrderResponse{
		ID:             order.ID.String(),
		EtsyOrderID:    order.EtsyOrderID,
		Status:         order.Status,
		BuyerName:      order.BuyerName,
		BuyerEmail:     order.BuyerEmail,
		TotalAmount:    order.TotalAmount,
		Currency:       order.Currency,
		OrderCreatedAt: formatTime(order.OrderCreatedAt),
		ShippedAt:      formatTime(order.ShippedAt),
		DeliveredAt:    formatTime(order.DeliveredAt),
		Archived:       order.Archived,
		LastSyncedAt:   formatTime(order.LastSyncedAt),
		Items:          itemResponses,
	}

	if shipment != nil {
		response.Shipment = &ShipmentResponse{
			TrackingNumber: shipment.TrackingNumber,
			CarrierName:    shipment.CarrierName,
			CarrierStatus:  shipment.CarrierStatus,
			ShippedAt:      formatTime(shipment.ShippedAt),
			DeliveredAt:    formatTime(shipment.DeliveredAt),
			LastCheckedAt:  formatTime(shipment.LastCheckedAt),
		}
	}

	return response
}

// HandleListOrders handles GET /v1/orders
func HandleListOrders(cfg *config.Config, repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := middleware.GetAccountFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		since := time.Now().AddDate(0, 0, -cfg.Sync.WindowDays)
		orders, err := repos.Order.ListRecent(c.Request.Context(), account.ID, since)
		if err != nil {
			logger.Error("Failed to list orders", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		responses := make([]OrderResponse, 0, len(orders))
		for _, order := range orders {
			items, err := repos.Order.GetItems(c.Request.Context(), order.ID)
			if err != nil {
				logger.Error("Failed to get order items", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
				return
			}

			shipment, err := repos.Shipment.GetByOrderID(c.Request.Context(), order.ID)
			if err != nil {
				if _, ok := err.(*errors.ErrNotFound); !ok {
					logger.Error("Failed to get shipment", zap.Error(err))
					c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
					return
				}
				shipment = nil
			}

			responses = append(responses, buildOrderResponse(order, items, shipment))
		}

		c.JSON(http.StatusOK, gin.H{"orders": responses})
	}
}

// HandleGetOrder handles GET /v1/orders/:id
func HandleGetOrder(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := middleware.GetAccountFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
			return
		}

		order, err := repos.Order.GetByID(c.Request.Context(), orderID)
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			logger.Error("Failed to get order", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		if order.AccountID != account.ID {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}

		items, err := repos.Order.GetItems(c.Request.Context(), order.ID)
		if err != nil {
			logger.Error("Failed to get order items", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		shipment, err := repos.Shipment.GetByOrderID(c.Request.Context(), order.ID)
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); !ok {
				logger.Error("Failed to get shipment", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
				return
			}
			shipment = nil
		}

		c.JSON(http.StatusOK, buildOrderResponse(order, items, shipment))
	}
}

func handleOrderAction(action func(c *gin.Context, accountID, orderID uuid.UUID) error, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := middleware.GetAccountFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
			return
		}

		if err := action(c, account.ID, orderID); err != nil {
			switch e := err.(type) {
			case *errors.ErrNotFound:
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			case *errors.ErrInvalidStateTransition:
				c.JSON(http.StatusConflict, gin.H{"error": e.Reason})
			default:
				logger.Error("Order action failed", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// HandleCloseOrder handles POST /v1/orders/:id/close
func HandleCloseOrder(orderSvc *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return handleOrderAction(func(c *gin.Context, accountID, orderID uuid.UUID) error {
		return orderSvc.CloseOrder(c.Request.Context(), accountID, orderID)
	}, logger)
}

// HandleArchiveOrder handles POST /v1/orders/:id/archive
func HandleArchiveOrder(orderSvc *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return handleOrderAction(func(c *gin.Context, accountID, orderID uuid.UUID) error {
		return orderSvc.ArchiveOrder(c.Request.Context(), accountID, orderID)
	}, logger)
}
