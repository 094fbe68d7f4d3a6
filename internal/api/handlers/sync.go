package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/atolyeshop/etsysync/internal/api/middleware"
	"github.com/atolyeshop/etsysync/internal/service"
	"github.com/atolyeshop/etsysync/pkg/errors"
)

// SyncResponse reports how many receipts one sync run processed
type SyncResponse struct {
	Synced int `json:"synced"`
}

// HandleSyncOrders handles POST /v1/orders/sync
func HandleSyncOrders(syncSvc *service.SyncService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := middleware.GetAccountFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		total, err := syncSvc.SyncOrders(c.Request.Context(), account.ID)
		if err != nil {
			switch err.(type) {
			case *errors.ErrConfiguration:
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case *errors.ErrShopResolution, *errors.ErrPageFetch:
				c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			default:
				logger.Error("Order sync failed", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "order sync failed"})
			}
			return
		}

		c.JSON(http.StatusOK, SyncResponse{Synced: total})
	}
}
