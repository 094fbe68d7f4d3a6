package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/atolyeshop/etsysync/internal/domain"
	"github.com/atolyeshop/etsysync/internal/repository"
	"github.com/atolyeshop/etsysync/pkg/errors"
)

const accountContextKey = "account"

// AuthMiddleware authenticates requests via a bearer API key and resolves
// the seller account into the request context
func AuthMiddleware(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing API key"})
			return
		}

		apiKey := strings.TrimPrefix(header, "Bearer ")

		account, err := repos.Account.GetByAPIKey(c.Request.Context(), apiKey)
		if err != nil {
			if _, ok := err.(*errors.ErrUnauthorized); ok {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
				return
			}
			logger.Error("Failed to authenticate request", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Set(accountContextKey, account)
		c.Next()
	}
}

// GetAccountFromContext returns the authenticated account for a request
func GetAccountFromContext(c *gin.Context) (*domain.Account, bool) {
	value, exists := c.Get(accountContextKey)
	if !exists {
		return nil, false
	}
	account, ok := value.(*domain.Account)
	return account, ok
}
