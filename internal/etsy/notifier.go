package etsy

import (
	"context"

	"go.uber.org/zap"

	"github.com/atolyeshop/etsysync/internal/domain"
)

// MessageNotifier sends the buyer a delivery message through Etsy messaging.
// The messaging API call is not wired up yet; the call site and its
// fire-once guard live in the sync service, so this stays a logging stub.
type MessageNotifier struct {
	logger *zap.Logger
}

// NewMessageNotifier creates a new delivery message notifier
func NewMessageNotifier(logger *zap.Logger) *MessageNotifier {
	return &MessageNotifier{logger: logger}
}

// NotifyDelivered is invoked once per order transitioning into delivered
func (n *MessageNotifier) NotifyDelivered(ctx context.Context, order *domain.Order) error {
	// TODO: send the delivery message via the Etsy messaging API
	n.logger.Info("Order delivered, buyer notification skipped (messaging not wired)",
		zap.Int64("etsy_order_id", order.EtsyOrderID),
		zap.String("buyer_email", order.BuyerEmail),
	)
	return nil
}
