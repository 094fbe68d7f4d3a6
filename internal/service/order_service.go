package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atolyeshop/etsysync/internal/domain"
	"github.com/atolyeshop/etsysync/internal/repository"
	"github.com/atolyeshop/etsysync/pkg/errors"
)

type OrderService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(repos *repository.Repositories, logger *zap.Logger) *OrderService {
	return &OrderService{
		repos:  repos,
		logger: logger,
	}
}

func (s *OrderService) getOwnedOrder(ctx context.Context, accountID, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.AccountID != accountID {
		return nil, &errors.ErrNotFound{Resource: "order", ID: orderID.String()}
	}
	return order, nil
}

// CloseOrder marks a delivered order as closed. Close is a manual action,
// never triggered by sync.
func (s *OrderService) CloseOrder(ctx context.Context, accountID, orderID uuid.UUID) error {
	order, err := s.getOwnedOrder(ctx, accountID, orderID)
	if err != nil {
		return err
	}

	if order.Status != domain.StatusDelivered {
		return &errors.ErrInvalidStateTransition{
			From:   string(order.Status),
			To:     string(domain.StatusClosed),
			Reason: "only delivered orders can be closed",
		}
	}

	if err := s.repos.Order.UpdateStatus(ctx, order.ID, domain.StatusClosed, nil); err != nil {
		return err
	}

	s.logger.Info("Order closed",
		zap.Int64("etsy_order_id", order.EtsyOrderID),
	)

	return nil
}

// ArchiveOrder archives a closed order. Archiving an already archived order
// is a no-op, not an error; there is no un-archive.
func (s *OrderService) ArchiveOrder(ctx context.Context, accountID, orderID uuid.UUID) error {
	order, err := s.getOwnedOrder(ctx, accountID, orderID)
	if err != nil {
		return err
	}

	if order.Archived {
		return nil
	}

	if order.Status != domain.StatusClosed {
		return &errors.ErrInvalidStateTransition{
			From:   string(order.Status),
			To:     "archived",
			Reason: "only closed orders can be archived",
		}
	}

	if err := s.repos.Order.SetArchived(ctx, order.ID); err != nil {
		return err
	}

	s.logger.Info("Order archived",
		zap.Int64("etsy_order_id", order.EtsyOrderID),
	)

	return nil
}
