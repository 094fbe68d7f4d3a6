package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atolyeshop/etsysync/internal/domain"
	"github.com/atolyeshop/etsysync/internal/etsy"
	"github.com/atolyeshop/etsysync/internal/repository"
	"github.com/atolyeshop/etsysync/internal/shipentegra"
	"github.com/atolyeshop/etsysync/pkg/errors"
)

// EtsyAPI is the slice of the Etsy client the sync run needs
type EtsyAPI interface {
	GetUserShops(ctx context.Context, userID int64) ([]etsy.Shop, error)
	GetShopReceipts(ctx context.Context, shopID int64, limit, offset int, minCreated int64) (*etsy.ReceiptsPage, error)
}

// CarrierAPI is the slice of the carrier client the sync run needs
type CarrierAPI interface {
	GetShipmentActivities(ctx context.Context, trackingNumber string) (*shipentegra.ActivitiesResponse, error)
}

// DeliveredNotifier is invoked once per order entering delivered
type DeliveredNotifier interface {
	NotifyDelivered(ctx context.Context, order *domain.Order) error
}

type SyncService struct {
	repos    *repository.Repositories
	newEtsy  func(accessToken string) EtsyAPI
	carrier  CarrierAPI
	notifier DeliveredNotifier
	logger   *zap.Logger
	window   time.Duration
	pageSize int
}

// NewSyncService creates a new order sync service. newEtsy builds an Etsy
// client bound to one account's access token.
func NewSyncService(
	repos *repository.Repositories,
	newEtsy func(accessToken string) EtsyAPI,
	carrier CarrierAPI,
	notifier DeliveredNotifier,
	windowDays int,
	pageSize int,
	logger *zap.Logger,
) *SyncService {
	return &SyncService{
		repos:    repos,
		newEtsy:  newEtsy,
		carrier:  carrier,
		notifier: notifier,
		logger:   logger,
		window:   time.Duration(windowDays) * 24 * time.Hour,
		pageSize: pageSize,
	}
}

// SyncOrders runs one full synchronization for an account and returns the
// number of receipts processed. Shop resolution and page fetch failures
// abort the run; a single receipt's carrier lookup failure does not.
func (s *SyncService) SyncOrders(ctx context.Context, accountID uuid.UUID) (int, error) {
	account, err := s.repos.Account.GetByID(ctx, accountID)
	if err != nil {
		return 0, err
	}

	client := s.newEtsy(account.AccessToken)

	if err := s.ensureShop(ctx, account, client); err != nil {
		return 0, err
	}

	minCreated := time.Now().Add(-s.window).Unix()
	offset := 0
	total := 0

	for {
		page, err := client.GetShopReceipts(ctx, *account.ShopID, s.pageSize, offset, minCreated)
		if err != nil {
			return 0, err
		}
		if len(page.Results) == 0 {
			break
		}

		for i := range page.Results {
			processed, err := s.processReceipt(ctx, account, &page.Results[i])
			if err != nil {
				return 0, err
			}
			if processed {
				total++
			}
		}

		offset += s.pageSize
	}

	s.logger.Info("Order sync finished",
		zap.String("account_id", accountID.String()),
		zap.Int("processed", total),
	)

	return total, nil
}

// ensureShop resolves the account's shop identity once and caches it on the
// account record. The first candidate wins when the user owns several shops.
func (s *SyncService) ensureShop(ctx context.Context, account *domain.Account, client EtsyAPI) error {
	if account.ShopID != nil {
		return nil
	}

	if account.EtsyUserID == nil {
		return &errors.ErrConfiguration{Reason: "etsy user id is missing, please re-connect the Etsy account"}
	}

	shops, err := client.GetUserShops(ctx, *account.EtsyUserID)
	if err != nil {
		return err
	}
	if len(shops) == 0 {
		return &errors.ErrShopResolution{Reason: "no shop found for this Etsy account"}
	}

	shop := shops[0]
	if err := s.repos.Account.SaveShop(ctx, account.ID, shop.ShopID, shop.ShopName); err != nil {
		return err
	}

	account.ShopID = &shop.ShopID
	account.ShopName = shop.ShopName

	s.logger.Info("Resolved Etsy shop",
		zap.Int64("shop_id", shop.ShopID),
		zap.String("shop_name", shop.ShopName),
	)

	return nil
}

// processReceipt maps and persists one raw receipt. Returns false for
// receipts skipped for lacking an order identifier.
func (s *SyncService) processReceipt(ctx context.Context, account *domain.Account, receipt *etsy.Receipt) (bool, error) {
	mapped, ok := MapReceipt(receipt)
	if !ok {
		return false, nil
	}

	prior, found, err := s.repos.Order.GetStatusByEtsyOrderID(ctx, account.ID, mapped.EtsyOrderID)
	if err != nil {
		return false, err
	}
	if !found {
		prior = domain.StatusReceived
	}

	status := domain.NextStatus(prior, domain.Signals{
		ReceiptShipped: mapped.ImpliedStatus.AtLeast(domain.StatusShipped),
	})

	now := time.Now()
	order := &domain.Order{
		AccountID:      account.ID,
		EtsyOrderID:    mapped.EtsyOrderID,
		Status:         status,
		BuyerName:      mapped.BuyerName,
		BuyerEmail:     mapped.BuyerEmail,
		TotalAmount:    mapped.TotalAmount,
		Currency:       mapped.Currency,
		OrderCreatedAt: mapped.OrderCreatedAt,
		ShippedAt:      mapped.ShippedAt,
		LastSyncedAt:   &now,
	}

	if err := s.repos.Order.Upsert(ctx, order, mapped.Items); err != nil {
		return false, err
	}

	if mapped.Total != nil {
		s.logger.Debug("Upserted order",
			zap.Int64("etsy_order_id", mapped.EtsyOrderID),
			zap.String("total", mapped.Total.Decimal().String()),
			zap.String("currency", mapped.Currency),
		)
	}

	if mapped.TrackingNumber != "" {
		if err := s.trackShipment(ctx, order, mapped, prior, status); err != nil {
			return false, err
		}
	}

	return true, nil
}

// trackShipment merges carrier tracking state into the order. A carrier
// lookup failure is treated as "no signal": the shipment keeps its tracking
// basics and the order keeps its prior status, and the run continues.
func (s *SyncService) trackShipment(ctx context.Context, order *domain.Order, mapped *MappedOrder, prior, status domain.OrderStatus) error {
	now := time.Now()
	shipment := &domain.Shipment{
		OrderID:        order.ID,
		TrackingNumber: mapped.TrackingNumber,
		CarrierName:    mapped.CarrierName,
		ShippedAt:      mapped.ShippedAt,
		LastCheckedAt:  &now,
	}

	resp, err := s.carrier.GetShipmentActivities(ctx, mapped.TrackingNumber)
	if err != nil {
		s.logger.Warn("Carrier lookup failed",
			zap.String("tracking_number", mapped.TrackingNumber),
			zap.Error(err),
		)
		resp = nil
	}

	tracking := shipentegra.Normalize(resp)
	if tracking == nil {
		return s.repos.Shipment.Upsert(ctx, shipment)
	}

	shipment.CarrierStatus = tracking.Display
	shipment.CarrierStatusRaw = tracking.Raw
	shipment.DeliveredAt = tracking.DeliveredAt

	next := domain.NextStatus(status, domain.Signals{Carrier: tracking.Class})

	if err := s.repos.Shipment.Upsert(ctx, shipment); err != nil {
		return err
	}

	if next != status || tracking.DeliveredAt != nil {
		if err := s.repos.Order.UpdateStatus(ctx, order.ID, next, tracking.DeliveredAt); err != nil {
			return err
		}
		order.Status = next
		order.DeliveredAt = tracking.DeliveredAt
	}

	// Fire the delivery notification only on entry into delivered
	if next == domain.StatusDelivered && prior != domain.StatusDelivered && status != domain.StatusDelivered {
		if err := s.notifier.NotifyDelivered(ctx, order); err != nil {
			s.logger.Warn("Delivery notification failed",
				zap.Int64("etsy_order_id", order.EtsyOrderID),
				zap.Error(err),
			)
		}
	}

	return nil
}
