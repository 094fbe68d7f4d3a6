package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atolyeshop/etsysync/internal/domain"
	"github.com/atolyeshop/etsysync/internal/etsy"
	"github.com/atolyeshop/etsysync/internal/repository"
	"github.com/atolyeshop/etsysync/internal/shipentegra"
	"github.com/atolyeshop/etsysync/pkg/errors"
)

type fakeAccountRepo struct {
	account       *domain.Account
	saveShopCalls int
}

func (f *fakeAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	if f.account == nil || f.account.ID != id {
		return nil, &errors.ErrNotFound{Resource: "account", ID: id.String()}
	}
	return f.account, nil
}

func (f *fakeAccountRepo) GetByAPIKey(ctx context.Context, apiKey string) (*domain.Account, error) {
	return nil, &errors.ErrUnauthorized{Message: "invalid API key"}
}

func (f *fakeAccountRepo) Create(ctx context.Context, account *domain.Account) error {
	f.account = account
	return nil
}

func (f *fakeAccountRepo) SaveShop(ctx context.Context, id uuid.UUID, shopID int64, shopName string) error {
	f.saveShopCalls++
	f.account.ShopID = &shopID
	f.account.ShopName = shopName
	return nil
}

type fakeOrderRepo struct {
	byEtsyID      map[int64]*domain.Order
	items         map[uuid.UUID][]domain.OrderItem
	upsertCalls   int
	archiveCalls  int
	statusUpdates int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		byEtsyID: make(map[int64]*domain.Order),
		items:    make(map[uuid.UUID][]domain.OrderItem),
	}
}

func (f *fakeOrderRepo) Upsert(ctx context.Context, order *domain.Order, items []domain.OrderItem) error {
	f.upsertCalls++

	if existing, ok := f.byEtsyID[order.EtsyOrderID]; ok {
		order.ID = existing.ID
		if existing.Status != domain.StatusClosed {
			existing.Status = order.Status
		}
		existing.BuyerName = order.BuyerName
		existing.BuyerEmail = order.BuyerEmail
		existing.TotalAmount = order.TotalAmount
		existing.Currency = order.Currency
		existing.OrderCreatedAt = order.OrderCreatedAt
		existing.ShippedAt = order.ShippedAt
		existing.LastSyncedAt = order.LastSyncedAt
	} else {
		if order.ID == uuid.Nil {
			order.ID = uuid.New()
		}
		stored := *order
		f.byEtsyID[order.EtsyOrderID] = &stored
	}

	if len(items) > 0 {
		f.items[order.ID] = items
	}
	return nil
}

func (f *fakeOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	for _, order := range f.byEtsyID {
		if order.ID == id {
			return order, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
}

func (f *fakeOrderRepo) GetStatusByEtsyOrderID(ctx context.Context, accountID uuid.UUID, etsyOrderID int64) (domain.OrderStatus, bool, error) {
	if order, ok := f.byEtsyID[etsyOrderID]; ok {
		return order.Status, true, nil
	}
	return "", false, nil
}

func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus, deliveredAt *time.Time) error {
	f.statusUpdates++
	order, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	order.Status = status
	if order.DeliveredAt == nil {
		order.DeliveredAt = deliveredAt
	}
	return nil
}

func (f *fakeOrderRepo) SetArchived(ctx context.Context, id uuid.UUID) error {
	f.archiveCalls++
	order, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	order.Archived = true
	return nil
}

func (f *fakeOrderRepo) ListRecent(ctx context.Context, accountID uuid.UUID, since time.Time) ([]*domain.Order, error) {
	var orders []*domain.Order
	for _, order := range f.byEtsyID {
		if order.AccountID == accountID && !order.Archived {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (f *fakeOrderRepo) GetItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	return f.items[orderID], nil
}

type fakeShipmentRepo struct {
	byOrderID   map[uuid.UUID]*domain.Shipment
	upsertCalls int
}

func newFakeShipmentRepo() *fakeShipmentRepo {
	return &fakeShipmentRepo{byOrderID: make(map[uuid.UUID]*domain.Shipment)}
}

func (f *fakeShipmentRepo) Upsert(ctx context.Context, shipment *domain.Shipment) error {
	f.upsertCalls++

	if existing, ok := f.byOrderID[shipment.OrderID]; ok {
		existing.TrackingNumber = shipment.TrackingNumber
		existing.CarrierName = shipment.CarrierName
		existing.CarrierStatus = shipment.CarrierStatus
		existing.CarrierStatusRaw = shipment.CarrierStatusRaw
		existing.ShippedAt = shipment.ShippedAt
		if shipment.DeliveredAt != nil {
			existing.DeliveredAt = shipment.DeliveredAt
		}
		existing.LastCheckedAt = shipment.LastCheckedAt
		return nil
	}

	if shipment.ID == uuid.Nil {
		shipment.ID = uuid.New()
	}
	stored := *shipment
	f.byOrderID[shipment.OrderID] = &stored
	return nil
}

func (f *fakeShipmentRepo) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Shipment, error) {
	if shipment, ok := f.byOrderID[orderID]; ok {
		return shipment, nil
	}
	return nil, &errors.ErrNotFound{Resource: "shipment", ID: orderID.String()}
}

type fakeEtsyAPI struct {
	shops        []etsy.Shop
	shopsErr     error
	pages        [][]etsy.Receipt
	pageErr      map[int]error
	receiptCalls int
}

func (f *fakeEtsyAPI) GetUserShops(ctx context.Context, userID int64) ([]etsy.Shop, error) {
	if f.shopsErr != nil {
		return nil, f.shopsErr
	}
	return f.shops, nil
}

func (f *fakeEtsyAPI) GetShopReceipts(ctx context.Context, shopID int64, limit, offset int, minCreated int64) (*etsy.ReceiptsPage, error) {
	idx := f.receiptCalls
	f.receiptCalls++
	if err, ok := f.pageErr[idx]; ok {
		return nil, err
	}
	if idx < len(f.pages) {
		return &etsy.ReceiptsPage{Count: len(f.pages[idx]), Results: f.pages[idx]}, nil
	}
	return &etsy.ReceiptsPage{}, nil
}

type fakeCarrierAPI struct {
	resp  *shipentegra.ActivitiesResponse
	err   error
	calls int
}

func (f *fakeCarrierAPI) GetShipmentActivities(ctx context.Context, trackingNumber string) (*shipentegra.ActivitiesResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type fakeNotifier struct {
	notified map[int64]int
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{notified: make(map[int64]int)}
}

func (f *fakeNotifier) NotifyDelivered(ctx context.Context, order *domain.Order) error {
	f.notified[order.EtsyOrderID]++
	return nil
}

type syncFixture struct {
	account   *domain.Account
	accounts  *fakeAccountRepo
	orders    *fakeOrderRepo
	shipments *fakeShipmentRepo
	etsyAPI   *fakeEtsyAPI
	carrier   *fakeCarrierAPI
	notifier  *fakeNotifier
	svc       *SyncService
}

func newSyncFixture(etsyAPI *fakeEtsyAPI, carrier *fakeCarrierAPI) *syncFixture {
	userID := int64(42)
	shopID := int64(9)
	account := &domain.Account{
		ID:          uuid.New(),
		Name:        "test shop",
		EtsyUserID:  &userID,
		AccessToken: "token",
		ShopID:      &shopID,
		ShopName:    "test shop",
		IsActive:    true,
	}

	fixture := &syncFixture{
		account:   account,
		accounts:  &fakeAccountRepo{account: account},
		orders:    newFakeOrderRepo(),
		shipments: newFakeShipmentRepo(),
		etsyAPI:   etsyAPI,
		carrier:   carrier,
		notifier:  newFakeNotifier(),
	}

	repos := &repository.Repositories{
		Account:  fixture.accounts,
		Order:    fixture.orders,
		Shipment: fixture.shipments,
	}

	fixture.svc = NewSyncService(
		repos,
		func(accessToken string) EtsyAPI { return etsyAPI },
		carrier,
		fixture.notifier,
		30,
		50,
		zap.NewNop(),
	)

	return fixture
}

func makeClosedOrder(account *domain.Account, etsyOrderID int64) *domain.Order {
	return &domain.Order{
		ID:          uuid.New(),
		AccountID:   account.ID,
		EtsyOrderID: etsyOrderID,
		Status:      domain.StatusClosed,
		BuyerName:   "original buyer",
	}
}

func makeReceipts(start, count int) []etsy.Receipt {
	receipts := make([]etsy.Receipt, count)
	for i := range receipts {
		receipts[i] = etsy.Receipt{
			ReceiptID: int64(start + i),
			Name:      fmt.Sprintf("buyer %d", start+i),
		}
	}
	return receipts
}
