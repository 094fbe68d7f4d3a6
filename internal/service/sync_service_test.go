package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atolyeshop/etsysync/internal/domain"
	"github.com/atolyeshop/etsysync/internal/etsy"
	"github.com/atolyeshop/etsysync/internal/shipentegra"
	"github.com/atolyeshop/etsysync/pkg/errors"
)

func TestSyncOrdersPagination(t *testing.T) {
	etsyAPI := &fakeEtsyAPI{
		pages: [][]etsy.Receipt{
			makeReceipts(1000, 50),
			makeReceipts(2000, 50),
		},
	}
	fixture := newSyncFixture(etsyAPI, &fakeCarrierAPI{})

	total, err := fixture.svc.SyncOrders(context.Background(), fixture.account.ID)
	require.NoError(t, err)

	assert.Equal(t, 100, total)
	assert.Equal(t, 3, etsyAPI.receiptCalls)
	assert.Len(t, fixture.orders.byEtsyID, 100)
}

func TestSyncOrdersSkipsReceiptsWithoutID(t *testing.T) {
	etsyAPI := &fakeEtsyAPI{
		pages: [][]etsy.Receipt{
			{
				{ReceiptID: 1, Name: "kept"},
				{Name: "skipped, no id"},
				{ReceiptID: 2, Name: "kept too"},
			},
		},
	}
	fixture := newSyncFixture(etsyAPI, &fakeCarrierAPI{})

	total, err := fixture.svc.SyncOrders(context.Background(), fixture.account.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, total)
	assert.Len(t, fixture.orders.byEtsyID, 2)
}

func TestSyncOrdersIdempotent(t *testing.T) {
	etsyAPI := &fakeEtsyAPI{
		pages: [][]etsy.Receipt{
			{
				{
					ReceiptID:  1,
					Name:       "Jane Buyer",
					Grandtotal: &etsy.Money{Amount: 2599, CurrencyCode: "USD"},
					IsShipped:  true,
					Transactions: []etsy.Transaction{
						{Title: "Ceramic mug", Quantity: 2},
					},
				},
			},
		},
	}
	fixture := newSyncFixture(etsyAPI, &fakeCarrierAPI{})

	first, err := fixture.svc.SyncOrders(context.Background(), fixture.account.ID)
	require.NoError(t, err)

	// Re-running with identical remote data yields identical local state
	etsyAPI.receiptCalls = 0
	second, err := fixture.svc.SyncOrders(context.Background(), fixture.account.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, fixture.orders.byEtsyID, 1)

	order := fixture.orders.byEtsyID[1]
	assert.Equal(t, domain.StatusShipped, order.Status)
	assert.Equal(t, "Jane Buyer", order.BuyerName)
	require.NotNil(t, order.TotalAmount)
	assert.Equal(t, int64(2599), *order.TotalAmount)
	assert.Equal(t, "USD", order.Currency)
	assert.Len(t, fixture.orders.items[order.ID], 1)
}

func TestSyncOrdersCarrierFailureDoesNotAbortRun(t *testing.T) {
	etsyAPI := &fakeEtsyAPI{
		pages: [][]etsy.Receipt{
			{
				{ReceiptID: 1, IsShipped: true, TrackingCode: "TRK1"},
				{ReceiptID: 2, Name: "no tracking"},
			},
		},
	}
	carrier := &fakeCarrierAPI{err: assert.AnError}
	fixture := newSyncFixture(etsyAPI, carrier)

	total, err := fixture.svc.SyncOrders(context.Background(), fixture.account.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, total)
	assert.Equal(t, 1, carrier.calls)

	// The order keeps its receipt-derived status and the shipment keeps
	// its tracking basics
	order := fixture.orders.byEtsyID[1]
	assert.Equal(t, domain.StatusShipped, order.Status)

	shipment, err := fixture.shipments.GetByOrderID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "TRK1", shipment.TrackingNumber)
	assert.Empty(t, shipment.CarrierStatus)
}

func TestSyncOrdersPageFetchAbortsRun(t *testing.T) {
	etsyAPI := &fakeEtsyAPI{
		pages: [][]etsy.Receipt{
			makeReceipts(1000, 50),
			makeReceipts(2000, 50),
		},
		pageErr: map[int]error{1: &errors.ErrPageFetch{StatusCode: 500, Body: "boom"}},
	}
	fixture := newSyncFixture(etsyAPI, &fakeCarrierAPI{})

	_, err := fixture.svc.SyncOrders(context.Background(), fixture.account.ID)
	require.Error(t, err)

	var fetchErr *errors.ErrPageFetch
	require.ErrorAs(t, err, &fetchErr)

	// The first page stays committed despite the aborted run
	assert.Len(t, fixture.orders.byEtsyID, 50)
}

func TestSyncOrdersDeliveredTransition(t *testing.T) {
	etsyAPI := &fakeEtsyAPI{
		pages: [][]etsy.Receipt{
			{{ReceiptID: 1, IsShipped: true, TrackingCode: "TRK1"}},
		},
	}
	carrier := &fakeCarrierAPI{
		resp: &shipentegra.ActivitiesResponse{
			Status: "success",
			Data: shipentegra.ActivityData{
				Summary:      "Delivered Successfully",
				DeliveryDate: "2024-05-01T10:30:00Z",
			},
		},
	}
	fixture := newSyncFixture(etsyAPI, carrier)

	_, err := fixture.svc.SyncOrders(context.Background(), fixture.account.ID)
	require.NoError(t, err)

	order := fixture.orders.byEtsyID[1]
	assert.Equal(t, domain.StatusDelivered, order.Status)
	require.NotNil(t, order.DeliveredAt)

	shipment, err := fixture.shipments.GetByOrderID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Delivered Successfully", shipment.CarrierStatus)
	require.NotNil(t, shipment.DeliveredAt)

	assert.Equal(t, 1, fixture.notifier.notified[1])
}

func TestSyncOrdersDeliveredNotifiesOnlyOnce(t *testing.T) {
	etsyAPI := &fakeEtsyAPI{
		pages: [][]etsy.Receipt{
			{{ReceiptID: 1, IsShipped: true, TrackingCode: "TRK1"}},
		},
	}
	carrier := &fakeCarrierAPI{
		resp: &shipentegra.ActivitiesResponse{
			Status: "success",
			Data:   shipentegra.ActivityData{Summary: "delivered"},
		},
	}
	fixture := newSyncFixture(etsyAPI, carrier)

	_, err := fixture.svc.SyncOrders(context.Background(), fixture.account.ID)
	require.NoError(t, err)

	etsyAPI.receiptCalls = 0
	_, err = fixture.svc.SyncOrders(context.Background(), fixture.account.ID)
	require.NoError(t, err)

	// Repeated delivered signals do not re-trigger the notification
	assert.Equal(t, 1, fixture.notifier.notified[1])
}

func TestSyncOrdersClosedStatusIsPinned(t *testing.T) {
	etsyAPI := &fakeEtsyAPI{
		pages: [][]etsy.Receipt{
			{{ReceiptID: 1, Name: "updated buyer", IsShipped: true, TrackingCode: "TRK1"}},
		},
	}
	carrier := &fakeCarrierAPI{
		resp: &shipentegra.ActivitiesResponse{
			Status: "success",
			Data:   shipentegra.ActivityData{Status: "in transit"},
		},
	}
	fixture := newSyncFixture(etsyAPI, carrier)

	// Seed a closed order; a stale carrier response must not un-close it
	seeded := makeClosedOrder(fixture.account, 1)
	fixture.orders.byEtsyID[1] = seeded

	total, err := fixture.svc.SyncOrders(context.Background(), fixture.account.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	order := fixture.orders.byEtsyID[1]
	assert.Equal(t, domain.StatusClosed, order.Status)
	// Non-status fields still refresh
	assert.Equal(t, "updated buyer", order.BuyerName)
}

func TestSyncOrdersShopResolution(t *testing.T) {
	etsyAPI := &fakeEtsyAPI{
		shops: []etsy.Shop{
			{ShopID: 9, ShopName: "first shop"},
			{ShopID: 10, ShopName: "second shop"},
		},
	}
	fixture := newSyncFixture(etsyAPI, &fakeCarrierAPI{})
	fixture.account.ShopID = nil
	fixture.account.ShopName = ""

	_, err := fixture.svc.SyncOrders(context.Background(), fixture.account.ID)
	require.NoError(t, err)

	// The first candidate wins and is cached on the account
	assert.Equal(t, 1, fixture.accounts.saveShopCalls)
	require.NotNil(t, fixture.account.ShopID)
	assert.Equal(t, int64(9), *fixture.account.ShopID)
	assert.Equal(t, "first shop", fixture.account.ShopName)

	// A later run reuses the cached shop
	_, err = fixture.svc.SyncOrders(context.Background(), fixture.account.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fixture.accounts.saveShopCalls)
}

func TestSyncOrdersMissingEtsyUserID(t *testing.T) {
	fixture := newSyncFixture(&fakeEtsyAPI{}, &fakeCarrierAPI{})
	fixture.account.ShopID = nil
	fixture.account.EtsyUserID = nil

	_, err := fixture.svc.SyncOrders(context.Background(), fixture.account.ID)
	require.Error(t, err)

	var cfgErr *errors.ErrConfiguration
	assert.ErrorAs(t, err, &cfgErr)
}

func TestSyncOrdersNoShopCandidates(t *testing.T) {
	fixture := newSyncFixture(&fakeEtsyAPI{}, &fakeCarrierAPI{})
	fixture.account.ShopID = nil

	_, err := fixture.svc.SyncOrders(context.Background(), fixture.account.ID)
	require.Error(t, err)

	var shopErr *errors.ErrShopResolution
	assert.ErrorAs(t, err, &shopErr)
}

func TestSyncOrdersEmptyItemListKeepsExistingItems(t *testing.T) {
	etsyAPI := &fakeEtsyAPI{
		pages: [][]etsy.Receipt{
			{{
				ReceiptID: 1,
				Transactions: []etsy.Transaction{
					{Title: "Ceramic mug", Quantity: 1},
				},
			}},
		},
	}
	fixture := newSyncFixture(etsyAPI, &fakeCarrierAPI{})

	_, err := fixture.svc.SyncOrders(context.Background(), fixture.account.ID)
	require.NoError(t, err)

	order := fixture.orders.byEtsyID[1]
	require.Len(t, fixture.orders.items[order.ID], 1)

	// Same receipt arrives again without transactions: treated as "no new
	// data", existing items survive
	etsyAPI.pages = [][]etsy.Receipt{{{ReceiptID: 1}}}
	etsyAPI.receiptCalls = 0

	_, err = fixture.svc.SyncOrders(context.Background(), fixture.account.ID)
	require.NoError(t, err)

	assert.Len(t, fixture.orders.items[order.ID], 1)
}
