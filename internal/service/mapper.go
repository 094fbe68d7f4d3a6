package service

import (
	"time"

	"github.com/atolyeshop/etsysync/internal/domain"
	"github.com/atolyeshop/etsysync/internal/etsy"
)

// MappedOrder is the local shape of one raw receipt: order fields, line
// items, and the shipment hints the sync loop needs.
type MappedOrder struct {
	EtsyOrderID    int64
	BuyerName      string
	BuyerEmail     string
	TotalAmount    *int64
	Currency       string
	Total          *etsy.Money
	OrderCreatedAt *time.Time
	ImpliedStatus  domain.OrderStatus
	ShippedAt      *time.Time
	TrackingNumber string
	CarrierName    string
	Items          []domain.OrderItem
}

// MapReceipt converts one raw receipt into the local order shape. It never
// fails: missing fields map to zero values. The second return value is
// false when the receipt has no order identifier, in which case the receipt
// is skipped entirely.
func MapReceipt(r *etsy.Receipt) (*MappedOrder, bool) {
	if r == nil || r.ReceiptID == 0 {
		return nil, false
	}

	mapped := &MappedOrder{
		EtsyOrderID:    r.ReceiptID,
		BuyerName:      r.Name,
		BuyerEmail:     r.BuyerEmail,
		OrderCreatedAt: timestampToTime(r.CreatedTimestamp),
		ImpliedStatus:  domain.StatusReceived,
	}

	mapped.TotalAmount, mapped.Currency, mapped.Total = extractPrice(r)

	if r.IsShipped {
		mapped.ImpliedStatus = domain.StatusShipped
		if len(r.Shipments) > 0 {
			mapped.ShippedAt = timestampToTime(r.Shipments[0].ShipmentNotificationTimestamp)
		}
	}

	// Tracking data sits at the top level on some payloads and inside the
	// shipments list on others
	mapped.TrackingNumber = r.TrackingCode
	mapped.CarrierName = r.CarrierName
	if mapped.TrackingNumber == "" && len(r.Shipments) > 0 {
		mapped.TrackingNumber = r.Shipments[0].TrackingCode
	}
	if mapped.CarrierName == "" && len(r.Shipments) > 0 {
		mapped.CarrierName = r.Shipments[0].CarrierName
	}

	for _, tr := range r.Transactions {
		item := domain.OrderItem{
			EtsyListingID: tr.ListingID,
			Title:         tr.Title,
			Quantity:      tr.Quantity,
		}
		if tr.Price != nil {
			amount := tr.Price.Amount
			item.PriceAmount = &amount
			item.PriceCurrency = tr.Price.CurrencyCode
		}
		mapped.Items = append(mapped.Items, item)
	}

	return mapped, true
}

// extractPrice tries the price-bearing keys in fixed priority order; the
// first one present wins. Absence of all three is not an error.
func extractPrice(r *etsy.Receipt) (*int64, string, *etsy.Money) {
	for _, price := range []*etsy.Money{r.TotalPrice, r.Grandtotal, r.Price} {
		if price != nil {
			amount := price.Amount
			return &amount, price.CurrencyCode, price
		}
	}
	return nil, "", nil
}

func timestampToTime(epoch int64) *time.Time {
	if epoch == 0 {
		return nil
	}
	t := time.Unix(epoch, 0).UTC()
	return &t
}
