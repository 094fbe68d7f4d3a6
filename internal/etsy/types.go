package etsy

import "github.com/shopspring/decimal"

// Money is the nested price object Etsy uses throughout its v3 API.
// Amount is in minor units; Divisor converts it to the display value.
type Money struct {
	Amount       int64  `json:"amount"`
	Divisor      int64  `json:"divisor"`
	CurrencyCode string `json:"currency_code"`
}

// Decimal returns the divisor-adjusted display value
func (m Money) Decimal() decimal.Decimal {
	if m.Divisor > 1 {
		return decimal.New(m.Amount, 0).Div(decimal.New(m.Divisor, 0))
	}
	return decimal.New(m.Amount, 0)
}

// Shop represents one shop candidate from the user shops endpoint
type Shop struct {
	ShopID   int64  `json:"shop_id"`
	UserID   int64  `json:"user_id"`
	ShopName string `json:"shop_name"`
}

// Receipt is a raw receipt payload from GET /shops/{shop_id}/receipts.
// Any field may be absent; absence must not fail a sync run.
type Receipt struct {
	ReceiptID        int64             `json:"receipt_id"`
	Name             string            `json:"name"`
	BuyerEmail       string            `json:"buyer_email"`
	TotalPrice       *Money            `json:"total_price"`
	Grandtotal       *Money            `json:"grandtotal"`
	Price            *Money            `json:"price"`
	IsShipped        bool              `json:"is_shipped"`
	CreatedTimestamp int64             `json:"created_timestamp"`
	TrackingCode     string            `json:"tracking_code"`
	CarrierName      string            `json:"carrier_name"`
	Shipments        []ReceiptShipment `json:"shipments"`
	Transactions     []Transaction     `json:"transactions"`
}

// ReceiptShipment is the shipment sub-object nested in a receipt
type ReceiptShipment struct {
	TrackingCode                  string `json:"tracking_code"`
	CarrierName                   string `json:"carrier_name"`
	ShipmentNotificationTimestamp int64  `json:"shipment_notification_timestamp"`
}

// Transaction is a line item nested in a receipt
type Transaction struct {
	TransactionID int64  `json:"transaction_id"`
	ListingID     *int64 `json:"listing_id"`
	Title         string `json:"title"`
	Quantity      int    `json:"quantity"`
	Price         *Money `json:"price"`
}

// ReceiptsPage is one page of the receipts feed
type ReceiptsPage struct {
	Count   int       `json:"count"`
	Results []Receipt `json:"results"`
}
