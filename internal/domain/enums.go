package domain

// OrderStatus represents the lifecycle status of a synced order
type OrderStatus string

const (
	StatusReceived  OrderStatus = "received"
	StatusShipped   OrderStatus = "shipped"
	StatusInTransit OrderStatus = "in_transit"
	StatusDelivered OrderStatus = "delivered"
	StatusClosed    OrderStatus = "closed"
)

// statusOrder is the fixed forward order of the lifecycle
var statusOrder = map[OrderStatus]int{
	StatusReceived:  0,
	StatusShipped:   1,
	StatusInTransit: 2,
	StatusDelivered: 3,
	StatusClosed:    4,
}

// IsValid checks if the order status is valid
func (s OrderStatus) IsValid() bool {
	_, ok := statusOrder[s]
	return ok
}

// Index returns the position of the status in the fixed forward order
func (s OrderStatus) Index() int {
	if idx, ok := statusOrder[s]; ok {
		return idx
	}
	return 0
}

// AtLeast reports whether s is at or past other in the lifecycle
func (s OrderStatus) AtLeast(other OrderStatus) bool {
	return s.Index() >= other.Index()
}

// CarrierSignal is the normalized classification of a carrier tracking payload
type CarrierSignal string

const (
	CarrierNone      CarrierSignal = ""
	CarrierInTransit CarrierSignal = "in_transit"
	CarrierDelivered CarrierSignal = "delivered"
	CarrierUnknown   CarrierSignal = "unknown"
)
