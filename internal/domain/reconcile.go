package domain

// Signals carries the observations from one sync pass over a receipt:
// the receipt's shipped flag and the normalized carrier classification.
type Signals struct {
	ReceiptShipped bool
	Carrier        CarrierSignal
}

// NextStatus computes the status an order should move to given its current
// status and newly observed sync signals. Status only ever advances forward
// along the fixed order; a closed order is pinned regardless of signal
// content, so a stale carrier response can never un-close an order.
func NextStatus(current OrderStatus, sig Signals) OrderStatus {
	if current == StatusClosed {
		return current
	}

	next := current
	if !next.IsValid() {
		next = StatusReceived
	}

	// The receipt shipped flag is a floor, not an overwrite.
	if sig.ReceiptShipped && !next.AtLeast(StatusShipped) {
		next = StatusShipped
	}

	switch sig.Carrier {
	case CarrierInTransit:
		if next == StatusShipped {
			next = StatusInTransit
		}
	case CarrierDelivered:
		if !next.AtLeast(StatusDelivered) {
			next = StatusDelivered
		}
	}

	return next
}
