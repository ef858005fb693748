// internal/domain/pricing/engine.go
package pricing

// DeliveryType represents how an order reaches the customer
type DeliveryType string

const (
	DeliveryTypeHomeDelivery DeliveryType = "home_delivery"
	DeliveryTypeStorePickup  DeliveryType = "store_pickup"
)

// Valid reports whether t is a known delivery type
func (t DeliveryType) Valid() bool {
	return t == DeliveryTypeHomeDelivery || t == DeliveryTypeStorePickup
}

// LineItem is a priced order line. UnitPrice is the snapshotted price in
// minor units, never a live catalog read.
type LineItem struct {
	UnitPrice int64
	Quantity  int
}

// Settings carries the store-level pricing knobs. FreeDeliveryThreshold <= 0
// means free delivery is disabled.
type Settings struct {
	DeliveryFee           int64
	FreeDeliveryThreshold int64
}

// Totals is the breakdown every order and preview carries. All amounts are
// minor units.
type Totals struct {
	Subtotal    int64 `json:"subtotal"`
	DeliveryFee int64 `json:"delivery_fee"`
	Discount    int64 `json:"discount"`
	Total       int64 `json:"total"`
}

// ComputeTotals derives the order totals from snapshotted line prices.
// Store pickup never carries a delivery fee. Home delivery pays the flat
// fee unless the subtotal reaches the free-delivery threshold. The order
// level discount is reserved for future promotions and is always zero
// today; the total is still clamped so a future discount can never push
// it below zero.
func ComputeTotals(items []LineItem, deliveryType DeliveryType, settings Settings) Totals {
	var subtotal int64
	for _, item := range items {
		subtotal += item.UnitPrice * int64(item.Quantity)
	}

	var deliveryFee int64
	if deliveryType == DeliveryTypeHomeDelivery {
		deliveryFee = settings.DeliveryFee
		if settings.FreeDeliveryThreshold > 0 && subtotal >= settings.FreeDeliveryThreshold {
			deliveryFee = 0
		}
	}

	var discount int64

	total := subtotal + deliveryFee - discount
	if total < 0 {
		total = 0
	}

	return Totals{
		Subtotal:    subtotal,
		DeliveryFee: deliveryFee,
		Discount:    discount,
		Total:       total,
	}
}
