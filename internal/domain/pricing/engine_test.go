// internal/domain/pricing/engine_test.go
package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeTotals_HomeDeliveryBelowThreshold(t *testing.T) {
	settings := Settings{DeliveryFee: 500, FreeDeliveryThreshold: 10000}
	items := []LineItem{{UnitPrice: 4000, Quantity: 2}}

	totals := ComputeTotals(items, DeliveryTypeHomeDelivery, settings)

	assert.Equal(t, int64(8000), totals.Subtotal)
	assert.Equal(t, int64(500), totals.DeliveryFee)
	assert.Equal(t, int64(0), totals.Discount)
	assert.Equal(t, int64(8500), totals.Total)
}

func TestComputeTotals_FreeDeliveryAtThreshold(t *testing.T) {
	settings := Settings{DeliveryFee: 500, FreeDeliveryThreshold: 5000}
	items := []LineItem{{UnitPrice: 4000, Quantity: 2}}

	totals := ComputeTotals(items, DeliveryTypeHomeDelivery, settings)

	assert.Equal(t, int64(8000), totals.Subtotal)
	assert.Equal(t, int64(0), totals.DeliveryFee)
	assert.Equal(t, int64(8000), totals.Total)
}

func TestComputeTotals_ExactThresholdIsFree(t *testing.T) {
	settings := Settings{DeliveryFee: 500, FreeDeliveryThreshold: 8000}
	items := []LineItem{{UnitPrice: 4000, Quantity: 2}}

	totals := ComputeTotals(items, DeliveryTypeHomeDelivery, settings)

	assert.Equal(t, int64(0), totals.DeliveryFee)
}

func TestComputeTotals_ThresholdDisabled(t *testing.T) {
	settings := Settings{DeliveryFee: 500, FreeDeliveryThreshold: 0}
	items := []LineItem{{UnitPrice: 100000, Quantity: 3}}

	totals := ComputeTotals(items, DeliveryTypeHomeDelivery, settings)

	// No threshold means the fee always applies
	assert.Equal(t, int64(500), totals.DeliveryFee)
	assert.Equal(t, int64(300500), totals.Total)
}

func TestComputeTotals_StorePickupNeverChargesDelivery(t *testing.T) {
	settings := Settings{DeliveryFee: 500, FreeDeliveryThreshold: 10000}

	for _, items := range [][]LineItem{
		{{UnitPrice: 100, Quantity: 1}},
		{{UnitPrice: 4000, Quantity: 2}},
		{{UnitPrice: 100000, Quantity: 10}},
	} {
		totals := ComputeTotals(items, DeliveryTypeStorePickup, settings)
		assert.Equal(t, int64(0), totals.DeliveryFee)
		assert.Equal(t, totals.Subtotal, totals.Total)
	}
}

func TestComputeTotals_EmptyItems(t *testing.T) {
	settings := Settings{DeliveryFee: 500, FreeDeliveryThreshold: 10000}

	totals := ComputeTotals(nil, DeliveryTypeHomeDelivery, settings)

	assert.Equal(t, int64(0), totals.Subtotal)
	assert.Equal(t, int64(500), totals.DeliveryFee)
	assert.Equal(t, int64(500), totals.Total)
}

func TestComputeTotals_TotalNeverNegative(t *testing.T) {
	// The clamp only matters once discounts exist, but it must hold today
	settings := Settings{DeliveryFee: 0, FreeDeliveryThreshold: 0}

	totals := ComputeTotals([]LineItem{}, DeliveryTypeStorePickup, settings)

	assert.GreaterOrEqual(t, totals.Total, int64(0))
}

func TestDeliveryTypeValid(t *testing.T) {
	assert.True(t, DeliveryTypeHomeDelivery.Valid())
	assert.True(t, DeliveryTypeStorePickup.Valid())
	assert.False(t, DeliveryType("drone").Valid())
	assert.False(t, DeliveryType("").Valid())
}
