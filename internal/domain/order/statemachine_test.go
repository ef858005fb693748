// internal/domain/order/statemachine_test.go
package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		// the fulfillment chain, one step at a time
		{StatusPending, StatusConfirmed, true},
		{StatusConfirmed, StatusPreparing, true},
		{StatusPreparing, StatusReadyForPickup, true},
		{StatusPreparing, StatusOutForDelivery, true},
		{StatusReadyForPickup, StatusDelivered, true},
		{StatusOutForDelivery, StatusDelivered, true},

		// skipping states is rejected
		{StatusPending, StatusPreparing, false},
		{StatusPending, StatusDelivered, false},
		{StatusConfirmed, StatusOutForDelivery, false},

		// no walking backwards
		{StatusConfirmed, StatusPending, false},
		{StatusDelivered, StatusConfirmed, false},
		{StatusOutForDelivery, StatusPreparing, false},

		// cancel from any non-terminal state
		{StatusPending, StatusCancelled, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusPreparing, StatusCancelled, true},
		{StatusReadyForPickup, StatusCancelled, true},
		{StatusOutForDelivery, StatusCancelled, true},

		// terminal states reject everything
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusDelivered, StatusDelivered, false},
	}

	for _, tt := range cases {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(StatusDelivered))
	assert.True(t, IsTerminal(StatusCancelled))

	for _, s := range []Status{StatusPending, StatusConfirmed, StatusPreparing, StatusReadyForPickup, StatusOutForDelivery} {
		assert.False(t, IsTerminal(s), "%s", s)
	}
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusPending))
	assert.True(t, ValidStatus(StatusCancelled))
	assert.False(t, ValidStatus(Status("shipped")))
	assert.False(t, ValidStatus(Status("")))
}
