// internal/domain/order/statemachine.go
package order

// statusTransitions is the authoritative transition table. Orders walk the
// fulfillment chain one step at a time; skipping states is rejected, and
// cancellation is allowed from any non-terminal state.
var statusTransitions = map[Status][]Status{
	StatusPending:        {StatusConfirmed, StatusCancelled},
	StatusConfirmed:      {StatusPreparing, StatusCancelled},
	StatusPreparing:      {StatusReadyForPickup, StatusOutForDelivery, StatusCancelled},
	StatusReadyForPickup: {StatusDelivered, StatusCancelled},
	StatusOutForDelivery: {StatusDelivered, StatusCancelled},
	StatusDelivered:      {},
	StatusCancelled:      {},
}

// ValidStatus reports whether s is a known order status
func ValidStatus(s Status) bool {
	_, ok := statusTransitions[s]
	return ok
}

// IsTerminal reports whether no transition leaves s
func IsTerminal(s Status) bool {
	next, ok := statusTransitions[s]
	return ok && len(next) == 0
}

// CanTransition reports whether from → to is an allowed step
func CanTransition(from, to Status) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
