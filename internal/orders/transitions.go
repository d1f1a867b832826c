package orders

import "github.com/ardacaliskaan/meva-qr-sub000/pkg/enums"

var orderTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:   {enums.OrderStatusConfirmed, enums.OrderStatusPreparing, enums.OrderStatusCancelled},
	enums.OrderStatusConfirmed: {enums.OrderStatusPreparing, enums.OrderStatusCancelled},
	enums.OrderStatusPreparing: {enums.OrderStatusReady, enums.OrderStatusCancelled},
	enums.OrderStatusReady:     {enums.OrderStatusDelivered, enums.OrderStatusPreparing},
	enums.OrderStatusDelivered: {enums.OrderStatusCompleted, enums.OrderStatusReady},
}

// AllowedTransitions lists the statuses reachable from from.
func AllowedTransitions(from enums.OrderStatus) []enums.OrderStatus {
	next := orderTransitions[from]
	out := make([]enums.OrderStatus, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, candidate := range orderTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}
