package enums

import "fmt"

// OrderStatus tracks the kitchen lifecycle of a table order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusDelivered,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// orderStatusRank orders statuses by how far along they are. Cancelled always
// ranks lowest so it never wins an aggregate.
var orderStatusRank = map[OrderStatus]int{
	OrderStatusCancelled: 0,
	OrderStatusPending:   1,
	OrderStatusConfirmed: 2,
	OrderStatusPreparing: 3,
	OrderStatusReady:     4,
	OrderStatusDelivered: 5,
	OrderStatusCompleted: 6,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// Rank returns the progress rank; unknown values rank -1.
func (s OrderStatus) Rank() int {
	if rank, ok := orderStatusRank[s]; ok {
		return rank
	}
	return -1
}

// OrderStatuses returns every known status in lifecycle order.
func OrderStatuses() []OrderStatus {
	out := make([]OrderStatus, len(validOrderStatuses))
	copy(out, validOrderStatuses)
	return out
}

// ActiveOrderStatuses returns the non-terminal statuses.
func ActiveOrderStatuses() []OrderStatus {
	out := make([]OrderStatus, 0, len(validOrderStatuses))
	for _, status := range validOrderStatuses {
		if !status.IsTerminal() {
			out = append(out, status)
		}
	}
	return out
}

// MostAdvancedStatus returns the highest ranked status in the list.
func MostAdvancedStatus(statuses ...OrderStatus) OrderStatus {
	var best OrderStatus
	for _, status := range statuses {
		if best == "" || status.Rank() > best.Rank() {
			best = status
		}
	}
	return best
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
