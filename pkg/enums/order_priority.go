package enums

import "fmt"

// OrderPriority flags how urgently the kitchen should handle an order.
type OrderPriority string

const (
	OrderPriorityLow    OrderPriority = "low"
	OrderPriorityNormal OrderPriority = "normal"
	OrderPriorityHigh   OrderPriority = "high"
	OrderPriorityUrgent OrderPriority = "urgent"
)

var validOrderPriorities = []OrderPriority{
	OrderPriorityLow,
	OrderPriorityNormal,
	OrderPriorityHigh,
	OrderPriorityUrgent,
}

// String implements fmt.Stringer.
func (p OrderPriority) String() string {
	return string(p)
}

// IsValid reports whether the value is a known OrderPriority.
func (p OrderPriority) IsValid() bool {
	return p.Rank() >= 0
}

// Rank returns the position on the low < normal < high < urgent scale.
func (p OrderPriority) Rank() int {
	for i, candidate := range validOrderPriorities {
		if candidate == p {
			return i
		}
	}
	return -1
}

// HighestPriority returns the most urgent priority in the list, normal when empty.
func HighestPriority(priorities ...OrderPriority) OrderPriority {
	best := OrderPriorityNormal
	seen := false
	for _, p := range priorities {
		if !p.IsValid() {
			continue
		}
		if !seen || p.Rank() > best.Rank() {
			best = p
			seen = true
		}
	}
	return best
}

// ParseOrderPriority converts raw input into an OrderPriority.
func ParseOrderPriority(value string) (OrderPriority, error) {
	for _, candidate := range validOrderPriorities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order priority %q", value)
}
