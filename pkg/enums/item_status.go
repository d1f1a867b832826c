package enums

import "fmt"

// ItemStatus is the kitchen state of a single order line.
type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "pending"
	ItemStatusPreparing ItemStatus = "preparing"
	ItemStatusReady     ItemStatus = "ready"
	ItemStatusDelivered ItemStatus = "delivered"
)

var validItemStatuses = []ItemStatus{
	ItemStatusPending,
	ItemStatusPreparing,
	ItemStatusReady,
	ItemStatusDelivered,
}

// String implements fmt.Stringer.
func (s ItemStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ItemStatus.
func (s ItemStatus) IsValid() bool {
	for _, candidate := range validItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// OrderStatus maps the item state onto the shared order vocabulary.
func (s ItemStatus) OrderStatus() OrderStatus {
	return OrderStatus(s)
}

// ParseItemStatus converts raw input into an ItemStatus.
func ParseItemStatus(value string) (ItemStatus, error) {
	for _, candidate := range validItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item status %q", value)
}
