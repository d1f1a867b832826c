package types

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ardacaliskaan/meva-qr-sub000/pkg/enums"
)

// SelectedOption is a menu option chosen for one order line, priced at order time.
type SelectedOption struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// OrderItem is the snapshot of one order line. Name and price are copied from
// the menu when the order is placed and never follow later menu edits.
type OrderItem struct {
	MenuItemID      uuid.UUID        `json:"menuItemId"`
	Name            string           `json:"name"`
	Price           decimal.Decimal  `json:"price"`
	Quantity        int              `json:"quantity"`
	Notes           string           `json:"notes,omitempty"`
	SelectedOptions []SelectedOption `json:"selectedOptions,omitempty"`
	Status          enums.ItemStatus `json:"status"`
	StatusUpdatedAt *time.Time       `json:"statusUpdatedAt,omitempty"`
	CookingTime     *int             `json:"cookingTime,omitempty"`
}

// LineTotal returns price × quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderItems is the JSONB array stored on each order row.
type OrderItems []OrderItem

// Value marshals the items into JSON.
func (o OrderItems) Value() (driver.Value, error) {
	if o == nil {
		return "[]", nil
	}
	return jsonValue(o)
}

// Scan decodes the JSONB array.
func (o *OrderItems) Scan(value interface{}) error {
	if value == nil {
		*o = OrderItems{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var items OrderItems
	if err := json.Unmarshal(raw, &items); err != nil {
		return err
	}
	*o = items
	return nil
}

// Total sums every line total.
func (o OrderItems) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Quantity sums the quantities of every line.
func (o OrderItems) Quantity() int {
	count := 0
	for _, item := range o {
		count += item.Quantity
	}
	return count
}

// Statuses returns the per-line statuses in order.
func (o OrderItems) Statuses() []enums.OrderStatus {
	out := make([]enums.OrderStatus, 0, len(o))
	for _, item := range o {
		out = append(out, item.Status.OrderStatus())
	}
	return out
}
