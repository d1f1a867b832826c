package orders

import (
	"github.com/shopspring/decimal"

	"github.com/ardacaliskaan/meva-qr-sub000/pkg/enums"
)

// Statistics summarizes the listed orders.
type Statistics struct {
	TotalOrders       int                       `json:"totalOrders"`
	ByStatus          map[enums.OrderStatus]int `json:"byStatus"`
	TotalRevenue      decimal.Decimal           `json:"totalRevenue"`
	ActiveTables      int                       `json:"activeTables"`
	AverageOrderValue decimal.Decimal           `json:"averageOrderValue"`
}

// ComputeStatistics counts orders per status and sums revenue. Cancelled
// orders are counted but excluded from revenue and the average.
func ComputeStatistics(orders []Order) Statistics {
	stats := Statistics{
		TotalOrders:       len(orders),
		ByStatus:          make(map[enums.OrderStatus]int, len(enums.OrderStatuses())),
		TotalRevenue:      decimal.Zero,
		AverageOrderValue: decimal.Zero,
	}
	for _, status := range enums.OrderStatuses() {
		stats.ByStatus[status] = 0
	}

	activeTables := make(map[string]struct{})
	billable := 0
	for _, o := range orders {
		stats.ByStatus[o.Status]++
		if o.Status != enums.OrderStatusCancelled {
			stats.TotalRevenue = stats.TotalRevenue.Add(o.TotalAmount)
			billable++
		}
		if !o.Status.IsTerminal() {
			activeTables[GroupKey(o)] = struct{}{}
		}
	}
	stats.ActiveTables = len(activeTables)
	if billable > 0 {
		stats.AverageOrderValue = stats.TotalRevenue.Div(decimal.NewFromInt(int64(billable))).Round(2)
	}
	return stats
}
