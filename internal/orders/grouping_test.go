package orders

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardacaliskaan/meva-qr-sub000/pkg/enums"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/types"
)

func testOrder(table string, total int64, status enums.OrderStatus, at time.Time) Order {
	return Order{
		ID:          uuid.New(),
		TableID:     uuid.New(),
		TableNumber: table,
		Items:       types.OrderItems{{Name: "Çay", Price: decimal.NewFromInt(total), Quantity: 1}},
		TotalAmount: decimal.NewFromInt(total),
		Status:      status,
		Priority:    enums.OrderPriorityNormal,
		CreatedAt:   at,
	}
}

func TestGroupByTableFoldsOrders(t *testing.T) {
	base := time.Date(2026, 1, 16, 19, 0, 0, 0, time.UTC)

	a1 := testOrder("1", 100, enums.OrderStatusPending, base)
	a1.CustomerNotes = "Cam kenarı"
	a1.EstimatedTime = 15
	a2 := testOrder("1", 50, enums.OrderStatusReady, base.Add(10*time.Minute))
	a2.Priority = enums.OrderPriorityUrgent
	a2.CustomerNotes = "Cam kenarı"
	a2.EstimatedTime = 25
	a2.Items[0].Quantity = 3
	a3 := testOrder("1", 30, enums.OrderStatusCancelled, base.Add(5*time.Minute))
	a3.CustomerNotes = "Acısız"
	b1 := testOrder("2", 70, enums.OrderStatusPreparing, base.Add(20*time.Minute))
	b1.Table = &TableInfo{Location: "Teras", Capacity: 2}

	groups := GroupByTable([]Order{a1, a2, a3, b1})
	require.Len(t, groups, 2)

	assert.Equal(t, "2", groups[0].TableKey)
	assert.Equal(t, "Teras", groups[0].Location)

	g := groups[1]
	assert.Equal(t, "1", g.TableKey)
	assert.True(t, g.TotalAmount.Equal(decimal.NewFromInt(180)))
	assert.Equal(t, 5, g.ItemCount)
	assert.Equal(t, 3, g.OrderCount)
	assert.Equal(t, base, g.FirstOrderAt)
	assert.Equal(t, base.Add(10*time.Minute), g.LastOrderAt)
	assert.Equal(t, enums.OrderStatusReady, g.Status)
	assert.Equal(t, []enums.OrderStatus{enums.OrderStatusPending, enums.OrderStatusReady, enums.OrderStatusCancelled}, g.Statuses)
	assert.Equal(t, 25, g.EstimatedTime)
	assert.Equal(t, enums.OrderPriorityUrgent, g.Priority)
	assert.Equal(t, "Cam kenarı | Acısız", g.CustomerNotes)
	assert.Len(t, g.Orders, 3)
}

func TestGroupByTableIsDeterministic(t *testing.T) {
	at := time.Date(2026, 1, 16, 19, 0, 0, 0, time.UTC)
	orders := []Order{
		testOrder("B", 10, enums.OrderStatusPending, at),
		testOrder("A", 20, enums.OrderStatusPending, at),
		testOrder("C", 30, enums.OrderStatusPending, at.Add(-time.Minute)),
	}

	first := GroupByTable(orders)
	second := GroupByTable(orders)
	assert.Equal(t, first, second)
	require.Len(t, first, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{first[0].TableKey, first[1].TableKey, first[2].TableKey})

	sum := decimal.Zero
	for _, g := range first {
		sum = sum.Add(g.TotalAmount)
	}
	assert.True(t, sum.Equal(decimal.NewFromInt(60)))
}

func TestGroupKeyFallsBackToTableID(t *testing.T) {
	o := testOrder("", 10, enums.OrderStatusPending, time.Now())
	assert.Equal(t, o.TableID.String(), GroupKey(o))
	assert.Empty(t, GroupByTable(nil))
}

func TestComputeStatisticsEmpty(t *testing.T) {
	stats := ComputeStatistics(nil)
	assert.Equal(t, 0, stats.TotalOrders)
	assert.True(t, stats.AverageOrderValue.IsZero())
	assert.Len(t, stats.ByStatus, len(enums.OrderStatuses()))
}
