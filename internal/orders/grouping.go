package orders

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ardacaliskaan/meva-qr-sub000/pkg/enums"
)

const notesSeparator = " | "

// TableGroup is the live per-table view of a set of orders. It is derived on
// every read and never stored.
type TableGroup struct {
	TableKey      string              `json:"tableKey"`
	TableNumber   string              `json:"tableNumber"`
	TableID       uuid.UUID           `json:"tableId"`
	Location      string              `json:"location,omitempty"`
	Capacity      int                 `json:"capacity,omitempty"`
	TotalAmount   decimal.Decimal     `json:"totalAmount"`
	ItemCount     int                 `json:"itemCount"`
	OrderCount    int                 `json:"orderCount"`
	FirstOrderAt  time.Time           `json:"firstOrderAt"`
	LastOrderAt   time.Time           `json:"lastOrderAt"`
	Status        enums.OrderStatus   `json:"status"`
	Statuses      []enums.OrderStatus `json:"statuses"`
	EstimatedTime int                 `json:"estimatedTime"`
	Priority      enums.OrderPriority `json:"priority"`
	CustomerNotes string              `json:"customerNotes"`
	Orders        []Order             `json:"orders"`
}

// GroupKey returns the key orders are grouped under: the table number, or the
// table id when the number is missing.
func GroupKey(o Order) string {
	if number := strings.TrimSpace(o.TableNumber); number != "" {
		return number
	}
	return o.TableID.String()
}

// GroupByTable folds orders into per-table groups sorted by most recent order
// first, ties broken by key. Table metadata is copied from the first order of
// each group that carries it.
func GroupByTable(orders []Order) []TableGroup {
	index := make(map[string]int)
	groups := make([]TableGroup, 0)
	notes := make([]map[string]struct{}, 0)
	priorities := make([][]enums.OrderPriority, 0)

	for _, o := range orders {
		key := GroupKey(o)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, TableGroup{
				TableKey:     key,
				TableNumber:  o.TableNumber,
				TableID:      o.TableID,
				TotalAmount:  decimal.Zero,
				FirstOrderAt: o.CreatedAt,
				LastOrderAt:  o.CreatedAt,
			})
			notes = append(notes, map[string]struct{}{})
			priorities = append(priorities, nil)
		}
		g := &groups[i]

		if g.Location == "" && g.Capacity == 0 && o.Table != nil {
			g.Location = o.Table.Location
			g.Capacity = o.Table.Capacity
		}
		g.TotalAmount = g.TotalAmount.Add(o.TotalAmount)
		g.ItemCount += o.Items.Quantity()
		g.OrderCount++
		if o.CreatedAt.Before(g.FirstOrderAt) {
			g.FirstOrderAt = o.CreatedAt
		}
		if o.CreatedAt.After(g.LastOrderAt) {
			g.LastOrderAt = o.CreatedAt
		}
		if !containsStatus(g.Statuses, o.Status) {
			g.Statuses = append(g.Statuses, o.Status)
		}
		if o.EstimatedTime > g.EstimatedTime {
			g.EstimatedTime = o.EstimatedTime
		}
		priorities[i] = append(priorities[i], o.Priority)
		if note := strings.TrimSpace(o.CustomerNotes); note != "" {
			if _, seen := notes[i][note]; !seen {
				notes[i][note] = struct{}{}
				if g.CustomerNotes == "" {
					g.CustomerNotes = note
				} else {
					g.CustomerNotes += notesSeparator + note
				}
			}
		}
		g.Orders = append(g.Orders, o)
	}

	for i := range groups {
		groups[i].Status = enums.MostAdvancedStatus(groups[i].Statuses...)
		groups[i].Priority = enums.HighestPriority(priorities[i]...)
	}

	sort.SliceStable(groups, func(a, b int) bool {
		if !groups[a].LastOrderAt.Equal(groups[b].LastOrderAt) {
			return groups[a].LastOrderAt.After(groups[b].LastOrderAt)
		}
		return groups[a].TableKey < groups[b].TableKey
	})
	return groups
}

func containsStatus(list []enums.OrderStatus, status enums.OrderStatus) bool {
	for _, s := range list {
		if s == status {
			return true
		}
	}
	return false
}
