package tables

import (
	"time"

	"github.com/google/uuid"

	"github.com/ardacaliskaan/meva-qr-sub000/pkg/db/models"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/enums"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/types"
)

const (
	defaultCapacity = 4
	maxCapacity     = 50
)

// CreateInput registers a new table.
type CreateInput struct {
	Number   types.TableNumber
	Capacity int
	Location string
}

// UpdateInput patches admin-editable attributes; nil fields are left untouched.
type UpdateInput struct {
	ID       uuid.UUID
	Capacity *int
	Location *string
	IsActive *bool
}

// TableView is the admin representation of a table.
type TableView struct {
	ID               uuid.UUID         `json:"id"`
	Number           string            `json:"number"`
	Capacity         int               `json:"capacity"`
	Location         string            `json:"location"`
	Status           enums.TableStatus `json:"status"`
	CurrentSessionID *uuid.UUID        `json:"currentSessionId,omitempty"`
	LastOrderAt      *time.Time        `json:"lastOrderAt,omitempty"`
	LastClosedAt     *time.Time        `json:"lastClosedAt,omitempty"`
	IsActive         bool              `json:"isActive"`
	ActiveOrders     int               `json:"activeOrders"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// NewView maps a row onto its API view.
func NewView(t models.RestaurantTable, activeOrders int) TableView {
	return TableView{
		ID:               t.ID,
		Number:           t.Number,
		Capacity:         t.Capacity,
		Location:         t.Location,
		Status:           t.Status,
		CurrentSessionID: t.CurrentSessionID,
		LastOrderAt:      t.LastOrderAt,
		LastClosedAt:     t.LastClosedAt,
		IsActive:         t.IsActive,
		ActiveOrders:     activeOrders,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}
