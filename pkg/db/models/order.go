package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ardacaliskaan/meva-qr-sub000/pkg/enums"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/types"
)

// Order is one checkout placed from a table. Line items, status timestamps and
// selected options live inside the row as JSON.
type Order struct {
	ID               uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber      string                 `gorm:"column:order_number;not null;uniqueIndex:uq_orders_order_number"`
	TableID          uuid.UUID              `gorm:"column:table_id;type:uuid;not null;index"`
	TableNumber      string                 `gorm:"column:table_number;not null;index"`
	SessionID        *uuid.UUID             `gorm:"column:session_id;type:uuid;index"`
	Items            types.OrderItems       `gorm:"column:items;type:jsonb;not null"`
	TotalAmount      decimal.Decimal        `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Status           enums.OrderStatus      `gorm:"column:status;type:text;not null;index"`
	PaymentStatus    enums.PaymentStatus    `gorm:"column:payment_status;type:text;not null"`
	Priority         enums.OrderPriority    `gorm:"column:priority;type:text;not null"`
	CustomerNotes    string                 `gorm:"column:customer_notes;not null"`
	KitchenNotes     string                 `gorm:"column:kitchen_notes;not null"`
	EstimatedTime    int                    `gorm:"column:estimated_time;not null"`
	StatusTimestamps types.StatusTimestamps `gorm:"column:status_timestamps;type:jsonb;not null"`
	ClosedViaTable   bool                   `gorm:"column:closed_via_table;not null"`
	CreatedAt        time.Time              `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt        time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key when the caller did not.
func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
