package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ardacaliskaan/meva-qr-sub000/pkg/enums"
)

// RestaurantTable is one physical table guests reach through its QR code.
type RestaurantTable struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Number           string            `gorm:"column:number;not null;uniqueIndex:uq_restaurant_tables_number"`
	Capacity         int               `gorm:"column:capacity;not null"`
	Location         string            `gorm:"column:location;not null"`
	Status           enums.TableStatus `gorm:"column:status;type:text;not null"`
	CurrentSessionID *uuid.UUID        `gorm:"column:current_session_id;type:uuid"`
	LastOrderAt      *time.Time        `gorm:"column:last_order_at"`
	LastClosedAt     *time.Time        `gorm:"column:last_closed_at"`
	IsActive         bool              `gorm:"column:is_active;not null"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (RestaurantTable) TableName() string { return "restaurant_tables" }

// BeforeCreate assigns the primary key when the caller did not.
func (t *RestaurantTable) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = enums.TableStatusEmpty
	}
	return nil
}
