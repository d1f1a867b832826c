package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ardacaliskaan/meva-qr-sub000/pkg/types"
)

// MenuItem is an orderable dish or drink.
type MenuItem struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Name        string            `gorm:"column:name;not null"`
	Description string            `gorm:"column:description;not null"`
	Category    string            `gorm:"column:category;not null;index"`
	Price       decimal.Decimal   `gorm:"column:price;type:numeric(12,2);not null"`
	Available   bool              `gorm:"column:available;not null"`
	CookingTime *int              `gorm:"column:cooking_time"`
	Options     types.MenuOptions `gorm:"column:options;type:jsonb;not null"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (MenuItem) TableName() string { return "menu_items" }

// BeforeCreate assigns the primary key when the caller did not.
func (m *MenuItem) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
