package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbtypes "github.com/ardacaliskaan/meva-qr-sub000/pkg/db/types"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/enums"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/types"
)

// TableSession is the anonymous session minted when a guest scans a table QR.
type TableSession struct {
	ID           uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	TableID      uuid.UUID            `gorm:"column:table_id;type:uuid;not null;index"`
	TableNumber  string               `gorm:"column:table_number;not null"`
	Status       enums.SessionStatus  `gorm:"column:status;type:text;not null;index"`
	StartTime    time.Time            `gorm:"column:start_time;not null"`
	ExpiresAt    time.Time            `gorm:"column:expires_at;not null;index"`
	LastActivity time.Time            `gorm:"column:last_activity;not null"`
	Devices      types.SessionDevices `gorm:"column:devices;type:jsonb;not null"`
	OrderCount   int                  `gorm:"column:order_count;not null"`
	TotalAmount  decimal.Decimal      `gorm:"column:total_amount;type:numeric(12,2);not null"`
	OrderIDs     dbtypes.UUIDArray    `gorm:"column:order_ids;type:text;not null"`
	Flags        pq.StringArray       `gorm:"column:flags;type:text;not null"`
	LastOrderAt  *time.Time           `gorm:"column:last_order_at"`
	ClosedAt     *time.Time           `gorm:"column:closed_at"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (TableSession) TableName() string { return "table_sessions" }

// BeforeCreate assigns the primary key and empty collections.
func (s *TableSession) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.OrderIDs == nil {
		s.OrderIDs = dbtypes.UUIDArray{}
	}
	if s.Flags == nil {
		s.Flags = pq.StringArray{}
	}
	return nil
}

// HasFlag reports whether the session carries the named flag.
func (s TableSession) HasFlag(flag string) bool {
	for _, f := range s.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// IsLive reports whether the session is active and unexpired at now.
func (s TableSession) IsLive(now time.Time) bool {
	return s.Status == enums.SessionStatusActive && now.Before(s.ExpiresAt)
}
