package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ardacaliskaan/meva-qr-sub000/pkg/enums"
)

// Feedback is an anonymous guest comment awaiting admin triage.
type Feedback struct {
	ID         uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	Category   enums.FeedbackCategory `gorm:"column:category;type:text;not null;index"`
	Rating     *int                   `gorm:"column:rating"`
	Message    string                 `gorm:"column:message;not null"`
	Status     enums.FeedbackStatus   `gorm:"column:status;type:text;not null;index"`
	AdminNotes string                 `gorm:"column:admin_notes;not null"`
	IPAddress  string                 `gorm:"column:ip_address;not null"`
	UserAgent  string                 `gorm:"column:user_agent;not null"`
	CreatedAt  time.Time              `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt  time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

func (Feedback) TableName() string { return "feedback" }

// BeforeCreate assigns the primary key when the caller did not.
func (f *Feedback) BeforeCreate(*gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.Status == "" {
		f.Status = enums.FeedbackStatusNew
	}
	return nil
}
