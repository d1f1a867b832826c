package feedback

import (
	"time"

	"github.com/google/uuid"

	"github.com/ardacaliskaan/meva-qr-sub000/pkg/db/models"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/enums"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/pagination"
)

// SubmitInput is an anonymous feedback submission.
type SubmitInput struct {
	Category  string
	Rating    *int
	Message   string
	IPAddress string
	UserAgent string
}

// ListParams filters the admin feedback list.
type ListParams struct {
	Status   string
	Category string
	pagination.Params
}

// ListResult is one page of feedback plus per-status counts.
type ListResult struct {
	Items  []View                       `json:"feedback"`
	Cursor string                       `json:"cursor"`
	Counts map[enums.FeedbackStatus]int `json:"counts"`
}

// UpdateInput changes triage fields.
type UpdateInput struct {
	ID         uuid.UUID
	Status     *string
	AdminNotes *string
}

// View is the admin representation of a feedback entry.
type View struct {
	ID         uuid.UUID              `json:"id"`
	Category   enums.FeedbackCategory `json:"category"`
	Rating     *int                   `json:"rating,omitempty"`
	Message    string                 `json:"message"`
	Status     enums.FeedbackStatus   `json:"status"`
	AdminNotes string                 `json:"adminNotes,omitempty"`
	IPAddress  string                 `json:"ipAddress,omitempty"`
	CreatedAt  time.Time              `json:"createdAt"`
	UpdatedAt  time.Time              `json:"updatedAt"`
}

func toView(m models.Feedback) View {
	return View{
		ID:         m.ID,
		Category:   m.Category,
		Rating:     m.Rating,
		Message:    m.Message,
		Status:     m.Status,
		AdminNotes: m.AdminNotes,
		IPAddress:  m.IPAddress,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
