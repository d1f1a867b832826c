package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ardacaliskaan/meva-qr-sub000/internal/sessions"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/db/models"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/enums"
)

// Repository defines the persistence operations for table orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Save(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter) ([]models.Order, error)
	FindActiveByTable(ctx context.Context, tableID uuid.UUID) ([]models.Order, error)
	CountActiveByTable(ctx context.Context, tableID uuid.UUID) (int64, error)
	CountBySessionSince(ctx context.Context, sessionID uuid.UUID, since time.Time) (int64, error)
	OrderNumberExists(ctx context.Context, number string) (bool, error)
}

// ListFilter narrows the rows loaded for the order board.
type ListFilter struct {
	Statuses         []enums.OrderStatus
	ExcludeCompleted bool
}

// SessionRecorder is the slice of the session tracker orders depend on. Every
// call joins the caller's transaction.
type SessionRecorder interface {
	CheckOrderable(ctx context.Context, tx *gorm.DB, sessionID, tableID uuid.UUID) error
	RecordOrder(ctx context.Context, tx *gorm.DB, record sessions.OrderRecord) error
	CloseForTable(ctx context.Context, tx *gorm.DB, tableID uuid.UUID, at time.Time) (int, error)
}
