package tables

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ardacaliskaan/meva-qr-sub000/pkg/db/models"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/enums"
)

// Repository defines persistence operations for restaurant tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, table *models.RestaurantTable) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.RestaurantTable, error)
	FindByNumber(ctx context.Context, number string) (*models.RestaurantTable, error)
	FindByNumberForUpdate(ctx context.Context, number string) (*models.RestaurantTable, error)
	List(ctx context.Context) ([]models.RestaurantTable, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	MarkOrdered(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkSessionStarted(ctx context.Context, id uuid.UUID, sessionID uuid.UUID) error
	MarkEmpty(ctx context.Context, id uuid.UUID, at time.Time) error
	ClearSession(ctx context.Context, id uuid.UUID, sessionID uuid.UUID) error
	ActiveOrderCounts(ctx context.Context) (map[uuid.UUID]int, error)
	SetStatus(ctx context.Context, id uuid.UUID, status enums.TableStatus) error
}
