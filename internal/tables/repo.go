package tables

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ardacaliskaan/meva-qr-sub000/internal/repo"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/db/models"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/enums"
)

type repository struct {
	repo.Base
}

// NewRepository builds a tables repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: r.Bind(tx)}
}

func (r *repository) Create(ctx context.Context, table *models.RestaurantTable) error {
	return r.DB(ctx).Create(table).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.RestaurantTable, error) {
	var table models.RestaurantTable
	if err := r.DB(ctx).Where("id = ?", id).First(&table).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *repository) FindByNumber(ctx context.Context, number string) (*models.RestaurantTable, error) {
	var table models.RestaurantTable
	if err := r.DB(ctx).Where("number = ?", number).First(&table).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *repository) FindByNumberForUpdate(ctx context.Context, number string) (*models.RestaurantTable, error) {
	var table models.RestaurantTable
	if err := r.ForUpdate(ctx).Where("number = ?", number).First(&table).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *repository) List(ctx context.Context) ([]models.RestaurantTable, error) {
	var tables []models.RestaurantTable
	if err := r.DB(ctx).Order("number ASC").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	res := r.DB(ctx).Model(&models.RestaurantTable{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.RestaurantTable{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) MarkOrdered(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.Update(ctx, id, map[string]any{
		"status":        enums.TableStatusOccupied,
		"last_order_at": at,
	})
}

func (r *repository) MarkSessionStarted(ctx context.Context, id uuid.UUID, sessionID uuid.UUID) error {
	return r.Update(ctx, id, map[string]any{
		"status":             enums.TableStatusOccupied,
		"current_session_id": sessionID,
	})
}

func (r *repository) MarkEmpty(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.Update(ctx, id, map[string]any{
		"status":             enums.TableStatusEmpty,
		"current_session_id": nil,
		"last_closed_at":     at,
	})
}

// ClearSession drops the current session pointer only while it still
// references sessionID.
func (r *repository) ClearSession(ctx context.Context, id uuid.UUID, sessionID uuid.UUID) error {
	return r.DB(ctx).
		Model(&models.RestaurantTable{}).
		Where("id = ? AND current_session_id = ?", id, sessionID).
		Update("current_session_id", nil).Error
}

func (r *repository) SetStatus(ctx context.Context, id uuid.UUID, status enums.TableStatus) error {
	return r.Update(ctx, id, map[string]any{"status": status})
}

type orderCountRow struct {
	TableID uuid.UUID
	Count   int
}

func (r *repository) ActiveOrderCounts(ctx context.Context) (map[uuid.UUID]int, error) {
	var rows []orderCountRow
	err := r.DB(ctx).
		Model(&models.Order{}).
		Select("table_id, COUNT(*) AS count").
		Where("status IN ?", enums.ActiveOrderStatuses()).
		Group("table_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		out[row.TableID] = row.Count
	}
	return out, nil
}
