package feedback

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ardacaliskaan/meva-qr-sub000/internal/repo"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/db/models"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/enums"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/pagination"
)

// Repository defines persistence operations for guest feedback.
type Repository interface {
	Create(ctx context.Context, entry *models.Feedback) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Feedback, error)
	List(ctx context.Context, query listQuery) ([]models.Feedback, error)
	CountByStatus(ctx context.Context, category enums.FeedbackCategory) (map[enums.FeedbackStatus]int, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type listQuery struct {
	status   enums.FeedbackStatus
	category enums.FeedbackCategory
	limit    int
	cursor   *pagination.Cursor
}

type repository struct {
	repo.Base
}

// NewRepository builds a feedback repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) Create(ctx context.Context, entry *models.Feedback) error {
	return r.DB(ctx).Create(entry).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Feedback, error) {
	var entry models.Feedback
	if err := r.DB(ctx).Where("id = ?", id).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// List returns feedback newest first using cursor pagination.
func (r *repository) List(ctx context.Context, query listQuery) ([]models.Feedback, error) {
	q := r.DB(ctx).Model(&models.Feedback{})
	if query.status != "" {
		q = q.Where("status = ?", query.status)
	}
	if query.category != "" {
		q = q.Where("category = ?", query.category)
	}
	if query.cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)", query.cursor.CreatedAt, query.cursor.CreatedAt, query.cursor.ID)
	}

	var rows []models.Feedback
	if err := q.Order("created_at DESC").Order("id DESC").Limit(query.limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CountByStatus(ctx context.Context, category enums.FeedbackCategory) (map[enums.FeedbackStatus]int, error) {
	type row struct {
		Status enums.FeedbackStatus
		Count  int
	}
	q := r.DB(ctx).Model(&models.Feedback{}).Select("status, COUNT(*) AS count")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var rows []row
	if err := q.Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[enums.FeedbackStatus]int, len(enums.FeedbackStatuses()))
	for _, status := range enums.FeedbackStatuses() {
		counts[status] = 0
	}
	for _, rw := range rows {
		counts[rw.Status] = rw.Count
	}
	return counts, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	res := r.DB(ctx).Model(&models.Feedback{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.Feedback{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
