package sessions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ardacaliskaan/meva-qr-sub000/internal/repo"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/db/models"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/enums"
)

// Repository defines persistence operations for table sessions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, session *models.TableSession) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.TableSession, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.TableSession, error)
	FindActiveByTable(ctx context.Context, tableID uuid.UUID) ([]models.TableSession, error)
	Save(ctx context.Context, session *models.TableSession) error
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error
	CloseActiveByTable(ctx context.Context, tableID uuid.UUID, at time.Time) (int64, error)
	FindExpired(ctx context.Context, now time.Time, limit int) ([]models.TableSession, error)
	CloseByIDs(ctx context.Context, ids []uuid.UUID, at time.Time) (int64, error)
	LiveSessionIDs(ctx context.Context, now time.Time) (map[uuid.UUID]struct{}, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a sessions repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: r.Bind(tx)}
}

func (r *repository) Create(ctx context.Context, session *models.TableSession) error {
	return r.DB(ctx).Create(session).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.TableSession, error) {
	var session models.TableSession
	if err := r.DB(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.TableSession, error) {
	var session models.TableSession
	if err := r.ForUpdate(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *repository) FindActiveByTable(ctx context.Context, tableID uuid.UUID) ([]models.TableSession, error) {
	var sessions []models.TableSession
	err := r.DB(ctx).
		Where("table_id = ? AND status = ?", tableID, enums.SessionStatusActive).
		Order("start_time DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *repository) Save(ctx context.Context, session *models.TableSession) error {
	return r.DB(ctx).Save(session).Error
}

func (r *repository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.DB(ctx).
		Model(&models.TableSession{}).
		Where("id = ?", id).
		Update("last_activity", at).Error
}

func (r *repository) CloseActiveByTable(ctx context.Context, tableID uuid.UUID, at time.Time) (int64, error) {
	res := r.DB(ctx).
		Model(&models.TableSession{}).
		Where("table_id = ? AND status = ?", tableID, enums.SessionStatusActive).
		Updates(map[string]any{
			"status":    enums.SessionStatusClosed,
			"closed_at": at,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) FindExpired(ctx context.Context, now time.Time, limit int) ([]models.TableSession, error) {
	var sessions []models.TableSession
	q := r.DB(ctx).
		Where("status = ? AND expires_at <= ?", enums.SessionStatusActive, now).
		Order("expires_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *repository) CloseByIDs(ctx context.Context, ids []uuid.UUID, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.DB(ctx).
		Model(&models.TableSession{}).
		Where("id IN ? AND status = ?", ids, enums.SessionStatusActive).
		Updates(map[string]any{
			"status":    enums.SessionStatusClosed,
			"closed_at": at,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) LiveSessionIDs(ctx context.Context, now time.Time) (map[uuid.UUID]struct{}, error) {
	var ids []uuid.UUID
	err := r.DB(ctx).
		Model(&models.TableSession{}).
		Where("status = ? AND expires_at > ?", enums.SessionStatusActive, now).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}
