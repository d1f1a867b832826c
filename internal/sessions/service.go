package sessions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ardacaliskaan/meva-qr-sub000/internal/tables"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/config"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/db/models"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/enums"
	pkgerrors "github.com/ardacaliskaan/meva-qr-sub000/pkg/errors"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/metrics"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/types"
)

const expiredSweepBatch = 200

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages anonymous table sessions.
type Service interface {
	Start(ctx context.Context, input StartInput) (*StartResult, error)
	Validate(ctx context.Context, sessionID uuid.UUID, fingerprint string) (*ValidateResult, error)
	Extend(ctx context.Context, sessionID uuid.UUID) (*View, error)
	Close(ctx context.Context, sessionID uuid.UUID) (*View, error)
	CloseExpired(ctx context.Context) (int, error)

	// Transaction-scoped hooks used while placing and closing orders.
	CheckOrderable(ctx context.Context, tx *gorm.DB, sessionID, tableID uuid.UUID) error
	RecordOrder(ctx context.Context, tx *gorm.DB, record OrderRecord) error
	CloseForTable(ctx context.Context, tx *gorm.DB, tableID uuid.UUID, at time.Time) (int, error)
}

type service struct {
	repo    Repository
	tables  tables.Repository
	tx      txRunner
	cfg     config.SessionsConfig
	metrics *metrics.DomainMetrics
	now     func() time.Time
}

// Option customizes the service.
type Option func(*service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMetrics records session counters.
func WithMetrics(m *metrics.DomainMetrics) Option {
	return func(s *service) { s.metrics = m }
}

// NewService builds the session service.
func NewService(repo Repository, tableRepo tables.Repository, tx txRunner, cfg config.SessionsConfig, opts ...Option) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sessions repository required")
	}
	if tableRepo == nil {
		return nil, fmt.Errorf("tables repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 4 * time.Hour
	}
	s := &service{
		repo:   repo,
		tables: tableRepo,
		tx:     tx,
		cfg:    cfg,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *service) Start(ctx context.Context, input StartInput) (*StartResult, error) {
	var fields []pkgerrors.FieldError
	if input.TableNumber.IsZero() {
		fields = append(fields, pkgerrors.FieldError{Field: "tableNumber", Message: "zorunlu alan"})
	}
	input.Device.Fingerprint = strings.TrimSpace(input.Device.Fingerprint)
	if input.Device.Fingerprint == "" {
		fields = append(fields, pkgerrors.FieldError{Field: "deviceInfo.fingerprint", Message: "zorunlu alan"})
	}
	if len(fields) > 0 {
		return nil, pkgerrors.Validation("Oturum bilgileri geçersiz", fields...)
	}

	now := s.now().UTC()
	var (
		session models.TableSession
		isNew   bool
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		tableRepo := s.tables.WithTx(tx)
		repo := s.repo.WithTx(tx)

		table, err := tableRepo.FindByNumberForUpdate(ctx, input.TableNumber.String())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "Masa bulunamadı")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load table")
		}
		if !table.IsActive {
			return pkgerrors.New(pkgerrors.CodeUnavailable, "Masa şu anda hizmet dışı").
				WithDetails(map[string]any{"tableNumber": table.Number})
		}

		active, err := repo.FindActiveByTable(ctx, table.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active sessions")
		}
		for _, candidate := range active {
			if candidate.IsLive(now) {
				session = candidate
				if err := s.join(ctx, repo, &session, input.Device, now); err != nil {
					return err
				}
				if table.CurrentSessionID == nil || *table.CurrentSessionID != session.ID || table.Status != enums.TableStatusOccupied {
					if err := tableRepo.MarkSessionStarted(ctx, table.ID, session.ID); err != nil {
						return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark table occupied")
					}
				}
				return nil
			}
		}
		if len(active) > 0 {
			if _, err := repo.CloseActiveByTable(ctx, table.ID, now); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close stale sessions")
			}
		}

		session = models.TableSession{
			TableID:      table.ID,
			TableNumber:  table.Number,
			Status:       enums.SessionStatusActive,
			StartTime:    now,
			ExpiresAt:    now.Add(s.cfg.TTL),
			LastActivity: now,
			Devices:      types.SessionDevices{newDevice(input.Device, now)},
		}
		if err := repo.Create(ctx, &session); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session")
		}
		if err := tableRepo.MarkSessionStarted(ctx, table.ID, session.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark table occupied")
		}
		isNew = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.SessionStarted(isNew)
	return &StartResult{Session: NewView(session), IsNew: isNew}, nil
}

func (s *service) join(ctx context.Context, repo Repository, session *models.TableSession, device DeviceInfo, now time.Time) error {
	session.Devices, _ = registerDevice(session.Devices, device, now)
	if s.cfg.MaxDevices > 0 && len(session.Devices) > s.cfg.MaxDevices {
		addFlag(session, FlagManyDevices)
	}
	session.LastActivity = now
	if err := repo.Save(ctx, session); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register device")
	}
	return nil
}

func (s *service) Validate(ctx context.Context, sessionID uuid.UUID, fingerprint string) (*ValidateResult, error) {
	if sessionID == uuid.Nil {
		return nil, pkgerrors.Validation("Oturum kimliği zorunlu", pkgerrors.FieldError{Field: "sessionId", Message: "zorunlu alan"})
	}
	session, err := s.load(ctx, s.repo, sessionID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if !session.IsLive(now) {
		return nil, expiredError(session)
	}
	if err := s.repo.Touch(ctx, session.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touch session")
	}
	session.LastActivity = now

	fingerprint = strings.TrimSpace(fingerprint)
	return &ValidateResult{
		Valid:       true,
		CanOrder:    !session.HasFlag(FlagBlocked),
		DeviceMatch: fingerprint == "" || session.Devices.Index(fingerprint) >= 0,
		Session:     NewView(*session),
	}, nil
}

func (s *service) Extend(ctx context.Context, sessionID uuid.UUID) (*View, error) {
	if sessionID == uuid.Nil {
		return nil, pkgerrors.Validation("Oturum kimliği zorunlu", pkgerrors.FieldError{Field: "sessionId", Message: "zorunlu alan"})
	}
	var session *models.TableSession
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		session, err = s.loadForUpdate(ctx, repo, sessionID)
		if err != nil {
			return err
		}
		if session.Status != enums.SessionStatusActive {
			return expiredError(session)
		}
		now := s.now().UTC()
		session.ExpiresAt = now.Add(s.cfg.TTL)
		session.LastActivity = now
		if err := repo.Save(ctx, session); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "extend session")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	view := NewView(*session)
	return &view, nil
}

func (s *service) Close(ctx context.Context, sessionID uuid.UUID) (*View, error) {
	if sessionID == uuid.Nil {
		return nil, pkgerrors.Validation("Oturum kimliği zorunlu", pkgerrors.FieldError{Field: "sessionId", Message: "zorunlu alan"})
	}
	var session *models.TableSession
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		session, err = s.loadForUpdate(ctx, repo, sessionID)
		if err != nil {
			return err
		}
		if session.Status == enums.SessionStatusClosed {
			return nil
		}
		now := s.now().UTC()
		session.Status = enums.SessionStatusClosed
		session.ClosedAt = &now
		if err := repo.Save(ctx, session); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close session")
		}
		if err := s.tables.WithTx(tx).ClearSession(ctx, session.TableID, session.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear table session")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	view := NewView(*session)
	return &view, nil
}

// CloseExpired closes active sessions whose expiry has passed and detaches
// them from their tables. It returns the number of sessions closed.
func (s *service) CloseExpired(ctx context.Context) (int, error) {
	now := s.now().UTC()
	closed := 0
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		tableRepo := s.tables.WithTx(tx)
		expired, err := repo.FindExpired(ctx, now, expiredSweepBatch)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find expired sessions")
		}
		if len(expired) == 0 {
			return nil
		}
		ids := make([]uuid.UUID, 0, len(expired))
		for _, session := range expired {
			ids = append(ids, session.ID)
		}
		affected, err := repo.CloseByIDs(ctx, ids, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close expired sessions")
		}
		for _, session := range expired {
			if err := tableRepo.ClearSession(ctx, session.TableID, session.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear table session")
			}
		}
		closed = int(affected)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return closed, nil
}

func (s *service) CheckOrderable(ctx context.Context, tx *gorm.DB, sessionID, tableID uuid.UUID) error {
	session, err := s.load(ctx, s.repo.WithTx(tx), sessionID)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "Oturum geçersiz, lütfen QR kodu tekrar okutun")
		}
		return err
	}
	if !session.IsLive(s.now().UTC()) {
		return expiredError(session)
	}
	if session.TableID != tableID {
		return pkgerrors.Validation("Oturum bu masaya ait değil", pkgerrors.FieldError{Field: "sessionId", Message: "masa ile eşleşmiyor"})
	}
	if session.HasFlag(FlagBlocked) {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "Bu oturumdan sipariş verilemez")
	}
	return nil
}

func (s *service) RecordOrder(ctx context.Context, tx *gorm.DB, record OrderRecord) error {
	repo := s.repo.WithTx(tx)
	session, err := s.loadForUpdate(ctx, repo, record.SessionID)
	if err != nil {
		return err
	}
	at := record.At
	if at.IsZero() {
		at = s.now().UTC()
	}

	session.OrderCount++
	session.TotalAmount = session.TotalAmount.Add(record.Amount)
	session.OrderIDs = session.OrderIDs.AppendUnique(record.OrderID)
	session.LastOrderAt = &at
	session.LastActivity = at
	if idx := session.Devices.Index(strings.TrimSpace(record.Fingerprint)); idx >= 0 {
		session.Devices[idx].OrderCount++
		session.Devices[idx].LastSeen = at
	}
	if s.cfg.HighOrderVolumeCount > 0 && record.RecentOrders >= int64(s.cfg.HighOrderVolumeCount) {
		addFlag(session, FlagHighOrderVolume)
	}
	if err := repo.Save(ctx, session); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record session order")
	}
	return nil
}

func (s *service) CloseForTable(ctx context.Context, tx *gorm.DB, tableID uuid.UUID, at time.Time) (int, error) {
	affected, err := s.repo.WithTx(tx).CloseActiveByTable(ctx, tableID, at)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close table sessions")
	}
	return int(affected), nil
}

func (s *service) load(ctx context.Context, repo Repository, id uuid.UUID) (*models.TableSession, error) {
	session, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "load session")
	}
	return session, nil
}

func (s *service) loadForUpdate(ctx context.Context, repo Repository, id uuid.UUID) (*models.TableSession, error) {
	session, err := repo.FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "lock session")
	}
	return session, nil
}

func addFlag(session *models.TableSession, flag string) {
	if session.HasFlag(flag) {
		return
	}
	session.Flags = append(session.Flags, flag)
}

func expiredError(session *models.TableSession) error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "Oturumun süresi dolmuş").
		WithDetails(map[string]any{"sessionId": session.ID.String(), "status": session.Status})
}

func mapLookupError(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Oturum bulunamadı")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
