package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ardacaliskaan/meva-qr-sub000/pkg/config"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/db/models"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/enums"
	pkgerrors "github.com/ardacaliskaan/meva-qr-sub000/pkg/errors"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/metrics"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/pagination"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/redis"
)

const (
	minMessageLength    = 10
	maxMessageLength    = 1000
	maxAdminNotesLength = 1000
	maxUserAgentLength  = 512
)

// Service handles anonymous feedback intake and admin triage.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*View, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Update(ctx context.Context, input UpdateInput) (*View, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo    Repository
	limiter redis.RateLimiter
	cfg     config.FeedbackConfig
	metrics *metrics.DomainMetrics
}

// NewService builds the feedback service. A nil limiter disables throttling.
func NewService(repo Repository, limiter redis.RateLimiter, cfg config.FeedbackConfig, m *metrics.DomainMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("feedback repository required")
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 3
	}
	if cfg.RateWindow <= 0 {
		cfg.RateWindow = time.Minute
	}
	return &service{repo: repo, limiter: limiter, cfg: cfg, metrics: m}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*View, error) {
	var fields []pkgerrors.FieldError

	category, err := enums.ParseFeedbackCategory(strings.ToLower(strings.TrimSpace(input.Category)))
	if err != nil {
		fields = append(fields, pkgerrors.FieldError{Field: "category", Message: "service, food, staff veya other olmalı"})
	}
	if input.Rating != nil && (*input.Rating < 1 || *input.Rating > 5) {
		fields = append(fields, pkgerrors.FieldError{Field: "rating", Message: "1 ile 5 arasında olmalı"})
	}
	message := sanitizeMessage(input.Message)
	if n := utf8.RuneCountInString(message); n < minMessageLength || n > maxMessageLength {
		fields = append(fields, pkgerrors.FieldError{
			Field:   "message",
			Message: fmt.Sprintf("%d ile %d karakter arasında olmalı", minMessageLength, maxMessageLength),
		})
	}
	if len(fields) > 0 {
		return nil, pkgerrors.Validation("Geri bildirim geçersiz", fields...)
	}

	if err := s.throttle(ctx, input.IPAddress); err != nil {
		return nil, err
	}

	userAgent := strings.TrimSpace(input.UserAgent)
	if len(userAgent) > maxUserAgentLength {
		userAgent = userAgent[:maxUserAgentLength]
	}
	entry := &models.Feedback{
		Category:  category,
		Rating:    input.Rating,
		Message:   message,
		Status:    enums.FeedbackStatusNew,
		IPAddress: strings.TrimSpace(input.IPAddress),
		UserAgent: userAgent,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create feedback")
	}
	s.metrics.FeedbackReceived(category.String())
	view := toView(*entry)
	return &view, nil
}

func (s *service) throttle(ctx context.Context, ip string) error {
	ip = strings.TrimSpace(ip)
	if s.limiter == nil || ip == "" {
		return nil
	}
	scope := "feedback:ip:" + ip
	allowed, _, err := s.limiter.FixedWindowAllow(ctx, scope, int64(s.cfg.RateLimit), s.cfg.RateWindow)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "feedback rate limit")
	}
	if allowed {
		return nil
	}
	s.metrics.FeedbackThrottled()
	retry, _ := s.limiter.RetryAfter(ctx, scope)
	return pkgerrors.New(pkgerrors.CodeRateLimit, "Çok fazla geri bildirim gönderildi, lütfen bir dakika sonra tekrar deneyin").
		WithDetails(map[string]any{"retryAfterSeconds": int(retry.Seconds())})
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	var fields []pkgerrors.FieldError
	query := listQuery{limit: pagination.LimitWithBuffer(params.Limit)}
	if raw := strings.TrimSpace(params.Status); raw != "" {
		status := enums.FeedbackStatus(strings.ToLower(raw))
		if !status.IsValid() {
			fields = append(fields, pkgerrors.FieldError{Field: "status", Message: "new, read veya resolved olmalı"})
		}
		query.status = status
	}
	if raw := strings.TrimSpace(params.Category); raw != "" {
		category, err := enums.ParseFeedbackCategory(strings.ToLower(raw))
		if err != nil {
			fields = append(fields, pkgerrors.FieldError{Field: "category", Message: "service, food, staff veya other olmalı"})
		}
		query.category = category
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			fields = append(fields, pkgerrors.FieldError{Field: "cursor", Message: "geçersiz sayfa imleci"})
		}
		query.cursor = cursor
	}
	if len(fields) > 0 {
		return nil, pkgerrors.Validation("Filtre değerleri geçersiz", fields...)
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list feedback")
	}
	rows, next := pagination.Trim(rows, params.Limit, func(m models.Feedback) pagination.Cursor {
		return pagination.Cursor{CreatedAt: m.CreatedAt, ID: m.ID}
	})

	counts, err := s.repo.CountByStatus(ctx, query.category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count feedback")
	}

	items := make([]View, len(rows))
	for i, row := range rows {
		items[i] = toView(row)
	}
	return &ListResult{Items: items, Cursor: next, Counts: counts}, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*View, error) {
	if input.ID == uuid.Nil {
		return nil, pkgerrors.Validation("Geri bildirim kimliği zorunlu", pkgerrors.FieldError{Field: "id", Message: "zorunlu alan"})
	}
	updates := map[string]any{}
	var fields []pkgerrors.FieldError
	if input.Status != nil {
		status := enums.FeedbackStatus(strings.ToLower(strings.TrimSpace(*input.Status)))
		if !status.IsValid() {
			fields = append(fields, pkgerrors.FieldError{Field: "status", Message: "new, read veya resolved olmalı"})
		}
		updates["status"] = status
	}
	if input.AdminNotes != nil {
		notes := strings.TrimSpace(*input.AdminNotes)
		if utf8.RuneCountInString(notes) > maxAdminNotesLength {
			fields = append(fields, pkgerrors.FieldError{Field: "adminNotes", Message: fmt.Sprintf("en fazla %d karakter olabilir", maxAdminNotesLength)})
		}
		updates["admin_notes"] = notes
	}
	if len(fields) > 0 {
		return nil, pkgerrors.Validation("Geri bildirim güncellemesi geçersiz", fields...)
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, input.ID, updates); err != nil {
			return nil, mapLookupError(err, "update feedback")
		}
	}
	entry, err := s.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, mapLookupError(err, "load feedback")
	}
	view := toView(*entry)
	return &view, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.Validation("Geri bildirim kimliği zorunlu", pkgerrors.FieldError{Field: "id", Message: "zorunlu alan"})
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapLookupError(err, "delete feedback")
	}
	return nil
}

func mapLookupError(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Geri bildirim bulunamadı")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
