package feedback

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ardacaliskaan/meva-qr-sub000/pkg/config"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/db/dbtest"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/db/models"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/enums"
	pkgerrors "github.com/ardacaliskaan/meva-qr-sub000/pkg/errors"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/metrics"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/pagination"
)

type windowLimiter struct {
	counts map[string]int64
}

func (w *windowLimiter) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	w.counts[scope]++
	return w.counts[scope] <= limit, w.counts[scope], nil
}

func (w *windowLimiter) RetryAfter(context.Context, string) (time.Duration, error) {
	return 42 * time.Second, nil
}

func newTestService(t *testing.T) (Service, *gorm.DB, *prometheus.Registry) {
	t.Helper()
	conn := dbtest.Open(t)
	reg := prometheus.NewRegistry()
	svc, err := NewService(NewRepository(conn), &windowLimiter{counts: map[string]int64{}}, config.FeedbackConfig{
		RateLimit:  3,
		RateWindow: time.Minute,
	}, metrics.NewDomainMetrics(reg))
	require.NoError(t, err)
	return svc, conn, reg
}

func validInput(ip string) SubmitInput {
	rating := 5
	return SubmitInput{
		Category:  "food",
		Rating:    &rating,
		Message:   "<b>Harika</b> bir akşam   yemeğiydi, teşekkürler",
		IPAddress: ip,
		UserAgent: "Mozilla/5.0",
	}
}

func TestSubmitSanitizesAndStores(t *testing.T) {
	svc, conn, _ := newTestService(t)

	view, err := svc.Submit(context.Background(), validInput("10.0.0.1"))
	require.NoError(t, err)
	assert.Equal(t, "Harika bir akşam yemeğiydi, teşekkürler", view.Message)
	assert.Equal(t, enums.FeedbackStatusNew, view.Status)
	assert.Equal(t, enums.FeedbackCategoryFood, view.Category)

	var stored models.Feedback
	require.NoError(t, conn.First(&stored, "id = ?", view.ID).Error)
	assert.Equal(t, "10.0.0.1", stored.IPAddress)
}

func TestSanitizeMessage(t *testing.T) {
	cases := map[string]string{
		"<script>alert(1)</script>Çok güzel":          "Çok güzel",
		"&lt;img src=x onerror=alert(1)&gt;Tatlı":     "Tatlı",
		"Fiyat & kalite  iyi":                         "Fiyat & kalite iyi",
		"&amp;lt;b&amp;gt;Lezzetli&amp;lt;/b&amp;gt;": "Lezzetli",
		"Garson'un ilgisi 5 < 10":                     "Garson'un ilgisi 5 < 10",
	}
	for in, want := range cases {
		assert.Equal(t, want, sanitizeMessage(in), in)
	}

	deep := "&amp;amp;amp;lt;b&amp;amp;amp;gt;x"
	assert.NotContains(t, sanitizeMessage(deep), "<b>")
}

func TestSubmitValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	rating := 9

	_, err := svc.Submit(context.Background(), SubmitInput{Category: "music", Rating: &rating, Message: "<p>kısa</p>", IPAddress: "10.0.0.2"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Len(t, typed.Fields(), 3)

	long := validInput("10.0.0.2")
	long.Message = strings.Repeat("a", 1001)
	_, err = svc.Submit(context.Background(), long)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestSubmitRateLimitedPerIP(t *testing.T) {
	svc, conn, reg := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Submit(ctx, validInput("10.0.0.3"))
		require.NoError(t, err)
	}
	_, err := svc.Submit(ctx, validInput("10.0.0.3"))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeRateLimit))

	var count int64
	require.NoError(t, conn.Model(&models.Feedback{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)

	_, err = svc.Submit(ctx, validInput("10.0.0.4"))
	require.NoError(t, err)

	assert.Equal(t, float64(1), counterValue(t, reg, "meva_feedback_rate_limited_total"))
	assert.Equal(t, float64(4), counterValue(t, reg, "meva_feedback_received_total"))
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	total := 0.0
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestListPaginatesAndCounts(t *testing.T) {
	svc, conn, _ := newTestService(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 16, 12, 0, 0, 0, time.UTC)
	statuses := []enums.FeedbackStatus{enums.FeedbackStatusNew, enums.FeedbackStatusNew, enums.FeedbackStatusRead, enums.FeedbackStatusResolved, enums.FeedbackStatusNew}
	for i, status := range statuses {
		entry := &models.Feedback{
			Category:  enums.FeedbackCategoryService,
			Message:   fmt.Sprintf("Geri bildirim numarası %d", i),
			Status:    status,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, conn.Create(entry).Error)
	}

	first, err := svc.List(ctx, ListParams{Params: pagination.Params{Limit: 2}})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	assert.Equal(t, "Geri bildirim numarası 4", first.Items[0].Message)
	assert.NotEmpty(t, first.Cursor)
	assert.Equal(t, 3, first.Counts[enums.FeedbackStatusNew])
	assert.Equal(t, 1, first.Counts[enums.FeedbackStatusRead])

	second, err := svc.List(ctx, ListParams{Params: pagination.Params{Limit: 2, Cursor: first.Cursor}})
	require.NoError(t, err)
	require.Len(t, second.Items, 2)
	assert.Equal(t, "Geri bildirim numarası 2", second.Items[0].Message)

	third, err := svc.List(ctx, ListParams{Params: pagination.Params{Limit: 2, Cursor: second.Cursor}})
	require.NoError(t, err)
	require.Len(t, third.Items, 1)
	assert.Empty(t, third.Cursor)

	onlyNew, err := svc.List(ctx, ListParams{Status: "new"})
	require.NoError(t, err)
	assert.Len(t, onlyNew.Items, 3)

	_, err = svc.List(ctx, ListParams{Status: "archived"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestUpdateAndDelete(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Submit(ctx, validInput("10.0.0.9"))
	require.NoError(t, err)

	status, notes := "resolved", "Şefe iletildi"
	updated, err := svc.Update(ctx, UpdateInput{ID: created.ID, Status: &status, AdminNotes: &notes})
	require.NoError(t, err)
	assert.Equal(t, enums.FeedbackStatusResolved, updated.Status)
	assert.Equal(t, "Şefe iletildi", updated.AdminNotes)

	bad := "archived"
	_, err = svc.Update(ctx, UpdateInput{ID: created.ID, Status: &bad})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Update(ctx, UpdateInput{ID: uuid.New(), Status: &status})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.True(t, pkgerrors.IsCode(svc.Delete(ctx, created.ID), pkgerrors.CodeNotFound))
}
