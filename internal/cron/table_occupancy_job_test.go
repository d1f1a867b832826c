package cron

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ardacaliskaan/meva-qr-sub000/internal/orders"
	"github.com/ardacaliskaan/meva-qr-sub000/internal/sessions"
	"github.com/ardacaliskaan/meva-qr-sub000/internal/tables"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/db/dbtest"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/db/models"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/enums"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/metrics"
)

var occupancyNow = time.Date(2025, 3, 14, 19, 0, 0, 0, time.UTC)

type occupancyFixture struct {
	conn *gorm.DB
	job  Job
	reg  *prometheus.Registry
}

func newOccupancyFixture(t *testing.T) *occupancyFixture {
	t.Helper()
	client, conn := dbtest.Client(t)
	reg := prometheus.NewRegistry()
	job, err := NewTableOccupancyJob(TableOccupancyJobParams{
		Logger:   testLogger(),
		DB:       client,
		Tables:   tables.NewRepository(conn),
		Orders:   orders.NewRepository(conn),
		Sessions: sessions.NewRepository(conn),
		Metrics:  metrics.NewCronJobMetrics(reg),
		Clock:    func() time.Time { return occupancyNow },
	})
	require.NoError(t, err)
	return &occupancyFixture{conn: conn, job: job, reg: reg}
}

func (f *occupancyFixture) table(t *testing.T, number string, status enums.TableStatus, sessionID *uuid.UUID) uuid.UUID {
	t.Helper()
	table := &models.RestaurantTable{
		Number:           number,
		Capacity:         4,
		Location:         "Salon",
		Status:           status,
		CurrentSessionID: sessionID,
		IsActive:         true,
	}
	require.NoError(t, f.conn.Create(table).Error)
	return table.ID
}

func (f *occupancyFixture) order(t *testing.T, tableID uuid.UUID, number string, status enums.OrderStatus) {
	t.Helper()
	order := &models.Order{
		OrderNumber:   uuid.NewString(),
		TableID:       tableID,
		TableNumber:   number,
		Status:        status,
		PaymentStatus: enums.PaymentStatusPending,
		Priority:      enums.OrderPriorityNormal,
	}
	require.NoError(t, f.conn.Create(order).Error)
}

func (f *occupancyFixture) session(t *testing.T, tableID uuid.UUID, number string, expiresAt time.Time) uuid.UUID {
	t.Helper()
	session := &models.TableSession{
		TableID:      tableID,
		TableNumber:  number,
		Status:       enums.SessionStatusActive,
		StartTime:    expiresAt.Add(-4 * time.Hour),
		ExpiresAt:    expiresAt,
		LastActivity: expiresAt.Add(-4 * time.Hour),
	}
	require.NoError(t, f.conn.Create(session).Error)
	return session.ID
}

func (f *occupancyFixture) load(t *testing.T, id uuid.UUID) models.RestaurantTable {
	t.Helper()
	var table models.RestaurantTable
	require.NoError(t, f.conn.First(&table, "id = ?", id).Error)
	return table
}

func TestTableOccupancyJobFixesDrift(t *testing.T) {
	f := newOccupancyFixture(t)
	ctx := context.Background()

	// occupied in storage but every order is finished
	stale := f.table(t, "1", enums.TableStatusOccupied, nil)
	f.order(t, stale, "1", enums.OrderStatusCompleted)

	// empty in storage while an order is still cooking
	busy := f.table(t, "2", enums.TableStatusEmpty, nil)
	f.order(t, busy, "2", enums.OrderStatusPreparing)

	// consistent tables stay untouched
	quiet := f.table(t, "3", enums.TableStatusEmpty, nil)
	serving := f.table(t, "4", enums.TableStatusOccupied, nil)
	f.order(t, serving, "4", enums.OrderStatusReady)

	require.NoError(t, f.job.Run(ctx))

	assert.Equal(t, enums.TableStatusEmpty, f.load(t, stale).Status)
	assert.NotNil(t, f.load(t, stale).LastClosedAt)
	assert.Equal(t, enums.TableStatusOccupied, f.load(t, busy).Status)
	assert.Equal(t, enums.TableStatusEmpty, f.load(t, quiet).Status)
	assert.Nil(t, f.load(t, quiet).LastClosedAt)
	assert.Equal(t, enums.TableStatusOccupied, f.load(t, serving).Status)
	assert.Equal(t, float64(2), fixedCount(t, f.reg, "table-occupancy"))

	// a second pass finds nothing left to fix
	require.NoError(t, f.job.Run(ctx))
	assert.Equal(t, float64(2), fixedCount(t, f.reg, "table-occupancy"))
}

func TestTableOccupancyJobRespectsSessions(t *testing.T) {
	f := newOccupancyFixture(t)
	ctx := context.Background()

	seated := f.table(t, "7", enums.TableStatusOccupied, nil)
	liveID := f.session(t, seated, "7", occupancyNow.Add(time.Hour))
	require.NoError(t, f.conn.Model(&models.RestaurantTable{}).Where("id = ?", seated).Update("current_session_id", liveID).Error)

	left := f.table(t, "8", enums.TableStatusOccupied, nil)
	expiredID := f.session(t, left, "8", occupancyNow.Add(-time.Minute))
	require.NoError(t, f.conn.Model(&models.RestaurantTable{}).Where("id = ?", left).Update("current_session_id", expiredID).Error)

	dangling := uuid.New()
	orphan := f.table(t, "9", enums.TableStatusEmpty, &dangling)

	require.NoError(t, f.job.Run(ctx))

	got := f.load(t, seated)
	assert.Equal(t, enums.TableStatusOccupied, got.Status)
	require.NotNil(t, got.CurrentSessionID)
	assert.Equal(t, liveID, *got.CurrentSessionID)

	got = f.load(t, left)
	assert.Equal(t, enums.TableStatusEmpty, got.Status)
	assert.Nil(t, got.CurrentSessionID)

	got = f.load(t, orphan)
	assert.Equal(t, enums.TableStatusEmpty, got.Status)
	assert.Nil(t, got.CurrentSessionID)
}

func TestDrifted(t *testing.T) {
	sessionID := uuid.New()
	cases := []struct {
		name        string
		table       models.RestaurantTable
		hasOrders   bool
		sessionLive bool
		want        bool
	}{
		{"empty and idle", models.RestaurantTable{Status: enums.TableStatusEmpty}, false, false, false},
		{"occupied with orders", models.RestaurantTable{Status: enums.TableStatusOccupied}, true, false, false},
		{"occupied by session", models.RestaurantTable{Status: enums.TableStatusOccupied, CurrentSessionID: &sessionID}, false, true, false},
		{"occupied without reason", models.RestaurantTable{Status: enums.TableStatusOccupied}, false, false, true},
		{"empty with orders", models.RestaurantTable{Status: enums.TableStatusEmpty}, true, false, true},
		{"empty with stale pointer", models.RestaurantTable{Status: enums.TableStatusEmpty, CurrentSessionID: &sessionID}, false, false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, drifted(tc.table, tc.hasOrders, tc.sessionLive))
		})
	}
}
