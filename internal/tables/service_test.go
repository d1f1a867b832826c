package tables

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardacaliskaan/meva-qr-sub000/pkg/db/dbtest"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/db/models"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/enums"
	pkgerrors "github.com/ardacaliskaan/meva-qr-sub000/pkg/errors"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/types"
)

func newTestService(t *testing.T) (Service, Repository) {
	t.Helper()
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo
}

func TestCreateTableCanonicalizesAndRejectsDuplicates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	view, err := svc.Create(ctx, CreateInput{Number: types.MustTableNumber("05"), Location: "  Bahçe "})
	require.NoError(t, err)
	assert.Equal(t, "5", view.Number)
	assert.Equal(t, defaultCapacity, view.Capacity)
	assert.Equal(t, "Bahçe", view.Location)
	assert.Equal(t, enums.TableStatusEmpty, view.Status)
	assert.True(t, view.IsActive)

	_, err = svc.Create(ctx, CreateInput{Number: types.MustTableNumber("5")})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestCreateTableValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateInput{Capacity: 99})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Len(t, typed.Fields(), 2)
}

func TestUpdateAndOpenTable(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Number: types.MustTableNumber("A1"), Capacity: 2})
	require.NoError(t, err)

	capacity := 6
	inactive := false
	updated, err := svc.Update(ctx, UpdateInput{ID: created.ID, Capacity: &capacity, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, 6, updated.Capacity)
	assert.False(t, updated.IsActive)

	opened, err := svc.Open(ctx, types.MustTableNumber("a1"))
	require.NoError(t, err)
	assert.Equal(t, enums.TableStatusOccupied, opened.Status)

	_, err = svc.Open(ctx, types.MustTableNumber("99"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.Update(ctx, UpdateInput{ID: uuid.New(), Capacity: &capacity})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDeleteRejectsOccupiedTable(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Number: types.MustTableNumber("7")})
	require.NoError(t, err)
	require.NoError(t, repo.MarkOrdered(ctx, created.ID, time.Now()))

	err = svc.Delete(ctx, created.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	require.NoError(t, repo.MarkEmpty(ctx, created.ID, time.Now()))
	require.NoError(t, svc.Delete(ctx, created.ID))

	err = svc.Delete(ctx, created.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListCountsActiveOrders(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo)
	require.NoError(t, err)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Number: types.MustTableNumber("3")})
	require.NoError(t, err)

	for i, status := range []enums.OrderStatus{enums.OrderStatusPending, enums.OrderStatusReady, enums.OrderStatusCompleted} {
		require.NoError(t, conn.Create(&models.Order{
			OrderNumber:   fmt.Sprintf("260116120000-%03d", i),
			TableID:       created.ID,
			TableNumber:   "3",
			TotalAmount:   decimal.NewFromInt(10),
			Status:        status,
			PaymentStatus: enums.PaymentStatusPending,
			Priority:      enums.OrderPriorityNormal,
		}).Error)
	}

	views, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 2, views[0].ActiveOrders)
}

func TestRepositoryMarkSessionStarted(t *testing.T) {
	_, repo := newTestService(t)
	ctx := context.Background()

	table := &models.RestaurantTable{Number: "12", Capacity: 4, IsActive: true}
	require.NoError(t, repo.Create(ctx, table))

	sessionID := uuid.New()
	require.NoError(t, repo.MarkSessionStarted(ctx, table.ID, sessionID))

	reloaded, err := repo.FindByNumberForUpdate(ctx, "12")
	require.NoError(t, err)
	assert.Equal(t, enums.TableStatusOccupied, reloaded.Status)
	require.NotNil(t, reloaded.CurrentSessionID)
	assert.Equal(t, sessionID, *reloaded.CurrentSessionID)

	require.NoError(t, repo.MarkEmpty(ctx, table.ID, time.Now()))
	reloaded, err = repo.FindByID(ctx, table.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.CurrentSessionID)
	assert.NotNil(t, reloaded.LastClosedAt)
}
