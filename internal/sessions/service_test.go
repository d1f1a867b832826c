package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ardacaliskaan/meva-qr-sub000/internal/tables"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/config"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/db"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/db/dbtest"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/db/models"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/enums"
	pkgerrors "github.com/ardacaliskaan/meva-qr-sub000/pkg/errors"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/types"
)

const chromeAndroid = "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.6099.144 Mobile Safari/537.36"

type fixture struct {
	svc    Service
	repo   Repository
	tables tables.Repository
	client *db.Client
	now    time.Time
}

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client, conn := dbtest.Client(t)
	f := &fixture{
		repo:   NewRepository(conn),
		tables: tables.NewRepository(conn),
		client: client,
		now:    time.Date(2026, 1, 16, 12, 0, 0, 0, time.UTC),
	}
	svc, err := NewService(f.repo, f.tables, client, config.SessionsConfig{
		TTL:                  4 * time.Hour,
		MaxDevices:           2,
		HighOrderVolumeCount: 3,
	}, WithClock(func() time.Time { return f.now }))
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) seedTable(t *testing.T, number string) *models.RestaurantTable {
	t.Helper()
	table := &models.RestaurantTable{Number: number, Capacity: 4, IsActive: true}
	require.NoError(t, f.tables.Create(context.Background(), table))
	return table
}

func startInput(number, fingerprint string) StartInput {
	return StartInput{
		TableNumber: types.MustTableNumber(number),
		Device:      DeviceInfo{Fingerprint: fingerprint, UserAgent: chromeAndroid, IPAddress: "10.0.0.7"},
	}
}

func TestStartCreatesSessionAndOccupiesTable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	table := f.seedTable(t, "5")

	res, err := f.svc.Start(ctx, startInput("05", "fp-1"))
	require.NoError(t, err)
	assert.True(t, res.IsNew)
	assert.Equal(t, "5", res.Session.TableNumber)
	assert.Equal(t, f.now.Add(4*time.Hour), res.Session.ExpiryTime.UTC())
	require.Len(t, res.Session.Devices, 1)
	assert.Equal(t, 1, res.Session.Devices[0].VisitCount)
	assert.True(t, res.Session.Devices[0].IsMobile)

	reloaded, err := f.tables.FindByID(ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.TableStatusOccupied, reloaded.Status)
	require.NotNil(t, reloaded.CurrentSessionID)
	assert.Equal(t, res.Session.SessionID, *reloaded.CurrentSessionID)
}

func TestStartReusesLiveSessionAndRegistersDevices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedTable(t, "5")

	first, err := f.svc.Start(ctx, startInput("5", "fp-1"))
	require.NoError(t, err)

	f.advance(10 * time.Minute)
	second, err := f.svc.Start(ctx, startInput("5", "fp-2"))
	require.NoError(t, err)
	assert.False(t, second.IsNew)
	assert.Equal(t, first.Session.SessionID, second.Session.SessionID)
	require.Len(t, second.Session.Devices, 2)

	again, err := f.svc.Start(ctx, startInput("5", "fp-1"))
	require.NoError(t, err)
	require.Len(t, again.Session.Devices, 2)
	assert.Equal(t, 2, again.Session.Devices[0].VisitCount)
	assert.Empty(t, again.Session.Flags)

	third, err := f.svc.Start(ctx, startInput("5", "fp-3"))
	require.NoError(t, err)
	assert.Contains(t, third.Session.Flags, FlagManyDevices)
}

func TestStartReplacesExpiredSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedTable(t, "7")

	first, err := f.svc.Start(ctx, startInput("7", "fp-1"))
	require.NoError(t, err)

	f.advance(5 * time.Hour)
	second, err := f.svc.Start(ctx, startInput("7", "fp-1"))
	require.NoError(t, err)
	assert.True(t, second.IsNew)
	assert.NotEqual(t, first.Session.SessionID, second.Session.SessionID)

	old, err := f.repo.FindByID(ctx, first.Session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, enums.SessionStatusClosed, old.Status)
}

func TestStartErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, startInput("99", "fp"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.Start(ctx, StartInput{})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Len(t, typed.Fields(), 2)

	table := f.seedTable(t, "8")
	require.NoError(t, f.tables.Update(ctx, table.ID, map[string]any{"is_active": false}))
	_, err = f.svc.Start(ctx, startInput("8", "fp"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnavailable))
}

func TestValidate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedTable(t, "3")

	started, err := f.svc.Start(ctx, startInput("3", "fp-1"))
	require.NoError(t, err)
	id := started.Session.SessionID

	f.advance(time.Minute)
	res, err := f.svc.Validate(ctx, id, "fp-1")
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.True(t, res.CanOrder)
	assert.True(t, res.DeviceMatch)
	assert.Equal(t, f.now, res.Session.LastActivity)

	res, err = f.svc.Validate(ctx, id, "someone-else")
	require.NoError(t, err)
	assert.False(t, res.DeviceMatch)
	assert.True(t, res.Valid)

	_, err = f.svc.Validate(ctx, uuid.New(), "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	f.advance(4 * time.Hour)
	_, err = f.svc.Validate(ctx, id, "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestValidateBlockedSessionCannotOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedTable(t, "3")

	started, err := f.svc.Start(ctx, startInput("3", "fp-1"))
	require.NoError(t, err)

	session, err := f.repo.FindByID(ctx, started.Session.SessionID)
	require.NoError(t, err)
	session.Flags = append(session.Flags, FlagBlocked)
	require.NoError(t, f.repo.Save(ctx, session))

	res, err := f.svc.Validate(ctx, session.ID, "")
	require.NoError(t, err)
	assert.False(t, res.CanOrder)
}

func TestExtendAndClose(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	table := f.seedTable(t, "4")

	started, err := f.svc.Start(ctx, startInput("4", "fp-1"))
	require.NoError(t, err)
	id := started.Session.SessionID

	f.advance(5 * time.Hour)
	extended, err := f.svc.Extend(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, f.now.Add(4*time.Hour), extended.ExpiryTime.UTC())

	closed, err := f.svc.Close(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, enums.SessionStatusClosed, closed.Status)

	reloaded, err := f.tables.FindByID(ctx, table.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.CurrentSessionID)

	_, err = f.svc.Close(ctx, id)
	require.NoError(t, err)

	_, err = f.svc.Extend(ctx, id)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	_, err = f.svc.Extend(ctx, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestRecordOrderAccumulatesAndFlagsVolume(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedTable(t, "9")

	started, err := f.svc.Start(ctx, startInput("9", "fp-1"))
	require.NoError(t, err)
	id := started.Session.SessionID

	for i := 1; i <= 3; i++ {
		err := f.client.WithTx(ctx, func(tx *gorm.DB) error {
			return f.svc.RecordOrder(ctx, tx, OrderRecord{
				SessionID:    id,
				OrderID:      uuid.New(),
				Amount:       decimal.NewFromInt(25),
				Fingerprint:  "fp-1",
				At:           f.now,
				RecentOrders: int64(i),
			})
		})
		require.NoError(t, err)
	}

	session, err := f.repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, session.OrderCount)
	assert.True(t, session.TotalAmount.Equal(decimal.NewFromInt(75)))
	assert.Len(t, session.OrderIDs, 3)
	assert.Equal(t, 3, session.Devices[0].OrderCount)
	assert.True(t, session.HasFlag(FlagHighOrderVolume))
	require.NotNil(t, session.LastOrderAt)
}

func TestCheckOrderable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	table := f.seedTable(t, "2")
	other := f.seedTable(t, "6")

	started, err := f.svc.Start(ctx, startInput("2", "fp-1"))
	require.NoError(t, err)
	id := started.Session.SessionID

	require.NoError(t, f.svc.CheckOrderable(ctx, nil, id, table.ID))

	err = f.svc.CheckOrderable(ctx, nil, id, other.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	err = f.svc.CheckOrderable(ctx, nil, uuid.New(), table.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	f.advance(4*time.Hour + time.Second)
	err = f.svc.CheckOrderable(ctx, nil, id, table.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestCloseExpiredAndCloseForTable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	expiring := f.seedTable(t, "1")
	busy := f.seedTable(t, "2")

	stale, err := f.svc.Start(ctx, startInput("1", "fp-1"))
	require.NoError(t, err)

	f.advance(3 * time.Hour)
	fresh, err := f.svc.Start(ctx, startInput("2", "fp-2"))
	require.NoError(t, err)

	f.advance(90 * time.Minute)
	closed, err := f.svc.CloseExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	reloaded, err := f.tables.FindByID(ctx, expiring.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.CurrentSessionID)

	session, err := f.repo.FindByID(ctx, stale.Session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, enums.SessionStatusClosed, session.Status)

	live, err := f.repo.LiveSessionIDs(ctx, f.now)
	require.NoError(t, err)
	assert.Contains(t, live, fresh.Session.SessionID)
	assert.NotContains(t, live, stale.Session.SessionID)

	var count int
	require.NoError(t, f.client.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		count, err = f.svc.CloseForTable(ctx, tx, busy.ID, f.now)
		return err
	}))
	assert.Equal(t, 1, count)
}

func TestRegisterDeviceParsesUserAgent(t *testing.T) {
	now := time.Now().UTC()
	devices, added := registerDevice(nil, DeviceInfo{Fingerprint: "fp", UserAgent: chromeAndroid}, now)
	require.True(t, added)
	require.Len(t, devices, 1)
	assert.Equal(t, "Chrome 120.0.6099.144", devices[0].Browser)
	assert.Contains(t, devices[0].OS, "Android")
	assert.True(t, devices[0].IsMobile)

	devices, added = registerDevice(devices, DeviceInfo{Fingerprint: "fp", IPAddress: "10.1.1.1"}, now.Add(time.Minute))
	assert.False(t, added)
	assert.Equal(t, 2, devices[0].VisitCount)
	assert.Equal(t, "10.1.1.1", devices[0].IPAddress)
	assert.Equal(t, "Chrome 120.0.6099.144", devices[0].Browser)
}
