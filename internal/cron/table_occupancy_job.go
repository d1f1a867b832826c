package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/ardacaliskaan/meva-qr-sub000/internal/orders"
	"github.com/ardacaliskaan/meva-qr-sub000/internal/sessions"
	"github.com/ardacaliskaan/meva-qr-sub000/internal/tables"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/db"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/db/models"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/enums"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/logger"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/metrics"
)

const tableOccupancyJobName = "table-occupancy"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// TableOccupancyJobParams configure the occupancy reconciler.
type TableOccupancyJobParams struct {
	Logger   *logger.Logger
	DB       txRunner
	Tables   tables.Repository
	Orders   orders.Repository
	Sessions sessions.Repository
	Metrics  *metrics.CronJobMetrics
	Clock    func() time.Time
}

type tableOccupancyJob struct {
	logg     *logger.Logger
	db       txRunner
	tables   tables.Repository
	orders   orders.Repository
	sessions sessions.Repository
	metrics  *metrics.CronJobMetrics
	now      func() time.Time
}

// NewTableOccupancyJob builds the job that re-derives table status from
// non-terminal orders and live sessions.
func NewTableOccupancyJob(params TableOccupancyJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Tables == nil || params.Orders == nil || params.Sessions == nil {
		return nil, fmt.Errorf("tables, orders and sessions repositories required")
	}
	now := params.Clock
	if now == nil {
		now = time.Now
	}
	return &tableOccupancyJob{
		logg:     params.Logger,
		db:       params.DB,
		tables:   params.Tables,
		orders:   params.Orders,
		sessions: params.Sessions,
		metrics:  params.Metrics,
		now:      now,
	}, nil
}

func (j *tableOccupancyJob) Name() string { return tableOccupancyJobName }

// Run compares a snapshot of every table against its orders and session, then
// re-checks each drifted table under a row lock before fixing it.
func (j *tableOccupancyJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	all, err := j.tables.List(ctx)
	if err != nil {
		return fmt.Errorf("list tables: %w", err)
	}
	counts, err := j.tables.ActiveOrderCounts(ctx)
	if err != nil {
		return fmt.Errorf("count active orders: %w", err)
	}
	live, err := j.sessions.LiveSessionIDs(ctx, now)
	if err != nil {
		return fmt.Errorf("load live sessions: %w", err)
	}

	var errs error
	fixed := 0
	for _, table := range all {
		if !drifted(table, counts[table.ID] > 0, hasLiveSession(table, live)) {
			continue
		}
		changed, err := j.reconcile(ctx, table.Number, now)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("table %s: %w", table.Number, err))
			continue
		}
		if changed {
			fixed++
			j.logg.Warn(j.logg.WithTableNumber(ctx, table.Number), "table occupancy drift corrected")
		}
	}
	j.metrics.AddFixed(tableOccupancyJobName, fixed)
	return errs
}

func (j *tableOccupancyJob) reconcile(ctx context.Context, number string, now time.Time) (bool, error) {
	changed := false
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		tableRepo := j.tables.WithTx(tx)
		table, err := tableRepo.FindByNumberForUpdate(ctx, number)
		if err != nil {
			return err
		}
		active, err := j.orders.WithTx(tx).CountActiveByTable(ctx, table.ID)
		if err != nil {
			return err
		}
		sessionLive := false
		if table.CurrentSessionID != nil {
			session, err := j.sessions.WithTx(tx).FindByID(ctx, *table.CurrentSessionID)
			switch {
			case err == nil:
				sessionLive = session.IsLive(now)
			case !db.IsNotFound(err):
				return err
			}
		}
		occupied := active > 0 || sessionLive
		switch {
		case occupied && table.Status != enums.TableStatusOccupied:
			changed = true
			return tableRepo.SetStatus(ctx, table.ID, enums.TableStatusOccupied)
		case !occupied && table.Status == enums.TableStatusOccupied:
			changed = true
			return tableRepo.MarkEmpty(ctx, table.ID, now)
		case !occupied && table.CurrentSessionID != nil:
			changed = true
			return tableRepo.ClearSession(ctx, table.ID, *table.CurrentSessionID)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

// drifted reports whether the stored status or session pointer disagrees with
// what the table's orders and session imply.
func drifted(table models.RestaurantTable, hasOrders, sessionLive bool) bool {
	occupied := hasOrders || sessionLive
	if occupied != (table.Status == enums.TableStatusOccupied) {
		return true
	}
	return !occupied && table.CurrentSessionID != nil
}

func hasLiveSession(table models.RestaurantTable, live map[uuid.UUID]struct{}) bool {
	if table.CurrentSessionID == nil {
		return false
	}
	_, ok := live[*table.CurrentSessionID]
	return ok
}
