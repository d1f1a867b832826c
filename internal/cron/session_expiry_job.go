package cron

import (
	"context"
	"fmt"

	"github.com/ardacaliskaan/meva-qr-sub000/pkg/logger"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/metrics"
)

const (
	sessionExpiryJobName = "session-expiry"
	maxExpirySweeps      = 20
)

type sessionExpirer interface {
	CloseExpired(ctx context.Context) (int, error)
}

// SessionExpiryJobParams configure the session expiry sweep.
type SessionExpiryJobParams struct {
	Logger   *logger.Logger
	Sessions sessionExpirer
	Metrics  *metrics.CronJobMetrics
}

type sessionExpiryJob struct {
	logg     *logger.Logger
	sessions sessionExpirer
	metrics  *metrics.CronJobMetrics
}

// NewSessionExpiryJob builds the job that closes sessions past their expiry.
func NewSessionExpiryJob(params SessionExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session service required")
	}
	return &sessionExpiryJob{
		logg:     params.Logger,
		sessions: params.Sessions,
		metrics:  params.Metrics,
	}, nil
}

func (j *sessionExpiryJob) Name() string { return sessionExpiryJobName }

// Run sweeps in batches until a sweep closes nothing.
func (j *sessionExpiryJob) Run(ctx context.Context) error {
	total := 0
	for i := 0; i < maxExpirySweeps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		closed, err := j.sessions.CloseExpired(ctx)
		if err != nil {
			j.metrics.AddFixed(sessionExpiryJobName, total)
			return fmt.Errorf("close expired sessions: %w", err)
		}
		if closed == 0 {
			break
		}
		total += closed
	}
	j.metrics.AddFixed(sessionExpiryJobName, total)
	if total > 0 {
		j.logg.Info(j.logg.WithField(ctx, "closed", total), "expired sessions closed")
	}
	return nil
}
