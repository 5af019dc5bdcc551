package main

import (
	"context"
	"time"

	appctx "salesdocs/internal/core/context"
	"salesdocs/pkg/logger"
)

// WarrantyRefresher persists the derived warranty statuses.
type WarrantyRefresher interface {
	RefreshStatuses(ctx context.Context, now time.Time) (int64, error)
}

// IdempotencyCleaner drops expired idempotency keys.
type IdempotencyCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// Maintenance runs the periodic jobs of the worker.
type Maintenance struct {
	warranties  WarrantyRefresher
	idempotency IdempotencyCleaner
	interval    time.Duration
	log         *logger.Logger
	now         func() time.Time
}

func NewMaintenance(w WarrantyRefresher, i IdempotencyCleaner, interval time.Duration, log *logger.Logger) *Maintenance {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Maintenance{
		warranties:  w,
		idempotency: i,
		interval:    interval,
		log:         log.WithComponent("maintenance"),
		now:         time.Now,
	}
}

// Run executes one pass immediately, then one per interval until ctx is done.
func (m *Maintenance) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.runOnce(ctx)
		}
	}
}

func (m *Maintenance) runOnce(ctx context.Context) {
	ctx = appctx.WithTrace(ctx, appctx.NewTraceContext())
	log := m.log.WithContext(ctx)

	if n, err := m.warranties.RefreshStatuses(ctx, m.now()); err != nil {
		log.Errorw("warranty refresh failed", "error", err)
	} else if n > 0 {
		log.Infow("warranties expired", "count", n)
	}

	if n, err := m.idempotency.CleanupExpired(ctx); err != nil {
		log.Errorw("idempotency cleanup failed", "error", err)
	} else if n > 0 {
		log.Debugw("idempotency keys removed", "count", n)
	}
}
