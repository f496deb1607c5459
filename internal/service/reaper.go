package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"go-gin-auth-service/internal/core/metrics"
	"go-gin-auth-service/internal/domain"
	"go-gin-auth-service/internal/events"
)

const (
	SweepExpired       = "expired"
	SweepStaleInactive = "stale_inactive"

	DefaultRetention = 30 * 24 * time.Hour
)

type ReaperOpts struct {
	Interval     time.Duration
	Retention    time.Duration
	SweepTimeout time.Duration
}

// Reaper deletes expired token records and records that have been inactive
// longer than the retention window. Token validity never depends on it.
type Reaper struct {
	store   domain.TokenSweeper
	opts    ReaperOpts
	events  events.Publisher
	metrics *metrics.Metrics
	log     *zap.Logger
	now     func() time.Time
}

func NewReaper(store domain.TokenSweeper, o ReaperOpts, pub events.Publisher, m *metrics.Metrics, log *zap.Logger) *Reaper {
	if o.Interval <= 0 {
		o.Interval = time.Hour
	}
	if o.Retention <= 0 {
		o.Retention = DefaultRetention
	}
	if o.SweepTimeout <= 0 {
		o.SweepTimeout = time.Minute
	}
	if pub == nil {
		pub = events.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Reaper{
		store:   store,
		opts:    o,
		events:  pub,
		metrics: m,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *Reaper) SweepExpired(ctx context.Context) (int64, error) {
	return r.store.DeleteExpired(ctx, r.now())
}

func (r *Reaper) SweepStaleInactive(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		retention = r.opts.Retention
	}
	return r.store.DeleteInactiveBefore(ctx, r.now().Add(-retention))
}

type SweepResult struct {
	Expired       int64 `json:"expired"`
	StaleInactive int64 `json:"stale_inactive"`
}

// SweepAll runs both sweeps in order. A failure in one does not skip the
// other; the errors are joined.
func (r *Reaper) SweepAll(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	var errs []error

	n, err := r.SweepExpired(ctx)
	r.record(ctx, SweepExpired, n, err)
	if err != nil {
		errs = append(errs, err)
	}
	res.Expired = n

	n, err = r.SweepStaleInactive(ctx, r.opts.Retention)
	r.record(ctx, SweepStaleInactive, n, err)
	if err != nil {
		errs = append(errs, err)
	}
	res.StaleInactive = n

	return res, errors.Join(errs...)
}

// Run sweeps once per interval until ctx is cancelled. The first sweep
// happens one interval after start. A sweep already in progress when ctx is
// cancelled runs to completion, bounded by SweepTimeout.
func (r *Reaper) Run(ctx context.Context) error {
	r.log.Info("token reaper started",
		zap.Duration("interval", r.opts.Interval),
		zap.Duration("retention", r.opts.Retention))
	t := time.NewTicker(r.opts.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("token reaper stopped")
			return nil
		case <-t.C:
			r.cycle(ctx)
		}
	}
}

func (r *Reaper) cycle(parent context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), r.opts.SweepTimeout)
	defer cancel()

	res, err := r.SweepAll(ctx)
	if err != nil {
		r.log.Error("token sweep failed", zap.Error(err))
	}
	if res.Expired > 0 || res.StaleInactive > 0 {
		r.log.Info("token sweep",
			zap.Int64("expired", res.Expired),
			zap.Int64("stale_inactive", res.StaleInactive))
	}
}

func (r *Reaper) record(ctx context.Context, sweep string, n int64, err error) {
	if err != nil {
		r.metrics.SweepFailed(sweep)
		return
	}
	r.metrics.Reaped(sweep, n)
	if n > 0 {
		if perr := r.events.Publish(ctx, events.Event{Type: events.TypeTokensReaped, Sweep: sweep, Count: n}); perr != nil {
			r.log.Warn("publish event failed", zap.String("type", events.TypeTokensReaped), zap.Error(perr))
		}
	}
}
