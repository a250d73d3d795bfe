// Package refresher re-warms the dashboard dataset cache on an interval so
// interactive requests rarely pay for a provider pull.
package refresher

import (
	"context"
	"errors"
	"time"

	dashboarddomain "github.com/smallbiznis/vendhub/internal/dashboard/domain"
	obsmetrics "github.com/smallbiznis/vendhub/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("invalid_refresher_config")

type Params struct {
	fx.In

	Log       *zap.Logger
	Dashboard dashboarddomain.Service
	Metrics   *obsmetrics.ReportMetrics
	Config    Config `optional:"true"`
}

type Refresher struct {
	log       *zap.Logger
	cfg       Config
	dashboard dashboarddomain.Service
	metrics   *obsmetrics.ReportMetrics
}

func New(p Params) (*Refresher, error) {
	if p.Log == nil || p.Dashboard == nil {
		return nil, ErrInvalidConfig
	}
	return &Refresher{
		log:       p.Log.Named("refresher").With(zap.String("component", "refresher")),
		cfg:       p.Config.withDefaults(),
		dashboard: p.Dashboard,
		metrics:   p.Metrics,
	}, nil
}

// RunOnce performs a single forced refresh bounded by the configured timeout.
func (r *Refresher) RunOnce(parent context.Context) error {
	ctx, cancel := context.WithTimeout(parent, r.cfg.Timeout)
	defer cancel()

	start := time.Now()
	r.metrics.IncRefreshRun()
	err := r.dashboard.Refresh(ctx)
	r.metrics.ObserveRefreshDuration(time.Since(start))

	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		r.log.Warn("refresh timed out",
			zap.Duration("timeout", r.cfg.Timeout),
			zap.Error(err),
		)
		return nil
	}
	r.metrics.IncRefreshError()
	return err
}

func (r *Refresher) RunForever(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := r.RunOnce(ctx); err != nil {
			r.log.Warn("refresh run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
