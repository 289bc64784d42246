package supervision

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ProjectionStatus is the minimal shape sweep needs from a projection
// engine, kept as a local type to avoid importing pkg/projection here.
type ProjectionStatus struct {
	Name      string
	Position  uint64
	IsRunning bool
}

// StatusSource reports every projection's status; cmd/git-domain-service
// adapts *projection.Engine.StatusAll to it.
type StatusSource func() map[string]ProjectionStatus

// LatestSequenceFunc reports the event log's current last sequence;
// cmd/git-domain-service adapts *eventlog.Log.Info to it.
type LatestSequenceFunc func(ctx context.Context) (uint64, error)

// LagThresholds tunes when the projection-lag sweep degrades or fails the
// aggregated health check.
type LagThresholds struct {
	Degraded  uint64
	Unhealthy uint64
}

// DefaultLagThresholds flags a projection degraded once it trails 1000
// events behind the log and unhealthy once it trails 10000.
func DefaultLagThresholds() LagThresholds {
	return LagThresholds{Degraded: 1000, Unhealthy: 10000}
}

// ProjectionLagCheck is a HealthCheck that recomputes projection lag on
// every Check call, whether from a health request or from the cron-driven
// sweep (see NewProjectionLagSweep); no result is cached between calls.
type ProjectionLagCheck struct {
	statusOf   StatusSource
	latestSeq  LatestSequenceFunc
	thresholds LagThresholds
	log        *zap.Logger
}

// NewProjectionLagCheck builds a ProjectionLagCheck.
func NewProjectionLagCheck(statusOf StatusSource, latestSeq LatestSequenceFunc, thresholds LagThresholds, log *zap.Logger) *ProjectionLagCheck {
	return &ProjectionLagCheck{statusOf: statusOf, latestSeq: latestSeq, thresholds: thresholds, log: log}
}

// Check computes per-projection lag against the event log's latest
// sequence and reports the worst bucket as the component status.
func (c *ProjectionLagCheck) Check(ctx context.Context) ComponentHealth {
	latest, err := c.latestSeq(ctx)
	if err != nil {
		return ComponentHealth{
			Name:    "projection_lag",
			Status:  StatusUnhealthy,
			Message: fmt.Sprintf("failed to read event log position: %v", err),
		}
	}

	statuses := c.statusOf()
	metrics := make(map[string]float64, len(statuses))
	overall := StatusHealthy
	var worstLag uint64

	for name, st := range statuses {
		var lag uint64
		if latest > st.Position {
			lag = latest - st.Position
		}
		metrics[name] = float64(lag)
		if lag > worstLag {
			worstLag = lag
		}

		switch {
		case lag >= c.thresholds.Unhealthy:
			overall = worse(overall, StatusUnhealthy)
		case lag >= c.thresholds.Degraded:
			overall = worse(overall, StatusDegraded)
		case !st.IsRunning:
			overall = worse(overall, StatusDegraded)
		}
	}

	return ComponentHealth{
		Name:    "projection_lag",
		Status:  overall,
		Message: fmt.Sprintf("worst observed lag: %d events", worstLag),
		Metrics: metrics,
	}
}

// ProjectionLagSweep runs ProjectionLagCheck.Check on a schedule via
// robfig/cron, logging any degradation so operators see it in the service
// logs even between _HEALTH.<name> polls.
type ProjectionLagSweep struct {
	check *ProjectionLagCheck
	cron  *cron.Cron
	log   *zap.Logger
}

// NewProjectionLagSweep builds a sweep that runs check on schedule (a
// standard five-field cron expression, e.g. "*/1 * * * *" for every
// minute).
func NewProjectionLagSweep(check *ProjectionLagCheck, schedule string, log *zap.Logger) (*ProjectionLagSweep, error) {
	c := cron.New()
	sweep := &ProjectionLagSweep{check: check, cron: c, log: log}

	if _, err := c.AddFunc(schedule, sweep.run); err != nil {
		return nil, fmt.Errorf("schedule projection lag sweep %q: %w", schedule, err)
	}
	return sweep, nil
}

func (s *ProjectionLagSweep) run() {
	result := s.check.Check(context.Background())
	if result.Status != StatusHealthy {
		s.log.Warn("projection lag sweep found degraded projections",
			zap.String("status", string(result.Status)),
			zap.String("message", result.Message))
	} else {
		s.log.Debug("projection lag sweep clean", zap.String("message", result.Message))
	}
}

// Start begins the cron schedule.
func (s *ProjectionLagSweep) Start() { s.cron.Start() }

// Stop halts the cron schedule and waits for any running job to finish.
func (s *ProjectionLagSweep) Stop() { <-s.cron.Stop().Done() }
