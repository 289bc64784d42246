package supervision

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestProjectionLagCheckHealthyWhenCaughtUp(t *testing.T) {
	statusOf := func() map[string]ProjectionStatus {
		return map[string]ProjectionStatus{"repository_stats": {Name: "repository_stats", Position: 100, IsRunning: true}}
	}
	latest := func(_ context.Context) (uint64, error) { return 100, nil }

	check := NewProjectionLagCheck(statusOf, latest, DefaultLagThresholds(), zap.NewNop())
	result := check.Check(context.Background())
	assert.Equal(t, StatusHealthy, result.Status)
}

func TestProjectionLagCheckDegradedBeyondThreshold(t *testing.T) {
	statusOf := func() map[string]ProjectionStatus {
		return map[string]ProjectionStatus{"repository_stats": {Name: "repository_stats", Position: 0, IsRunning: true}}
	}
	latest := func(_ context.Context) (uint64, error) { return 1500, nil }

	check := NewProjectionLagCheck(statusOf, latest, DefaultLagThresholds(), zap.NewNop())
	result := check.Check(context.Background())
	assert.Equal(t, StatusDegraded, result.Status)
}

func TestProjectionLagCheckUnhealthyOnLogReadError(t *testing.T) {
	statusOf := func() map[string]ProjectionStatus { return nil }
	latest := func(_ context.Context) (uint64, error) { return 0, errors.New("stream info unavailable") }

	check := NewProjectionLagCheck(statusOf, latest, DefaultLagThresholds(), zap.NewNop())
	result := check.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, result.Status)
}

func TestNewProjectionLagSweepRejectsInvalidSchedule(t *testing.T) {
	check := NewProjectionLagCheck(func() map[string]ProjectionStatus { return nil }, func(context.Context) (uint64, error) { return 0, nil }, DefaultLagThresholds(), zap.NewNop())
	_, err := NewProjectionLagSweep(check, "not a cron expression", zap.NewNop())
	assert.Error(t, err)
}
