// Package supervision implements service discovery and health reporting
// (C12): a 30-second heartbeat publisher on _SERVICES.<name>.<instance>
// and a request/reply health endpoint on _HEALTH.<name> that aggregates
// registered HealthChecks into an overall ServiceStatus.
//
// Grounded on original_source/src/nats/health.rs's HealthService and
// ServiceDiscovery, ported from async-nats's subscriber-stream idiom to
// nats.go's synchronous Subscribe + msg.Respond.
package supervision

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// ServiceStatus ranks from best to worst: Healthy < Degraded < Unhealthy <
// Stopping. Aggregation always takes the worst status observed.
type ServiceStatus string

const (
	StatusHealthy   ServiceStatus = "healthy"
	StatusDegraded  ServiceStatus = "degraded"
	StatusUnhealthy ServiceStatus = "unhealthy"
	StatusStopping  ServiceStatus = "stopping"
)

var statusRank = map[ServiceStatus]int{
	StatusHealthy:   0,
	StatusDegraded:  1,
	StatusUnhealthy: 2,
	StatusStopping:  3,
}

// worse returns whichever of a, b ranks worse.
func worse(a, b ServiceStatus) ServiceStatus {
	if statusRank[b] > statusRank[a] {
		return b
	}
	return a
}

// ServiceInfo is published on every heartbeat and returned by discovery,
// per original_source/src/nats/health.rs's ServiceInfo.
type ServiceInfo struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Version       string            `json:"version"`
	Description   string            `json:"description,omitempty"`
	Endpoints     []string          `json:"endpoints"`
	Metadata      map[string]string `json:"metadata"`
	LastHeartbeat time.Time         `json:"last_heartbeat"`
	Status        ServiceStatus     `json:"status"`
}

// ComponentHealth is one named component's check result.
type ComponentHealth struct {
	Name    string             `json:"name"`
	Status  ServiceStatus      `json:"status"`
	Message string             `json:"message,omitempty"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

// HealthCheckResult is the aggregated response to a _HEALTH.<name> request.
type HealthCheckResult struct {
	Status    ServiceStatus              `json:"status"`
	Checks    map[string]ComponentHealth `json:"checks"`
	Timestamp time.Time                  `json:"timestamp"`
}

// HealthCheck is implemented by anything the Supervisor aggregates into
// the overall health response.
type HealthCheck interface {
	Check(ctx context.Context) ComponentHealth
}

// HealthCheckFunc adapts a function to a HealthCheck.
type HealthCheckFunc func(ctx context.Context) ComponentHealth

func (f HealthCheckFunc) Check(ctx context.Context) ComponentHealth { return f(ctx) }

// Supervisor runs the heartbeat loop and health endpoint for one service
// instance.
type Supervisor struct {
	nc          *nats.Conn
	log         *zap.Logger
	info        ServiceInfo
	heartbeatEvery time.Duration

	mu     sync.RWMutex
	checks map[string]HealthCheck
}

// New builds a Supervisor. info.LastHeartbeat and info.Status are
// overwritten on every beat; callers only need to set the static fields
// (ID, Name, Version, Description, Endpoints, Metadata).
func New(nc *nats.Conn, info ServiceInfo, log *zap.Logger) *Supervisor {
	return &Supervisor{
		nc:             nc,
		log:            log,
		info:           info,
		heartbeatEvery: 30 * time.Second,
		checks:         make(map[string]HealthCheck),
	}
}

// RegisterCheck adds or replaces a named health check.
func (s *Supervisor) RegisterCheck(name string, check HealthCheck) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = check
}

// Start launches the heartbeat loop and health endpoint; both stop when
// ctx is cancelled. Start does not block: it returns an error if the
// health endpoint subscription fails to establish, or nil once both
// goroutines are running.
func (s *Supervisor) Start(ctx context.Context) error {
	sub, err := s.nc.Subscribe(fmt.Sprintf("_HEALTH.%s", s.info.Name), func(msg *nats.Msg) {
		s.handleHealthRequest(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("subscribe to health endpoint: %w", err)
	}

	go func() {
		<-ctx.Done()
		_ = sub.Unsubscribe()
	}()

	go s.runHeartbeat(ctx)
	s.log.Info("supervision started", zap.String("service", s.info.Name), zap.String("instance", s.info.ID))
	return nil
}

func (s *Supervisor) runHeartbeat(ctx context.Context) {
	ticker := time.NewTicker(s.heartbeatEvery)
	defer ticker.Stop()

	subject := fmt.Sprintf("_SERVICES.%s.%s", s.info.Name, s.info.ID)
	for {
		select {
		case <-ctx.Done():
			s.publishStopping(subject)
			return
		case <-ticker.C:
			s.publishHeartbeat(ctx, subject)
		}
	}
}

func (s *Supervisor) publishHeartbeat(ctx context.Context, subject string) {
	result := s.aggregate(ctx)

	s.mu.Lock()
	s.info.LastHeartbeat = time.Now().UTC()
	s.info.Status = result.Status
	payload, err := json.Marshal(s.info)
	s.mu.Unlock()

	if err != nil {
		s.log.Error("failed to marshal heartbeat", zap.Error(err))
		return
	}
	if err := s.nc.Publish(subject, payload); err != nil {
		s.log.Error("failed to publish heartbeat", zap.Error(err))
		return
	}
	s.log.Debug("published heartbeat", zap.String("subject", subject))
}

func (s *Supervisor) publishStopping(subject string) {
	s.mu.Lock()
	s.info.LastHeartbeat = time.Now().UTC()
	s.info.Status = StatusStopping
	payload, err := json.Marshal(s.info)
	s.mu.Unlock()
	if err != nil {
		return
	}
	_ = s.nc.Publish(subject, payload)
}

func (s *Supervisor) handleHealthRequest(ctx context.Context, msg *nats.Msg) {
	result := s.aggregate(ctx)
	payload, err := json.Marshal(result)
	if err != nil {
		payload = []byte(`{}`)
	}
	if msg.Reply != "" {
		if err := s.nc.Publish(msg.Reply, payload); err != nil {
			s.log.Error("failed to send health check response", zap.Error(err))
		}
	}
}

// aggregate runs every registered check and folds them into the overall
// worst-status result, per original_source/src/nats/health.rs's
// perform_health_check.
func (s *Supervisor) aggregate(ctx context.Context) HealthCheckResult {
	s.mu.RLock()
	checks := make(map[string]HealthCheck, len(s.checks))
	for name, c := range s.checks {
		checks[name] = c
	}
	s.mu.RUnlock()

	results := make(map[string]ComponentHealth, len(checks))
	overall := StatusHealthy
	for name, check := range checks {
		health := check.Check(ctx)
		results[name] = health
		overall = worse(overall, health.Status)
	}

	return HealthCheckResult{Status: overall, Checks: results, Timestamp: time.Now().UTC()}
}

// NatsConnectionCheck reports the underlying connection's liveness.
type NatsConnectionCheck struct {
	Conn *nats.Conn
}

func (c NatsConnectionCheck) Check(_ context.Context) ComponentHealth {
	status := StatusHealthy
	if !c.Conn.IsConnected() {
		status = StatusUnhealthy
	}
	return ComponentHealth{
		Name:    "nats_connection",
		Status:  status,
		Message: fmt.Sprintf("connection status: %s", c.Conn.Status()),
	}
}
