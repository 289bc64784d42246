package supervision

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// Discovery queries and caches other services' ServiceInfo over NATS
// request/reply, per original_source/src/nats/health.rs's
// ServiceDiscovery.
type Discovery struct {
	nc *nats.Conn

	mu    sync.RWMutex
	cache map[string][]ServiceInfo
}

// NewDiscovery builds a Discovery client.
func NewDiscovery(nc *nats.Conn) *Discovery {
	return &Discovery{nc: nc, cache: make(map[string][]ServiceInfo)}
}

// Discover requests service info for serviceName and caches the result.
func (d *Discovery) Discover(serviceName string, timeout time.Duration) (ServiceInfo, error) {
	subject := fmt.Sprintf("_SERVICES.%s.>", serviceName)
	msg, err := d.nc.Request(subject, nil, timeout)
	if err != nil {
		return ServiceInfo{}, fmt.Errorf("service discovery for %q failed: %w", serviceName, err)
	}

	var info ServiceInfo
	if err := json.Unmarshal(msg.Data, &info); err != nil {
		return ServiceInfo{}, fmt.Errorf("decode service info: %w", err)
	}

	d.mu.Lock()
	d.cache[serviceName] = append(d.cache[serviceName], info)
	d.mu.Unlock()

	return info, nil
}

// Cached returns previously discovered ServiceInfo for serviceName without
// issuing a new request.
func (d *Discovery) Cached(serviceName string) []ServiceInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]ServiceInfo, len(d.cache[serviceName]))
	copy(out, d.cache[serviceName])
	return out
}

// CheckHealth requests the aggregated health of serviceName.
func (d *Discovery) CheckHealth(serviceName string, timeout time.Duration) (HealthCheckResult, error) {
	subject := fmt.Sprintf("_HEALTH.%s", serviceName)
	msg, err := d.nc.Request(subject, nil, timeout)
	if err != nil {
		return HealthCheckResult{}, fmt.Errorf("health check for %q failed: %w", serviceName, err)
	}

	var result HealthCheckResult
	if err := json.Unmarshal(msg.Data, &result); err != nil {
		return HealthCheckResult{}, fmt.Errorf("decode health check result: %w", err)
	}
	return result, nil
}
