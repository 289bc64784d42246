// Package query implements the read-only HTTP surface over projection
// state (C10): repository, stats, commit-history, branch and file-change
// endpoints (the query actions in pkg/subject without a route here are
// GetCommit, GetTag and ListTags), plus the supplemented
// /v1/projections/status endpoint surfacing ProjectionStatus.
//
// Grounded on apps/discovery-service's echo route-registration idiom and
// apps/public-api-service's SDKHandler redis read-through cache.
package query

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/arc-self/git-domain/pkg/eventlog"
	"github.com/arc-self/git-domain/pkg/projection"
	"github.com/arc-self/git-domain/pkg/supervision"
)

// Projections bundles the read models the query layer serves. All fields
// are read-only from this package's perspective — the projection engine
// is the sole writer.
type Projections struct {
	Stats   *projection.RepositoryStatsProjection
	List    *projection.RepositoryListProjection
	History *projection.CommitHistoryProjection
	Branch  *projection.BranchStatusProjection
	File    *projection.FileChangeProjection
}

// StatusSource reports every registered projection's current runtime
// status, satisfied by *projection.Engine.StatusAll.
type StatusSource func() map[string]projection.Status

// Handler serves the read-only query API.
type Handler struct {
	projections Projections
	statusOf    StatusSource
	redis       *redis.Client
	logger      *zap.Logger
	discovery   *supervision.Discovery
	eventLog    *eventlog.Log
}

// NewHandler builds a query Handler. redisClient may be nil, in which case
// every request bypasses the cache and reads projection state directly.
func NewHandler(projections Projections, statusOf StatusSource, redisClient *redis.Client, logger *zap.Logger) *Handler {
	return &Handler{projections: projections, statusOf: statusOf, redis: redisClient, logger: logger}
}

// WithDiscovery attaches a peer-service discovery client, enabling the
// /v1/discovery/:service endpoint. Optional: without it, that route
// responds 503.
func (h *Handler) WithDiscovery(d *supervision.Discovery) *Handler {
	h.discovery = d
	return h
}

// WithEventLog attaches the raw event log, enabling the
// /v1/correlations/:id debug trace endpoint. Optional: without it, that
// route responds 503.
func (h *Handler) WithEventLog(log *eventlog.Log) *Handler {
	h.eventLog = log
	return h
}

// Register mounts the query routes on the provided Echo instance.
func (h *Handler) Register(e *echo.Echo) {
	v1 := e.Group("/v1")
	v1.GET("/repositories", h.listRepositories)
	v1.GET("/repositories/:id", h.getRepository)
	v1.GET("/repositories/:id/stats", h.getRepositoryStats)
	v1.GET("/repositories/:id/commits", h.getCommitHistory)
	v1.GET("/repositories/:id/branches", h.listBranches)
	v1.GET("/repositories/:id/branches/:name", h.getBranch)
	v1.GET("/files/*", h.getFileChanges)
	v1.GET("/projections/status", h.getProjectionStatus)
	v1.GET("/discovery/:service", h.discoverService)
	v1.GET("/discovery/:service/health", h.checkServiceHealth)
	v1.GET("/correlations/:id", h.traceCorrelation)
}

func (h *Handler) listRepositories(c echo.Context) error {
	ctx, span := otel.Tracer("git-domain/query").Start(c.Request().Context(), "query.ListRepositories")
	defer span.End()

	if substr := c.QueryParam("remote_url_contains"); substr != "" {
		matches := h.projections.List.ScanByRemoteURLSubstring(substr)
		return c.JSON(http.StatusOK, matches)
	}

	all, _ := readThrough(ctx, h.redis, h.logger, "query:repositories:all", func() ([]projection.RepositorySummary, bool) {
		return h.projections.List.All(), true
	})
	return c.JSON(http.StatusOK, all)
}

func (h *Handler) getRepository(c echo.Context) error {
	ctx, span := otel.Tracer("git-domain/query").Start(c.Request().Context(), "query.GetRepository")
	defer span.End()

	id := c.Param("id")
	summary, ok := readThrough(ctx, h.redis, h.logger, "query:repository:"+id, func() (projection.RepositorySummary, bool) {
		return h.projections.List.Get(id)
	})
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "repository not found"})
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) getRepositoryStats(c echo.Context) error {
	ctx, span := otel.Tracer("git-domain/query").Start(c.Request().Context(), "query.GetRepositoryStats")
	defer span.End()

	id := c.Param("id")
	stats, ok := readThrough(ctx, h.redis, h.logger, "query:repository-stats:"+id, func() (projection.RepositoryStats, bool) {
		return h.projections.Stats.Get(id)
	})
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "repository not found"})
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) getCommitHistory(c echo.Context) error {
	_, span := otel.Tracer("git-domain/query").Start(c.Request().Context(), "query.GetCommitHistory")
	defer span.End()

	id := c.Param("id")
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid limit"})
		}
		limit = parsed
	}

	history := h.projections.History.History(id, limit)
	return c.JSON(http.StatusOK, history)
}

func (h *Handler) listBranches(c echo.Context) error {
	_, span := otel.Tracer("git-domain/query").Start(c.Request().Context(), "query.ListBranches")
	defer span.End()

	id := c.Param("id")
	return c.JSON(http.StatusOK, h.projections.Branch.Branches(id))
}

func (h *Handler) getBranch(c echo.Context) error {
	_, span := otel.Tracer("git-domain/query").Start(c.Request().Context(), "query.GetBranch")
	defer span.End()

	id, name := c.Param("id"), c.Param("name")
	branches := h.projections.Branch.Branches(id)
	info, ok := branches[name]
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "branch not found"})
	}
	return c.JSON(http.StatusOK, info)
}

func (h *Handler) getFileChanges(c echo.Context) error {
	_, span := otel.Tracer("git-domain/query").Start(c.Request().Context(), "query.GetFileChanges")
	defer span.End()

	path := c.Param("*")
	if path == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file path is required"})
	}

	changes := h.projections.File.ChangesForPath(path)
	stats := projection.Statistics(changes)
	return c.JSON(http.StatusOK, map[string]any{
		"changes":    changes,
		"statistics": stats,
		"renames":    h.projections.File.RenamesForPath(path),
	})
}

func (h *Handler) getProjectionStatus(c echo.Context) error {
	_, span := otel.Tracer("git-domain/query").Start(c.Request().Context(), "query.GetProjectionStatus")
	defer span.End()

	if h.statusOf == nil {
		return c.JSON(http.StatusOK, map[string]projection.Status{})
	}
	return c.JSON(http.StatusOK, h.statusOf())
}

// discoverService requests another service's ServiceInfo over NATS
// request/reply, per original_source/src/nats/health.rs's ServiceDiscovery.
func (h *Handler) discoverService(c echo.Context) error {
	_, span := otel.Tracer("git-domain/query").Start(c.Request().Context(), "query.DiscoverService")
	defer span.End()

	if h.discovery == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "service discovery not configured"})
	}

	name := c.Param("service")
	if cached := h.discovery.Cached(name); len(cached) > 0 {
		return c.JSON(http.StatusOK, cached)
	}

	info, err := h.discovery.Discover(name, 2*time.Second)
	if err != nil {
		h.logger.Warn("service discovery failed", zap.String("service", name), zap.Error(err))
		return c.JSON(http.StatusNotFound, map[string]string{"error": "service not found"})
	}
	return c.JSON(http.StatusOK, info)
}

// checkServiceHealth requests a peer service's aggregated health over
// NATS request/reply, per original_source/src/nats/health.rs's
// ServiceDiscovery::check_health.
func (h *Handler) checkServiceHealth(c echo.Context) error {
	_, span := otel.Tracer("git-domain/query").Start(c.Request().Context(), "query.CheckServiceHealth")
	defer span.End()

	if h.discovery == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "service discovery not configured"})
	}

	name := c.Param("service")
	result, err := h.discovery.CheckHealth(name, 2*time.Second)
	if err != nil {
		h.logger.Warn("peer health check failed", zap.String("service", name), zap.Error(err))
		return c.JSON(http.StatusNotFound, map[string]string{"error": "service not found"})
	}
	return c.JSON(http.StatusOK, result)
}

// traceCorrelation returns every event sharing a correlation ID, a debug
// trace over the raw log rather than any one projection's derived view.
func (h *Handler) traceCorrelation(c echo.Context) error {
	ctx, span := otel.Tracer("git-domain/query").Start(c.Request().Context(), "query.TraceCorrelation")
	defer span.End()

	if h.eventLog == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "event log not configured"})
	}

	envs, err := h.eventLog.LoadByCorrelation(ctx, c.Param("id"))
	if err != nil {
		h.logger.Error("correlation trace failed", zap.String("correlation_id", c.Param("id")), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "trace failed"})
	}
	return c.JSON(http.StatusOK, envs)
}
