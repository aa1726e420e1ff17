package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"treasury-analytics/internal/analytics"
	"treasury-analytics/internal/cache"
	"treasury-analytics/internal/logger"
	"treasury-analytics/internal/models"
)

// Pinger checks a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DashboardCache stores composed dashboards between requests.
type DashboardCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
}

// Handler serves the analytics endpoints.
type Handler struct {
	svc   *analytics.Service
	db    Pinger
	cache DashboardCache
	loc   *time.Location
	log   zerolog.Logger
}

// NewHandler wires the analytics service to HTTP. db and dashboards may be nil.
func NewHandler(svc *analytics.Service, db Pinger, dashboards DashboardCache, loc *time.Location, log zerolog.Logger) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{svc: svc, db: db, cache: dashboards, loc: loc, log: log}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	status := analytics.StatusCode(err)
	if status >= http.StatusInternalServerError {
		log := logger.FromContext(c.Request.Context())
		log.Error().Err(err).Str("path", c.FullPath()).Msg("analytics request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (h *Handler) filters(c *gin.Context) (models.Filters, bool) {
	f, err := parseFilters(c, h.loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return f, false
	}
	return f, true
}

// healthCheck handles the health check endpoint
func (h *Handler) healthCheck(c *gin.Context) {
	if h.db != nil {
		if err := h.db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "treasury-analytics",
	})
}

func (h *Handler) getOverview(c *gin.Context) {
	f, ok := h.filters(c)
	if !ok {
		return
	}
	m, err := h.svc.GetOverviewMetrics(c.Request.Context(), c.Param("clientId"), f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) getCashFlow(c *gin.Context) {
	f, ok := h.filters(c)
	if !ok {
		return
	}
	g := analytics.ParseGranularity(c.DefaultQuery("period", string(models.Monthly)))
	cf, err := h.svc.GetCashFlowAnalytics(c.Request.Context(), c.Param("clientId"), f, g)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cf)
}

func (h *Handler) getLiquidity(c *gin.Context) {
	snap, err := h.svc.GetLiquidityAnalytics(c.Request.Context(), c.Param("clientId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *Handler) getCategories(c *gin.Context) {
	f, ok := h.filters(c)
	if !ok {
		return
	}
	cats, err := h.svc.GetCategoryAnalytics(c.Request.Context(), c.Param("clientId"), f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

func (h *Handler) getVendors(c *gin.Context) {
	f, ok := h.filters(c)
	if !ok {
		return
	}
	vendors, err := h.svc.GetVendorAnalytics(c.Request.Context(), c.Param("clientId"), f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendors": vendors})
}

func (h *Handler) getPatterns(c *gin.Context) {
	f, ok := h.filters(c)
	if !ok {
		return
	}
	patterns, err := h.svc.GetSpendingPatterns(c.Request.Context(), c.Param("clientId"), f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"patterns": patterns})
}

func (h *Handler) getTrends(c *gin.Context) {
	f, ok := h.filters(c)
	if !ok {
		return
	}
	metric := c.DefaultQuery("metric", string(models.MetricBalance))
	g := analytics.ParseGranularity(c.DefaultQuery("period", string(models.Monthly)))
	points, err := h.svc.GetTrends(c.Request.Context(), c.Param("clientId"), metric, g, f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"metric": metric, "period": g, "trends": points})
}

// getDashboard serves the composed dashboard, with optional caching
func (h *Handler) getDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	clientID := c.Param("clientId")
	dateRange := c.DefaultQuery("dateRange", string(models.Range30Days))
	compareMode := c.DefaultQuery("compareMode", string(models.ComparePrevious))
	key := cache.DashboardKey(clientID, dateRange, compareMode)

	// Try to get from cache
	if h.cache != nil {
		var cached models.Dashboard
		hit, err := h.cache.Get(ctx, key, &cached)
		if err != nil {
			h.log.Warn().Err(err).Str("key", key).Msg("dashboard cache read failed")
		}
		if hit {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	dash, err := h.svc.GetDashboard(ctx, clientID, models.DateRange(dateRange), models.CompareMode(compareMode))
	if err != nil {
		h.writeError(c, err)
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, key, dash); err != nil {
			h.log.Warn().Err(err).Str("key", key).Msg("dashboard cache write failed")
		}
	}

	c.JSON(http.StatusOK, dash)
}

func (h *Handler) getExport(c *gin.Context) {
	f, ok := h.filters(c)
	if !ok {
		return
	}
	clientID := c.Param("clientId")
	data, format, err := h.svc.ExportAnalytics(c.Request.Context(), clientID, c.DefaultQuery("format", "json"), f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="analytics-`+clientID+`.`+string(format)+`"`)
	c.Data(http.StatusOK, format.ContentType(), data)
}
