package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"spareparts/pkg/apperrors"
	"spareparts/pkg/catalog"
	"spareparts/pkg/logger"
	"spareparts/pkg/metrics"
	"spareparts/pkg/query"
)

// Querier answers normalized catalog queries. Both query.Engine and query.Cache satisfy it.
type Querier interface {
	Run(p query.Params) query.Result
	Table() *catalog.Table
}

// Options tunes the middleware chain.
type Options struct {
	CORSOrigin string
	// RateLimitRPM is the per-IP request budget per minute; 0 disables limiting.
	RateLimitRPM   int
	RateLimitBurst int
	// TrustedProxies lists the proxies allowed to set X-Forwarded-For. Empty trusts none,
	// so rate limiting keys on the connection's remote address.
	TrustedProxies []string
}

// Server wires HTTP endpoints to the catalog query engine.
type Server struct {
	catalog Querier
	logger  *slog.Logger
	opts    Options
}

// New builds the server. A nil catalog makes /spare-parts answer 404, and a nil logger discards output.
func New(q Querier, log *slog.Logger, opts Options) *Server {
	if log == nil {
		log = logger.Discard()
	}
	return &Server{
		catalog: q,
		logger:  log,
		opts:    opts,
	}
}

// Handler returns the gin router with all routes and middleware.
func (s *Server) Handler() http.Handler {
	router := gin.New()
	if err := router.SetTrustedProxies(s.opts.TrustedProxies); err != nil {
		s.logger.Warn("invalid trusted proxies, trusting none", "proxies", s.opts.TrustedProxies, "error", err)
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		s.respondError(c, apperrors.Internal(fmt.Errorf("panic: %v", recovered)))
	}))
	router.Use(requestIDMiddleware())
	router.Use(s.accessLogMiddleware())
	router.Use(metricsMiddleware())
	router.Use(corsMiddleware(s.opts.CORSOrigin))
	if s.opts.RateLimitRPM > 0 {
		router.Use(rateLimitMiddleware(s.opts.RateLimitRPM, s.opts.RateLimitBurst))
	}

	router.GET("/", s.index)
	router.GET("/spare-parts", s.listSpareParts)
	router.GET("/health", s.health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.NoRoute(func(c *gin.Context) {
		s.respondError(c, apperrors.NotFound("Not found"))
	})
	return router
}

// index points clients at the REST endpoints.
func (s *Server) index(c *gin.Context) {
	c.String(http.StatusOK, "Use REST")
}

// listSpareParts serves one page of the filtered and sorted catalog.
func (s *Server) listSpareParts(c *gin.Context) {
	if s.catalog == nil {
		s.respondError(c, apperrors.NotFound("Not found"))
		return
	}

	raw := query.RawParams{
		Page:         c.Query("page"),
		Sort:         c.Query("sort"),
		Name:         c.Query("name"),
		SerialNumber: c.Query("sn"),
	}
	if raw.SerialNumber == "" {
		raw.SerialNumber = c.Query("serialNumber")
	}
	params := query.Normalize(raw)
	log := logger.WithRequestID(c.Request.Context(), s.logger)
	if params.Sort.Mode == query.SortUnknown {
		log.Debug("ignoring unknown sort field", "sort", raw.Sort)
	}

	result := s.catalog.Run(params)
	metrics.QueryResults.Observe(float64(result.Total))
	log.Debug("catalog query", "page", params.Page, "sort", params.Sort.String(), "total", result.Total)
	c.JSON(http.StatusOK, result)
}

// health reports liveness and the size of the loaded catalog.
func (s *Server) health(c *gin.Context) {
	records := 0
	if s.catalog != nil {
		records = s.catalog.Table().Len()
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "records": records})
}

// respondError keeps JSON error formatting consistent across endpoints.
// Errors that are not an AppError are reported as 500 without exposing their text.
func (s *Server) respondError(c *gin.Context, err error) {
	appErr := apperrors.From(err)
	if appErr.Code >= http.StatusInternalServerError {
		logger.WithRequestID(c.Request.Context(), s.logger).Error("request failed", "error", appErr)
	}
	c.AbortWithStatusJSON(appErr.Code, appErr)
}
