package httpapi

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"spareparts/pkg/apperrors"
	"spareparts/pkg/logger"
	"spareparts/pkg/metrics"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// requestIDMiddleware reuses the caller's request id or mints one, and exposes it to loggers.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// accessLogMiddleware logs one line per request once the handler chain finished.
func (s *Server) accessLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithRequestID(c.Request.Context(), s.logger).Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

// metricsMiddleware records request counts and latency per route template.
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RequestTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.RequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// corsMiddleware sets CORS headers for the read-only API.
func corsMiddleware(allowedOrigin string) gin.HandlerFunc {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", allowedOrigin)
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// limiterIdleTTL is the minimum time a client's bucket survives without requests.
const limiterIdleTTL = 15 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiters hands out one token bucket per client IP and forgets clients that went idle.
type ipLimiters struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	rate      rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// newIPLimiters keeps idle buckets at least until they would have refilled, so eviction never
// hands a client a fresh burst early.
func newIPLimiters(limit rate.Limit, burst int, interval time.Duration) *ipLimiters {
	ttl := max(limiterIdleTTL, interval*time.Duration(burst))
	return &ipLimiters{
		visitors:  make(map[string]*visitor),
		rate:      limit,
		burst:     burst,
		ttl:       ttl,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (l *ipLimiters) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.ttl {
		l.sweep(now)
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

// sweep drops visitors idle for longer than the ttl. Callers hold mu.
func (l *ipLimiters) sweep(now time.Time) {
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) >= l.ttl {
			delete(l.visitors, ip)
		}
	}
	l.lastSweep = now
}

func (l *ipLimiters) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// rateLimitMiddleware rejects clients exceeding requestsPerMinute with 429.
// The client IP honours X-Forwarded-For only from the router's trusted proxies.
func rateLimitMiddleware(requestsPerMinute, burst int) gin.HandlerFunc {
	if burst < 1 {
		burst = 1
	}
	interval := time.Minute / time.Duration(requestsPerMinute)
	limiters := newIPLimiters(rate.Every(interval), burst, interval)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = c.RemoteIP()
		}
		if !limiters.get(ip).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apperrors.TooManyRequests("rate limit exceeded"))
			return
		}
		c.Next()
	}
}
