package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bizlab-kr/leadbot/internal/logging"
	"github.com/bizlab-kr/leadbot/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	var seen string
	router.GET("/test", func(c *gin.Context) {
		seen = c.GetString(RequestIDKey)
		c.Status(http.StatusOK)
	})

	t.Run("generated", func(t *testing.T) {
		w := serve(router, httptest.NewRequest(http.MethodGet, "/test", nil))
		require.NotEmpty(t, seen)
		assert.Equal(t, seen, w.Header().Get("X-Request-ID"))
		assert.Len(t, seen, 36)
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		w := serve(router, req)
		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
	})
}

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	previous := logging.Logger
	logging.Logger = logging.New(zap.New(core))
	t.Cleanup(func() { logging.Logger = previous })
	return logs
}

func TestRequestLogger_Levels(t *testing.T) {
	router := gin.New()
	router.Use(RequestID(), RequestLogger())
	router.GET("/v1/questions", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{}) })
	router.GET("/v1/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{}) })
	router.GET("/v1/chat/sessions/:id", func(c *gin.Context) { c.JSON(http.StatusNotFound, gin.H{}) })
	router.POST("/v1/verify", func(c *gin.Context) { c.JSON(http.StatusBadGateway, gin.H{}) })

	tests := []struct {
		name    string
		method  string
		path    string
		level   zapcore.Level
		message string
		route   string
	}{
		{"ok", http.MethodGet, "/v1/questions?active=1", zap.InfoLevel, "request completed", "/v1/questions"},
		{"health check", http.MethodGet, "/v1/health", zap.DebugLevel, "request completed", "/v1/health"},
		{"client error", http.MethodGet, "/v1/chat/sessions/nope", zap.WarnLevel, "request rejected", "/v1/chat/sessions/:id"},
		{"server error", http.MethodPost, "/v1/verify", zap.ErrorLevel, "request failed", "/v1/verify"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := observeLogs(t)
			serve(router, httptest.NewRequest(tt.method, tt.path, nil))

			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			assert.Equal(t, tt.level, entry.Level)
			assert.Equal(t, tt.message, entry.Message)
			fields := entry.ContextMap()
			assert.Equal(t, tt.route, fields["route"])
			assert.NotEmpty(t, fields["request_id"])
		})
	}
}

func TestRequestTracker(t *testing.T) {
	router := gin.New()
	router.Use(RequestTracker())
	var during float64
	router.GET("/test", func(c *gin.Context) {
		during = testutil.ToFloat64(observability.ActiveConnections)
		c.Status(http.StatusOK)
	})

	before := testutil.ToFloat64(observability.ActiveConnections)
	serve(router, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, before+1, during)
	assert.Equal(t, before, testutil.ToFloat64(observability.ActiveConnections))
}

func TestRequestTiming(t *testing.T) {
	router := gin.New()
	router.Use(RequestTiming())
	var start time.Time
	router.GET("/timed/:id", func(c *gin.Context) {
		v, ok := c.Get(StartTimeKey)
		require.True(t, ok)
		start = v.(time.Time)
		c.Status(http.StatusTeapot)
	})

	w := serve(router, httptest.NewRequest(http.MethodGet, "/timed/42", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.False(t, start.IsZero())

	count := testutil.CollectAndCount(observability.RequestDuration)
	assert.Positive(t, count)

	serve(router, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, count+1, testutil.CollectAndCount(observability.RequestDuration), "unmatched paths share one series")
	serve(router, httptest.NewRequest(http.MethodGet, "/elsewhere", nil))
	assert.Equal(t, count+1, testutil.CollectAndCount(observability.RequestDuration))
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "200", statusLabel(200))
	assert.Equal(t, "503", statusLabel(503))
}

func TestRequireAdmin(t *testing.T) {
	newRouter := func(secret string) *gin.Engine {
		router := gin.New()
		router.Use(RequireAdmin(secret))
		router.POST("/admin", func(c *gin.Context) { c.Status(http.StatusNoContent) })
		return router
	}

	tests := []struct {
		name   string
		secret string
		header string
		cookie string
		want   int
	}{
		{"header", "s3cret", "s3cret", "", http.StatusNoContent},
		{"cookie", "s3cret", "", "s3cret", http.StatusNoContent},
		{"wrong header", "s3cret", "guess", "", http.StatusUnauthorized},
		{"prefix only", "s3cret", "s3c", "", http.StatusUnauthorized},
		{"missing", "s3cret", "", "", http.StatusUnauthorized},
		{"header wins over cookie", "s3cret", "guess", "s3cret", http.StatusUnauthorized},
		{"not configured", "", "", "", http.StatusServiceUnavailable},
		{"not configured ignores token", "", "anything", "", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin", nil)
			if tt.header != "" {
				req.Header.Set(AdminTokenHeader, tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: AdminTokenCookie, Value: tt.cookie})
			}
			w := serve(newRouter(tt.secret), req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want >= 400 {
				assert.Contains(t, w.Body.String(), "error")
			}
		})
	}
}

func TestAuditMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(AuditMiddleware())
	handled := 0
	h := func(status int) gin.HandlerFunc {
		return func(c *gin.Context) {
			handled++
			c.Status(status)
		}
	}
	router.GET("/q", h(http.StatusOK))
	router.POST("/q", h(http.StatusCreated))
	router.PUT("/q/:step", h(http.StatusOK))
	router.DELETE("/q/:step", h(http.StatusNotFound))

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/q", nil),
		httptest.NewRequest(http.MethodPost, "/q", nil),
		httptest.NewRequest(http.MethodPut, "/q/name", nil),
		httptest.NewRequest(http.MethodDelete, "/q/name", nil),
	} {
		serve(router, req)
	}
	assert.Equal(t, 4, handled)
}

func TestAuditMiddleware_LogsSuccessfulWrites(t *testing.T) {
	logs := observeLogs(t)
	router := gin.New()
	router.Use(AuditMiddleware())
	router.GET("/admin/questions", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.POST("/admin/questions", func(c *gin.Context) { c.Status(http.StatusCreated) })
	router.PUT("/admin/questions/:step", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.DELETE("/admin/questions/:step", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	serve(router, httptest.NewRequest(http.MethodGet, "/admin/questions", nil))
	serve(router, httptest.NewRequest(http.MethodPost, "/admin/questions", nil))
	serve(router, httptest.NewRequest(http.MethodPut, "/admin/questions/budget", nil))
	serve(router, httptest.NewRequest(http.MethodDelete, "/admin/questions/budget", nil))

	changes := logs.FilterMessage("admin change").All()
	require.Len(t, changes, 2, "reads and failed writes are not audited")
	assert.Equal(t, "create", changes[0].ContextMap()["action"])
	assert.Equal(t, "update", changes[1].ContextMap()["action"])
	assert.Equal(t, "budget", changes[1].ContextMap()["step"])
	assert.Equal(t, "/admin/questions/:step", changes[1].ContextMap()["route"])
}

func TestMapHTTPMethodToAction(t *testing.T) {
	assert.Equal(t, "create", mapHTTPMethodToAction(http.MethodPost))
	assert.Equal(t, "update", mapHTTPMethodToAction(http.MethodPut))
	assert.Equal(t, "update", mapHTTPMethodToAction(http.MethodPatch))
	assert.Equal(t, "delete", mapHTTPMethodToAction(http.MethodDelete))
	assert.Equal(t, "unknown", mapHTTPMethodToAction(http.MethodGet))
	assert.True(t, isWrite(http.MethodPost))
	assert.False(t, isWrite(http.MethodGet))
}
