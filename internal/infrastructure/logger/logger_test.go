package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{name: "nil config", cfg: nil},
		{name: "default config", cfg: DefaultConfig()},
		{name: "json to stderr", cfg: &Config{Level: "debug", Format: "json", Output: "stderr"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			require.NoError(t, err)
			require.NotNil(t, logger)
		})
	}

	t.Run("writes to a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		logger, err := New(&Config{Level: "info", Format: "json", Output: path})
		require.NoError(t, err)

		logger.Info("hello", zap.String("key", "value"))
		require.NoError(t, logger.Sync())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"msg":"hello"`)
		assert.Contains(t, string(data), `"key":"value"`)
	})

	t.Run("unwritable file path fails", func(t *testing.T) {
		_, err := New(&Config{Output: filepath.Join(t.TempDir(), "missing", "app.log")})
		assert.Error(t, err)
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestContextLogger(t *testing.T) {
	t.Run("no logger in context is a no-op", func(t *testing.T) {
		assert.NotPanics(t, func() {
			L(context.Background()).Info("nothing")
		})
	})

	t.Run("request id is attached", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		ctx := WithRequestID(context.Background(), zap.New(core), "req-1")

		assert.Equal(t, "req-1", GetRequestID(ctx))
		L(ctx).Info("handled")

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "req-1", logs.All()[0].ContextMap()["request_id"])
	})

	t.Run("trace ids are attached", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
		spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
		spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    traceID,
			SpanID:     spanID,
			TraceFlags: trace.FlagsSampled,
		})
		ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

		WithLogger(ctx, zap.New(core)).Warn("traced")

		require.Equal(t, 1, logs.Len())
		fields := logs.All()[0].ContextMap()
		assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
		assert.Equal(t, "00f067aa0ba902b7", fields["span_id"])
	})
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("logs level by status", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		r := gin.New()
		r.Use(GinMiddleware(zap.New(core)))
		r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
		r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
		r.GET("/broken", func(c *gin.Context) { c.Status(http.StatusServiceUnavailable) })

		for _, path := range []string{"/ok", "/missing", "/broken"} {
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
		}

		entries := logs.All()
		require.Len(t, entries, 3)
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
		assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
		assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	})

	t.Run("request logger reaches the request context", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		r := gin.New()
		r.Use(func(c *gin.Context) { c.Set("request_id", "abc"); c.Next() })
		r.Use(GinMiddleware(zap.New(core)))
		r.GET("/", func(c *gin.Context) {
			L(c.Request.Context()).Info("inside")
			assert.NotNil(t, GetGinLogger(c))
			c.Status(http.StatusOK)
		})

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		inside := logs.FilterMessage("inside").All()
		require.Len(t, inside, 1)
		assert.Equal(t, "abc", inside[0].ContextMap()["request_id"])
	})
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.ErrorLevel)

	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
}

func TestGetGinLogger_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetGinLogger(c))
}

func TestGormLogger(t *testing.T) {
	t.Run("errors are logged", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Warn)

		gl.Trace(context.Background(), time.Now(), func() (string, int64) {
			return "SELECT 1", 0
		}, assert.AnError)

		require.Equal(t, 1, logs.FilterMessage("SQL Error").Len())
	})

	t.Run("record not found is ignored", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Warn)

		gl.Trace(context.Background(), time.Now(), func() (string, int64) {
			return "SELECT 1", 0
		}, gormlogger.ErrRecordNotFound)

		assert.Equal(t, 0, logs.Len())
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Info).LogMode(gormlogger.Silent)

		gl.Trace(context.Background(), time.Now(), func() (string, int64) {
			return "SELECT 1", 1
		}, nil)

		assert.Equal(t, 0, logs.Len())
	})

	t.Run("level mapping", func(t *testing.T) {
		assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
		assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
		assert.Equal(t, gormlogger.Warn, MapGormLogLevel(""))
	})
}
