package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContextDefaultsToNoop(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	core, logs := observer.New(zap.InfoLevel)
	ctx := WithLogger(context.Background(), zap.New(core))
	FromContext(ctx).Info("hello")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "hello", logs.All()[0].Message)
}

func TestNewLoggerLevels(t *testing.T) {
	logger, err := NewLogger("debug", "prod")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	logger, err = NewLogger("nonsense", "dev")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
}

func TestMetricsRecord(t *testing.T) {
	m := NewMetrics()
	m.ObserveHTTP("/{locale}/rooms", http.MethodGet, 200, 15*time.Millisecond)
	m.NotFound("locale")
	m.NotFound("locale")
	m.MissingTranslation("es")
	m.Submission("review", "accepted")
	m.WidgetProbe("ok")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.notFound.WithLabelValues("locale")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/{locale}/rooms", "GET", "200")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "silverpineapple_missing_translations_total"))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveHTTP("/", "GET", 200, time.Millisecond)
		m.NotFound("unit")
		m.MissingTranslation("en")
		m.Submission("newsletter", "failed")
		m.WidgetProbe("timeout")
		Serve(context.Background(), ":0", m, nil)
	})
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "abc", SanitizeString("a\x00b\nc", 10))
	assert.Equal(t, "ab", SanitizeString("abcdef", 2))
}
