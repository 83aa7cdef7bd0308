package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebhath/ebhath-api/internal/service"
)

type pingerStub struct{ err error }

func (p pingerStub) Ping(ctx context.Context) error { return p.err }

func TestMetricsHandlerReady(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewMetricsHandler(nil, map[string]Pinger{"postgres": pingerStub{}, "redis": nil})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)
	h.Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"postgres":"ok"`)
	assert.NotContains(t, w.Body.String(), "redis")

	h = NewMetricsHandler(nil, map[string]Pinger{"redis": pingerStub{err: errors.New("dial tcp: connection refused")}})
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)
	h.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	metrics.RecordSubmission("success")

	h := NewMetricsHandler(metrics, nil)
	r := gin.New()
	r.GET("/metrics", h.Prometheus)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "form_submissions_total")
}

func TestMetricsHandlerHealthIncludesSnapshot(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	metrics.ObserveHTTPRequest(http.MethodGet, "/api/v1/forms/:token", http.StatusOK, 20*time.Millisecond)
	metrics.ObserveHTTPRequest(http.MethodGet, "/api/v1/forms/:token", http.StatusOK, 40*time.Millisecond)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)
	NewMetricsHandler(metrics, nil).Health(c)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status  string                  `json:"status"`
		Metrics service.MetricsSnapshot `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, uint64(2), body.Metrics.RequestsTotal)
	assert.InDelta(t, 30.0, body.Metrics.AverageRequestDurationMs, 0.001)
	assert.Positive(t, body.Metrics.Goroutines)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)
	NewMetricsHandler(nil, nil).Health(c)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
