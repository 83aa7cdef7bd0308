package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ebhath/ebhath-api/pkg/config"
)

func clientIPFor(t *testing.T, trusted []string, remoteAddr, forwarded string) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r, err := newEngine(&config.Config{TrustedProxies: trusted}, zap.NewNop(), nil)
	require.NoError(t, err)
	r.GET("/ip", func(c *gin.Context) { c.String(http.StatusOK, c.ClientIP()) })

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.RemoteAddr = remoteAddr
	req.Header.Set("X-Forwarded-For", forwarded)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestEngineIgnoresForwardedForFromUntrustedPeers(t *testing.T) {
	assert.Equal(t, "198.51.100.7", clientIPFor(t, nil, "198.51.100.7:40000", "203.0.113.99"))
}

func TestEngineHonoursForwardedForFromConfiguredProxy(t *testing.T) {
	assert.Equal(t, "203.0.113.99", clientIPFor(t, []string{"10.0.0.0/8"}, "10.1.2.3:40000", "203.0.113.99"))
	assert.Equal(t, "198.51.100.7", clientIPFor(t, []string{"10.0.0.0/8"}, "198.51.100.7:40000", "203.0.113.99"))
}

func TestEngineRejectsInvalidProxyList(t *testing.T) {
	_, err := newEngine(&config.Config{TrustedProxies: []string{"not-an-ip"}}, zap.NewNop(), nil)
	assert.Error(t, err)
}
