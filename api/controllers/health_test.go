package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborline/shipline-backend/pkg/config"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func healthConfig() *config.Config {
	return &config.Config{App: config.AppConfig{Env: "test", Version: "1.2.3"}}
}

func TestHealthStatus(t *testing.T) {
	deps := HealthDeps{
		DB:      stubPinger{},
		Started: testNow.Add(-(26*time.Hour + 3*time.Minute)),
		Now:     func() time.Time { return testNow },
	}
	rec := httptest.NewRecorder()
	HealthStatus(healthConfig(), deps, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "1.2.3", body.Version)
	assert.Equal(t, "test", body.Environment)
	assert.Equal(t, "1d 2h 3m", body.Uptime.Human)
	assert.True(t, body.Database.Connected)
	assert.Equal(t, "disabled", body.Redis.State)
}

func TestHealthStatusDatabaseDown(t *testing.T) {
	deps := HealthDeps{DB: stubPinger{err: errors.New("down")}, Redis: stubPinger{}}
	rec := httptest.NewRecorder()
	HealthStatus(healthConfig(), deps, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"state":"disconnected"`)
}

func TestHealthReadyAndLive(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthReady(HealthDeps{DB: stubPinger{}}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	HealthReady(HealthDeps{DB: stubPinger{err: errors.New("down")}}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	HealthLive(HealthDeps{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"alive"`)
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "0s", formatUptime(0))
	assert.Equal(t, "59s", formatUptime(59*time.Second))
	assert.Equal(t, "1h 5s", formatUptime(time.Hour+5*time.Second))
}
