package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mvaldez/genstudio-backend/pkg/config"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

func healthTestConfig() *config.Config {
	return &config.Config{App: config.AppConfig{Env: "test"}}
}

func TestHealthLive(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	HealthLive(healthTestConfig())(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "test", rec.Header().Get("X-GenStudio-Env"))
}

func TestHealthReadyAllDependenciesUp(t *testing.T) {
	deps := map[string]Pinger{
		"db":    stubPinger{},
		"redis": stubPinger{},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	HealthReady(healthTestConfig(), nil, deps)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthReadyReportsDownDependency(t *testing.T) {
	deps := map[string]Pinger{
		"db": stubPinger{err: errors.New("connection refused")},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	HealthReady(healthTestConfig(), nil, deps)(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthReadySkipsNilPingers(t *testing.T) {
	deps := map[string]Pinger{
		"db":    stubPinger{},
		"redis": nil,
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	HealthReady(healthTestConfig(), nil, deps)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
