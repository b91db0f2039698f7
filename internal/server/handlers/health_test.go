package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthy(ctx context.Context) error { return nil }

func TestHealthHandlerReturnsHealthyStatus(t *testing.T) {
	manager := NewHealthManager("1.2.3")
	manager.RegisterChecker("ratelimit", CheckerFunc(healthy))

	rec := httptest.NewRecorder()
	manager.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.Equal(t, StatusHealthy, resp.Checks["ratelimit"])
}

func TestHealthHandlerReturnsServiceUnavailableWhenUnhealthy(t *testing.T) {
	manager := NewHealthManager("1.2.3")
	manager.RegisterChecker("extractor", CheckerFunc(func(ctx context.Context) error {
		return errors.New("down")
	}))

	rec := httptest.NewRecorder()
	manager.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body struct {
		Status    string                 `json:"status"`
		ErrorCode string                 `json:"errorCode"`
		Details   map[string]interface{} `json:"details"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ERROR", body.Status)
	assert.Equal(t, "SERVICE_UNAVAILABLE", body.ErrorCode)
	assert.Equal(t, StatusUnhealthy, body.Details["status"])
	assert.Contains(t, body.Details, "unhealthy_checks")
}

func TestProbesReportStatus(t *testing.T) {
	manager := NewHealthManager("dev")
	manager.RegisterChecker("ok", CheckerFunc(healthy))

	for _, h := range []http.HandlerFunc{manager.LivenessHandler, manager.ReadinessHandler, manager.StartupHandler} {
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ProbeResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, StatusHealthy, resp.Status)
	}
}

func TestOverallStatus(t *testing.T) {
	assert.Equal(t, StatusHealthy, overallStatus(nil))
	assert.Equal(t, StatusDegraded, overallStatus(map[string]string{"a": StatusHealthy, "b": StatusTimeout}))
	assert.Equal(t, StatusUnhealthy, overallStatus(map[string]string{"a": StatusTimeout, "b": StatusUnhealthy}))
}
