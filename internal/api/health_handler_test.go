package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readiness(t *testing.T, hc *HealthChecker) (int, ReadinessReport) {
	t.Helper()
	rec := httptest.NewRecorder()
	hc.HandleReadiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	var report ReadinessReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	return rec.Code, report
}

func TestReadiness_AllUp(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	code, report := readiness(t, NewHealthChecker(db, rdb))

	assert.Equal(t, http.StatusOK, code)
	assert.True(t, report.Ready)
	assert.Equal(t, "healthy", report.Status)
	assert.Equal(t, statusUp, report.Checks["database"].Status)
	assert.Equal(t, statusUp, report.Checks["redis"].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReadiness_DatabaseDown(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	code, report := readiness(t, NewHealthChecker(db, nil))

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.False(t, report.Ready)
	assert.Equal(t, "unhealthy", report.Status)
	assert.Equal(t, statusDown, report.Checks["database"].Status)
	assert.Contains(t, report.Checks["database"].Message, "connection refused")
}

func TestReadiness_RedisDownIsDegraded(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	defer rdb.Close()
	mr.Close()

	code, report := readiness(t, NewHealthChecker(db, rdb))

	assert.Equal(t, http.StatusOK, code)
	assert.True(t, report.Ready)
	assert.Equal(t, "degraded", report.Status)
	assert.Equal(t, statusDown, report.Checks["redis"].Status)
}

func TestReadiness_NothingConfigured(t *testing.T) {
	code, report := readiness(t, NewHealthChecker(nil, nil))

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", report.Status)
	assert.Equal(t, statusNotConfigured, report.Checks["database"].Status)
	assert.Equal(t, statusNotConfigured, report.Checks["redis"].Status)
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "5s", formatUptime(5*time.Second))
	assert.Equal(t, "2m 3s", formatUptime(2*time.Minute+3*time.Second))
	assert.Equal(t, "1h 0m 0s", formatUptime(time.Hour))
	assert.Equal(t, "1d 2h 0m 0s", formatUptime(26*time.Hour))
}
