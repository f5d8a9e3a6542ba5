package health

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/line-quality/internal/metrics"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

type fakeRefresh struct {
	at  time.Time
	err error
}

func (f fakeRefresh) LastRefresh() (time.Time, error) { return f.at, f.err }

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decodeReady(t *testing.T, rec *httptest.ResponseRecorder) ReadyResponse {
	t.Helper()
	var resp ReadyResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHealthAndLive(t *testing.T) {
	s := NewServer(Config{ServiceName: "forecast-scheduler", Version: "1.0.0", Port: "0"})

	rec := get(t, s.Handler(), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "1.0.0", resp.Version)

	assert.Equal(t, http.StatusOK, get(t, s.Handler(), "/live").Code)
}

func TestReady(t *testing.T) {
	at := time.Date(2024, 6, 1, 2, 15, 0, 0, time.UTC)
	cases := []struct {
		name    string
		ready   bool
		db      DatabasePinger
		refresh RefreshStatus
		code    int
		check   string
		value   string
	}{
		{"not marked ready", false, nil, nil, http.StatusServiceUnavailable, "service", "not_ready"},
		{"database down", true, fakePinger{errors.New("refused")}, nil, http.StatusServiceUnavailable, "database", "error: refused"},
		{"refresh pending", true, fakePinger{}, fakeRefresh{}, http.StatusOK, "refresh", "pending"},
		{"refresh failed", true, fakePinger{}, fakeRefresh{at: at, err: errors.New("timeout")}, http.StatusServiceUnavailable, "refresh", "error: timeout"},
		{"refresh ok", true, fakePinger{}, fakeRefresh{at: at}, http.StatusOK, "refresh", "ok"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewServer(Config{ServiceName: "forecast-scheduler", Port: "0", DB: tc.db, Refresh: tc.refresh})
			s.SetReady(tc.ready)

			rec := get(t, s.Handler(), "/ready")
			assert.Equal(t, tc.code, rec.Code)
			resp := decodeReady(t, rec)
			assert.Equal(t, tc.value, resp.Checks[tc.check])
		})
	}
}

func TestReadyReportsLastRefresh(t *testing.T) {
	at := time.Date(2024, 6, 1, 2, 15, 0, 0, time.UTC)
	s := NewServer(Config{Port: "0", Refresh: fakeRefresh{at: at}})
	s.SetReady(true)

	resp := decodeReady(t, get(t, s.Handler(), "/ready"))
	assert.Equal(t, "2024-06-01T02:15:00Z", resp.LastRefresh)
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.RecordBacktestSkipped()
	s := NewServer(Config{Port: "0"})

	rec := get(t, s.Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "line_quality_backtest_skipped_total"))
}

func TestShutdownWithoutStart(t *testing.T) {
	assert.NoError(t, NewServer(Config{Port: "0"}).Shutdown())
}

func TestStartServesUntilShutdown(t *testing.T) {
	s := NewServer(Config{Port: "0"})
	require.NoError(t, s.Start(context.Background()))
	require.NotNil(t, s.Addr())

	resp, err := http.Get("http://" + s.Addr().String() + "/live")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, s.Shutdown())
	_, err = http.Get("http://" + s.Addr().String() + "/live")
	assert.Error(t, err)
}

func TestStartReportsBindFailure(t *testing.T) {
	first := NewServer(Config{Port: "0"})
	require.NoError(t, first.Start(context.Background()))
	defer first.Shutdown()

	_, port, err := net.SplitHostPort(first.Addr().String())
	require.NoError(t, err)
	assert.Error(t, NewServer(Config{Port: port}).Start(context.Background()))
}
