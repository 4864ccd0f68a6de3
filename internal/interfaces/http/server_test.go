package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aionysus/cellarsight/internal/application"
	"github.com/aionysus/cellarsight/internal/cache"
	"github.com/aionysus/cellarsight/internal/persistence"
	"github.com/aionysus/cellarsight/internal/telemetry"
)

type stubHealth struct{ healthy bool }

func (s *stubHealth) Health(ctx context.Context) persistence.HealthCheck {
	return persistence.HealthCheck{Healthy: s.healthy, LastCheck: time.Now()}
}

func (s *stubHealth) Ping(ctx context.Context) error { return nil }

func (s *stubHealth) Stats(ctx context.Context) map[string]interface{} {
	return map[string]interface{}{"enabled": false}
}

type stubRecords struct {
	records map[int64]persistence.InvestmentRecord
	err     error
}

func (s *stubRecords) Upsert(ctx context.Context, rec persistence.InvestmentRecord) error {
	return nil
}

func (s *stubRecords) GetByWineID(ctx context.Context, wineID int64) (*persistence.InvestmentRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	rec, ok := s.records[wineID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *stubRecords) ListTopByReturn(ctx context.Context, limit int) ([]persistence.RankedWine, error) {
	return nil, nil
}

func (s *stubRecords) ListTopClassified(ctx context.Context, limit int) ([]persistence.RankedWine, error) {
	return nil, nil
}

func (s *stubRecords) Count(ctx context.Context) (int64, error) { return 0, nil }

func newTestServer(t *testing.T, healthy bool, records *stubRecords) *Server {
	t.Helper()

	config := DefaultServerConfig()
	config.Port = 0 // any free port; handlers are exercised via Router

	reader := application.NewRecordReader(records, cache.New(), time.Minute)
	server, err := NewServer(config, &stubHealth{healthy: healthy}, reader, telemetry.NewMetrics())
	require.NoError(t, err)
	return server
}

func TestServer_Health(t *testing.T) {
	server := newTestServer(t, true, &stubRecords{})

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var check persistence.HealthCheck
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &check))
	assert.True(t, check.Healthy)
}

func TestServer_HealthUnhealthy(t *testing.T) {
	server := newTestServer(t, false, &stubRecords{})

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_Metrics(t *testing.T) {
	server := newTestServer(t, true, &stubRecords{})

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cellarsight_runs_total")
}

func TestServer_RecordLookup(t *testing.T) {
	records := &stubRecords{records: map[int64]persistence.InvestmentRecord{
		42: {WineID: 42, Price2025: 500.00, AnnualReturnPct: 11.2,
			InvestmentRating: "A+", AnalystRecommendation: "BUY"},
	}}
	server := newTestServer(t, true, records)

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/records/42", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var got persistence.InvestmentRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(42), got.WineID)
	assert.Equal(t, "A+", got.InvestmentRating)
}

func TestServer_RecordNotFound(t *testing.T) {
	server := newTestServer(t, true, &stubRecords{})

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/records/404", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_RecordBadID(t *testing.T) {
	server := newTestServer(t, true, &stubRecords{})

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/records/not-a-number", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_RecordLookupFailure(t *testing.T) {
	server := newTestServer(t, true, &stubRecords{err: fmt.Errorf("connection refused")})

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/records/42", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
