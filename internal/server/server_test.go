package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagebundle/internal/metrics"
	"git.home.luguber.info/inful/pagebundle/internal/pipeline"
)

type fixedStatus struct{ report *pipeline.BuildReport }

func (f fixedStatus) LastBuild() *pipeline.BuildReport { return f.report }

func finishedReport() *pipeline.BuildReport {
	r := pipeline.NewBuildReport("b-1")
	r.ScriptsCollected = 3
	r.Finish()
	r.DeriveOutcome()
	return r
}

func TestHealth(t *testing.T) {
	s := New(":0", prom.NewRegistry(), fixedStatus{report: finishedReport()})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "success", body.LastOutcome)
}

func TestStatus(t *testing.T) {
	s := New(":0", nil, fixedStatus{})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	s = New(":0", nil, fixedStatus{report: finishedReport()})
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "b-1", body["build_id"])
	assert.EqualValues(t, 3, body["scripts_collected"])
}

func TestMethodNotAllowed(t *testing.T) {
	s := New(":0", nil, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStartServesMetrics(t *testing.T) {
	rec := metrics.NewPrometheusRecorder(prom.NewRegistry())
	rec.IncBuildOutcome("success")

	s := New("127.0.0.1:0", rec.Registry(), nil)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, s.Stop(ctx))
	})

	resp, err := http.Get("http://" + s.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "pagebundle_build_outcomes_total")
}

func TestStartAddressInUse(t *testing.T) {
	first := New("127.0.0.1:0", nil, nil)
	require.NoError(t, first.Start(context.Background()))
	t.Cleanup(func() { _ = first.Stop(context.Background()) })

	second := New(first.Addr(), nil, nil)
	require.Error(t, second.Start(context.Background()))
}
