package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func family(t *testing.T, m *Metrics, name string) *dto.MetricFamily {
	t.Helper()
	mfs, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("metric %s not gathered", name)
	return nil
}

func TestTaskLifecycle(t *testing.T) {
	m := New()
	m.Event("RecordStateChanged")
	m.TaskStarted("recording")
	m.TaskFinished("recording", "renamed", 1500*time.Millisecond)

	started := family(t, m, "clipnamer_tasks_started_total")
	require.Len(t, started.GetMetric(), 1)
	assert.Equal(t, 1.0, started.GetMetric()[0].GetCounter().GetValue())

	finished := family(t, m, "clipnamer_tasks_finished_total")
	require.Len(t, finished.GetMetric(), 1)
	assert.Equal(t, 1.0, finished.GetMetric()[0].GetCounter().GetValue())

	wait := family(t, m, "clipnamer_remux_wait_seconds")
	assert.EqualValues(t, 1, wait.GetMetric()[0].GetHistogram().GetSampleCount())

	inFlight := family(t, m, "clipnamer_tasks_in_flight")
	assert.Equal(t, 0.0, inFlight.GetMetric()[0].GetGauge().GetValue())
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Event("x")
		m.TaskStarted("replay")
		m.TaskFinished("replay", "skipped", 0)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.TaskStarted("replay")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `clipnamer_tasks_started_total{kind="replay"} 1`)
}

func TestRouter(t *testing.T) {
	m := New()
	h := m.Router()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/metrics", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	m := New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Serve(ctx, addr) }()

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get("http://" + addr + "/metrics")
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "clipnamer_tasks_in_flight")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
