package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/items/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for range 2 {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/42", nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	}

	got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues(http.MethodGet, "/items/{id}", "418"))
	assert.InDelta(t, 2, got, 0)
}

func TestObserveJob(t *testing.T) {
	m := New()
	m.ObserveJob("demucs", time.Now(), nil)
	m.ObserveJob("demucs", time.Now(), errors.New("boom"))
	m.ObserveJob("demucs", time.Now(), errors.New("boom"))

	assert.InDelta(t, 1, testutil.ToFloat64(m.JobsTotal.WithLabelValues("demucs", "ok")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.JobsTotal.WithLabelValues("demucs", "error")), 0)
}

func TestAddSwept(t *testing.T) {
	m := New()
	m.AddSwept(3)
	m.AddSwept(0)
	assert.InDelta(t, 3, testutil.ToFloat64(m.ScratchSwept), 0)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveJob("x", time.Now(), nil)
	m.AddSwept(1)

	rec := httptest.NewRecorder()
	m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandler_ExposesCollectors(t *testing.T) {
	m := New()
	m.AddSwept(1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "media_scratch_swept_total 1")
}
