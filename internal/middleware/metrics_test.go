package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"smartwaste-backend/internal/metrics"
)

func TestMetricsRecordsRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/api/bins/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	before := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("GET", "/api/bins/{id}", "200"))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/bins/abc-123", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	// The label is the route pattern, not the raw path with the id in it
	after := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("GET", "/api/bins/{id}", "200"))
	assert.Equal(t, before+1, after)
}

func TestMetricsRecordsStatus(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/api/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	before := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("GET", "/api/broken", "500"))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/broken", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	after := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("GET", "/api/broken", "500"))
	assert.Equal(t, before+1, after)
}
