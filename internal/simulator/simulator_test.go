package simulator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is a minimal stand-in for the backend the simulator talks to.
type fakeAPI struct {
	mu          sync.Mutex
	readings    []map[string]interface{}
	collections int
}

func (f *fakeAPI) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "sim@smartwaste.city", req["email"])
		json.NewEncoder(w).Encode(map[string]interface{}{"ok": true, "token": "test-token"})
	})

	mux.HandleFunc("GET /api/bins", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"id": "bin-1", "code": "DT-001", "bin_type": "general", "current_waste_level": 40.0},
			{"id": "bin-2", "code": "HZ-001", "bin_type": "hazardous", "current_waste_level": 97.0},
		})
	})

	mux.HandleFunc("POST /api/bins/{id}/readings", func(w http.ResponseWriter, r *http.Request) {
		var reading map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reading))
		reading["bin_id"] = r.PathValue("id")
		f.mu.Lock()
		f.readings = append(f.readings, reading)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})

	mux.HandleFunc("POST /api/bins/{id}/collections", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		f.mu.Lock()
		f.collections++
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})

	return httptest.NewServer(mux)
}

func newTestSimulator(url string) *Simulator {
	return New(Config{
		APIBaseURL: url,
		Email:      "sim@smartwaste.city",
		Password:   "sim123",
	})
}

func TestRunOncePostsAReadingPerBin(t *testing.T) {
	api := &fakeAPI{}
	srv := api.server(t)
	defer srv.Close()

	sim := newTestSimulator(srv.URL)
	require.NoError(t, sim.RunOnce(context.Background()))

	api.mu.Lock()
	defer api.mu.Unlock()
	require.Len(t, api.readings, 2)

	for _, reading := range api.readings {
		level := reading["waste_level"].(float64)
		assert.GreaterOrEqual(t, level, 0.0)
		assert.LessOrEqual(t, level, 100.0)
		assert.Contains(t, reading, "temperature")
		assert.Contains(t, reading, "humidity")
		assert.Contains(t, reading, "battery_level")
	}
}

func TestCollectAllEmptiesBinsAboveThreshold(t *testing.T) {
	api := &fakeAPI{}
	srv := api.server(t)
	defer srv.Close()

	sim := newTestSimulator(srv.URL)
	require.NoError(t, sim.CollectAll(context.Background(), 90))

	api.mu.Lock()
	defer api.mu.Unlock()
	// Only bin-2 sits at or above 90%
	assert.Equal(t, 1, api.collections)
}

func TestLoginFailureSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	sim := newTestSimulator(srv.URL)
	err := sim.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login failed")
}

func TestNewAppliesDefaults(t *testing.T) {
	sim := New(Config{})
	assert.Equal(t, "http://localhost:8080", sim.cfg.APIBaseURL)
	assert.Equal(t, "30s", sim.cfg.Interval.String())
}
