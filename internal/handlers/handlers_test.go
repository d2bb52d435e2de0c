package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidBinType(t *testing.T) {
	for _, binType := range []string{"general", "recyclable", "organic", "hazardous"} {
		assert.True(t, validBinType(binType), binType)
	}
	assert.False(t, validBinType("nuclear"))
	assert.False(t, validBinType(""))
}

func TestValidBinStatus(t *testing.T) {
	for _, status := range []string{"active", "maintenance", "retired"} {
		assert.True(t, validBinStatus(status), status)
	}
	assert.False(t, validBinStatus("broken"))
}

func TestValidReportType(t *testing.T) {
	for _, reportType := range []string{"overflow", "damage", "missed_pickup", "illegal_dumping"} {
		assert.True(t, validReportType(reportType), reportType)
	}
	assert.False(t, validReportType("graffiti"))
}

func TestValidVehicleTypeAndStatus(t *testing.T) {
	assert.True(t, validVehicleType("compactor"))
	assert.True(t, validVehicleType("mini_truck"))
	assert.True(t, validVehicleType("van"))
	assert.False(t, validVehicleType("bicycle"))

	assert.True(t, validVehicleStatus("available"))
	assert.True(t, validVehicleStatus("on_route"))
	assert.True(t, validVehicleStatus("maintenance"))
	assert.False(t, validVehicleStatus("lost"))
}

func TestValidStartTime(t *testing.T) {
	assert.True(t, validStartTime("06:30"))
	assert.True(t, validStartTime("23:59"))
	assert.False(t, validStartTime("24:30"))
	assert.False(t, validStartTime("6:30pm"))
	assert.False(t, validStartTime(""))
}

func TestReceiveDiagnosticLog(t *testing.T) {
	handler := ReceiveDiagnosticLog()

	body := `{"timestamp":"2025-06-01T08:00:00Z","context":"sensor_boot","level":"INFO","message":"sensor online","platform":"esp32","data":{"rssi":-61}}`
	req := httptest.NewRequest(http.MethodPost, "/api/logs/diagnostic", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "received", resp["status"])
}

func TestReceiveDiagnosticLogRejectsBadJSON(t *testing.T) {
	handler := ReceiveDiagnosticLog()

	req := httptest.NewRequest(http.MethodPost, "/api/logs/diagnostic", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	handler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLoginRejectsBadJSON(t *testing.T) {
	handler := Login(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{"))
	rr := httptest.NewRecorder()
	handler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegisterValidation(t *testing.T) {
	handler := Register(nil)

	cases := []struct {
		name string
		body string
	}{
		{"bad json", "{"},
		{"missing fields", `{"email":"a@b.com"}`},
		{"short password", `{"email":"a@b.com","password":"short","name":"A"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			handler(rr, req)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestOptimizeRouteSelectorValidation(t *testing.T) {
	handler := OptimizeRoute(nil, nil, nil)

	cases := []struct {
		name string
		body string
	}{
		{"bad json", "{"},
		{"no selector", `{}`},
		{"two selectors", `{"urgent":true,"zone":"downtown"}`},
		{"all selectors", `{"urgent":true,"zone":"downtown","bin_ids":["a"]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/routes/optimize", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			handler(rr, req)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestUpdateRouteStatusRejectsBadJSON(t *testing.T) {
	handler := UpdateRouteStatus(nil)

	req := httptest.NewRequest(http.MethodPatch, "/api/routes/r1/status", strings.NewReader("{"))
	req.SetPathValue("id", "r1")
	rr := httptest.NewRecorder()
	handler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGeocodingUnavailableWithoutService(t *testing.T) {
	for name, handler := range map[string]http.HandlerFunc{
		"reverse":       ReverseGeocode(nil),
		"reverse batch": BatchReverseGeocode(nil),
		"forward":       Geocode(nil),
		"forward batch": BatchGeocode(nil),
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/geocoding", strings.NewReader(`{}`))
		rr := httptest.NewRecorder()
		handler(rr, req)
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code, name)
	}
}

func TestRouteLifecycleTransitions(t *testing.T) {
	assert.ElementsMatch(t, []string{"in_progress", "cancelled"}, allowedRouteTransitions["pending"])
	assert.ElementsMatch(t, []string{"completed", "cancelled"}, allowedRouteTransitions["in_progress"])
	assert.Empty(t, allowedRouteTransitions["completed"])
	assert.Empty(t, allowedRouteTransitions["cancelled"])
}
