package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// one degree of arc on the 6371 km sphere
const oneDegreeKm = 111.19492664455873

func TestHaversineIdentityAndSymmetry(t *testing.T) {
	assert.Zero(t, haversineDistance(45.52, -122.68, 45.52, -122.68))

	ab := haversineDistance(45.52, -122.68, 45.55, -122.71)
	ba := haversineDistance(45.55, -122.71, 45.52, -122.68)
	assert.Equal(t, ab, ba)
}

func TestHaversineKnownDistance(t *testing.T) {
	// One degree of longitude on the equator.
	assert.InDelta(t, oneDegreeKm, haversineDistance(0, 0, 0, 1), 1e-6)
	// One degree of latitude.
	assert.InDelta(t, oneDegreeKm, haversineDistance(0, 0, 1, 0), 1e-6)
}

func TestOptimizeRouteWorkedExample(t *testing.T) {
	ro := NewRouteOptimizer(OptimizerConfig{DistanceWeight: 1.0})

	bins := []RouteBin{
		{ID: "A", Latitude: 0, Longitude: 0, WasteLevel: 90},
		{ID: "B", Latitude: 0, Longitude: 1, WasteLevel: 95},
		{ID: "C", Latitude: 1, Longitude: 0, WasteLevel: 30},
	}

	route, err := ro.OptimizeRoute(bins, nil)
	require.NoError(t, err)
	require.Len(t, route.Stops, 3)

	// B opens the route (highest level); from B the score favors A over the
	// distant C; C closes it.
	assert.Equal(t, "B", route.Stops[0].BinID)
	assert.Equal(t, "A", route.Stops[1].BinID)
	assert.Equal(t, "C", route.Stops[2].BinID)

	assert.Zero(t, route.Stops[0].DistanceFromPreviousKm)
	assert.InDelta(t, oneDegreeKm, route.Stops[1].DistanceFromPreviousKm, 1e-6)
	assert.InDelta(t, oneDegreeKm, route.Stops[2].DistanceFromPreviousKm, 1e-6)
	assert.InDelta(t, 2*oneDegreeKm, route.TotalDistanceKm, 1e-6)
}

func TestOptimizeRouteEmptyInput(t *testing.T) {
	ro := NewRouteOptimizer(DefaultOptimizerConfig())

	_, err := ro.OptimizeRoute(nil, nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestOptimizeRouteSingleBin(t *testing.T) {
	ro := NewRouteOptimizer(DefaultOptimizerConfig())

	route, err := ro.OptimizeRoute([]RouteBin{
		{ID: "only", Latitude: 45.52, Longitude: -122.68, WasteLevel: 50},
	}, nil)
	require.NoError(t, err)

	require.Len(t, route.Stops, 1)
	assert.Equal(t, "only", route.Stops[0].BinID)
	assert.Zero(t, route.Stops[0].SequenceIndex)
	assert.Zero(t, route.TotalDistanceKm)
}

func TestOptimizeRouteStartPointLegCounted(t *testing.T) {
	ro := NewRouteOptimizer(DefaultOptimizerConfig())

	route, err := ro.OptimizeRoute([]RouteBin{
		{ID: "only", Latitude: 0, Longitude: 1, WasteLevel: 50},
	}, &Location{Latitude: 0, Longitude: 0})
	require.NoError(t, err)

	require.Len(t, route.Stops, 1)
	assert.InDelta(t, oneDegreeKm, route.Stops[0].DistanceFromPreviousKm, 1e-6)
	assert.InDelta(t, oneDegreeKm, route.TotalDistanceKm, 1e-6)
}

func TestOptimizeRouteVisitsEveryBinOnce(t *testing.T) {
	ro := NewRouteOptimizer(DefaultOptimizerConfig())

	bins := []RouteBin{
		{ID: "b1", Latitude: 45.519, Longitude: -122.679, WasteLevel: 45},
		{ID: "b2", Latitude: 45.527, Longitude: -122.682, WasteLevel: 74},
		{ID: "b3", Latitude: 45.551, Longitude: -122.676, WasteLevel: 63},
		{ID: "b4", Latitude: 45.512, Longitude: -122.628, WasteLevel: 85},
		{ID: "b5", Latitude: 45.535, Longitude: -122.637, WasteLevel: 92},
	}

	route, err := ro.OptimizeRoute(bins, nil)
	require.NoError(t, err)
	require.Len(t, route.Stops, len(bins))

	seen := make(map[string]bool)
	total := 0.0
	for i, stop := range route.Stops {
		assert.Equal(t, i, stop.SequenceIndex)
		assert.False(t, seen[stop.BinID], "bin %s visited twice", stop.BinID)
		seen[stop.BinID] = true
		total += stop.DistanceFromPreviousKm
	}
	assert.Len(t, seen, len(bins))
	assert.InDelta(t, total, route.TotalDistanceKm, 1e-9)
}

func TestOptimizeRouteDeterministic(t *testing.T) {
	ro := NewRouteOptimizer(DefaultOptimizerConfig())

	bins := []RouteBin{
		{ID: "b1", Latitude: 45.519, Longitude: -122.679, WasteLevel: 45},
		{ID: "b2", Latitude: 45.527, Longitude: -122.682, WasteLevel: 74},
		{ID: "b3", Latitude: 45.551, Longitude: -122.676, WasteLevel: 63},
		{ID: "b4", Latitude: 45.512, Longitude: -122.628, WasteLevel: 85},
	}
	// Same set handed over in a different order
	reversed := []RouteBin{bins[3], bins[2], bins[1], bins[0]}

	first, err := ro.OptimizeRoute(bins, nil)
	require.NoError(t, err)
	second, err := ro.OptimizeRoute(reversed, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestOptimizeRouteTieBreaksByID(t *testing.T) {
	ro := NewRouteOptimizer(OptimizerConfig{DistanceWeight: 1.0})

	// Identical levels; b and c sit symmetrically around a, so every
	// selection is a tie resolved toward the lower id.
	bins := []RouteBin{
		{ID: "c", Latitude: 0, Longitude: -1, WasteLevel: 50},
		{ID: "a", Latitude: 0, Longitude: 0, WasteLevel: 50},
		{ID: "b", Latitude: 0, Longitude: 1, WasteLevel: 50},
	}

	route, err := ro.OptimizeRoute(bins, nil)
	require.NoError(t, err)
	require.Len(t, route.Stops, 3)
	assert.Equal(t, "a", route.Stops[0].BinID)
	assert.Equal(t, "b", route.Stops[1].BinID)
	assert.Equal(t, "c", route.Stops[2].BinID)
}

func TestOptimizeRouteDoesNotMutateInput(t *testing.T) {
	ro := NewRouteOptimizer(DefaultOptimizerConfig())

	bins := []RouteBin{
		{ID: "z", Latitude: 1, Longitude: 1, WasteLevel: 20},
		{ID: "a", Latitude: 0, Longitude: 0, WasteLevel: 90},
	}
	snapshot := make([]RouteBin, len(bins))
	copy(snapshot, bins)

	_, err := ro.OptimizeRoute(bins, nil)
	require.NoError(t, err)
	assert.Equal(t, snapshot, bins)
}

func TestOptimizeRouteWeightTradesDistanceForUrgency(t *testing.T) {
	// A near half-full bin against a far nearly-full one. With a heavy
	// distance penalty the close bin wins; with none, urgency wins.
	bins := []RouteBin{
		{ID: "far-full", Latitude: 1, Longitude: 0, WasteLevel: 85},
		{ID: "near-half", Latitude: 0.01, Longitude: 0, WasteLevel: 55},
		{ID: "start", Latitude: 0, Longitude: 0, WasteLevel: 90},
	}

	heavy, err := NewRouteOptimizer(OptimizerConfig{DistanceWeight: 2.0}).OptimizeRoute(bins, nil)
	require.NoError(t, err)
	assert.Equal(t, "near-half", heavy.Stops[1].BinID)

	free, err := NewRouteOptimizer(OptimizerConfig{DistanceWeight: 0}).OptimizeRoute(bins, nil)
	require.NoError(t, err)
	assert.Equal(t, "far-full", free.Stops[1].BinID)
}
