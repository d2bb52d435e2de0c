package services

import (
	"errors"
	"log"
	"math"
	"sort"
)

// Depot constants - daily collection routes start here
const (
	DEPOT_LAT     = 45.55284
	DEPOT_LNG     = -122.70550
	DEPOT_ADDRESS = "2929 N Kerby Ave, Portland, OR 97227"
)

// GetDepotLocation returns the default depot location
func GetDepotLocation() Location {
	return Location{
		Latitude:  DEPOT_LAT,
		Longitude: DEPOT_LNG,
	}
}

// ErrEmptyInput is returned when the sequencer is called with no bins.
var ErrEmptyInput = errors.New("no bins to sequence")

// Location represents a geographic point
type Location struct {
	Latitude  float64
	Longitude float64
}

// RouteBin represents a bin eligible for collection with its location and waste level
type RouteBin struct {
	ID         string
	Latitude   float64
	Longitude  float64
	WasteLevel float64
}

// RouteStop is one sequenced stop in an optimized route.
// SequenceIndex is contiguous from 0; DistanceFromPreviousKm is 0 for the
// first stop unless an explicit start location was given.
type RouteStop struct {
	BinID                  string  `json:"bin_id"`
	SequenceIndex          int     `json:"sequence_index"`
	DistanceFromPreviousKm float64 `json:"distance_from_previous_km"`
}

// OptimizedRoute is the sequencer output: ordered stops plus the total
// distance of all legs.
type OptimizedRoute struct {
	Stops           []RouteStop `json:"stops"`
	TotalDistanceKm float64     `json:"total_distance_km"`
}

// OptimizerConfig tunes the greedy sequencer. DistanceWeight trades urgency
// against travel cost: score = waste_level - weight * distance_km.
type OptimizerConfig struct {
	DistanceWeight float64
}

// DefaultOptimizerConfig returns the documented default weight of 2.0.
func DefaultOptimizerConfig() OptimizerConfig {
	return OptimizerConfig{DistanceWeight: 2.0}
}

// RouteOptimizer sequences collection stops using greedy nearest-priority
// selection. Intentionally not a full TSP solver; the greedy order is part
// of the contract and must stay reproducible.
type RouteOptimizer struct {
	cfg OptimizerConfig
}

// NewRouteOptimizer creates a new route optimizer
func NewRouteOptimizer(cfg OptimizerConfig) *RouteOptimizer {
	return &RouteOptimizer{cfg: cfg}
}

// OptimizeRoute sequences bins by repeatedly selecting the unvisited bin with
// the highest score relative to the current position, where
// score = waste_level - weight * distance_km. With no explicit start the
// first stop is the highest-waste bin. Ties always break toward the lower
// bin id so identical inputs produce identical output.
//
// The input slice is never mutated; the algorithm works on a copy.
func (ro *RouteOptimizer) OptimizeRoute(bins []RouteBin, start *Location) (*OptimizedRoute, error) {
	if len(bins) == 0 {
		return nil, ErrEmptyInput
	}

	// Work on a copy ordered by id ascending. Selection below uses strict
	// comparisons, so scanning an id-ordered slice keeps the lowest id on
	// score ties.
	remaining := make([]RouteBin, len(bins))
	copy(remaining, bins)
	sort.Slice(remaining, func(i, j int) bool {
		return remaining[i].ID < remaining[j].ID
	})

	stops := make([]RouteStop, 0, len(bins))
	totalDistance := 0.0

	var current Location
	if start != nil {
		current = *start
		log.Printf("🎯 Sequencing %d bins from start point (%.6f, %.6f)",
			len(bins), start.Latitude, start.Longitude)
	} else {
		// No start point: the highest-waste bin opens the route.
		bestIdx := 0
		for i, bin := range remaining {
			if bin.WasteLevel > remaining[bestIdx].WasteLevel {
				bestIdx = i
			}
		}
		first := remaining[bestIdx]
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)

		stops = append(stops, RouteStop{
			BinID:                  first.ID,
			SequenceIndex:          0,
			DistanceFromPreviousKm: 0,
		})
		current = Location{Latitude: first.Latitude, Longitude: first.Longitude}
		log.Printf("🎯 Sequencing %d bins starting at bin %s (%.1f%% full)",
			len(bins), first.ID, first.WasteLevel)
	}

	// Greedy nearest-priority selection over the remaining bins.
	for len(remaining) > 0 {
		bestIdx := 0
		bestScore := math.Inf(-1)
		bestDistance := 0.0

		for i, bin := range remaining {
			distance := haversineDistance(
				current.Latitude,
				current.Longitude,
				bin.Latitude,
				bin.Longitude,
			)
			score := bin.WasteLevel - ro.cfg.DistanceWeight*distance

			if score > bestScore {
				bestScore = score
				bestDistance = distance
				bestIdx = i
			}
		}

		best := remaining[bestIdx]
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)

		stops = append(stops, RouteStop{
			BinID:                  best.ID,
			SequenceIndex:          len(stops),
			DistanceFromPreviousKm: bestDistance,
		})
		totalDistance += bestDistance
		current = Location{Latitude: best.Latitude, Longitude: best.Longitude}
	}

	log.Printf("✅ Route sequenced: %d stops, %.2f km total", len(stops), totalDistance)

	return &OptimizedRoute{
		Stops:           stops,
		TotalDistanceKm: totalDistance,
	}, nil
}

// haversineDistance calculates the distance between two GPS coordinates in kilometers
func haversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371.0 // Earth's radius in kilometers

	// Convert to radians
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	// Haversine formula
	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}
