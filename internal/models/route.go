package models

import "time"

// CollectionRoute is a persisted sequenced route produced by the optimizer
type CollectionRoute struct {
	ID              string   `json:"id" db:"id"`
	Name            string   `json:"name" db:"name"`
	Zone            *string  `json:"zone,omitempty" db:"zone"`
	VehicleID       *string  `json:"vehicle_id,omitempty" db:"vehicle_id"`
	AssignedTo      *string  `json:"assigned_to,omitempty" db:"assigned_to"`
	RouteDate       string   `json:"route_date" db:"route_date"` // YYYY-MM-DD
	Status          string   `json:"status" db:"status"`         // pending | in_progress | completed | cancelled
	DistanceWeight  float64  `json:"distance_weight" db:"distance_weight"`
	TotalDistanceKm float64  `json:"total_distance_km" db:"total_distance_km"`
	TotalBins       int      `json:"total_bins" db:"total_bins"`
	StartLatitude   *float64 `json:"start_latitude,omitempty" db:"start_latitude"`
	StartLongitude  *float64 `json:"start_longitude,omitempty" db:"start_longitude"`
	CreatedAt       int64    `json:"created_at" db:"created_at"` // Unix timestamp
	UpdatedAt       int64    `json:"updated_at" db:"updated_at"` // Unix timestamp
}

// RouteStopRecord is one sequenced stop of a persisted route
// (route_stops table)
type RouteStopRecord struct {
	ID                     int     `json:"id" db:"id"`
	RouteID                string  `json:"route_id" db:"route_id"`
	BinID                  string  `json:"bin_id" db:"bin_id"`
	SequenceIndex          int     `json:"sequence_index" db:"sequence_index"`
	DistanceFromPreviousKm float64 `json:"distance_from_previous_km" db:"distance_from_previous_km"`
	Collected              bool    `json:"collected" db:"collected"`
	CollectedAt            *int64  `json:"collected_at,omitempty" db:"collected_at"` // Unix timestamp
}

// RouteWithStops is a route joined with its ordered stops
type RouteWithStops struct {
	CollectionRoute
	Stops []RouteStopRecord `json:"stops"`
}

// OptimizeRouteRequest is the request body for POST /api/routes/optimize.
// Exactly one bin selector applies: explicit ids, a zone, or urgent=true for
// every bin the predictor flags as needing collection.
type OptimizeRouteRequest struct {
	Name           string   `json:"name"`
	BinIDs         []string `json:"bin_ids,omitempty"`
	Zone           *string  `json:"zone,omitempty"`
	Urgent         bool     `json:"urgent,omitempty"`
	StartLatitude  *float64 `json:"start_latitude,omitempty"`
	StartLongitude *float64 `json:"start_longitude,omitempty"`
	DistanceWeight *float64 `json:"distance_weight,omitempty"`
	VehicleID      *string  `json:"vehicle_id,omitempty"`
	AssignedTo     *string  `json:"assigned_to,omitempty"`
}

// UpdateRouteStatusRequest is the request body for PATCH /api/routes/:id/status
type UpdateRouteStatusRequest struct {
	Status string `json:"status"`
}

// RouteStopResponse is a stop with its bin join fields for route detail views
type RouteStopResponse struct {
	BinID                  string  `json:"bin_id"`
	BinCode                string  `json:"bin_code"`
	Latitude               float64 `json:"latitude"`
	Longitude              float64 `json:"longitude"`
	SequenceIndex          int     `json:"sequence_index"`
	DistanceFromPreviousKm float64 `json:"distance_from_previous_km"`
	Collected              bool    `json:"collected"`
	CollectedAtIso         *string `json:"collected_at_iso,omitempty"`
}

// RouteResponse is a route with ISO timestamps
type RouteResponse struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Zone            *string  `json:"zone,omitempty"`
	VehicleID       *string  `json:"vehicle_id,omitempty"`
	AssignedTo      *string  `json:"assigned_to,omitempty"`
	RouteDate       string   `json:"route_date"`
	Status          string   `json:"status"`
	DistanceWeight  float64  `json:"distance_weight"`
	TotalDistanceKm float64  `json:"total_distance_km"`
	TotalBins       int      `json:"total_bins"`
	StartLatitude   *float64 `json:"start_latitude,omitempty"`
	StartLongitude  *float64 `json:"start_longitude,omitempty"`
	CreatedAtIso    string   `json:"created_at_iso"`
}

func (r *CollectionRoute) ToRouteResponse() RouteResponse {
	return RouteResponse{
		ID:              r.ID,
		Name:            r.Name,
		Zone:            r.Zone,
		VehicleID:       r.VehicleID,
		AssignedTo:      r.AssignedTo,
		RouteDate:       r.RouteDate,
		Status:          r.Status,
		DistanceWeight:  r.DistanceWeight,
		TotalDistanceKm: r.TotalDistanceKm,
		TotalBins:       r.TotalBins,
		StartLatitude:   r.StartLatitude,
		StartLongitude:  r.StartLongitude,
		CreatedAtIso:    time.Unix(r.CreatedAt, 0).Format(time.RFC3339),
	}
}
