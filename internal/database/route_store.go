package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"smartwaste-backend/internal/models"
)

// CreateRouteParams carries the route-level fields for a new collection route.
type CreateRouteParams struct {
	Name           string
	Zone           *string
	VehicleID      *string
	AssignedTo     *string
	RouteDate      string
	DistanceWeight float64
	StartLatitude  *float64
	StartLongitude *float64
}

// RouteStopInput is one sequenced stop to persist with a new route.
type RouteStopInput struct {
	BinID                  string
	SequenceIndex          int
	DistanceFromPreviousKm float64
}

// CreateRouteWithStops creates a route and its stops in a transaction
func CreateRouteWithStops(db *sqlx.DB, params CreateRouteParams, stops []RouteStopInput, totalDistanceKm float64) (string, error) {
	tx, err := db.Beginx()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	routeID := uuid.New().String()
	now := time.Now().Unix()

	routeQuery := `
		INSERT INTO collection_routes (
			id, name, zone, vehicle_id, assigned_to, route_date, status,
			distance_weight, total_distance_km, total_bins,
			start_latitude, start_longitude, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, 'pending', $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = tx.Exec(
		routeQuery,
		routeID, params.Name, params.Zone, params.VehicleID, params.AssignedTo,
		params.RouteDate, params.DistanceWeight, totalDistanceKm, len(stops),
		params.StartLatitude, params.StartLongitude, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create route: %w", err)
	}

	stopQuery := `
		INSERT INTO route_stops (route_id, bin_id, sequence_index, distance_from_previous_km)
		VALUES ($1, $2, $3, $4)
	`

	for _, stop := range stops {
		_, err = tx.Exec(stopQuery, routeID, stop.BinID, stop.SequenceIndex, stop.DistanceFromPreviousKm)
		if err != nil {
			return "", fmt.Errorf("failed to create stop %d: %w", stop.SequenceIndex, err)
		}
	}

	if params.VehicleID != nil {
		_, err = tx.Exec(`UPDATE vehicles SET status = 'on_route', updated_at = $1 WHERE id = $2`, now, *params.VehicleID)
		if err != nil {
			return "", fmt.Errorf("failed to update vehicle status: %w", err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("✅ Created route %s with %d stops (%.2f km)", routeID, len(stops), totalDistanceKm)
	return routeID, nil
}

// GetRouteStops retrieves all stops for a route ordered by sequence
func GetRouteStops(db *sqlx.DB, routeID string) ([]models.RouteStopRecord, error) {
	var stops []models.RouteStopRecord
	query := `SELECT * FROM route_stops
	          WHERE route_id = $1
	          ORDER BY sequence_index ASC`

	err := db.Select(&stops, query, routeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get route stops: %w", err)
	}

	return stops, nil
}

// GetRouteStopsDetailed retrieves stops with JOINed bin data for detail views
func GetRouteStopsDetailed(db *sqlx.DB, routeID string) ([]models.RouteStopResponse, error) {
	var rows []struct {
		BinID                  string  `db:"bin_id"`
		BinCode                string  `db:"code"`
		Latitude               float64 `db:"latitude"`
		Longitude              float64 `db:"longitude"`
		SequenceIndex          int     `db:"sequence_index"`
		DistanceFromPreviousKm float64 `db:"distance_from_previous_km"`
		Collected              bool    `db:"collected"`
		CollectedAt            *int64  `db:"collected_at"`
	}

	query := `
		SELECT rs.bin_id, b.code, b.latitude, b.longitude,
		       rs.sequence_index, rs.distance_from_previous_km, rs.collected, rs.collected_at
		FROM route_stops rs
		JOIN bins b ON b.id = rs.bin_id
		WHERE rs.route_id = $1
		ORDER BY rs.sequence_index ASC
	`

	err := db.Select(&rows, query, routeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get detailed stops: %w", err)
	}

	stops := make([]models.RouteStopResponse, 0, len(rows))
	for _, row := range rows {
		stop := models.RouteStopResponse{
			BinID:                  row.BinID,
			BinCode:                row.BinCode,
			Latitude:               row.Latitude,
			Longitude:              row.Longitude,
			SequenceIndex:          row.SequenceIndex,
			DistanceFromPreviousKm: row.DistanceFromPreviousKm,
			Collected:              row.Collected,
		}
		if row.CollectedAt != nil {
			iso := time.Unix(*row.CollectedAt, 0).Format(time.RFC3339)
			stop.CollectedAtIso = &iso
		}
		stops = append(stops, stop)
	}

	return stops, nil
}

// GetNextPendingStop gets the next uncollected stop on a route
func GetNextPendingStop(db *sqlx.DB, routeID string) (*models.RouteStopRecord, error) {
	var stop models.RouteStopRecord
	query := `
		SELECT * FROM route_stops
		WHERE route_id = $1 AND collected = FALSE
		ORDER BY sequence_index ASC
		LIMIT 1
	`

	err := db.Get(&stop, query, routeID)
	if err == sql.ErrNoRows {
		return nil, nil // All stops collected
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get next stop: %w", err)
	}

	return &stop, nil
}

// MarkStopCollected marks the stop for a bin on a route as collected
func MarkStopCollected(db *sqlx.DB, routeID, binID string, collectedAt int64) error {
	query := `
		UPDATE route_stops
		SET collected = TRUE,
		    collected_at = $1
		WHERE route_id = $2 AND bin_id = $3
	`

	result, err := db.Exec(query, collectedAt, routeID, binID)
	if err != nil {
		return fmt.Errorf("failed to mark stop collected: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("no stop for bin %s on route %s", binID, routeID)
	}

	log.Printf("✅ Stop for bin %s on route %s marked as collected", binID, routeID)
	return nil
}

// CountPendingStops returns how many stops on a route are still uncollected
func CountPendingStops(db *sqlx.DB, routeID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM route_stops WHERE route_id = $1 AND collected = FALSE`

	err := db.Get(&count, query, routeID)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending stops: %w", err)
	}

	return count, nil
}
