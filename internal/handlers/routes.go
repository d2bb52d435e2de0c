package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"time"

	"smartwaste-backend/internal/database"
	"smartwaste-backend/internal/metrics"
	"smartwaste-backend/internal/models"
	"smartwaste-backend/internal/services"
	"smartwaste-backend/internal/websocket"
	"smartwaste-backend/pkg/utils"

	"github.com/jmoiron/sqlx"
)

// urgentBins returns the active bins due for collection: those the
// predictor flags, plus any bin already at the almost-full threshold
// regardless of how much sensor history it has.
func urgentBins(db *sqlx.DB, predictor *services.Predictor, cfg services.PredictorConfig, zone string) ([]models.Bin, error) {
	var bins []models.Bin
	query := `SELECT * FROM bins WHERE status = 'active'`
	args := []interface{}{}
	if zone != "" {
		query += ` AND zone = $1`
		args = append(args, zone)
	}
	if err := db.Select(&bins, query, args...); err != nil {
		return nil, err
	}

	since := time.Now().AddDate(0, 0, -cfg.WindowDays).Unix()
	var logs []models.SensorLog
	if err := db.Select(&logs, `SELECT * FROM sensor_logs WHERE recorded_at >= $1 ORDER BY recorded_at ASC`, since); err != nil {
		return nil, err
	}

	readingsByBin := make(map[string][]services.Reading)
	for _, entry := range logs {
		readingsByBin[entry.BinID] = append(readingsByBin[entry.BinID], services.Reading{
			BinID:      entry.BinID,
			WasteLevel: entry.WasteLevel,
			RecordedAt: time.Unix(entry.RecordedAt, 0),
		})
	}

	var urgent []models.Bin
	for _, bin := range bins {
		if bin.CurrentWasteLevel >= services.AlmostFullLevel {
			urgent = append(urgent, bin)
			continue
		}
		prediction, err := predictor.Predict(readingsByBin[bin.ID], bin.BinType)
		if err != nil {
			continue
		}
		if prediction.NeedsCollection {
			urgent = append(urgent, bin)
		}
	}
	return urgent, nil
}

// notifyRouteAssigned pushes a websocket event and an FCM notification to
// the staff member a route was assigned to.
func notifyRouteAssigned(db *sqlx.DB, hub *websocket.Hub, fcmService *services.FCMService, route *models.CollectionRoute) {
	if route.AssignedTo == nil {
		return
	}
	userID := *route.AssignedTo

	if hub != nil {
		hub.BroadcastToUser(userID, map[string]interface{}{
			"type": "route_assigned",
			"data": route.ToRouteResponse(),
		})
	}

	if fcmService != nil {
		var fcmToken models.FCMToken
		err := db.Get(&fcmToken, `SELECT * FROM fcm_tokens WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`, userID)
		if err != nil {
			if err != sql.ErrNoRows {
				log.Printf("⚠️ Could not load FCM token for %s: %v", userID, err)
			}
			return
		}
		go func() {
			if err := fcmService.SendRouteAssignedNotification(fcmToken.Token, route.ID, route.TotalBins); err != nil {
				log.Printf("⚠️ FCM route notification failed: %v", err)
			}
		}()
	}
}

// routeDetail loads a route with its ordered stops and the next pending stop
func routeDetail(db *sqlx.DB, routeID string) (map[string]interface{}, error) {
	var route models.CollectionRoute
	if err := db.Get(&route, "SELECT * FROM collection_routes WHERE id = $1", routeID); err != nil {
		return nil, err
	}

	stops, err := database.GetRouteStopsDetailed(db, routeID)
	if err != nil {
		return nil, err
	}

	detail := map[string]interface{}{
		"route": route.ToRouteResponse(),
		"stops": stops,
	}

	if route.Status == "pending" || route.Status == "in_progress" {
		next, err := database.GetNextPendingStop(db, routeID)
		if err != nil {
			return nil, err
		}
		if next != nil {
			detail["next_stop"] = next
		}
	}

	return detail, nil
}

// OptimizeRoute builds, persists, and optionally assigns a collection route.
// The request must select bins exactly one way: an explicit bin_ids list, a
// zone, or urgent=true for everything due for collection.
// POST /api/routes/optimize
func OptimizeRoute(db *sqlx.DB, hub *websocket.Hub, fcmService *services.FCMService) http.HandlerFunc {
	cfg := services.DefaultPredictorConfig()
	predictor := services.NewPredictor(cfg)

	return func(w http.ResponseWriter, r *http.Request) {
		var req models.OptimizeRouteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		selectors := 0
		if len(req.BinIDs) > 0 {
			selectors++
		}
		if req.Zone != nil && *req.Zone != "" {
			selectors++
		}
		if req.Urgent {
			selectors++
		}
		if selectors != 1 {
			utils.RespondError(w, http.StatusBadRequest, "Provide exactly one of bin_ids, zone, or urgent")
			return
		}

		var bins []models.Bin
		var err error
		switch {
		case len(req.BinIDs) > 0:
			query, args, inErr := sqlx.In("SELECT * FROM bins WHERE id IN (?)", req.BinIDs)
			if inErr != nil {
				utils.RespondError(w, http.StatusBadRequest, "Invalid bin_ids")
				return
			}
			query = db.Rebind(query)
			if err = db.Select(&bins, query, args...); err != nil {
				log.Printf("❌ Error fetching bins: %v", err)
				utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch bins")
				return
			}
			if len(bins) != len(req.BinIDs) {
				utils.RespondError(w, http.StatusNotFound, fmt.Sprintf("Only %d of %d bins found", len(bins), len(req.BinIDs)))
				return
			}
			for _, bin := range bins {
				if bin.Status != "active" {
					utils.RespondError(w, http.StatusConflict, fmt.Sprintf("Bin %s is %s, not active", bin.Code, bin.Status))
					return
				}
			}

		case req.Zone != nil && *req.Zone != "":
			if err = db.Select(&bins, "SELECT * FROM bins WHERE zone = $1 AND status = 'active'", *req.Zone); err != nil {
				log.Printf("❌ Error fetching bins: %v", err)
				utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch bins")
				return
			}

		case req.Urgent:
			bins, err = urgentBins(db, predictor, cfg, "")
			if err != nil {
				log.Printf("❌ Error selecting urgent bins: %v", err)
				utils.RespondError(w, http.StatusInternalServerError, "Failed to select bins")
				return
			}
		}

		if len(bins) == 0 {
			utils.RespondError(w, http.StatusUnprocessableEntity, "No bins to sequence")
			return
		}

		// Optional vehicle and staff assignment, validated up front
		if req.VehicleID != nil {
			var vehicle models.Vehicle
			err := db.Get(&vehicle, "SELECT * FROM vehicles WHERE id = $1", *req.VehicleID)
			if err == sql.ErrNoRows {
				utils.RespondError(w, http.StatusNotFound, "Vehicle not found")
				return
			}
			if err != nil {
				utils.RespondError(w, http.StatusInternalServerError, "Database error")
				return
			}
			if vehicle.Status != "available" {
				utils.RespondError(w, http.StatusConflict, fmt.Sprintf("Vehicle %s is %s", vehicle.PlateNumber, vehicle.Status))
				return
			}
		}
		if req.AssignedTo != nil {
			var role string
			err := db.Get(&role, "SELECT role FROM users WHERE id = $1", *req.AssignedTo)
			if err == sql.ErrNoRows {
				utils.RespondError(w, http.StatusNotFound, "Assigned user not found")
				return
			}
			if err != nil {
				utils.RespondError(w, http.StatusInternalServerError, "Database error")
				return
			}
			if role != "staff" && role != "admin" {
				utils.RespondError(w, http.StatusBadRequest, "Routes can only be assigned to staff")
				return
			}
		}

		optimizerCfg := services.DefaultOptimizerConfig()
		if req.DistanceWeight != nil {
			if *req.DistanceWeight < 0 {
				utils.RespondError(w, http.StatusBadRequest, "distance_weight must be non-negative")
				return
			}
			optimizerCfg.DistanceWeight = *req.DistanceWeight
		}

		routeBins := make([]services.RouteBin, len(bins))
		for i, bin := range bins {
			routeBins[i] = services.RouteBin{
				ID:         bin.ID,
				Latitude:   bin.Latitude,
				Longitude:  bin.Longitude,
				WasteLevel: bin.CurrentWasteLevel,
			}
		}

		var start *services.Location
		if req.StartLatitude != nil && req.StartLongitude != nil {
			start = &services.Location{Latitude: *req.StartLatitude, Longitude: *req.StartLongitude}
		}

		optimizer := services.NewRouteOptimizer(optimizerCfg)
		optimized, err := optimizer.OptimizeRoute(routeBins, start)
		if errors.Is(err, services.ErrEmptyInput) {
			utils.RespondError(w, http.StatusUnprocessableEntity, "No bins to sequence")
			return
		}
		if err != nil {
			log.Printf("❌ Route optimization failed: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Optimization failed")
			return
		}

		routeDate := time.Now().Format("2006-01-02")
		name := req.Name
		if name == "" {
			name = "Collection route " + routeDate
		}

		stops := make([]database.RouteStopInput, len(optimized.Stops))
		for i, stop := range optimized.Stops {
			stops[i] = database.RouteStopInput{
				BinID:                  stop.BinID,
				SequenceIndex:          stop.SequenceIndex,
				DistanceFromPreviousKm: stop.DistanceFromPreviousKm,
			}
		}

		routeID, err := database.CreateRouteWithStops(db, database.CreateRouteParams{
			Name:           name,
			Zone:           req.Zone,
			VehicleID:      req.VehicleID,
			AssignedTo:     req.AssignedTo,
			RouteDate:      routeDate,
			DistanceWeight: optimizerCfg.DistanceWeight,
			StartLatitude:  req.StartLatitude,
			StartLongitude: req.StartLongitude,
		}, stops, optimized.TotalDistanceKm)
		if err != nil {
			log.Printf("❌ Error persisting route: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to save route")
			return
		}

		metrics.RoutesOptimized.Inc()

		var route models.CollectionRoute
		if err := db.Get(&route, "SELECT * FROM collection_routes WHERE id = $1", routeID); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch route")
			return
		}
		notifyRouteAssigned(db, hub, fcmService, &route)

		detail, err := routeDetail(db, routeID)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch route")
			return
		}

		log.Printf("🗺️ Route %s: %d stops, %.2f km", routeID, route.TotalBins, route.TotalDistanceKm)
		utils.RespondJSON(w, http.StatusCreated, detail)
	}
}

// GetRoutes lists routes with optional date, status, and zone filters
// GET /api/routes
func GetRoutes(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := `SELECT * FROM collection_routes`
		var conditions []string
		var args []interface{}

		if date := r.URL.Query().Get("date"); date != "" {
			if _, err := time.Parse("2006-01-02", date); err != nil {
				utils.RespondError(w, http.StatusBadRequest, "Invalid date (want YYYY-MM-DD)")
				return
			}
			args = append(args, date)
			conditions = append(conditions, fmt.Sprintf("route_date = $%d", len(args)))
		}
		if status := r.URL.Query().Get("status"); status != "" {
			args = append(args, status)
			conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
		}
		if zone := r.URL.Query().Get("zone"); zone != "" {
			args = append(args, zone)
			conditions = append(conditions, fmt.Sprintf("zone = $%d", len(args)))
		}

		for i, condition := range conditions {
			if i == 0 {
				query += " WHERE " + condition
			} else {
				query += " AND " + condition
			}
		}
		query += " ORDER BY created_at DESC"

		var routes []models.CollectionRoute
		if err := db.Select(&routes, query, args...); err != nil {
			log.Printf("❌ Error fetching routes: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch routes")
			return
		}

		responses := make([]models.RouteResponse, len(routes))
		for i, route := range routes {
			responses[i] = route.ToRouteResponse()
		}

		utils.RespondJSON(w, http.StatusOK, responses)
	}
}

// GetRoute returns one route with its ordered stops
// GET /api/routes/{id}
func GetRoute(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		detail, err := routeDetail(db, id)
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, "Route not found")
			return
		}
		if err != nil {
			log.Printf("❌ Error fetching route %s: %v", id, err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch route")
			return
		}

		utils.RespondJSON(w, http.StatusOK, detail)
	}
}

var allowedRouteTransitions = map[string][]string{
	"pending":     {"in_progress", "cancelled"},
	"in_progress": {"completed", "cancelled"},
	"completed":   {},
	"cancelled":   {},
}

// UpdateRouteStatus moves a route through its lifecycle
// PATCH /api/routes/{id}/status
func UpdateRouteStatus(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		var req models.UpdateRouteStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		var route models.CollectionRoute
		err := db.Get(&route, "SELECT * FROM collection_routes WHERE id = $1", id)
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, "Route not found")
			return
		}
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		allowed := false
		for _, next := range allowedRouteTransitions[route.Status] {
			if next == req.Status {
				allowed = true
				break
			}
		}
		if !allowed {
			utils.RespondError(w, http.StatusConflict, fmt.Sprintf("Cannot move route from %s to %s", route.Status, req.Status))
			return
		}

		now := time.Now().Unix()
		if _, err := db.Exec("UPDATE collection_routes SET status = $1, updated_at = $2 WHERE id = $3", req.Status, now, id); err != nil {
			log.Printf("❌ Error updating route status: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to update route")
			return
		}

		// Free the vehicle once the route is over
		if (req.Status == "completed" || req.Status == "cancelled") && route.VehicleID != nil {
			if _, err := db.Exec("UPDATE vehicles SET status = 'available', updated_at = $1 WHERE id = $2", now, *route.VehicleID); err != nil {
				log.Printf("⚠️ Could not release vehicle %s: %v", *route.VehicleID, err)
			}
		}

		route.Status = req.Status
		route.UpdatedAt = now
		log.Printf("🗺️ Route %s is now %s", id, req.Status)
		utils.RespondJSON(w, http.StatusOK, route.ToRouteResponse())
	}
}

// AssignRoute hands a pending route to a staff member
// POST /api/routes/{id}/assign
func AssignRoute(db *sqlx.DB, hub *websocket.Hub, fcmService *services.FCMService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		var req struct {
			UserID string `json:"user_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
			utils.RespondError(w, http.StatusBadRequest, "user_id is required")
			return
		}

		var route models.CollectionRoute
		err := db.Get(&route, "SELECT * FROM collection_routes WHERE id = $1", id)
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, "Route not found")
			return
		}
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		if route.Status != "pending" {
			utils.RespondError(w, http.StatusConflict, "Only pending routes can be assigned")
			return
		}

		var user models.User
		err = db.Get(&user, "SELECT * FROM users WHERE id = $1", req.UserID)
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, "User not found")
			return
		}
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}
		if user.Role != "staff" && user.Role != "admin" {
			utils.RespondError(w, http.StatusBadRequest, "Routes can only be assigned to staff")
			return
		}

		now := time.Now().Unix()
		if _, err := db.Exec("UPDATE collection_routes SET assigned_to = $1, updated_at = $2 WHERE id = $3", req.UserID, now, id); err != nil {
			log.Printf("❌ Error assigning route: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to assign route")
			return
		}

		route.AssignedTo = &req.UserID
		route.UpdatedAt = now
		notifyRouteAssigned(db, hub, fcmService, &route)

		log.Printf("🗺️ Route %s assigned to %s", id, user.Email)
		utils.RespondJSON(w, http.StatusOK, route.ToRouteResponse())
	}
}

// CreateDailyRoutes builds one route per zone that has bins due for
// collection, each starting from the depot.
// POST /api/routes/daily
func CreateDailyRoutes(db *sqlx.DB, hub *websocket.Hub, fcmService *services.FCMService) http.HandlerFunc {
	cfg := services.DefaultPredictorConfig()
	predictor := services.NewPredictor(cfg)

	return func(w http.ResponseWriter, r *http.Request) {
		var zones []string
		if err := db.Select(&zones, "SELECT DISTINCT zone FROM bins WHERE status = 'active'"); err != nil {
			log.Printf("❌ Error fetching zones: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch zones")
			return
		}
		sort.Strings(zones)

		depot := services.GetDepotLocation()
		optimizer := services.NewRouteOptimizer(services.DefaultOptimizerConfig())
		routeDate := time.Now().Format("2006-01-02")

		created := []map[string]interface{}{}
		skippedZones := []string{}

		for _, zone := range zones {
			bins, err := urgentBins(db, predictor, cfg, zone)
			if err != nil {
				log.Printf("❌ Error selecting urgent bins for zone %s: %v", zone, err)
				utils.RespondError(w, http.StatusInternalServerError, "Failed to select bins")
				return
			}
			if len(bins) == 0 {
				skippedZones = append(skippedZones, zone)
				continue
			}

			routeBins := make([]services.RouteBin, len(bins))
			for i, bin := range bins {
				routeBins[i] = services.RouteBin{
					ID:         bin.ID,
					Latitude:   bin.Latitude,
					Longitude:  bin.Longitude,
					WasteLevel: bin.CurrentWasteLevel,
				}
			}

			optimized, err := optimizer.OptimizeRoute(routeBins, &depot)
			if err != nil {
				log.Printf("❌ Optimization failed for zone %s: %v", zone, err)
				continue
			}

			stops := make([]database.RouteStopInput, len(optimized.Stops))
			for i, stop := range optimized.Stops {
				stops[i] = database.RouteStopInput{
					BinID:                  stop.BinID,
					SequenceIndex:          stop.SequenceIndex,
					DistanceFromPreviousKm: stop.DistanceFromPreviousKm,
				}
			}

			zoneCopy := zone
			depotLat := depot.Latitude
			depotLng := depot.Longitude
			routeID, err := database.CreateRouteWithStops(db, database.CreateRouteParams{
				Name:           fmt.Sprintf("Daily %s %s", zone, routeDate),
				Zone:           &zoneCopy,
				RouteDate:      routeDate,
				DistanceWeight: services.DefaultOptimizerConfig().DistanceWeight,
				StartLatitude:  &depotLat,
				StartLongitude: &depotLng,
			}, stops, optimized.TotalDistanceKm)
			if err != nil {
				log.Printf("❌ Error persisting daily route for zone %s: %v", zone, err)
				utils.RespondError(w, http.StatusInternalServerError, "Failed to save routes")
				return
			}

			metrics.RoutesOptimized.Inc()

			detail, err := routeDetail(db, routeID)
			if err != nil {
				utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch route")
				return
			}
			created = append(created, detail)
		}

		log.Printf("🗓️ Daily routes: %d created, %d zones skipped", len(created), len(skippedZones))
		utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
			"date":          routeDate,
			"routes":        created,
			"skipped_zones": skippedZones,
		})
	}
}
