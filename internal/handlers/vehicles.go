package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"smartwaste-backend/internal/models"
	"smartwaste-backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func validVehicleType(t string) bool {
	return t == "compactor" || t == "mini_truck" || t == "van"
}

func validVehicleStatus(s string) bool {
	return s == "available" || s == "on_route" || s == "maintenance"
}

// GetVehicles lists the fleet with optional status and zone filters
// GET /api/vehicles
func GetVehicles(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := `SELECT * FROM vehicles`
		var conditions []string
		var args []interface{}

		if status := r.URL.Query().Get("status"); status != "" {
			if !validVehicleStatus(status) {
				utils.RespondError(w, http.StatusBadRequest, "Invalid status")
				return
			}
			args = append(args, status)
			conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
		}
		if zone := r.URL.Query().Get("zone"); zone != "" {
			args = append(args, zone)
			conditions = append(conditions, fmt.Sprintf("assigned_zone = $%d", len(args)))
		}

		for i, condition := range conditions {
			if i == 0 {
				query += " WHERE " + condition
			} else {
				query += " AND " + condition
			}
		}
		query += " ORDER BY plate_number ASC"

		var vehicles []models.Vehicle
		if err := db.Select(&vehicles, query, args...); err != nil {
			log.Printf("❌ Error fetching vehicles: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch vehicles")
			return
		}

		utils.RespondJSON(w, http.StatusOK, vehicles)
	}
}

// CreateVehicle registers a new vehicle in the fleet
// POST /api/vehicles (admin)
func CreateVehicle(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateVehicleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		req.PlateNumber = strings.ToUpper(strings.TrimSpace(req.PlateNumber))
		if req.PlateNumber == "" {
			utils.RespondError(w, http.StatusBadRequest, "plate_number is required")
			return
		}
		if !validVehicleType(req.VehicleType) {
			utils.RespondError(w, http.StatusBadRequest, "vehicle_type must be compactor, mini_truck, or van")
			return
		}
		if req.CapacityKg <= 0 {
			utils.RespondError(w, http.StatusBadRequest, "capacity_kg must be positive")
			return
		}

		var count int
		if err := db.Get(&count, "SELECT COUNT(*) FROM vehicles WHERE plate_number = $1", req.PlateNumber); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}
		if count > 0 {
			utils.RespondError(w, http.StatusConflict, "A vehicle with this plate already exists")
			return
		}

		id := uuid.New().String()
		now := time.Now().Unix()
		_, err := db.Exec(`
			INSERT INTO vehicles (id, plate_number, vehicle_type, capacity_kg, status, assigned_zone, created_at, updated_at)
			VALUES ($1, $2, $3, $4, 'available', $5, $6, $7)
		`, id, req.PlateNumber, req.VehicleType, req.CapacityKg, req.AssignedZone, now, now)
		if err != nil {
			log.Printf("❌ Error creating vehicle: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create vehicle")
			return
		}

		var vehicle models.Vehicle
		if err := db.Get(&vehicle, "SELECT * FROM vehicles WHERE id = $1", id); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch vehicle")
			return
		}

		log.Printf("🚚 Vehicle created: %s (%s)", vehicle.PlateNumber, vehicle.VehicleType)
		utils.RespondJSON(w, http.StatusCreated, vehicle)
	}
}

// UpdateVehicleStatus changes a vehicle's availability
// PATCH /api/vehicles/{id}/status
func UpdateVehicleStatus(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		var req struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if !validVehicleStatus(req.Status) {
			utils.RespondError(w, http.StatusBadRequest, "status must be available, on_route, or maintenance")
			return
		}

		var vehicle models.Vehicle
		err := db.Get(&vehicle, "SELECT * FROM vehicles WHERE id = $1", id)
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, "Vehicle not found")
			return
		}
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		now := time.Now().Unix()
		if _, err := db.Exec("UPDATE vehicles SET status = $1, updated_at = $2 WHERE id = $3", req.Status, now, id); err != nil {
			log.Printf("❌ Error updating vehicle: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to update vehicle")
			return
		}

		vehicle.Status = req.Status
		vehicle.UpdatedAt = now
		log.Printf("🚚 Vehicle %s is now %s", vehicle.PlateNumber, req.Status)
		utils.RespondJSON(w, http.StatusOK, vehicle)
	}
}

// DeleteVehicle removes a vehicle from the fleet
// DELETE /api/vehicles/{id} (admin)
func DeleteVehicle(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		var onRoutes int
		if err := db.Get(&onRoutes, `
			SELECT COUNT(*) FROM collection_routes
			WHERE vehicle_id = $1 AND status IN ('pending', 'in_progress')
		`, id); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}
		if onRoutes > 0 {
			utils.RespondError(w, http.StatusConflict, "Vehicle has active routes")
			return
		}

		result, err := db.Exec("DELETE FROM vehicles WHERE id = $1", id)
		if err != nil {
			log.Printf("❌ Error deleting vehicle: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to delete vehicle")
			return
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			utils.RespondError(w, http.StatusNotFound, "Vehicle not found")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
