package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"smartwaste-backend/internal/models"
	"smartwaste-backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func validStartTime(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}

// GetSchedules lists recurring pickup slots
// GET /api/schedules?zone=
func GetSchedules(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := `SELECT * FROM collection_schedules`
		var args []interface{}

		if zone := r.URL.Query().Get("zone"); zone != "" {
			args = append(args, zone)
			query += " WHERE zone = $1"
		}
		query += " ORDER BY day_of_week ASC, start_time ASC"

		var schedules []models.CollectionSchedule
		if err := db.Select(&schedules, query, args...); err != nil {
			log.Printf("❌ Error fetching schedules: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch schedules")
			return
		}

		utils.RespondJSON(w, http.StatusOK, schedules)
	}
}

// CreateSchedule adds a recurring pickup slot for a zone
// POST /api/schedules (admin)
func CreateSchedule(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateScheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Zone == "" {
			utils.RespondError(w, http.StatusBadRequest, "zone is required")
			return
		}
		if req.DayOfWeek < 0 || req.DayOfWeek > 6 {
			utils.RespondError(w, http.StatusBadRequest, "day_of_week must be 0 (Sunday) through 6 (Saturday)")
			return
		}
		if !validStartTime(req.StartTime) {
			utils.RespondError(w, http.StatusBadRequest, "start_time must be HH:MM")
			return
		}

		if req.VehicleID != nil {
			var exists bool
			if err := db.Get(&exists, "SELECT EXISTS(SELECT 1 FROM vehicles WHERE id = $1)", *req.VehicleID); err != nil {
				utils.RespondError(w, http.StatusInternalServerError, "Database error")
				return
			}
			if !exists {
				utils.RespondError(w, http.StatusNotFound, "Vehicle not found")
				return
			}
		}

		id := uuid.New().String()
		now := time.Now().Unix()
		_, err := db.Exec(`
			INSERT INTO collection_schedules (id, zone, day_of_week, start_time, vehicle_id, active, created_at)
			VALUES ($1, $2, $3, $4, $5, TRUE, $6)
		`, id, req.Zone, req.DayOfWeek, req.StartTime, req.VehicleID, now)
		if err != nil {
			log.Printf("❌ Error creating schedule: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create schedule")
			return
		}

		var schedule models.CollectionSchedule
		if err := db.Get(&schedule, "SELECT * FROM collection_schedules WHERE id = $1", id); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch schedule")
			return
		}

		log.Printf("📅 Schedule created: %s day %d at %s", req.Zone, req.DayOfWeek, req.StartTime)
		utils.RespondJSON(w, http.StatusCreated, schedule)
	}
}

// UpdateSchedule changes a slot's day, time, vehicle, or active flag
// PATCH /api/schedules/{id} (admin)
func UpdateSchedule(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		var req struct {
			DayOfWeek *int    `json:"day_of_week,omitempty"`
			StartTime *string `json:"start_time,omitempty"`
			VehicleID *string `json:"vehicle_id,omitempty"`
			Active    *bool   `json:"active,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		var schedule models.CollectionSchedule
		err := db.Get(&schedule, "SELECT * FROM collection_schedules WHERE id = $1", id)
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, "Schedule not found")
			return
		}
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		var setClauses []string
		var args []interface{}
		addSet := func(column string, value interface{}) {
			args = append(args, value)
			setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
		}

		if req.DayOfWeek != nil {
			if *req.DayOfWeek < 0 || *req.DayOfWeek > 6 {
				utils.RespondError(w, http.StatusBadRequest, "day_of_week must be 0 through 6")
				return
			}
			addSet("day_of_week", *req.DayOfWeek)
		}
		if req.StartTime != nil {
			if !validStartTime(*req.StartTime) {
				utils.RespondError(w, http.StatusBadRequest, "start_time must be HH:MM")
				return
			}
			addSet("start_time", *req.StartTime)
		}
		if req.VehicleID != nil {
			var exists bool
			if err := db.Get(&exists, "SELECT EXISTS(SELECT 1 FROM vehicles WHERE id = $1)", *req.VehicleID); err != nil {
				utils.RespondError(w, http.StatusInternalServerError, "Database error")
				return
			}
			if !exists {
				utils.RespondError(w, http.StatusNotFound, "Vehicle not found")
				return
			}
			addSet("vehicle_id", *req.VehicleID)
		}
		if req.Active != nil {
			addSet("active", *req.Active)
		}

		if len(setClauses) == 0 {
			utils.RespondError(w, http.StatusBadRequest, "No fields to update")
			return
		}

		query := "UPDATE collection_schedules SET "
		for i, clause := range setClauses {
			if i > 0 {
				query += ", "
			}
			query += clause
		}
		args = append(args, id)
		query += fmt.Sprintf(" WHERE id = $%d", len(args))

		if _, err := db.Exec(query, args...); err != nil {
			log.Printf("❌ Error updating schedule: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to update schedule")
			return
		}

		if err := db.Get(&schedule, "SELECT * FROM collection_schedules WHERE id = $1", id); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch schedule")
			return
		}

		utils.RespondJSON(w, http.StatusOK, schedule)
	}
}

// DeleteSchedule removes a recurring slot
// DELETE /api/schedules/{id} (admin)
func DeleteSchedule(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		result, err := db.Exec("DELETE FROM collection_schedules WHERE id = $1", id)
		if err != nil {
			log.Printf("❌ Error deleting schedule: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to delete schedule")
			return
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			utils.RespondError(w, http.StatusNotFound, "Schedule not found")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
