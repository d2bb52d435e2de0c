package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"smartwaste-backend/internal/models"
	"smartwaste-backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func validBinType(t string) bool {
	switch t {
	case "general", "recyclable", "organic", "hazardous":
		return true
	}
	return false
}

func validBinStatus(s string) bool {
	switch s {
	case "active", "maintenance", "retired":
		return true
	}
	return false
}

// GetBins lists bins with optional zone, bin_type, status, and min_level filters
func GetBins(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := `SELECT * FROM bins`
		var conditions []string
		var args []interface{}

		if zone := r.URL.Query().Get("zone"); zone != "" {
			args = append(args, zone)
			conditions = append(conditions, fmt.Sprintf("zone = $%d", len(args)))
		}
		if binType := r.URL.Query().Get("bin_type"); binType != "" {
			if !validBinType(binType) {
				utils.RespondError(w, http.StatusBadRequest, "Invalid bin_type")
				return
			}
			args = append(args, binType)
			conditions = append(conditions, fmt.Sprintf("bin_type = $%d", len(args)))
		}
		if status := r.URL.Query().Get("status"); status != "" {
			if !validBinStatus(status) {
				utils.RespondError(w, http.StatusBadRequest, "Invalid status")
				return
			}
			args = append(args, status)
			conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
		}
		if minLevel := r.URL.Query().Get("min_level"); minLevel != "" {
			level, err := strconv.ParseFloat(minLevel, 64)
			if err != nil {
				utils.RespondError(w, http.StatusBadRequest, "Invalid min_level")
				return
			}
			args = append(args, level)
			conditions = append(conditions, fmt.Sprintf("current_waste_level >= $%d", len(args)))
		}

		if len(conditions) > 0 {
			query += " WHERE " + strings.Join(conditions, " AND ")
		}
		query += " ORDER BY code ASC"

		var bins []models.Bin
		if err := db.Select(&bins, query, args...); err != nil {
			log.Printf("❌ Error fetching bins: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch bins")
			return
		}

		responses := make([]models.BinResponse, len(bins))
		for i, bin := range bins {
			responses[i] = bin.ToBinResponse()
		}

		utils.RespondJSON(w, http.StatusOK, responses)
	}
}

// GetBin returns a single bin by ID
func GetBin(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		var bin models.Bin
		err := db.Get(&bin, "SELECT * FROM bins WHERE id = $1", id)
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, "Bin not found")
			return
		}
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		utils.RespondJSON(w, http.StatusOK, bin.ToBinResponse())
	}
}

// CreateBin registers a new bin
func CreateBin(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateBinRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		req.Code = strings.TrimSpace(req.Code)
		req.Zone = strings.TrimSpace(req.Zone)
		if req.Code == "" || req.Zone == "" {
			utils.RespondError(w, http.StatusBadRequest, "code and zone are required")
			return
		}
		if !validBinType(req.BinType) {
			utils.RespondError(w, http.StatusBadRequest, "Invalid bin_type (must be general, recyclable, organic, or hazardous)")
			return
		}
		if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
			utils.RespondError(w, http.StatusBadRequest, "Invalid coordinates")
			return
		}
		if req.CapacityLiters <= 0 {
			req.CapacityLiters = 240
		}

		var exists int
		if err := db.Get(&exists, "SELECT COUNT(*) FROM bins WHERE code = $1", req.Code); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}
		if exists > 0 {
			utils.RespondError(w, http.StatusConflict, "Bin code already in use")
			return
		}

		id := uuid.New().String()
		query := `
			INSERT INTO bins (id, code, zone, bin_type, capacity_liters, latitude, longitude, address)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		_, err := db.Exec(query, id, req.Code, req.Zone, req.BinType, req.CapacityLiters, req.Latitude, req.Longitude, req.Address)
		if err != nil {
			log.Printf("❌ Error creating bin: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create bin")
			return
		}

		var bin models.Bin
		if err := db.Get(&bin, "SELECT * FROM bins WHERE id = $1", id); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch created bin")
			return
		}

		log.Printf("🗑️  Bin created: %s (%s, %s)", bin.Code, bin.Zone, bin.BinType)
		utils.RespondJSON(w, http.StatusCreated, bin.ToBinResponse())
	}
}

// UpdateBin applies a partial update to a bin
func UpdateBin(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		var req models.UpdateBinRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		var existing models.Bin
		err := db.Get(&existing, "SELECT * FROM bins WHERE id = $1", id)
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, "Bin not found")
			return
		}
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		var sets []string
		var args []interface{}

		addSet := func(column string, value interface{}) {
			args = append(args, value)
			sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
		}

		if req.Zone != nil {
			addSet("zone", strings.TrimSpace(*req.Zone))
		}
		if req.BinType != nil {
			if !validBinType(*req.BinType) {
				utils.RespondError(w, http.StatusBadRequest, "Invalid bin_type")
				return
			}
			addSet("bin_type", *req.BinType)
		}
		if req.CapacityLiters != nil {
			if *req.CapacityLiters <= 0 {
				utils.RespondError(w, http.StatusBadRequest, "capacity_liters must be positive")
				return
			}
			addSet("capacity_liters", *req.CapacityLiters)
		}
		if req.Latitude != nil {
			addSet("latitude", *req.Latitude)
		}
		if req.Longitude != nil {
			addSet("longitude", *req.Longitude)
		}
		if req.Address != nil {
			addSet("address", *req.Address)
		}
		if req.Status != nil {
			if !validBinStatus(*req.Status) {
				utils.RespondError(w, http.StatusBadRequest, "Invalid status")
				return
			}
			addSet("status", *req.Status)
		}

		if len(sets) == 0 {
			utils.RespondError(w, http.StatusBadRequest, "No fields to update")
			return
		}

		addSet("updated_at", time.Now().Unix())
		args = append(args, id)
		query := fmt.Sprintf("UPDATE bins SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

		if _, err := db.Exec(query, args...); err != nil {
			log.Printf("❌ Error updating bin %s: %v", id, err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to update bin")
			return
		}

		var updated models.Bin
		if err := db.Get(&updated, "SELECT * FROM bins WHERE id = $1", id); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch updated bin")
			return
		}

		utils.RespondJSON(w, http.StatusOK, updated.ToBinResponse())
	}
}

// DeleteBin removes a bin and its sensor history
func DeleteBin(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		result, err := db.Exec("DELETE FROM bins WHERE id = $1", id)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to delete bin")
			return
		}

		rows, err := result.RowsAffected()
		if err != nil || rows == 0 {
			utils.RespondError(w, http.StatusNotFound, "Bin not found")
			return
		}

		log.Printf("🗑️  Bin deleted: %s", id)
		w.WriteHeader(http.StatusNoContent)
	}
}
