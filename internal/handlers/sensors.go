package handlers

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"smartwaste-backend/internal/helpers"
	"smartwaste-backend/internal/metrics"
	"smartwaste-backend/internal/models"
	"smartwaste-backend/internal/services"
	"smartwaste-backend/internal/websocket"
	"smartwaste-backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// RecordReading ingests one sensor reading for a bin.
// POST /api/bins/{id}/readings
func RecordReading(db *sqlx.DB, hub *websocket.Hub, fcmService *services.FCMService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		binID := r.PathValue("id")

		var req models.RecordReadingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		var bin models.Bin
		err := db.Get(&bin, "SELECT * FROM bins WHERE id = $1", binID)
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, "Bin not found")
			return
		}
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		if bin.Status == "retired" {
			utils.RespondError(w, http.StatusConflict, "Bin is retired")
			return
		}

		// Out-of-range levels are clamped, not rejected: sensors drift, and a
		// dropped reading is worse than a clamped one
		level := req.WasteLevel
		if level < 0 || level > 100 {
			log.Printf("⚠️  Bin %s reported out-of-range waste level %.2f, clamping", bin.Code, level)
			if level < 0 {
				level = 0
			} else {
				level = 100
			}
		}

		battery := 100.0
		if req.BatteryLevel != nil {
			battery = *req.BatteryLevel
		}

		logEntry := models.SensorLog{
			ID:           uuid.New().String(),
			BinID:        binID,
			WasteLevel:   level,
			Temperature:  req.Temperature,
			Humidity:     req.Humidity,
			BatteryLevel: battery,
			RecordedAt:   time.Now().Unix(),
		}

		insertQuery := `
			INSERT INTO sensor_logs (id, bin_id, waste_level, temperature, humidity, battery_level, recorded_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		_, err = db.Exec(insertQuery,
			logEntry.ID, logEntry.BinID, logEntry.WasteLevel, logEntry.Temperature,
			logEntry.Humidity, logEntry.BatteryLevel, logEntry.RecordedAt,
		)
		if err != nil {
			log.Printf("❌ Error inserting sensor log: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to record reading")
			return
		}

		// Keep the bin's live level in sync with the newest reading
		updateQuery := `UPDATE bins SET current_waste_level = $1, updated_at = $2 WHERE id = $3`
		if _, err := db.Exec(updateQuery, level, logEntry.RecordedAt, binID); err != nil {
			log.Printf("❌ Error updating bin level: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to update bin")
			return
		}

		metrics.SensorReadings.WithLabelValues(bin.BinType).Inc()

		// Threshold alerts
		for _, eval := range services.EvaluateReading(bin.Code, bin.BinType, level, req.Temperature) {
			if _, err := helpers.CreateAlert(db, hub, fcmService, binID, bin.Code, eval); err != nil {
				log.Printf("⚠️  Alert creation failed for bin %s: %v", bin.Code, err)
			}
		}

		// Live dashboard update
		if hub != nil {
			hub.BroadcastToAll(map[string]interface{}{
				"type": "bin_update",
				"data": map[string]interface{}{
					"bin_id":      binID,
					"code":        bin.Code,
					"zone":        bin.Zone,
					"waste_level": level,
					"temperature": req.Temperature,
					"recorded_at": logEntry.RecordedAt,
				},
			})
		}

		utils.RespondJSON(w, http.StatusCreated, logEntry.ToSensorLogResponse())
	}
}

// GetBinReadings returns a bin's sensor history, newest first.
// GET /api/bins/{id}/readings?hours=24
func GetBinReadings(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		binID := r.PathValue("id")

		hours := 24
		if h := r.URL.Query().Get("hours"); h != "" {
			parsed, err := strconv.Atoi(h)
			if err != nil || parsed <= 0 {
				utils.RespondError(w, http.StatusBadRequest, "Invalid hours")
				return
			}
			hours = parsed
		}

		var exists int
		if err := db.Get(&exists, "SELECT COUNT(*) FROM bins WHERE id = $1", binID); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}
		if exists == 0 {
			utils.RespondError(w, http.StatusNotFound, "Bin not found")
			return
		}

		since := time.Now().Add(-time.Duration(hours) * time.Hour).Unix()

		var logs []models.SensorLog
		query := `
			SELECT * FROM sensor_logs
			WHERE bin_id = $1 AND recorded_at >= $2
			ORDER BY recorded_at DESC
		`
		if err := db.Select(&logs, query, binID, since); err != nil {
			log.Printf("❌ Error fetching sensor logs: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch readings")
			return
		}

		responses := make([]models.SensorLogResponse, len(logs))
		for i, entry := range logs {
			responses[i] = entry.ToSensorLogResponse()
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"bin_id":   binID,
			"hours":    hours,
			"count":    len(responses),
			"readings": responses,
		})
	}
}

// GetLatestReadings returns the most recent reading per bin, for fleet
// monitoring dashboards.
// GET /api/sensors/latest
func GetLatestReadings(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rows []struct {
			models.SensorLog
			Code string `db:"code"`
			Zone string `db:"zone"`
		}

		query := `
			SELECT DISTINCT ON (sl.bin_id)
			       sl.id, sl.bin_id, sl.waste_level, sl.temperature, sl.humidity,
			       sl.battery_level, sl.recorded_at, b.code, b.zone
			FROM sensor_logs sl
			JOIN bins b ON b.id = sl.bin_id
			ORDER BY sl.bin_id, sl.recorded_at DESC
		`
		if err := db.Select(&rows, query); err != nil {
			log.Printf("❌ Error fetching latest readings: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch readings")
			return
		}

		type latestReading struct {
			models.SensorLogResponse
			Code string `json:"code"`
			Zone string `json:"zone"`
		}

		responses := make([]latestReading, len(rows))
		for i, row := range rows {
			responses[i] = latestReading{
				SensorLogResponse: row.ToSensorLogResponse(),
				Code:              row.Code,
				Zone:              row.Zone,
			}
		}

		utils.RespondJSON(w, http.StatusOK, responses)
	}
}
