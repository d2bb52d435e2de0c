package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"smartwaste-backend/internal/database"
	"smartwaste-backend/internal/middleware"
	"smartwaste-backend/internal/models"
	"smartwaste-backend/internal/websocket"
	"smartwaste-backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// defaultResidualLevel is the assumed leftover fill after an emptying when
// the collector does not report a measured level.
const defaultResidualLevel = 5.0

// RecordCollection logs the emptying of a bin: resets its level, resolves
// its open fullness alerts, and advances the route it belongs to.
// POST /api/bins/{id}/collections
func RecordCollection(db *sqlx.DB, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		binID := r.PathValue("id")

		userClaims, ok := middleware.GetUserFromContext(r.Context())
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req models.RecordCollectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
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
			log.Printf("❌ Error fetching bin: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		levelBefore := bin.CurrentWasteLevel
		levelAfter := defaultResidualLevel
		if req.LevelAfter != nil {
			levelAfter = *req.LevelAfter
		}
		if levelAfter < 0 || levelAfter > 100 {
			utils.RespondError(w, http.StatusBadRequest, "level_after must be between 0 and 100")
			return
		}
		if levelAfter > levelBefore {
			utils.RespondError(w, http.StatusBadRequest, "level_after cannot exceed the current level")
			return
		}

		// Validate the route link before touching anything
		var route *models.CollectionRoute
		if req.RouteID != nil {
			var loaded models.CollectionRoute
			err := db.Get(&loaded, "SELECT * FROM collection_routes WHERE id = $1", *req.RouteID)
			if err == sql.ErrNoRows {
				utils.RespondError(w, http.StatusNotFound, "Route not found")
				return
			}
			if err != nil {
				utils.RespondError(w, http.StatusInternalServerError, "Database error")
				return
			}
			if loaded.Status == "completed" || loaded.Status == "cancelled" {
				utils.RespondError(w, http.StatusConflict, fmt.Sprintf("Route is already %s", loaded.Status))
				return
			}
			route = &loaded
		}

		wasteAmountKg := (levelBefore - levelAfter) * bin.CapacityLiters / 100.0
		now := time.Now().Unix()
		logID := uuid.New().String()

		tx, err := db.Beginx()
		if err != nil {
			log.Printf("❌ Error starting transaction: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}
		defer tx.Rollback()

		_, err = tx.Exec(`
			INSERT INTO collection_logs (id, bin_id, route_id, collected_by, level_before, level_after, waste_amount_kg, collected_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, logID, binID, req.RouteID, userClaims.UserID, levelBefore, levelAfter, wasteAmountKg, now)
		if err != nil {
			log.Printf("❌ Error inserting collection log: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to record collection")
			return
		}

		_, err = tx.Exec(`
			UPDATE bins SET current_waste_level = $1, last_collected_at = $2, updated_at = $3 WHERE id = $4
		`, levelAfter, now, now, binID)
		if err != nil {
			log.Printf("❌ Error updating bin: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to record collection")
			return
		}

		// Fullness alerts are moot once the bin is empty
		result, err := tx.Exec(`
			UPDATE alerts SET resolved = TRUE, resolved_at = $1, resolved_by = $2
			WHERE bin_id = $3 AND resolved = FALSE AND alert_type IN ('bin_full', 'bin_almost_full')
		`, now, userClaims.UserID, binID)
		if err != nil {
			log.Printf("❌ Error resolving alerts: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to record collection")
			return
		}
		resolvedCount, _ := result.RowsAffected()

		if err := tx.Commit(); err != nil {
			log.Printf("❌ Error committing collection: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to record collection")
			return
		}

		log.Printf("🚛 Collected bin %s: %.1f%% -> %.1f%% (%.1f kg, %d alerts resolved)",
			bin.Code, levelBefore, levelAfter, wasteAmountKg, resolvedCount)

		// Advance the route the collection belongs to
		if route != nil {
			if err := database.MarkStopCollected(db, route.ID, binID, now); err != nil {
				log.Printf("⚠️ Could not mark stop collected: %v", err)
			} else {
				if route.Status == "pending" {
					if _, err := db.Exec("UPDATE collection_routes SET status = 'in_progress', updated_at = $1 WHERE id = $2", now, route.ID); err != nil {
						log.Printf("⚠️ Could not start route %s: %v", route.ID, err)
					}
				}
				pending, err := database.CountPendingStops(db, route.ID)
				if err == nil && pending == 0 {
					if _, err := db.Exec("UPDATE collection_routes SET status = 'completed', updated_at = $1 WHERE id = $2", now, route.ID); err != nil {
						log.Printf("⚠️ Could not complete route %s: %v", route.ID, err)
					} else {
						log.Printf("🏁 Route %s completed", route.ID)
						if route.VehicleID != nil {
							if _, err := db.Exec("UPDATE vehicles SET status = 'available', updated_at = $1 WHERE id = $2", now, *route.VehicleID); err != nil {
								log.Printf("⚠️ Could not release vehicle %s: %v", *route.VehicleID, err)
							}
						}
					}
				}
			}
		}

		if hub != nil {
			hub.BroadcastToAll(map[string]interface{}{
				"type": "bin_update",
				"data": map[string]interface{}{
					"bin_id":      binID,
					"code":        bin.Code,
					"zone":        bin.Zone,
					"waste_level": levelAfter,
					"collected":   true,
					"recorded_at": time.Unix(now, 0).Format(time.RFC3339),
				},
			})
		}

		entry := models.CollectionLog{
			ID:            logID,
			BinID:         binID,
			RouteID:       req.RouteID,
			CollectedBy:   &userClaims.UserID,
			LevelBefore:   levelBefore,
			LevelAfter:    levelAfter,
			WasteAmountKg: wasteAmountKg,
			CollectedAt:   now,
		}
		utils.RespondJSON(w, http.StatusCreated, entry.ToCollectionLogResponse())
	}
}

// GetBinCollections returns the collection history of one bin, newest first
// GET /api/bins/{id}/collections
func GetBinCollections(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		binID := r.PathValue("id")

		var exists bool
		if err := db.Get(&exists, "SELECT EXISTS(SELECT 1 FROM bins WHERE id = $1)", binID); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}
		if !exists {
			utils.RespondError(w, http.StatusNotFound, "Bin not found")
			return
		}

		var logs []models.CollectionLog
		err := db.Select(&logs, `
			SELECT * FROM collection_logs WHERE bin_id = $1 ORDER BY collected_at DESC
		`, binID)
		if err != nil {
			log.Printf("❌ Error fetching collections: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch collections")
			return
		}

		responses := make([]models.CollectionLogResponse, len(logs))
		for i, entry := range logs {
			responses[i] = entry.ToCollectionLogResponse()
		}

		utils.RespondJSON(w, http.StatusOK, responses)
	}
}

// GetCollections lists collection logs, optionally for a single day
// GET /api/collections?date=YYYY-MM-DD
func GetCollections(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := `SELECT * FROM collection_logs`
		var args []interface{}

		if date := r.URL.Query().Get("date"); date != "" {
			day, err := time.Parse("2006-01-02", date)
			if err != nil {
				utils.RespondError(w, http.StatusBadRequest, "Invalid date (want YYYY-MM-DD)")
				return
			}
			dayStart := day.Unix()
			args = append(args, dayStart, dayStart+86400)
			query += " WHERE collected_at >= $1 AND collected_at < $2"
		}
		query += " ORDER BY collected_at DESC"

		var logs []models.CollectionLog
		if err := db.Select(&logs, query, args...); err != nil {
			log.Printf("❌ Error fetching collections: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch collections")
			return
		}

		responses := make([]models.CollectionLogResponse, len(logs))
		for i, entry := range logs {
			responses[i] = entry.ToCollectionLogResponse()
		}

		utils.RespondJSON(w, http.StatusOK, responses)
	}
}
