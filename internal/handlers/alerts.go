package handlers

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"smartwaste-backend/internal/middleware"
	"smartwaste-backend/internal/models"
	"smartwaste-backend/internal/websocket"
	"smartwaste-backend/pkg/utils"

	"github.com/jmoiron/sqlx"
)

// GetAlerts lists alerts with their bin codes, newest first
// GET /api/alerts?resolved=&severity=&bin_id=
func GetAlerts(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := `
			SELECT a.*, b.code AS bin_code, b.zone AS bin_zone
			FROM alerts a
			JOIN bins b ON b.id = a.bin_id
		`
		var conditions []string
		var args []interface{}

		if resolved := r.URL.Query().Get("resolved"); resolved != "" {
			if resolved != "true" && resolved != "false" {
				utils.RespondError(w, http.StatusBadRequest, "resolved must be true or false")
				return
			}
			args = append(args, resolved == "true")
			conditions = append(conditions, fmt.Sprintf("a.resolved = $%d", len(args)))
		}
		if severity := r.URL.Query().Get("severity"); severity != "" {
			if severity != "critical" && severity != "warning" {
				utils.RespondError(w, http.StatusBadRequest, "Invalid severity")
				return
			}
			args = append(args, severity)
			conditions = append(conditions, fmt.Sprintf("a.severity = $%d", len(args)))
		}
		if binID := r.URL.Query().Get("bin_id"); binID != "" {
			args = append(args, binID)
			conditions = append(conditions, fmt.Sprintf("a.bin_id = $%d", len(args)))
		}

		for i, condition := range conditions {
			if i == 0 {
				query += " WHERE " + condition
			} else {
				query += " AND " + condition
			}
		}
		query += " ORDER BY a.created_at DESC"

		var rows []struct {
			models.Alert
			BinCode string `db:"bin_code"`
			BinZone string `db:"bin_zone"`
		}
		if err := db.Select(&rows, query, args...); err != nil {
			log.Printf("❌ Error fetching alerts: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch alerts")
			return
		}

		responses := make([]map[string]interface{}, len(rows))
		for i, row := range rows {
			responses[i] = map[string]interface{}{
				"alert":    row.Alert.ToAlertResponse(),
				"bin_code": row.BinCode,
				"bin_zone": row.BinZone,
			}
		}

		utils.RespondJSON(w, http.StatusOK, responses)
	}
}

// ResolveAlert marks an alert as handled. Resolving twice is a no-op.
// PATCH /api/alerts/{id}/resolve
func ResolveAlert(db *sqlx.DB, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		userClaims, ok := middleware.GetUserFromContext(r.Context())
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var alert models.Alert
		err := db.Get(&alert, "SELECT * FROM alerts WHERE id = $1", id)
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, "Alert not found")
			return
		}
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		if alert.Resolved {
			utils.RespondJSON(w, http.StatusOK, alert.ToAlertResponse())
			return
		}

		now := time.Now().Unix()
		_, err = db.Exec(`
			UPDATE alerts SET resolved = TRUE, resolved_at = $1, resolved_by = $2 WHERE id = $3
		`, now, userClaims.UserID, id)
		if err != nil {
			log.Printf("❌ Error resolving alert: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to resolve alert")
			return
		}

		alert.Resolved = true
		alert.ResolvedAt = &now
		alert.ResolvedBy = &userClaims.UserID

		if hub != nil {
			event := map[string]interface{}{
				"type": "alert_resolved",
				"data": alert.ToAlertResponse(),
			}
			hub.BroadcastToRole("admin", event)
			hub.BroadcastToRole("staff", event)
		}

		log.Printf("✅ Alert %s resolved by %s", id, userClaims.Email)
		utils.RespondJSON(w, http.StatusOK, alert.ToAlertResponse())
	}
}
