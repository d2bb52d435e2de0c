package helpers

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"smartwaste-backend/internal/metrics"
	"smartwaste-backend/internal/models"
	"smartwaste-backend/internal/services"
	"smartwaste-backend/internal/websocket"
)

// CreateAlert persists an alert, pushes it to staff and admin dashboards,
// and notifies registered staff devices for critical severities. Returns
// (nil, nil) when an unresolved alert of the same type already exists for
// the bin, so repeated readings above a threshold do not spam.
func CreateAlert(db *sqlx.DB, hub *websocket.Hub, fcmService *services.FCMService, binID, binCode string, eval services.AlertEvaluation) (*models.Alert, error) {
	var existing int
	dedupeQuery := `SELECT COUNT(*) FROM alerts WHERE bin_id = $1 AND alert_type = $2 AND resolved = FALSE`
	if err := db.Get(&existing, dedupeQuery, binID, eval.Type); err != nil {
		log.Printf("❌ Failed to check existing alerts for bin %s: %v", binCode, err)
		return nil, err
	}
	if existing > 0 {
		return nil, nil
	}

	alert := models.Alert{
		ID:        uuid.New().String(),
		BinID:     binID,
		AlertType: eval.Type,
		Severity:  eval.Severity,
		Message:   eval.Message,
		Resolved:  false,
		CreatedAt: time.Now().Unix(),
	}

	query := `
		INSERT INTO alerts (id, bin_id, alert_type, severity, message, resolved, created_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6)
	`
	if _, err := db.Exec(query, alert.ID, alert.BinID, alert.AlertType, alert.Severity, alert.Message, alert.CreatedAt); err != nil {
		log.Printf("❌ Failed to create alert for bin %s: %v", binCode, err)
		return nil, err
	}

	metrics.AlertsCreated.WithLabelValues(alert.Severity).Inc()
	log.Printf("🚨 Alert created: %s [%s] %s", alert.AlertType, alert.Severity, alert.Message)

	if hub != nil {
		event := map[string]interface{}{
			"type": "new_alert",
			"data": alert.ToAlertResponse(),
		}
		hub.BroadcastToRole("admin", event)
		hub.BroadcastToRole("staff", event)
	}

	// Push critical alerts to staff phones
	if fcmService != nil && eval.Severity == services.SeverityCritical {
		var tokens []string
		tokenQuery := `
			SELECT ft.token FROM fcm_tokens ft
			JOIN users u ON u.id = ft.user_id
			WHERE u.role IN ('staff', 'admin')
		`
		if err := db.Select(&tokens, tokenQuery); err != nil {
			log.Printf("⚠️  Could not load FCM tokens: %v", err)
		} else if len(tokens) > 0 {
			go func() {
				if err := fcmService.SendMulticast(tokens, "Critical bin alert", eval.Message, map[string]string{
					"alert_id": alert.ID,
					"bin_id":   binID,
					"type":     eval.Type,
				}); err != nil {
					log.Printf("⚠️  FCM send failed: %v", err)
				}
			}()
		}
	}

	return &alert, nil
}
