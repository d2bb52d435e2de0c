package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"smartwaste-backend/internal/services"
	"smartwaste-backend/internal/websocket"
	"smartwaste-backend/pkg/utils"

	"github.com/jmoiron/sqlx"
)

// GetHealth reports service liveness: database, websocket hub, geocoder
// GET /api/health
func GetHealth(db *sqlx.DB, hub *websocket.Hub, geocoder *services.GeocodingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		checks := map[string]interface{}{}

		if err := db.Ping(); err != nil {
			status = "degraded"
			checks["database"] = map[string]interface{}{"ok": false, "error": err.Error()}
		} else {
			checks["database"] = map[string]interface{}{"ok": true}
		}

		if hub != nil {
			checks["websocket"] = map[string]interface{}{
				"ok":      true,
				"clients": hub.GetClientCount(),
			}
		}

		if geocoder != nil {
			checks["geocoder"] = map[string]interface{}{
				"ok":    true,
				"cache": geocoder.CacheStats(),
			}
		} else {
			checks["geocoder"] = map[string]interface{}{"ok": false, "error": "not configured"}
		}

		code := http.StatusOK
		if status != "ok" {
			code = http.StatusServiceUnavailable
		}
		utils.RespondJSON(w, code, map[string]interface{}{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
			"checks": checks,
		})
	}
}

// DiagnosticLog represents a diagnostic log from a field sensor device
type DiagnosticLog struct {
	Timestamp string                 `json:"timestamp"`
	Context   string                 `json:"context"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data"`
	Platform  string                 `json:"platform"`
}

// ReceiveDiagnosticLog handles diagnostic logs from field sensor devices
// POST /api/logs/diagnostic
func ReceiveDiagnosticLog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var logEntry DiagnosticLog
		if err := json.NewDecoder(r.Body).Decode(&logEntry); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		// Log to console with color coding
		prefix := "📟"
		switch logEntry.Level {
		case "ERROR":
			prefix = "🔴"
		case "WARNING":
			prefix = "🟡"
		case "INFO":
			prefix = "🔵"
		}

		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Printf("%s DEVICE DIAGNOSTIC [%s]", prefix, logEntry.Level)
		log.Printf("   Platform:  %s", logEntry.Platform)
		log.Printf("   Context:   %s", logEntry.Context)
		log.Printf("   Timestamp: %s", logEntry.Timestamp)
		log.Printf("   Message:   %s", logEntry.Message)

		if len(logEntry.Data) > 0 {
			log.Println("   Data:")
			dataJSON, err := json.MarshalIndent(logEntry.Data, "      ", "  ")
			if err == nil {
				log.Printf("      %s", string(dataJSON))
			}
		}
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

		utils.RespondJSON(w, http.StatusOK, map[string]string{
			"status": "received",
		})
	}
}
