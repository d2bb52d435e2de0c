package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"smartwaste-backend/internal/helpers"
	"smartwaste-backend/internal/middleware"
	"smartwaste-backend/internal/models"
	"smartwaste-backend/internal/services"
	"smartwaste-backend/internal/websocket"
	"smartwaste-backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func validReportType(t string) bool {
	switch t {
	case "overflow", "damage", "missed_pickup", "illegal_dumping":
		return true
	}
	return false
}

// CreateWasteReport files a citizen report. An overflow report against a
// known bin also raises a fullness alert so staff see it on the same board
// as sensor-driven problems.
// POST /api/reports
func CreateWasteReport(db *sqlx.DB, hub *websocket.Hub, fcmService *services.FCMService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r.Context())
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req models.CreateWasteReportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if !validReportType(req.ReportType) {
			utils.RespondError(w, http.StatusBadRequest, "report_type must be overflow, damage, missed_pickup, or illegal_dumping")
			return
		}
		req.Description = strings.TrimSpace(req.Description)
		if req.Description == "" {
			utils.RespondError(w, http.StatusBadRequest, "description is required")
			return
		}
		if req.BinID == nil && (req.Latitude == nil || req.Longitude == nil) {
			utils.RespondError(w, http.StatusBadRequest, "Provide either bin_id or latitude and longitude")
			return
		}

		var bin *models.Bin
		if req.BinID != nil {
			var loaded models.Bin
			err := db.Get(&loaded, "SELECT * FROM bins WHERE id = $1", *req.BinID)
			if err == sql.ErrNoRows {
				utils.RespondError(w, http.StatusNotFound, "Bin not found")
				return
			}
			if err != nil {
				utils.RespondError(w, http.StatusInternalServerError, "Database error")
				return
			}
			bin = &loaded
		}

		id := uuid.New().String()
		now := time.Now().Unix()
		_, err := db.Exec(`
			INSERT INTO waste_reports (id, reporter_id, bin_id, latitude, longitude, report_type, description, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, 'open', $8, $9)
		`, id, userClaims.UserID, req.BinID, req.Latitude, req.Longitude, req.ReportType, req.Description, now, now)
		if err != nil {
			log.Printf("❌ Error creating report: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create report")
			return
		}

		// A citizen seeing an overflowing bin is as good a signal as a sensor
		if req.ReportType == "overflow" && bin != nil {
			_, err := helpers.CreateAlert(db, hub, fcmService, bin.ID, bin.Code, services.AlertEvaluation{
				Type:     services.AlertBinFull,
				Severity: services.SeverityWarning,
				Message:  fmt.Sprintf("Overflow reported at bin %s by a citizen", bin.Code),
			})
			if err != nil {
				log.Printf("⚠️ Could not raise overflow alert: %v", err)
			}
		}

		var report models.WasteReport
		if err := db.Get(&report, "SELECT * FROM waste_reports WHERE id = $1", id); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch report")
			return
		}

		if hub != nil {
			event := map[string]interface{}{
				"type": "new_report",
				"data": report.ToWasteReportResponse(),
			}
			hub.BroadcastToRole("admin", event)
			hub.BroadcastToRole("staff", event)
		}

		log.Printf("📋 Report filed: %s (%s)", id, req.ReportType)
		utils.RespondJSON(w, http.StatusCreated, report.ToWasteReportResponse())
	}
}

// GetWasteReports lists reports. Citizens only see their own; staff and
// admins see everything.
// GET /api/reports?status=&report_type=
func GetWasteReports(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r.Context())
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		query := `SELECT * FROM waste_reports`
		var conditions []string
		var args []interface{}

		if userClaims.Role == "citizen" {
			args = append(args, userClaims.UserID)
			conditions = append(conditions, fmt.Sprintf("reporter_id = $%d", len(args)))
		}
		if status := r.URL.Query().Get("status"); status != "" {
			args = append(args, status)
			conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
		}
		if reportType := r.URL.Query().Get("report_type"); reportType != "" {
			if !validReportType(reportType) {
				utils.RespondError(w, http.StatusBadRequest, "Invalid report_type")
				return
			}
			args = append(args, reportType)
			conditions = append(conditions, fmt.Sprintf("report_type = $%d", len(args)))
		}

		for i, condition := range conditions {
			if i == 0 {
				query += " WHERE " + condition
			} else {
				query += " AND " + condition
			}
		}
		query += " ORDER BY created_at DESC"

		var reports []models.WasteReport
		if err := db.Select(&reports, query, args...); err != nil {
			log.Printf("❌ Error fetching reports: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch reports")
			return
		}

		responses := make([]models.WasteReportResponse, len(reports))
		for i, report := range reports {
			responses[i] = report.ToWasteReportResponse()
		}

		utils.RespondJSON(w, http.StatusOK, responses)
	}
}

var validReportTransitions = map[string][]string{
	"open":        {"in_progress", "resolved", "dismissed"},
	"in_progress": {"resolved", "dismissed"},
	"resolved":    {},
	"dismissed":   {},
}

// UpdateReportStatus moves a report through triage
// PATCH /api/reports/{id}/status (staff, admin)
func UpdateReportStatus(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		userClaims, ok := middleware.GetUserFromContext(r.Context())
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req models.UpdateReportStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		var report models.WasteReport
		err := db.Get(&report, "SELECT * FROM waste_reports WHERE id = $1", id)
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, "Report not found")
			return
		}
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		allowed := false
		for _, next := range validReportTransitions[report.Status] {
			if next == req.Status {
				allowed = true
				break
			}
		}
		if !allowed {
			utils.RespondError(w, http.StatusConflict, fmt.Sprintf("Cannot move report from %s to %s", report.Status, req.Status))
			return
		}

		now := time.Now().Unix()
		if req.Status == "resolved" || req.Status == "dismissed" {
			_, err = db.Exec(`
				UPDATE waste_reports SET status = $1, resolved_by = $2, resolved_at = $3, updated_at = $4 WHERE id = $5
			`, req.Status, userClaims.UserID, now, now, id)
		} else {
			_, err = db.Exec(`
				UPDATE waste_reports SET status = $1, updated_at = $2 WHERE id = $3
			`, req.Status, now, id)
		}
		if err != nil {
			log.Printf("❌ Error updating report: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to update report")
			return
		}

		if err := db.Get(&report, "SELECT * FROM waste_reports WHERE id = $1", id); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch report")
			return
		}

		log.Printf("📋 Report %s is now %s", id, req.Status)
		utils.RespondJSON(w, http.StatusOK, report.ToWasteReportResponse())
	}
}
