package handlers

import (
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"smartwaste-backend/pkg/utils"

	"github.com/jmoiron/sqlx"
)

// GetDashboard returns the headline numbers for the operations dashboard
// GET /api/analytics/dashboard
func GetDashboard(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		type DashboardStats struct {
			TotalBins          int      `db:"total_bins"`
			ActiveBins         int      `db:"active_bins"`
			MaintenanceBins    int      `db:"maintenance_bins"`
			AvgWasteLevel      *float64 `db:"avg_waste_level"`
			BinsNeedingPickup  int      `db:"bins_needing_pickup"`
			OpenCriticalAlerts int      `db:"open_critical_alerts"`
			OpenWarningAlerts  int      `db:"open_warning_alerts"`
			CollectionsToday   int      `db:"collections_today"`
			KgCollectedToday   *float64 `db:"kg_collected_today"`
			ActiveRoutes       int      `db:"active_routes"`
			OpenReports        int      `db:"open_reports"`
			AvailableVehicles  int      `db:"available_vehicles"`
		}

		todayStart := time.Now().Truncate(24 * time.Hour).Unix()

		var stats DashboardStats
		err := db.Get(&stats, `
			SELECT
				(SELECT COUNT(*) FROM bins) AS total_bins,
				(SELECT COUNT(*) FROM bins WHERE status = 'active') AS active_bins,
				(SELECT COUNT(*) FROM bins WHERE status = 'maintenance') AS maintenance_bins,
				(SELECT AVG(current_waste_level) FROM bins WHERE status = 'active') AS avg_waste_level,
				(SELECT COUNT(*) FROM bins WHERE status = 'active' AND current_waste_level >= 80) AS bins_needing_pickup,
				(SELECT COUNT(*) FROM alerts WHERE resolved = FALSE AND severity = 'critical') AS open_critical_alerts,
				(SELECT COUNT(*) FROM alerts WHERE resolved = FALSE AND severity = 'warning') AS open_warning_alerts,
				(SELECT COUNT(*) FROM collection_logs WHERE collected_at >= $1) AS collections_today,
				(SELECT SUM(waste_amount_kg) FROM collection_logs WHERE collected_at >= $1) AS kg_collected_today,
				(SELECT COUNT(*) FROM collection_routes WHERE status IN ('pending', 'in_progress')) AS active_routes,
				(SELECT COUNT(*) FROM waste_reports WHERE status IN ('open', 'in_progress')) AS open_reports,
				(SELECT COUNT(*) FROM vehicles WHERE status = 'available') AS available_vehicles
		`, todayStart)
		if err != nil {
			log.Printf("❌ Error fetching dashboard stats: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch dashboard")
			return
		}

		avgLevel := 0.0
		if stats.AvgWasteLevel != nil {
			avgLevel = *stats.AvgWasteLevel
		}
		kgToday := 0.0
		if stats.KgCollectedToday != nil {
			kgToday = *stats.KgCollectedToday
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"bins": map[string]interface{}{
				"total":          stats.TotalBins,
				"active":         stats.ActiveBins,
				"maintenance":    stats.MaintenanceBins,
				"avg_level":      avgLevel,
				"needing_pickup": stats.BinsNeedingPickup,
			},
			"alerts": map[string]interface{}{
				"open_critical": stats.OpenCriticalAlerts,
				"open_warning":  stats.OpenWarningAlerts,
			},
			"collections_today": map[string]interface{}{
				"count":        stats.CollectionsToday,
				"kg_collected": kgToday,
			},
			"active_routes":      stats.ActiveRoutes,
			"open_reports":       stats.OpenReports,
			"available_vehicles": stats.AvailableVehicles,
		})
	}
}

// GetZoneAnalytics returns per-zone fill and collection figures
// GET /api/analytics/zones
func GetZoneAnalytics(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		type ZoneStats struct {
			Zone              string   `json:"zone" db:"zone"`
			TotalBins         int      `json:"total_bins" db:"total_bins"`
			AvgWasteLevel     *float64 `json:"avg_waste_level" db:"avg_waste_level"`
			BinsNeedingPickup int      `json:"bins_needing_pickup" db:"bins_needing_pickup"`
			OpenAlerts        int      `json:"open_alerts" db:"open_alerts"`
			CollectionsWeek   int      `json:"collections_last_7d" db:"collections_week"`
			KgCollectedWeek   *float64 `json:"kg_collected_last_7d" db:"kg_collected_week"`
		}

		weekStart := time.Now().AddDate(0, 0, -7).Unix()

		var zones []ZoneStats
		err := db.Select(&zones, `
			SELECT
				b.zone,
				COUNT(*) AS total_bins,
				AVG(b.current_waste_level) AS avg_waste_level,
				COUNT(CASE WHEN b.current_waste_level >= 80 THEN 1 END) AS bins_needing_pickup,
				(SELECT COUNT(*)
				 FROM alerts a
				 JOIN bins b2 ON a.bin_id = b2.id
				 WHERE b2.zone = b.zone AND a.resolved = FALSE) AS open_alerts,
				(SELECT COUNT(*)
				 FROM collection_logs cl
				 JOIN bins b2 ON cl.bin_id = b2.id
				 WHERE b2.zone = b.zone AND cl.collected_at >= $1) AS collections_week,
				(SELECT SUM(cl.waste_amount_kg)
				 FROM collection_logs cl
				 JOIN bins b2 ON cl.bin_id = b2.id
				 WHERE b2.zone = b.zone AND cl.collected_at >= $1) AS kg_collected_week
			FROM bins b
			WHERE b.status = 'active'
			GROUP BY b.zone
			ORDER BY b.zone
		`, weekStart)
		if err != nil {
			log.Printf("❌ Error fetching zone analytics: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch zone analytics")
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"zones": zones,
		})
	}
}

// GetTrends returns daily average fill level and collection volume
// GET /api/analytics/trends?days=7
func GetTrends(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days := 7
		if daysStr := r.URL.Query().Get("days"); daysStr != "" {
			parsed, err := strconv.Atoi(daysStr)
			if err != nil || parsed < 1 || parsed > 90 {
				utils.RespondError(w, http.StatusBadRequest, "days must be between 1 and 90")
				return
			}
			days = parsed
		}

		since := time.Now().AddDate(0, 0, -days).Unix()

		type dayRow struct {
			Day   string   `db:"day"`
			Avg   *float64 `db:"avg_value"`
			Count int      `db:"entry_count"`
			Kg    *float64 `db:"kg_total"`
		}

		var levelRows []dayRow
		err := db.Select(&levelRows, `
			SELECT
				TO_CHAR(TO_TIMESTAMP(recorded_at), 'YYYY-MM-DD') AS day,
				AVG(waste_level) AS avg_value,
				COUNT(*) AS entry_count,
				NULL::DOUBLE PRECISION AS kg_total
			FROM sensor_logs
			WHERE recorded_at >= $1
			GROUP BY day
		`, since)
		if err != nil {
			log.Printf("❌ Error fetching level trends: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch trends")
			return
		}

		var collectionRows []dayRow
		err = db.Select(&collectionRows, `
			SELECT
				TO_CHAR(TO_TIMESTAMP(collected_at), 'YYYY-MM-DD') AS day,
				NULL::DOUBLE PRECISION AS avg_value,
				COUNT(*) AS entry_count,
				SUM(waste_amount_kg) AS kg_total
			FROM collection_logs
			WHERE collected_at >= $1
			GROUP BY day
		`, since)
		if err != nil {
			log.Printf("❌ Error fetching collection trends: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch trends")
			return
		}

		type TrendDay struct {
			Day           string   `json:"day"`
			AvgWasteLevel *float64 `json:"avg_waste_level,omitempty"`
			ReadingCount  int      `json:"reading_count"`
			Collections   int      `json:"collections"`
			KgCollected   float64  `json:"kg_collected"`
		}

		byDay := make(map[string]*TrendDay)
		for _, row := range levelRows {
			byDay[row.Day] = &TrendDay{
				Day:           row.Day,
				AvgWasteLevel: row.Avg,
				ReadingCount:  row.Count,
			}
		}
		for _, row := range collectionRows {
			entry, ok := byDay[row.Day]
			if !ok {
				entry = &TrendDay{Day: row.Day}
				byDay[row.Day] = entry
			}
			entry.Collections = row.Count
			if row.Kg != nil {
				entry.KgCollected = *row.Kg
			}
		}

		trend := make([]TrendDay, 0, len(byDay))
		for _, entry := range byDay {
			trend = append(trend, *entry)
		}
		sort.Slice(trend, func(i, j int) bool { return trend[i].Day < trend[j].Day })

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"days":  days,
			"trend": trend,
		})
	}
}

// GetEfficiency returns routing and collection efficiency over the last 30 days
// GET /api/analytics/efficiency
func GetEfficiency(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		type EfficiencyStats struct {
			RoutesCreated   int      `db:"routes_created"`
			RoutesCompleted int      `db:"routes_completed"`
			AvgStops        *float64 `db:"avg_stops"`
			AvgDistanceKm   *float64 `db:"avg_distance_km"`
			TotalKg         *float64 `db:"total_kg"`
			Collections     int      `db:"collections"`
		}

		since := time.Now().AddDate(0, 0, -30).Unix()

		var stats EfficiencyStats
		err := db.Get(&stats, `
			SELECT
				(SELECT COUNT(*) FROM collection_routes WHERE created_at >= $1) AS routes_created,
				(SELECT COUNT(*) FROM collection_routes WHERE created_at >= $1 AND status = 'completed') AS routes_completed,
				(SELECT AVG(total_bins) FROM collection_routes WHERE created_at >= $1) AS avg_stops,
				(SELECT AVG(total_distance_km) FROM collection_routes WHERE created_at >= $1) AS avg_distance_km,
				(SELECT SUM(waste_amount_kg) FROM collection_logs WHERE collected_at >= $1) AS total_kg,
				(SELECT COUNT(*) FROM collection_logs WHERE collected_at >= $1) AS collections
		`, since)
		if err != nil {
			log.Printf("❌ Error fetching efficiency stats: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch efficiency")
			return
		}

		completionRate := 0.0
		if stats.RoutesCreated > 0 {
			completionRate = float64(stats.RoutesCompleted) / float64(stats.RoutesCreated) * 100
		}

		response := map[string]interface{}{
			"window_days":      30,
			"routes_created":   stats.RoutesCreated,
			"routes_completed": stats.RoutesCompleted,
			"completion_rate":  completionRate,
			"collections":      stats.Collections,
		}
		if stats.AvgStops != nil {
			response["avg_stops_per_route"] = *stats.AvgStops
		}
		if stats.AvgDistanceKm != nil {
			response["avg_route_distance_km"] = *stats.AvgDistanceKm
		}
		if stats.TotalKg != nil {
			response["kg_collected"] = *stats.TotalKg
		}

		// Kilograms moved per kilometre driven, the number dispatch actually watches
		if stats.TotalKg != nil && stats.AvgDistanceKm != nil && stats.RoutesCompleted > 0 {
			totalKm := *stats.AvgDistanceKm * float64(stats.RoutesCreated)
			if totalKm > 0 {
				response["kg_per_km"] = *stats.TotalKg / totalKm
			}
		}

		utils.RespondJSON(w, http.StatusOK, response)
	}
}
