package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"sort"
	"time"

	"smartwaste-backend/internal/metrics"
	"smartwaste-backend/internal/models"
	"smartwaste-backend/internal/services"
	"smartwaste-backend/pkg/utils"

	"github.com/jmoiron/sqlx"
)

// BinWithPrediction pairs a bin with its fill-rate prediction
type BinWithPrediction struct {
	models.BinResponse
	Prediction *services.PredictionResult `json:"prediction"`
}

// loadReadingWindow fetches the sensor history the predictor needs, oldest
// first, for one bin.
func loadReadingWindow(db *sqlx.DB, binID string, windowDays int) ([]services.Reading, error) {
	since := time.Now().AddDate(0, 0, -windowDays).Unix()

	var logs []models.SensorLog
	query := `
		SELECT * FROM sensor_logs
		WHERE bin_id = $1 AND recorded_at >= $2
		ORDER BY recorded_at ASC
	`
	if err := db.Select(&logs, query, binID, since); err != nil {
		return nil, err
	}

	readings := make([]services.Reading, len(logs))
	for i, entry := range logs {
		readings[i] = services.Reading{
			BinID:       entry.BinID,
			WasteLevel:  entry.WasteLevel,
			Temperature: entry.Temperature,
			Humidity:    entry.Humidity,
			RecordedAt:  time.Unix(entry.RecordedAt, 0),
		}
	}
	return readings, nil
}

// GetBinPrediction computes the fill-rate prediction for one bin.
// GET /api/bins/{id}/prediction
func GetBinPrediction(db *sqlx.DB) http.HandlerFunc {
	predictor := services.NewPredictor(services.DefaultPredictorConfig())

	return func(w http.ResponseWriter, r *http.Request) {
		binID := r.PathValue("id")

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

		readings, err := loadReadingWindow(db, binID, services.DefaultPredictorConfig().WindowDays)
		if err != nil {
			log.Printf("❌ Error loading readings for bin %s: %v", bin.Code, err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to load sensor history")
			return
		}

		prediction, err := predictor.Predict(readings, bin.BinType)
		if errors.Is(err, services.ErrInsufficientData) {
			utils.RespondError(w, http.StatusUnprocessableEntity, "Not enough sensor data to predict fill rate")
			return
		}
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Prediction failed")
			return
		}

		metrics.PredictionsComputed.Inc()

		utils.RespondJSON(w, http.StatusOK, BinWithPrediction{
			BinResponse: bin.ToBinResponse(),
			Prediction:  prediction,
		})
	}
}

// GetPredictions computes predictions for every active bin, most urgent
// first. Bins without enough sensor history are omitted.
// Query params:
//   - zone: restrict to one zone
//   - priority: critical, high, medium, or low
//   - needs_collection: "true" to only return bins due within the high tier
//
// GET /api/predictions
func GetPredictions(db *sqlx.DB) http.HandlerFunc {
	cfg := services.DefaultPredictorConfig()
	predictor := services.NewPredictor(cfg)

	return func(w http.ResponseWriter, r *http.Request) {
		zone := r.URL.Query().Get("zone")
		priorityFilter := r.URL.Query().Get("priority")
		needsOnly := r.URL.Query().Get("needs_collection") == "true"

		if priorityFilter != "" {
			switch priorityFilter {
			case services.PriorityCritical, services.PriorityHigh, services.PriorityMedium, services.PriorityLow:
			default:
				utils.RespondError(w, http.StatusBadRequest, "Invalid priority")
				return
			}
		}

		var bins []models.Bin
		query := `SELECT * FROM bins WHERE status = 'active'`
		args := []interface{}{}
		if zone != "" {
			query += ` AND zone = $1`
			args = append(args, zone)
		}
		if err := db.Select(&bins, query, args...); err != nil {
			log.Printf("❌ Error fetching bins: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch bins")
			return
		}

		// One query for the whole window, grouped in memory, instead of one
		// query per bin
		since := time.Now().AddDate(0, 0, -cfg.WindowDays).Unix()
		var logs []models.SensorLog
		logQuery := `
			SELECT * FROM sensor_logs
			WHERE recorded_at >= $1
			ORDER BY recorded_at ASC
		`
		if err := db.Select(&logs, logQuery, since); err != nil {
			log.Printf("❌ Error fetching sensor logs: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to load sensor history")
			return
		}

		readingsByBin := make(map[string][]services.Reading, len(bins))
		for _, entry := range logs {
			readingsByBin[entry.BinID] = append(readingsByBin[entry.BinID], services.Reading{
				BinID:       entry.BinID,
				WasteLevel:  entry.WasteLevel,
				Temperature: entry.Temperature,
				Humidity:    entry.Humidity,
				RecordedAt:  time.Unix(entry.RecordedAt, 0),
			})
		}

		results := make([]BinWithPrediction, 0, len(bins))
		skipped := 0
		for _, bin := range bins {
			prediction, err := predictor.Predict(readingsByBin[bin.ID], bin.BinType)
			if err != nil {
				skipped++
				continue
			}
			metrics.PredictionsComputed.Inc()

			if priorityFilter != "" && prediction.Priority != priorityFilter {
				continue
			}
			if needsOnly && !prediction.NeedsCollection {
				continue
			}

			results = append(results, BinWithPrediction{
				BinResponse: bin.ToBinResponse(),
				Prediction:  prediction,
			})
		}

		// Most urgent first; stable order for equal estimates
		sort.Slice(results, func(i, j int) bool {
			if results[i].Prediction.HoursToFull != results[j].Prediction.HoursToFull {
				return results[i].Prediction.HoursToFull < results[j].Prediction.HoursToFull
			}
			return results[i].Code < results[j].Code
		})

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"count":       len(results),
			"skipped":     skipped,
			"predictions": results,
		})
	}
}
