package services

import (
	"errors"
	"log"
	"sort"
	"time"
)

// Priority tiers derived from predicted time-to-full
const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityLow      = "low"
)

// ErrInsufficientData is returned when fewer than two usable readings fall
// inside the prediction window.
var ErrInsufficientData = errors.New("insufficient sensor data for prediction")

// Reading is a single sensor observation used for fill-rate prediction
type Reading struct {
	BinID       string
	WasteLevel  float64
	Temperature float64
	Humidity    float64
	RecordedAt  time.Time
}

// PredictionResult is the predictor output for one bin. Derived on demand,
// never persisted.
type PredictionResult struct {
	BinID               string  `json:"bin_id"`
	CurrentLevel        float64 `json:"current_level"`
	FillRatePerHour     float64 `json:"fill_rate_per_hour"`
	HoursToFull         float64 `json:"hours_to_full"`
	PredictedLevelIn24h float64 `json:"predicted_level_in_24h"`
	Priority            string  `json:"priority"`
	NeedsCollection     bool    `json:"needs_collection"`
}

// PredictorConfig tunes the fill-rate predictor. Thresholds are hours of
// predicted time-to-full; MinRateByBinType floors the regression slope so a
// flat or negative trend never produces an infinite estimate.
type PredictorConfig struct {
	WindowDays       int
	CriticalHours    float64
	HighHours        float64
	MediumHours      float64
	DefaultMinRate   float64
	MinRateByBinType map[string]float64
}

// DefaultPredictorConfig returns the production defaults: a 7-day window,
// 6/24/72 hour tiers, and conservative per-type rate floors (organic and
// hazardous bins are assumed to fill faster, so they carry higher floors).
func DefaultPredictorConfig() PredictorConfig {
	return PredictorConfig{
		WindowDays:     7,
		CriticalHours:  6,
		HighHours:      24,
		MediumHours:    72,
		DefaultMinRate: 0.1,
		MinRateByBinType: map[string]float64{
			"general":    0.25,
			"recyclable": 0.15,
			"organic":    0.5,
			"hazardous":  0.4,
		},
	}
}

// A drop bigger than this between consecutive readings is treated as a
// collection reset, not sensor noise.
const collectionDropThreshold = 5.0

// Predictor estimates how fast bins fill up from their sensor history.
// Stateless; safe to share across requests.
type Predictor struct {
	cfg PredictorConfig
}

// NewPredictor creates a new fill-rate predictor
func NewPredictor(cfg PredictorConfig) *Predictor {
	return &Predictor{cfg: cfg}
}

// Predict fits a least-squares line of waste level against elapsed hours and
// projects time-to-full for one bin. Readings may arrive unsorted; levels
// outside [0,100] are clamped and logged rather than rejected. Needs at
// least two readings inside the window on the latest trend segment,
// otherwise ErrInsufficientData.
func (p *Predictor) Predict(readings []Reading, binType string) (*PredictionResult, error) {
	if len(readings) < 2 {
		return nil, ErrInsufficientData
	}

	// Defensive copy sorted by timestamp ascending.
	series := make([]Reading, len(readings))
	copy(series, readings)
	sort.Slice(series, func(i, j int) bool {
		return series[i].RecordedAt.Before(series[j].RecordedAt)
	})

	// Window anchored at the latest reading so identical input always gives
	// identical output.
	cutoff := series[len(series)-1].RecordedAt.AddDate(0, 0, -p.cfg.WindowDays)
	for len(series) > 0 && series[0].RecordedAt.Before(cutoff) {
		series = series[1:]
	}
	if len(series) < 2 {
		return nil, ErrInsufficientData
	}

	for i := range series {
		series[i].WasteLevel = clampLevel(series[i])
	}

	// A collection mid-window resets the trend; only the latest segment is
	// a valid fill trend.
	series = latestTrendSegment(series)
	if len(series) < 2 {
		return nil, ErrInsufficientData
	}

	latest := series[len(series)-1]
	currentLevel := latest.WasteLevel

	rate := fitSlopePerHour(series)
	minRate := p.minRateFor(binType)
	if rate < minRate {
		log.Printf("⚠️  Bin %s: fill rate %.3f%%/h below floor, clamping to %.3f%%/h (%s)",
			latest.BinID, rate, minRate, binType)
		rate = minRate
	}

	hoursToFull := (100 - currentLevel) / rate

	predicted := currentLevel + rate*24
	if predicted > 100 {
		predicted = 100
	}

	return &PredictionResult{
		BinID:               latest.BinID,
		CurrentLevel:        currentLevel,
		FillRatePerHour:     rate,
		HoursToFull:         hoursToFull,
		PredictedLevelIn24h: predicted,
		Priority:            p.priorityFor(hoursToFull),
		NeedsCollection:     hoursToFull <= p.cfg.HighHours,
	}, nil
}

// priorityFor maps predicted time-to-full onto a tier. Boundaries are
// inclusive: exactly 6h is critical, exactly 24h is high, exactly 72h is
// medium.
func (p *Predictor) priorityFor(hoursToFull float64) string {
	switch {
	case hoursToFull <= p.cfg.CriticalHours:
		return PriorityCritical
	case hoursToFull <= p.cfg.HighHours:
		return PriorityHigh
	case hoursToFull <= p.cfg.MediumHours:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func (p *Predictor) minRateFor(binType string) float64 {
	if rate, ok := p.cfg.MinRateByBinType[binType]; ok {
		return rate
	}
	return p.cfg.DefaultMinRate
}

// clampLevel forces a reading's waste level into [0,100], logging readings
// that arrive out of range.
func clampLevel(r Reading) float64 {
	if r.WasteLevel < 0 {
		log.Printf("⚠️  Bin %s: invalid waste level %.1f, clamping to 0", r.BinID, r.WasteLevel)
		return 0
	}
	if r.WasteLevel > 100 {
		log.Printf("⚠️  Bin %s: invalid waste level %.1f, clamping to 100", r.BinID, r.WasteLevel)
		return 100
	}
	return r.WasteLevel
}

// latestTrendSegment cuts the series at the last collection reset. Small
// dips under the drop threshold are sensor noise and stay in the segment.
func latestTrendSegment(series []Reading) []Reading {
	start := 0
	for i := 1; i < len(series); i++ {
		if series[i-1].WasteLevel-series[i].WasteLevel > collectionDropThreshold {
			start = i
		}
	}
	return series[start:]
}

// fitSlopePerHour runs ordinary least squares of waste level against hours
// elapsed since the segment's first reading and returns the slope in %/hour.
// A degenerate time axis (all readings at one instant) yields slope 0, which
// the caller floors to the configured minimum.
func fitSlopePerHour(series []Reading) float64 {
	t0 := series[0].RecordedAt

	var sumX, sumY float64
	for _, r := range series {
		sumX += r.RecordedAt.Sub(t0).Hours()
		sumY += r.WasteLevel
	}
	n := float64(len(series))
	meanX := sumX / n
	meanY := sumY / n

	var num, den float64
	for _, r := range series {
		dx := r.RecordedAt.Sub(t0).Hours() - meanX
		num += dx * (r.WasteLevel - meanY)
		den += dx * dx
	}
	if den == 0 {
		return 0
	}
	return num / den
}
