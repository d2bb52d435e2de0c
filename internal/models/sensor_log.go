package models

import "time"

// SensorLog is one reading reported by a bin's fill sensor
type SensorLog struct {
	ID           string  `json:"id" db:"id"`
	BinID        string  `json:"bin_id" db:"bin_id"`
	WasteLevel   float64 `json:"waste_level" db:"waste_level"`
	Temperature  float64 `json:"temperature" db:"temperature"`
	Humidity     float64 `json:"humidity" db:"humidity"`
	BatteryLevel float64 `json:"battery_level" db:"battery_level"`
	RecordedAt   int64   `json:"recorded_at" db:"recorded_at"` // Unix timestamp
}

type SensorLogResponse struct {
	ID            string  `json:"id"`
	BinID         string  `json:"bin_id"`
	WasteLevel    float64 `json:"waste_level"`
	Temperature   float64 `json:"temperature"`
	Humidity      float64 `json:"humidity"`
	BatteryLevel  float64 `json:"battery_level"`
	RecordedAtIso string  `json:"recorded_at_iso"`
}

// RecordReadingRequest is the request body for POST /api/bins/:id/readings
type RecordReadingRequest struct {
	WasteLevel   float64  `json:"waste_level"`
	Temperature  float64  `json:"temperature"`
	Humidity     float64  `json:"humidity"`
	BatteryLevel *float64 `json:"battery_level,omitempty"`
}

func (s *SensorLog) ToSensorLogResponse() SensorLogResponse {
	return SensorLogResponse{
		ID:            s.ID,
		BinID:         s.BinID,
		WasteLevel:    s.WasteLevel,
		Temperature:   s.Temperature,
		Humidity:      s.Humidity,
		BatteryLevel:  s.BatteryLevel,
		RecordedAtIso: time.Unix(s.RecordedAt, 0).Format(time.RFC3339),
	}
}
