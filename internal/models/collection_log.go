package models

import "time"

// CollectionLog records one emptying of a bin
type CollectionLog struct {
	ID            string  `json:"id" db:"id"`
	BinID         string  `json:"bin_id" db:"bin_id"`
	RouteID       *string `json:"route_id,omitempty" db:"route_id"`
	CollectedBy   *string `json:"collected_by,omitempty" db:"collected_by"`
	LevelBefore   float64 `json:"level_before" db:"level_before"`
	LevelAfter    float64 `json:"level_after" db:"level_after"`
	WasteAmountKg float64 `json:"waste_amount_kg" db:"waste_amount_kg"`
	CollectedAt   int64   `json:"collected_at" db:"collected_at"` // Unix timestamp
}

type CollectionLogResponse struct {
	ID             string  `json:"id"`
	BinID          string  `json:"bin_id"`
	RouteID        *string `json:"route_id,omitempty"`
	CollectedBy    *string `json:"collected_by,omitempty"`
	LevelBefore    float64 `json:"level_before"`
	LevelAfter     float64 `json:"level_after"`
	WasteAmountKg  float64 `json:"waste_amount_kg"`
	CollectedAtIso string  `json:"collected_at_iso"`
}

// RecordCollectionRequest is the request body for POST /api/bins/:id/collections
type RecordCollectionRequest struct {
	LevelAfter *float64 `json:"level_after,omitempty"` // defaults to 5% residual
	RouteID    *string  `json:"route_id,omitempty"`
}

func (c *CollectionLog) ToCollectionLogResponse() CollectionLogResponse {
	return CollectionLogResponse{
		ID:             c.ID,
		BinID:          c.BinID,
		RouteID:        c.RouteID,
		CollectedBy:    c.CollectedBy,
		LevelBefore:    c.LevelBefore,
		LevelAfter:     c.LevelAfter,
		WasteAmountKg:  c.WasteAmountKg,
		CollectedAtIso: time.Unix(c.CollectedAt, 0).Format(time.RFC3339),
	}
}
