package models

import "time"

type Bin struct {
	ID                string  `json:"id" db:"id"`
	Code              string  `json:"code" db:"code"`
	Zone              string  `json:"zone" db:"zone"`
	BinType           string  `json:"bin_type" db:"bin_type"` // general | recyclable | organic | hazardous
	CapacityLiters    float64 `json:"capacity_liters" db:"capacity_liters"`
	Latitude          float64 `json:"latitude" db:"latitude"`
	Longitude         float64 `json:"longitude" db:"longitude"`
	Address           *string `json:"address,omitempty" db:"address"`
	CurrentWasteLevel float64 `json:"current_waste_level" db:"current_waste_level"`
	Status            string  `json:"status" db:"status"`                                 // active | maintenance | retired
	LastCollectedAt   *int64  `json:"last_collected_at,omitempty" db:"last_collected_at"` // Unix timestamp
	CreatedAt         int64   `json:"created_at" db:"created_at"`                         // Unix timestamp
	UpdatedAt         int64   `json:"updated_at" db:"updated_at"`                         // Unix timestamp
}

// BinResponse is what we send to the client with ISO timestamps
type BinResponse struct {
	ID                string  `json:"id"`
	Code              string  `json:"code"`
	Zone              string  `json:"zone"`
	BinType           string  `json:"bin_type"`
	CapacityLiters    float64 `json:"capacity_liters"`
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
	Address           *string `json:"address,omitempty"`
	CurrentWasteLevel float64 `json:"current_waste_level"`
	Status            string  `json:"status"`
	LastCollectedIso  *string `json:"last_collected_iso,omitempty"`
}

// CreateBinRequest is the request body for POST /api/bins
type CreateBinRequest struct {
	Code           string  `json:"code"`
	Zone           string  `json:"zone"`
	BinType        string  `json:"bin_type"`
	CapacityLiters float64 `json:"capacity_liters"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	Address        *string `json:"address,omitempty"`
}

// UpdateBinRequest is the request body for PATCH /api/bins/:id
type UpdateBinRequest struct {
	Zone           *string  `json:"zone,omitempty"`
	BinType        *string  `json:"bin_type,omitempty"`
	CapacityLiters *float64 `json:"capacity_liters,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	Address        *string  `json:"address,omitempty"`
	Status         *string  `json:"status,omitempty"`
}

// ToBinResponse converts a Bin to BinResponse
func (b *Bin) ToBinResponse() BinResponse {
	resp := BinResponse{
		ID:                b.ID,
		Code:              b.Code,
		Zone:              b.Zone,
		BinType:           b.BinType,
		CapacityLiters:    b.CapacityLiters,
		Latitude:          b.Latitude,
		Longitude:         b.Longitude,
		Address:           b.Address,
		CurrentWasteLevel: b.CurrentWasteLevel,
		Status:            b.Status,
	}

	if b.LastCollectedAt != nil {
		t := time.Unix(*b.LastCollectedAt, 0)
		iso := t.Format(time.RFC3339)
		resp.LastCollectedIso = &iso
	}

	return resp
}
