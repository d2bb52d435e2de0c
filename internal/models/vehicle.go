package models

type Vehicle struct {
	ID           string  `json:"id" db:"id"`
	PlateNumber  string  `json:"plate_number" db:"plate_number"`
	VehicleType  string  `json:"vehicle_type" db:"vehicle_type"` // compactor | mini_truck | van
	CapacityKg   float64 `json:"capacity_kg" db:"capacity_kg"`
	Status       string  `json:"status" db:"status"` // available | on_route | maintenance
	AssignedZone *string `json:"assigned_zone,omitempty" db:"assigned_zone"`
	CreatedAt    int64   `json:"created_at" db:"created_at"`
	UpdatedAt    int64   `json:"updated_at" db:"updated_at"`
}

// CreateVehicleRequest is the request body for POST /api/vehicles
type CreateVehicleRequest struct {
	PlateNumber  string  `json:"plate_number"`
	VehicleType  string  `json:"vehicle_type"`
	CapacityKg   float64 `json:"capacity_kg"`
	AssignedZone *string `json:"assigned_zone,omitempty"`
}
