package models

// CollectionSchedule is a recurring zone pickup slot
type CollectionSchedule struct {
	ID        string  `json:"id" db:"id"`
	Zone      string  `json:"zone" db:"zone"`
	DayOfWeek int     `json:"day_of_week" db:"day_of_week"` // 0 = Sunday
	StartTime string  `json:"start_time" db:"start_time"`   // HH:MM
	VehicleID *string `json:"vehicle_id,omitempty" db:"vehicle_id"`
	Active    bool    `json:"active" db:"active"`
	CreatedAt int64   `json:"created_at" db:"created_at"`
}

// CreateScheduleRequest is the request body for POST /api/schedules
type CreateScheduleRequest struct {
	Zone      string  `json:"zone"`
	DayOfWeek int     `json:"day_of_week"`
	StartTime string  `json:"start_time"`
	VehicleID *string `json:"vehicle_id,omitempty"`
}
