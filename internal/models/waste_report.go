package models

import "time"

// WasteReport is a citizen-submitted issue report
type WasteReport struct {
	ID          string   `json:"id" db:"id"`
	ReporterID  *string  `json:"reporter_id,omitempty" db:"reporter_id"`
	BinID       *string  `json:"bin_id,omitempty" db:"bin_id"`
	Latitude    *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude   *float64 `json:"longitude,omitempty" db:"longitude"`
	ReportType  string   `json:"report_type" db:"report_type"` // overflow | damage | missed_pickup | illegal_dumping
	Description string   `json:"description" db:"description"`
	Status      string   `json:"status" db:"status"` // open | in_progress | resolved | dismissed
	ResolvedBy  *string  `json:"resolved_by,omitempty" db:"resolved_by"`
	ResolvedAt  *int64   `json:"resolved_at,omitempty" db:"resolved_at"` // Unix timestamp
	CreatedAt   int64    `json:"created_at" db:"created_at"`             // Unix timestamp
	UpdatedAt   int64    `json:"updated_at" db:"updated_at"`             // Unix timestamp
}

type WasteReportResponse struct {
	ID            string   `json:"id"`
	ReporterID    *string  `json:"reporter_id,omitempty"`
	BinID         *string  `json:"bin_id,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	ReportType    string   `json:"report_type"`
	Description   string   `json:"description"`
	Status        string   `json:"status"`
	ResolvedBy    *string  `json:"resolved_by,omitempty"`
	ResolvedAtIso *string  `json:"resolved_at_iso,omitempty"`
	CreatedAtIso  string   `json:"created_at_iso"`
}

// CreateWasteReportRequest is the request body for POST /api/reports
type CreateWasteReportRequest struct {
	BinID       *string  `json:"bin_id,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	ReportType  string   `json:"report_type"`
	Description string   `json:"description"`
}

// UpdateReportStatusRequest is the request body for PATCH /api/reports/:id/status
type UpdateReportStatusRequest struct {
	Status string `json:"status"`
}

func (r *WasteReport) ToWasteReportResponse() WasteReportResponse {
	resp := WasteReportResponse{
		ID:           r.ID,
		ReporterID:   r.ReporterID,
		BinID:        r.BinID,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		ReportType:   r.ReportType,
		Description:  r.Description,
		Status:       r.Status,
		ResolvedBy:   r.ResolvedBy,
		CreatedAtIso: time.Unix(r.CreatedAt, 0).Format(time.RFC3339),
	}

	if r.ResolvedAt != nil {
		iso := time.Unix(*r.ResolvedAt, 0).Format(time.RFC3339)
		resp.ResolvedAtIso = &iso
	}

	return resp
}
