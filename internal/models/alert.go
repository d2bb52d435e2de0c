package models

import "time"

type Alert struct {
	ID         string  `json:"id" db:"id"`
	BinID      string  `json:"bin_id" db:"bin_id"`
	AlertType  string  `json:"alert_type" db:"alert_type"` // bin_full | bin_almost_full | fire_risk
	Severity   string  `json:"severity" db:"severity"`     // critical | warning
	Message    string  `json:"message" db:"message"`
	Resolved   bool    `json:"resolved" db:"resolved"`
	ResolvedBy *string `json:"resolved_by,omitempty" db:"resolved_by"`
	ResolvedAt *int64  `json:"resolved_at,omitempty" db:"resolved_at"` // Unix timestamp
	CreatedAt  int64   `json:"created_at" db:"created_at"`             // Unix timestamp
}

type AlertResponse struct {
	ID            string  `json:"id"`
	BinID         string  `json:"bin_id"`
	AlertType     string  `json:"alert_type"`
	Severity      string  `json:"severity"`
	Message       string  `json:"message"`
	Resolved      bool    `json:"resolved"`
	ResolvedBy    *string `json:"resolved_by,omitempty"`
	ResolvedAtIso *string `json:"resolved_at_iso,omitempty"`
	CreatedAtIso  string  `json:"created_at_iso"`
}

func (a *Alert) ToAlertResponse() AlertResponse {
	resp := AlertResponse{
		ID:           a.ID,
		BinID:        a.BinID,
		AlertType:    a.AlertType,
		Severity:     a.Severity,
		Message:      a.Message,
		Resolved:     a.Resolved,
		ResolvedBy:   a.ResolvedBy,
		CreatedAtIso: time.Unix(a.CreatedAt, 0).Format(time.RFC3339),
	}

	if a.ResolvedAt != nil {
		iso := time.Unix(*a.ResolvedAt, 0).Format(time.RFC3339)
		resp.ResolvedAtIso = &iso
	}

	return resp
}
