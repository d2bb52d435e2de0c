package services

import "fmt"

// Alert severities
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
)

// Alert types
const (
	AlertBinFull       = "bin_full"
	AlertBinAlmostFull = "bin_almost_full"
	AlertFireRisk      = "fire_risk"
)

// Fill thresholds for alerting
const (
	AlmostFullLevel = 80.0
	FullLevel       = 90.0
)

// Temperature ceilings, °C. Hazardous bins alert earlier.
const (
	fireRiskTemp          = 45.0
	hazardousFireRiskTemp = 35.0
)

// AlertEvaluation describes an alert that a new sensor reading warrants.
type AlertEvaluation struct {
	Type     string
	Severity string
	Message  string
}

// EvaluateReading checks a fresh reading against the alert thresholds and
// returns the alerts it triggers, most severe first. Both the sensor ingest
// endpoint and the simulator run readings through here so thresholds live in
// exactly one place.
func EvaluateReading(binCode, binType string, wasteLevel, temperature float64) []AlertEvaluation {
	var alerts []AlertEvaluation

	tempLimit := fireRiskTemp
	if binType == "hazardous" {
		tempLimit = hazardousFireRiskTemp
	}
	if temperature > tempLimit {
		alerts = append(alerts, AlertEvaluation{
			Type:     AlertFireRisk,
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("Bin %s reports %.1f°C, above the %.0f°C limit", binCode, temperature, tempLimit),
		})
	}

	switch {
	case wasteLevel >= FullLevel:
		alerts = append(alerts, AlertEvaluation{
			Type:     AlertBinFull,
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("Bin %s is %.0f%% full and needs immediate collection", binCode, wasteLevel),
		})
	case wasteLevel >= AlmostFullLevel:
		alerts = append(alerts, AlertEvaluation{
			Type:     AlertBinAlmostFull,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("Bin %s is %.0f%% full and approaching capacity", binCode, wasteLevel),
		})
	}

	return alerts
}
