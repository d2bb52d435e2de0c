package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateReadingQuietBin(t *testing.T) {
	assert.Empty(t, EvaluateReading("DT-001", "general", 50, 25))
}

func TestEvaluateReadingAlmostFull(t *testing.T) {
	alerts := EvaluateReading("DT-001", "general", 80, 25)
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertBinAlmostFull, alerts[0].Type)
	assert.Equal(t, SeverityWarning, alerts[0].Severity)
}

func TestEvaluateReadingFull(t *testing.T) {
	alerts := EvaluateReading("DT-001", "general", 90, 25)
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertBinFull, alerts[0].Type)
	assert.Equal(t, SeverityCritical, alerts[0].Severity)
}

func TestEvaluateReadingFireRisk(t *testing.T) {
	// General bins alert above 45°C
	assert.Empty(t, EvaluateReading("DT-001", "general", 10, 45))
	alerts := EvaluateReading("DT-001", "general", 10, 46)
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertFireRisk, alerts[0].Type)
	assert.Equal(t, SeverityCritical, alerts[0].Severity)

	// Hazardous bins alert earlier
	assert.Empty(t, EvaluateReading("HZ-001", "hazardous", 10, 35))
	alerts = EvaluateReading("HZ-001", "hazardous", 10, 36)
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertFireRisk, alerts[0].Type)
}

func TestEvaluateReadingMostSevereFirst(t *testing.T) {
	alerts := EvaluateReading("DT-001", "general", 95, 50)
	require.Len(t, alerts, 2)
	assert.Equal(t, AlertFireRisk, alerts[0].Type)
	assert.Equal(t, AlertBinFull, alerts[1].Type)
}
