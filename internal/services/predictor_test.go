package services

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var predictBase = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

// readingsAt builds a series with one reading per hour offset
func readingsAt(levels ...float64) []Reading {
	readings := make([]Reading, len(levels))
	for i, level := range levels {
		readings[i] = Reading{
			BinID:      "bin-1",
			WasteLevel: level,
			RecordedAt: predictBase.Add(time.Duration(i) * time.Hour),
		}
	}
	return readings
}

func TestPredictWorkedExample(t *testing.T) {
	p := NewPredictor(DefaultPredictorConfig())

	result, err := p.Predict(readingsAt(40, 45, 50), "general")
	require.NoError(t, err)

	assert.Equal(t, "bin-1", result.BinID)
	assert.InDelta(t, 5.0, result.FillRatePerHour, 1e-9)
	assert.InDelta(t, 50.0, result.CurrentLevel, 1e-9)
	assert.InDelta(t, 10.0, result.HoursToFull, 1e-9)
	assert.Equal(t, PriorityHigh, result.Priority)
	assert.True(t, result.NeedsCollection)
	// 50 + 5*24 overshoots, so the projection caps at 100
	assert.InDelta(t, 100.0, result.PredictedLevelIn24h, 1e-9)
}

func TestPredictInsufficientData(t *testing.T) {
	p := NewPredictor(DefaultPredictorConfig())

	_, err := p.Predict(nil, "general")
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = p.Predict(readingsAt(40), "general")
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestPredictUnsortedInput(t *testing.T) {
	p := NewPredictor(DefaultPredictorConfig())

	sorted := readingsAt(40, 45, 50)
	shuffled := []Reading{sorted[2], sorted[0], sorted[1]}

	got, err := p.Predict(shuffled, "general")
	require.NoError(t, err)
	want, err := p.Predict(sorted, "general")
	require.NoError(t, err)

	assert.Equal(t, want, got)
}

func TestPredictPriorityBoundaries(t *testing.T) {
	p := NewPredictor(DefaultPredictorConfig())

	cases := []struct {
		name     string
		levels   []float64
		priority string
		needs    bool
	}{
		// rate 5 %/h, current 70 -> exactly 6h to full
		{"exactly 6h is critical", []float64{60, 65, 70}, PriorityCritical, true},
		// rate 2.5 %/h, current 40 -> exactly 24h to full
		{"exactly 24h is high", []float64{35, 37.5, 40}, PriorityHigh, true},
		// rate 0.5 %/h, current 64 -> exactly 72h to full
		{"exactly 72h is medium", []float64{63, 63.5, 64}, PriorityMedium, false},
		// rate 0.5 %/h, current 20 -> 160h to full
		{"beyond 72h is low", []float64{19, 19.5, 20}, PriorityLow, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := p.Predict(readingsAt(tc.levels...), "general")
			require.NoError(t, err)
			assert.Equal(t, tc.priority, result.Priority)
			assert.Equal(t, tc.needs, result.NeedsCollection)
		})
	}
}

func TestPredictWindowDropsStaleReadings(t *testing.T) {
	p := NewPredictor(DefaultPredictorConfig())

	// A reading 8 days before the rest must not drag the regression down.
	stale := Reading{BinID: "bin-1", WasteLevel: 0, RecordedAt: predictBase.AddDate(0, 0, -8)}
	readings := append([]Reading{stale}, readingsAt(60, 65, 70)...)

	result, err := p.Predict(readings, "general")
	require.NoError(t, err)
	assert.InDelta(t, 5.0, result.FillRatePerHour, 1e-9)
	assert.InDelta(t, 6.0, result.HoursToFull, 1e-9)
}

func TestPredictClampsInvalidLevels(t *testing.T) {
	p := NewPredictor(DefaultPredictorConfig())

	result, err := p.Predict(readingsAt(95, 105), "general")
	require.NoError(t, err)

	assert.InDelta(t, 100.0, result.CurrentLevel, 1e-9)
	assert.InDelta(t, 0.0, result.HoursToFull, 1e-9)
	assert.Equal(t, PriorityCritical, result.Priority)
}

func TestPredictCollectionResetStartsNewSegment(t *testing.T) {
	p := NewPredictor(DefaultPredictorConfig())

	// Collected between hour 1 and hour 2; only the post-collection trend
	// counts.
	result, err := p.Predict(readingsAt(80, 90, 5, 10, 15), "general")
	require.NoError(t, err)

	assert.InDelta(t, 5.0, result.FillRatePerHour, 1e-9)
	assert.InDelta(t, 15.0, result.CurrentLevel, 1e-9)
	assert.InDelta(t, 17.0, result.HoursToFull, 1e-9)
}

func TestPredictResetWithOneReadingIsInsufficient(t *testing.T) {
	p := NewPredictor(DefaultPredictorConfig())

	_, err := p.Predict(readingsAt(80, 90, 10), "general")
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestPredictFlatTrendUsesTypeFloor(t *testing.T) {
	p := NewPredictor(DefaultPredictorConfig())

	// Flat history: slope 0, floored to the hazardous minimum of 0.4 %/h.
	result, err := p.Predict(readingsAt(44, 44, 44), "hazardous")
	require.NoError(t, err)

	assert.InDelta(t, 0.4, result.FillRatePerHour, 1e-9)
	assert.InDelta(t, 140.0, result.HoursToFull, 1e-9)
	assert.Equal(t, PriorityLow, result.Priority)
	assert.False(t, math.IsInf(result.HoursToFull, 0))
	assert.False(t, math.IsNaN(result.HoursToFull))
}

func TestPredictNegativeTrendNeverGoesInfinite(t *testing.T) {
	p := NewPredictor(DefaultPredictorConfig())

	// Small dips under the reset threshold stay in one segment; the
	// negative slope is floored rather than projected.
	result, err := p.Predict(readingsAt(50, 47, 44), "general")
	require.NoError(t, err)

	assert.InDelta(t, 0.25, result.FillRatePerHour, 1e-9)
	assert.False(t, math.IsInf(result.HoursToFull, 0))
	assert.False(t, math.IsNaN(result.HoursToFull))
	assert.Greater(t, result.HoursToFull, 0.0)
}

func TestPredictConfigInjection(t *testing.T) {
	cfg := PredictorConfig{
		WindowDays:     3,
		CriticalHours:  2,
		HighHours:      12,
		MediumHours:    48,
		DefaultMinRate: 1.0,
	}
	p := NewPredictor(cfg)

	result, err := p.Predict(readingsAt(90, 90, 90), "general")
	require.NoError(t, err)

	// No per-type table: the default floor of 1 %/h applies, so 10h to full
	// lands in the injected high tier.
	assert.InDelta(t, 1.0, result.FillRatePerHour, 1e-9)
	assert.InDelta(t, 10.0, result.HoursToFull, 1e-9)
	assert.Equal(t, PriorityHigh, result.Priority)
}

func TestPredictedLevelStaysInBounds(t *testing.T) {
	p := NewPredictor(DefaultPredictorConfig())

	for _, levels := range [][]float64{
		{10, 11, 12},
		{40, 45, 50},
		{90, 92, 94},
		{30, 30, 30},
	} {
		result, err := p.Predict(readingsAt(levels...), "general")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.PredictedLevelIn24h, result.CurrentLevel)
		assert.LessOrEqual(t, result.PredictedLevelIn24h, 100.0)
	}
}

func TestHoursToFullDecreasesAsLevelRises(t *testing.T) {
	p := NewPredictor(DefaultPredictorConfig())

	// Same 5 %/h trend at increasing fill levels.
	low, err := p.Predict(readingsAt(40, 45, 50), "general")
	require.NoError(t, err)
	high, err := p.Predict(readingsAt(70, 75, 80), "general")
	require.NoError(t, err)

	assert.Less(t, high.HoursToFull, low.HoursToFull)
}

func TestPredictDoesNotMutateInput(t *testing.T) {
	p := NewPredictor(DefaultPredictorConfig())

	readings := readingsAt(50, 45, 40) // reversed on purpose
	snapshot := make([]Reading, len(readings))
	copy(snapshot, readings)

	_, _ = p.Predict(readings, "general")
	assert.Equal(t, snapshot, readings)
}
