package pitch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeSeries(t *testing.T) {
	pitches := []float64{200, 0, 210, 220, 0, 230}

	summary, ok := AnalyzeSeries(pitches)
	require.True(t, ok)

	assert.InDelta(t, 215.0, summary.MeanHz, 1e-9)
	assert.Equal(t, 200.0, summary.MinHz)
	assert.Equal(t, 230.0, summary.MaxHz)
	assert.InDelta(t, 4.0/6.0, summary.VoicedRatio, 1e-9)
	assert.InDelta(t, 10.0, summary.Jitter, 1e-9)
	assert.Greater(t, summary.StdDevHz, 0.0)
}

func TestAnalyzeSeriesEdgeCases(t *testing.T) {
	t.Run("empty series", func(t *testing.T) {
		_, ok := AnalyzeSeries(nil)
		assert.False(t, ok)
	})

	t.Run("all unvoiced", func(t *testing.T) {
		_, ok := AnalyzeSeries([]float64{0, 0, -1, 0})
		assert.False(t, ok)
	})

	t.Run("single voiced frame", func(t *testing.T) {
		summary, ok := AnalyzeSeries([]float64{0, 220, 0})
		require.True(t, ok)
		assert.Equal(t, 220.0, summary.MeanHz)
		assert.Equal(t, 220.0, summary.MinHz)
		assert.Equal(t, 220.0, summary.MaxHz)
		assert.Equal(t, 0.0, summary.StdDevHz)
		assert.Equal(t, 0.0, summary.Jitter)
	})
}
