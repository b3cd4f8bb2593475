package pitch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resona-app/resona/audio"
)

const testSampleRate = 44100

func TestEstimateSineTone(t *testing.T) {
	tests := []struct {
		name string
		freq float64
	}{
		{"low male voice", 110.0},
		{"female voice", 220.0},
		{"middle C", 261.63},
		{"high voice", 440.0},
	}

	e := NewEstimator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := audio.SineFrame(tt.freq, testSampleRate, 4096, 0.5)
			est := e.Estimate(frame)

			require.True(t, est.Voiced, "pure tone should be voiced")
			assert.InEpsilon(t, tt.freq, est.Frequency, 0.02, "frequency within tolerance")
			assert.GreaterOrEqual(t, est.Clarity, e.Params().ClarityThreshold)
		})
	}
}

func TestEstimateSilence(t *testing.T) {
	e := NewEstimator()

	frame := audio.Frame{Samples: make([]float64, 4096), SampleRate: testSampleRate}
	est := e.Estimate(frame)
	assert.Equal(t, NoPitch, est, "all-zero frame must be unvoiced")

	// Just below the RMS gate
	quiet := audio.SineFrame(220, testSampleRate, 4096, 0.001)
	assert.Equal(t, NoPitch, e.Estimate(quiet))
}

func TestEstimateMalformedInput(t *testing.T) {
	e := NewEstimator()

	t.Run("empty frame", func(t *testing.T) {
		assert.Equal(t, NoPitch, e.Estimate(audio.Frame{SampleRate: testSampleRate}))
	})

	t.Run("short frame", func(t *testing.T) {
		frame := audio.SineFrame(220, testSampleRate, 64, 0.5)
		assert.Equal(t, NoPitch, e.Estimate(frame))
	})

	t.Run("zero sample rate", func(t *testing.T) {
		frame := audio.SineFrame(220, testSampleRate, 4096, 0.5)
		frame.SampleRate = 0
		assert.Equal(t, NoPitch, e.Estimate(frame))
	})

	t.Run("NaN samples", func(t *testing.T) {
		frame := audio.SineFrame(220, testSampleRate, 4096, 0.5)
		frame.Samples[100] = math.NaN()
		assert.Equal(t, NoPitch, e.Estimate(frame))
	})

	t.Run("Inf samples", func(t *testing.T) {
		frame := audio.SineFrame(220, testSampleRate, 4096, 0.5)
		frame.Samples[0] = math.Inf(1)
		assert.Equal(t, NoPitch, e.Estimate(frame))
	})
}

func TestEstimateHarmonicRichTone(t *testing.T) {
	// A tone with strong harmonics must still resolve to the
	// fundamental, not an octave error
	fundamental := 200.0
	n := 4096
	samples := make([]float64, n)
	for i := 0; i < n; i++ {
		ti := float64(i) / testSampleRate
		samples[i] = 0.5*math.Sin(2*math.Pi*fundamental*ti) +
			0.3*math.Sin(2*math.Pi*2*fundamental*ti) +
			0.2*math.Sin(2*math.Pi*3*fundamental*ti)
	}

	e := NewEstimator()
	est := e.Estimate(audio.Frame{Samples: samples, SampleRate: testSampleRate})

	require.True(t, est.Voiced)
	assert.InEpsilon(t, fundamental, est.Frequency, 0.02)
}

func TestEstimateNoiseRejected(t *testing.T) {
	// Deterministic pseudo-noise: no periodicity, so every correlation
	// peak stays far below the clarity threshold
	n := 4096
	samples := make([]float64, n)
	seed := uint64(0x9e3779b97f4a7c15)
	for i := range samples {
		seed ^= seed << 13
		seed ^= seed >> 7
		seed ^= seed << 17
		samples[i] = float64(int64(seed)) / float64(math.MaxInt64) * 0.4
	}

	e := NewEstimator()
	est := e.Estimate(audio.Frame{Samples: samples, SampleRate: testSampleRate})
	assert.False(t, est.Voiced, "broadband noise must not read as a pitch")
}

func TestEstimateCustomParams(t *testing.T) {
	params := DefaultParams()
	params.ClarityThreshold = 0.99

	e := NewEstimatorWithParams(params)
	assert.Equal(t, 0.99, e.Params().ClarityThreshold)

	params.ClarityThreshold = 0.5
	e.SetParams(params)
	assert.Equal(t, 0.5, e.Params().ClarityThreshold)
}

func TestPickPeakLag(t *testing.T) {
	t.Run("too short", func(t *testing.T) {
		assert.Equal(t, 0, pickPeakLag([]float64{1.0, 0.5}, 1))
	})

	t.Run("monotonic decay has no peak", func(t *testing.T) {
		corr := []float64{1.0, 0.9, 0.8, 0.7, 0.6, 0.5}
		assert.Equal(t, 0, pickPeakLag(corr, 1))
	})

	t.Run("finds peak after first minimum", func(t *testing.T) {
		corr := []float64{1.0, 0.6, 0.2, 0.1, 0.4, 0.9, 0.4, 0.1}
		assert.Equal(t, 5, pickPeakLag(corr, 1))
	})
}

func TestParabolicInterpolation(t *testing.T) {
	t.Run("symmetric peak stays put", func(t *testing.T) {
		data := []float64{0.2, 0.8, 0.2}
		assert.InDelta(t, 1.0, parabolicInterpolation(data, 1), 1e-9)
	})

	t.Run("skewed peak shifts toward larger neighbor", func(t *testing.T) {
		data := []float64{0.2, 0.8, 0.6}
		refined := parabolicInterpolation(data, 1)
		assert.Greater(t, refined, 1.0)
		assert.Less(t, refined, 2.0)
	})

	t.Run("edge index unchanged", func(t *testing.T) {
		data := []float64{0.8, 0.2}
		assert.Equal(t, 0.0, parabolicInterpolation(data, 0))
	})
}

func TestAutocorrelate(t *testing.T) {
	frame := audio.Sine(441, testSampleRate, 2048, 0.5)
	corr := autocorrelate(frame, 400)

	require.NotEmpty(t, corr)
	assert.InDelta(t, 1.0, corr[0], 1e-6, "zero lag is perfectly correlated")

	// 441 Hz at 44100 Hz puts the period at exactly 100 samples
	assert.Greater(t, corr[100], 0.8)

	t.Run("zero signal", func(t *testing.T) {
		assert.Empty(t, autocorrelate(make([]float64, 1024), 200))
	})
}
