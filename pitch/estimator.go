package pitch

import (
	"math"

	"github.com/resona-app/resona/audio"
)

// Estimate is the per-frame result of fundamental frequency estimation.
// The zero value is the unvoiced result: silence, too little signal, or
// a correlation peak too weak to trust.
type Estimate struct {
	Voiced    bool    `json:"voiced"`
	Frequency float64 `json:"frequency"` // Hz, > 0 when voiced
	Clarity   float64 `json:"clarity"`   // confidence score (0-1)
}

// NoPitch is the unvoiced estimate
var NoPitch = Estimate{}

// Params contains tunable parameters for pitch estimation.
//
// The clarity and silence thresholds are the knobs most worth touching
// per deployment: quiet rooms tolerate a lower silence gate, noisy ones
// need a stricter clarity cut.
type Params struct {
	// Lag search band: plausible human voice fundamentals
	MinFreq float64 `json:"min_freq" toml:"min_freq"` // Hz, sets the longest lag searched
	MaxFreq float64 `json:"max_freq" toml:"max_freq"` // Hz, sets the shortest lag searched

	// Sanity band applied to the refined frequency
	SanityMinFreq float64 `json:"sanity_min_freq" toml:"sanity_min_freq"`
	SanityMaxFreq float64 `json:"sanity_max_freq" toml:"sanity_max_freq"`

	// Gating thresholds
	SilenceRMS       float64 `json:"silence_rms" toml:"silence_rms"`             // frames below this RMS are unvoiced
	ClarityThreshold float64 `json:"clarity_threshold" toml:"clarity_threshold"` // minimum normalized peak correlation

	// Active-region trimming of leading/trailing in-frame silence
	TrimEnabled   bool    `json:"trim_enabled" toml:"trim_enabled"`
	TrimThreshold float64 `json:"trim_threshold" toml:"trim_threshold"`

	// MinFrameSize is the fewest samples worth analyzing
	MinFrameSize int `json:"min_frame_size" toml:"min_frame_size"`
}

// DefaultParams returns estimation parameters tuned for voice training:
// permissive enough for sustained soft notes, strict enough to reject
// broadband noise.
func DefaultParams() Params {
	return Params{
		MinFreq:          50.0,  // low male voice
		MaxFreq:          500.0, // high female voice
		SanityMinFreq:    50.0,
		SanityMaxFreq:    3000.0,
		SilenceRMS:       0.005,
		ClarityThreshold: 0.6,
		TrimEnabled:      true,
		TrimThreshold:    0.01,
		MinFrameSize:     256,
	}
}

// Estimator implements time-domain fundamental frequency estimation
// using normalized autocorrelation.
//
// References:
// - Rabiner, L.R. (1977). "On the use of autocorrelation analysis for pitch detection"
// - McLeod, P., Wyvill, G. (2005). "A smarter way to find pitch"
//
// The peak picking rule is "first strong periodicity after the initial
// decay": find the first local minimum of the correlation function past
// the zero-lag peak, then the highest peak after that minimum. A plain
// global maximum is wrong here because strong harmonics can put taller
// peaks at shorter lags.
type Estimator struct {
	params Params
}

// NewEstimator creates an estimator with default parameters
func NewEstimator() *Estimator {
	return &Estimator{params: DefaultParams()}
}

// NewEstimatorWithParams creates an estimator with custom parameters
func NewEstimatorWithParams(params Params) *Estimator {
	return &Estimator{params: params}
}

// Params returns the current parameters
func (e *Estimator) Params() Params {
	return e.params
}

// SetParams updates the estimation parameters
func (e *Estimator) SetParams(params Params) {
	e.params = params
}

// Estimate detects the fundamental frequency in a single frame.
// Malformed input (short frames, all-zero frames, non-finite samples)
// degrades to NoPitch; this function never panics and never errors,
// so a per-frame poll loop can call it unconditionally.
func (e *Estimator) Estimate(frame audio.Frame) Estimate {
	if len(frame.Samples) < e.params.MinFrameSize || frame.SampleRate <= 0 {
		return NoPitch
	}
	if !frame.IsFinite() {
		return NoPitch
	}

	// Cheap silence gate before any correlation work
	if frame.RMS() < e.params.SilenceRMS {
		return NoPitch
	}

	if e.params.TrimEnabled {
		frame = frame.TrimActiveRegion(e.params.TrimThreshold)
		if len(frame.Samples) < e.params.MinFrameSize {
			return NoPitch
		}
	}

	sr := float64(frame.SampleRate)
	minLag := int(sr / e.params.MaxFreq)
	maxLag := int(sr / e.params.MinFreq)

	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(frame.Samples) {
		maxLag = len(frame.Samples) - 1
	}
	if maxLag <= minLag {
		return NoPitch
	}

	corr := autocorrelate(frame.Samples, maxLag)
	if len(corr) == 0 {
		return NoPitch
	}

	peakLag := pickPeakLag(corr, minLag)
	if peakLag <= 0 {
		return NoPitch
	}

	refinedLag := parabolicInterpolation(corr, peakLag)
	if refinedLag <= 0 {
		return NoPitch
	}

	frequency := sr / refinedLag
	clarity := clamp01(corr[peakLag])

	if math.IsNaN(frequency) || math.IsInf(frequency, 0) {
		return NoPitch
	}
	if clarity < e.params.ClarityThreshold {
		return NoPitch
	}
	if frequency < e.params.SanityMinFreq || frequency > e.params.SanityMaxFreq {
		return NoPitch
	}

	return Estimate{Voiced: true, Frequency: frequency, Clarity: clarity}
}

// pickPeakLag finds the first local minimum after the zero-lag peak,
// then the highest local maximum at or after that minimum (and at or
// after minLag). Returns 0 when no usable peak exists.
func pickPeakLag(corr []float64, minLag int) int {
	n := len(corr)
	if n < 3 {
		return 0
	}

	// Walk down off the zero-lag peak to the first local minimum
	firstMin := -1
	for i := 1; i < n-1; i++ {
		if corr[i] <= corr[i-1] && corr[i] < corr[i+1] {
			firstMin = i
			break
		}
	}
	if firstMin < 0 {
		return 0
	}

	start := firstMin
	if start < minLag {
		start = minLag
	}

	bestLag := 0
	bestVal := 0.0
	for i := start; i < n-1; i++ {
		if corr[i] > corr[i-1] && corr[i] >= corr[i+1] && corr[i] > bestVal {
			bestLag = i
			bestVal = corr[i]
		}
	}

	return bestLag
}

// parabolicInterpolation refines a discrete peak position to sub-sample
// precision by fitting a parabola through the three values around it
func parabolicInterpolation(data []float64, peakIdx int) float64 {
	if peakIdx <= 0 || peakIdx >= len(data)-1 {
		return float64(peakIdx)
	}

	y1 := data[peakIdx-1]
	y2 := data[peakIdx]
	y3 := data[peakIdx+1]

	a := (y1 - 2*y2 + y3) / 2
	b := (y3 - y1) / 2

	if a == 0 {
		return float64(peakIdx)
	}

	return float64(peakIdx) - b/(2*a)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
