package audio

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Errors surfaced by capture providers
var (
	// ErrUnavailable means no device could be acquired (missing or permission denied)
	ErrUnavailable = errors.New("audio device unavailable")
)

// Frame is one fixed-size window of time-domain samples in [-1, 1]
// plus the rate it was captured at. Frames are ephemeral: produced by a
// CaptureProvider, consumed once per estimation call, never persisted.
type Frame struct {
	Samples    []float64 `json:"samples"`
	SampleRate int       `json:"sample_rate"`
}

// NewFrame creates a frame over the given samples
func NewFrame(samples []float64, sampleRate int) Frame {
	return Frame{Samples: samples, SampleRate: sampleRate}
}

// RMS calculates the root-mean-square amplitude of the frame
func (f Frame) RMS() float64 {
	if len(f.Samples) == 0 {
		return 0.0
	}

	sumSquares := 0.0
	for _, val := range f.Samples {
		sumSquares += val * val
	}

	return math.Sqrt(sumSquares / float64(len(f.Samples)))
}

// IsFinite reports whether every sample is a finite number.
// NaN or Inf samples mean the frame must degrade to an unvoiced result.
func (f Frame) IsFinite() bool {
	for _, val := range f.Samples {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return false
		}
	}
	return true
}

// PeakAmplitude returns the largest absolute sample value
func (f Frame) PeakAmplitude() float64 {
	if len(f.Samples) == 0 {
		return 0.0
	}

	maxVal := floats.Max(f.Samples)
	minVal := floats.Min(f.Samples)

	return math.Max(math.Abs(maxVal), math.Abs(minVal))
}

// TrimActiveRegion returns the central region bounded by the first and last
// sample crossing the amplitude threshold. Leading and trailing silence
// inside a frame produces edge artifacts in time-domain analysis; trimming
// them keeps the correlation window on the voiced part of the signal.
func (f Frame) TrimActiveRegion(threshold float64) Frame {
	start := -1
	end := -1

	for i, val := range f.Samples {
		if math.Abs(val) >= threshold {
			if start < 0 {
				start = i
			}
			end = i
		}
	}

	if start < 0 {
		// Nothing crossed the threshold
		return Frame{Samples: []float64{}, SampleRate: f.SampleRate}
	}

	return Frame{Samples: f.Samples[start : end+1], SampleRate: f.SampleRate}
}

// CaptureProvider is the collaborator that owns the microphone. The core
// polls it once per tick; device enumeration, gain control and the actual
// capture graph live entirely behind this interface.
type CaptureProvider interface {
	// CurrentFrame fills a frame with the most recent bufferSize samples
	CurrentFrame(bufferSize int) (Frame, error)

	// SampleRate returns the capture rate in Hz
	SampleRate() int

	// RMSVolume returns the current input level for meters and preflight checks
	RMSVolume() float64

	// SetGain adjusts input gain (1.0 = unity)
	SetGain(gain float64)

	// Close releases the capture device. Safe to call more than once.
	Close() error
}
