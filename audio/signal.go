package audio

import "math"

// Sine generates n samples of a pure tone at freq Hz
func Sine(freq float64, sampleRate, n int, amplitude float64) []float64 {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return samples
}

// SineFrame wraps Sine in a Frame
func SineFrame(freq float64, sampleRate, n int, amplitude float64) Frame {
	return Frame{Samples: Sine(freq, sampleRate, n, amplitude), SampleRate: sampleRate}
}
