package pitch

import (
	"github.com/mjibson/go-dsp/fft"
)

// autocorrelate computes the autocorrelation of signal for lags 0..maxLag,
// normalized so that lag 0 equals 1. Uses the Wiener-Khinchin identity:
// FFT the zero-padded signal, take the power spectrum, inverse FFT.
// O(n log n) instead of the O(n*maxLag) direct form.
func autocorrelate(signal []float64, maxLag int) []float64 {
	n := len(signal)
	if n == 0 || maxLag <= 0 {
		return []float64{}
	}
	if maxLag >= n {
		maxLag = n - 1
	}

	// Zero-pad to at least 2n to avoid circular wrap-around.
	// go-dsp handles non-power-of-2 sizes, but power-of-2 is fastest.
	fftSize := nextPowerOf2(2 * n)
	padded := make([]float64, fftSize)
	copy(padded, signal)

	spectrum := fft.FFTReal(padded)

	// Power spectrum: X * conj(X) has zero imaginary part
	power := make([]complex128, fftSize)
	for i, c := range spectrum {
		re := real(c)
		im := imag(c)
		power[i] = complex(re*re+im*im, 0)
	}

	corr := fft.IFFT(power)

	r0 := real(corr[0])
	if r0 <= 0 {
		return []float64{}
	}

	result := make([]float64, maxLag+1)
	for lag := 0; lag <= maxLag; lag++ {
		result[lag] = real(corr[lag]) / r0
	}

	return result
}

// nextPowerOf2 returns the next power of 2 greater than or equal to n
func nextPowerOf2(n int) int {
	if n <= 0 {
		return 1
	}

	power := 1
	for power < n {
		power <<= 1
	}
	return power
}
