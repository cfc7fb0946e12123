package frequency

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// DominantFrequency returns the frequency in Hz of the strongest FFT bin of a mono
// window, ignoring DC. Resolution is sampleRate/len(samples).
func DominantFrequency(samples []float64, sampleRate int) float64 {
	if len(samples) < 2 || sampleRate <= 0 {
		return 0
	}

	// Hann window against leakage
	windowed := make([]float64, len(samples))
	for i, s := range samples {
		windowed[i] = s * 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(len(samples)-1)))
	}

	coeffs := fft.FFTReal(windowed)

	peakBin := 0
	peakMag := 0.0
	for bin := 1; bin < len(coeffs)/2; bin++ {
		mag := cmplx.Abs(coeffs[bin])
		if mag > peakMag {
			peakMag = mag
			peakBin = bin
		}
	}

	return float64(peakBin) * float64(sampleRate) / float64(len(samples))
}
