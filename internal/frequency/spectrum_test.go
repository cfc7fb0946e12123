package frequency

import (
	"math"
	"testing"
)

func sine(freq float64, sampleRate, n int) []float64 {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return samples
}

func TestDominantFrequency(t *testing.T) {
	const sampleRate = 44100
	const n = 8192
	resolution := float64(sampleRate) / n

	for _, freq := range []float64{174, 396, 528, 963} {
		got := DominantFrequency(sine(freq, sampleRate, n), sampleRate)
		if math.Abs(got-freq) > resolution {
			t.Errorf("DominantFrequency(%v Hz sine) = %v, want within %v", freq, got, resolution)
		}
	}
}

func TestDominantFrequencyDegenerate(t *testing.T) {
	if got := DominantFrequency(nil, 44100); got != 0 {
		t.Errorf("DominantFrequency(nil) = %v, want 0", got)
	}
	if got := DominantFrequency(make([]float64, 1024), 0); got != 0 {
		t.Errorf("DominantFrequency(rate 0) = %v, want 0", got)
	}
}
