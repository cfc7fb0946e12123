package device

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/jypelle/solfeggio/internal/frequency"
)

func TestSpectrumAnalyzerDetectsPrime(t *testing.T) {
	const sampleRate = 44100
	var primes []int64
	analyzer := NewSpectrumAnalyzer(sampleRate, time.Second, func(prime int64) {
		primes = append(primes, prime)
	})

	if got := analyzer.Analyze(); got != 0 {
		t.Errorf("Analyze on empty window = %v, want 0", got)
	}

	bin := primeBin(sampleRate)
	freq := float64(bin) * sampleRate / ANALYZER_WINDOW
	tone, err := NewToneStreamer(beep.SampleRate(sampleRate), freq, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	tapped := analyzer.Tap(tone)
	samples := make([][2]float64, 1024)
	for streamed := 0; streamed < ANALYZER_WINDOW; {
		n, ok := tapped.Stream(samples)
		if !ok {
			t.Fatal("tone ended early")
		}
		streamed += n
	}

	dominant := analyzer.Analyze()
	if math.Abs(dominant-freq) > 1e-6 {
		t.Errorf("Analyze = %v, want %v", dominant, freq)
	}
	analyzer.Analyze()
	if len(primes) != 1 || primes[0] != int64(math.Round(freq)) {
		t.Errorf("primes = %v, want [%d] once", primes, int64(math.Round(freq)))
	}
}

// primeBin returns the first FFT bin above 100 Hz whose frequency rounds to a prime.
func primeBin(sampleRate int) int {
	for bin := 20; ; bin++ {
		rounded := int64(math.Round(float64(bin) * float64(sampleRate) / ANALYZER_WINDOW))
		if rounded > 100 && frequency.IsPrime(rounded) {
			return bin
		}
	}
}
