package device

import (
	"github.com/gopxl/beep/v2"
	"github.com/jypelle/solfeggio/internal/frequency"
	"github.com/sirupsen/logrus"
	"math"
	"sync"
	"time"
)

const ANALYZER_WINDOW = 8192

// SpectrumAnalyzer watches the played samples and reports the dominant frequency
// whenever it rounds to a new prime.
type SpectrumAnalyzer struct {
	lock       sync.Mutex
	sampleRate int
	interval   time.Duration
	onPrime    func(prime int64)

	ring      []float64
	next      int
	filled    bool
	lastPrime int64

	askDone chan bool
	done    chan bool
}

func NewSpectrumAnalyzer(sampleRate int, interval time.Duration, onPrime func(prime int64)) *SpectrumAnalyzer {
	return &SpectrumAnalyzer{
		sampleRate: sampleRate,
		interval:   interval,
		onPrime:    onPrime,
		ring:       make([]float64, ANALYZER_WINDOW),
		askDone:    make(chan bool),
		done:       make(chan bool),
	}
}

func (d *SpectrumAnalyzer) Start() {
	logrus.Infof("Start spectrum analyzer device")

	go func() {
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()
		for {
			select {
			case <-d.askDone:
				d.done <- true
				return
			case <-ticker.C:
				d.Analyze()
			}
		}
	}()
}

func (d *SpectrumAnalyzer) Stop() {
	logrus.Infof("Stop spectrum analyzer device")
	d.askDone <- true
	<-d.done
}

// Tap wraps streamer so that every streamed sample feeds the analyzer.
func (d *SpectrumAnalyzer) Tap(streamer beep.Streamer) beep.Streamer {
	d.lock.Lock()
	d.next = 0
	d.filled = false
	d.lastPrime = 0
	d.lock.Unlock()

	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := streamer.Stream(samples)
		d.feed(samples[:n])
		return n, ok
	})
}

func (d *SpectrumAnalyzer) feed(samples [][2]float64) {
	d.lock.Lock()
	defer d.lock.Unlock()

	for _, sample := range samples {
		d.ring[d.next] = (sample[0] + sample[1]) / 2
		d.next++
		if d.next == len(d.ring) {
			d.next = 0
			d.filled = true
		}
	}
}

// Analyze runs one detection on the last window of samples, it returns the detected
// dominant frequency (0 while the window is not full).
func (d *SpectrumAnalyzer) Analyze() float64 {
	d.lock.Lock()
	if !d.filled {
		d.lock.Unlock()
		return 0
	}
	window := make([]float64, len(d.ring))
	copy(window, d.ring[d.next:])
	copy(window[len(d.ring)-d.next:], d.ring[:d.next])
	d.lock.Unlock()

	dominant := frequency.DominantFrequency(window, d.sampleRate)
	if dominant <= 0 {
		return 0
	}

	rounded := int64(math.Round(dominant))
	if !frequency.IsPrime(rounded) {
		return dominant
	}

	d.lock.Lock()
	isNew := rounded != d.lastPrime
	d.lastPrime = rounded
	d.lock.Unlock()

	if isNew {
		logrus.Debugf("Dominant frequency %.1f Hz is prime", dominant)
		d.onPrime(rounded)
	}
	return dominant
}
