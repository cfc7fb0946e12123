package device

import (
	"fmt"
	"github.com/gopxl/beep/v2"
	"math"
	"net/url"
	"strconv"
	"time"
)

const TONE_SCHEME = "tone"

// ToneStreamer is a seekable sine wave of fixed length.
type ToneStreamer struct {
	frequency float64
	step      float64
	length    int
	position  int
	amplitude float64
}

func NewToneStreamer(sampleRate beep.SampleRate, frequency float64, duration time.Duration) (*ToneStreamer, error) {
	if frequency <= 0 || frequency >= float64(sampleRate)/2 {
		return nil, fmt.Errorf("Tone frequency %v Hz is out of range for %d Hz sample rate", frequency, sampleRate)
	}
	return &ToneStreamer{
		frequency: frequency,
		step:      2 * math.Pi * frequency / float64(sampleRate),
		length:    sampleRate.N(duration),
		amplitude: 0.5,
	}, nil
}

// ParseToneSource reads a tone://<frequency>[?duration=<seconds>] source.
func ParseToneSource(source string, defaultDuration time.Duration) (float64, time.Duration, error) {
	sourceUrl, err := url.Parse(source)
	if err != nil {
		return 0, 0, err
	}
	if sourceUrl.Scheme != TONE_SCHEME {
		return 0, 0, fmt.Errorf("%s is not a tone source", source)
	}
	frequency, err := strconv.ParseFloat(sourceUrl.Host, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("Invalid tone frequency in %s", source)
	}

	duration := defaultDuration
	if durationStr := sourceUrl.Query().Get("duration"); durationStr != "" {
		seconds, err := strconv.ParseFloat(durationStr, 64)
		if err != nil || seconds <= 0 {
			return 0, 0, fmt.Errorf("Invalid tone duration in %s", source)
		}
		duration = time.Duration(seconds * float64(time.Second))
	}
	return frequency, duration, nil
}

func (t *ToneStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if t.position >= t.length {
		return 0, false
	}
	for i := range samples {
		if t.position >= t.length {
			break
		}
		v := t.amplitude * math.Sin(t.step*float64(t.position))
		samples[i][0] = v
		samples[i][1] = v
		t.position++
		n++
	}
	return n, true
}

func (t *ToneStreamer) Err() error {
	return nil
}

func (t *ToneStreamer) Len() int {
	return t.length
}

func (t *ToneStreamer) Position() int {
	return t.position
}

func (t *ToneStreamer) Seek(p int) error {
	if p < 0 || p > t.length {
		return fmt.Errorf("Tone position %d out of range [0, %d]", p, t.length)
	}
	t.position = p
	return nil
}

func (t *ToneStreamer) Close() error {
	return nil
}
