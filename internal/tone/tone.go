package tone

import (
	"fmt"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"io"
	"math"
	"time"
)

const (
	BIT_DEPTH    = 16
	NUM_CHANS    = 2
	PCM_FORMAT   = 1
	maxAmplitude = 1<<(BIT_DEPTH-1) - 1
)

// Tone describes a pure sine wave. A Beat above zero shifts the right channel by Beat
// Hz, giving a binaural beat.
type Tone struct {
	Frequency  float64
	Beat       float64
	Duration   time.Duration
	SampleRate int
	// Amplitude in [0, 1]
	Amplitude float64
	// Fade in and out length, avoids clicks at both ends
	Fade time.Duration
}

func (t Tone) validate() error {
	if t.SampleRate <= 0 {
		return fmt.Errorf("Invalid sample rate %d", t.SampleRate)
	}
	nyquist := float64(t.SampleRate) / 2
	if t.Frequency <= 0 || t.Frequency+t.Beat >= nyquist {
		return fmt.Errorf("Tone frequency %v Hz is out of range for %d Hz sample rate", t.Frequency, t.SampleRate)
	}
	if t.Beat < 0 {
		return fmt.Errorf("Invalid beat %v Hz", t.Beat)
	}
	if t.Duration <= 0 {
		return fmt.Errorf("Invalid duration %v", t.Duration)
	}
	if t.Amplitude < 0 || t.Amplitude > 1 {
		return fmt.Errorf("Invalid amplitude %v", t.Amplitude)
	}
	return nil
}

// Render writes t as a 16 bit stereo PCM wav file.
func Render(w io.WriteSeeker, t Tone) error {
	if err := t.validate(); err != nil {
		return err
	}

	encoder := wav.NewEncoder(w, t.SampleRate, BIT_DEPTH, NUM_CHANS, PCM_FORMAT)

	total := int(t.Duration.Seconds() * float64(t.SampleRate))
	fade := int(t.Fade.Seconds() * float64(t.SampleRate))
	if fade > total/2 {
		fade = total / 2
	}
	leftStep := 2 * math.Pi * t.Frequency / float64(t.SampleRate)
	rightStep := 2 * math.Pi * (t.Frequency + t.Beat) / float64(t.SampleRate)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: NUM_CHANS, SampleRate: t.SampleRate},
		SourceBitDepth: BIT_DEPTH,
		Data:           make([]int, 0, t.SampleRate*NUM_CHANS),
	}

	for i := 0; i < total; i++ {
		gain := t.Amplitude * maxAmplitude
		if i < fade {
			gain *= float64(i) / float64(fade)
		} else if total-1-i < fade {
			gain *= float64(total-1-i) / float64(fade)
		}
		buf.Data = append(buf.Data,
			int(math.Round(gain*math.Sin(leftStep*float64(i)))),
			int(math.Round(gain*math.Sin(rightStep*float64(i)))))

		if len(buf.Data) == cap(buf.Data) || i == total-1 {
			if err := encoder.Write(buf); err != nil {
				return fmt.Errorf("Unable to write wav samples: %v", err)
			}
			buf.Data = buf.Data[:0]
		}
	}

	if err := encoder.Close(); err != nil {
		return fmt.Errorf("Unable to close wav file: %v", err)
	}
	return nil
}
