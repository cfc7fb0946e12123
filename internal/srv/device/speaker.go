package device

import (
	"context"
	"errors"
	"fmt"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/jypelle/solfeggio/internal/player"
	"github.com/sirupsen/logrus"
	"math"
	"strings"
	"sync"
	"time"
)

var ErrSourceReplaced = errors.New("Source replaced while loading")

// SpeakerElement plays journeys on the local sound card.
//
// Decoding happens in Play so that a slow remote source never blocks the caller of
// SetSource or Load.
type SpeakerElement struct {
	lock         sync.RWMutex
	eventChannel chan player.ElementEvent

	opener       *SourceOpener
	sampleRate   beep.SampleRate
	toneDuration time.Duration
	tap          func(beep.Streamer) beep.Streamer

	source   string
	loadId   int64
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	level    float64
	ended    bool

	askDone chan bool
	done    chan bool
}

func NewSpeakerElement(sampleRate int, opener *SourceOpener, toneDuration time.Duration) (*SpeakerElement, error) {
	sr := beep.SampleRate(sampleRate)
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("Unable to init speaker: %v", err)
	}

	d := &SpeakerElement{
		eventChannel: make(chan player.ElementEvent, 16),
		opener:       opener,
		sampleRate:   sr,
		toneDuration: toneDuration,
		level:        1,
		askDone:      make(chan bool),
		done:         make(chan bool),
	}
	go d.timeUpdateLoop()

	return d, nil
}

// SetTap inserts a streamer wrapper (ex: spectrum analyzer) ahead of the volume control.
func (d *SpeakerElement) SetTap(tap func(beep.Streamer) beep.Streamer) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.tap = tap
}

func (d *SpeakerElement) EventChannel() chan player.ElementEvent {
	return d.eventChannel
}

func (d *SpeakerElement) SetSource(url string) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.source = url
}

func (d *SpeakerElement) Source() string {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.source
}

// Load drops the current stream, the new source is decoded on next Play.
func (d *SpeakerElement) Load() {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.loadId++
	d.clear()
}

func (d *SpeakerElement) clear() {
	speaker.Clear()
	if d.streamer != nil {
		if err := d.streamer.Close(); err != nil {
			logrus.Debugf("Unable to close stream of %s: %v", d.source, err)
		}
	}
	d.streamer = nil
	d.ctrl = nil
	d.volume = nil
	d.ended = false
}

func (d *SpeakerElement) Play(ctx context.Context) error {
	d.lock.Lock()
	source := d.source
	loadId := d.loadId
	if source == "" {
		d.lock.Unlock()
		return errors.New("No source to play")
	}
	if d.ctrl != nil && !d.ended {
		speaker.Lock()
		d.ctrl.Paused = false
		speaker.Unlock()
		d.lock.Unlock()
		return nil
	}
	if d.streamer != nil {
		// Replay after natural end
		speaker.Lock()
		err := d.streamer.Seek(0)
		speaker.Unlock()
		if err != nil {
			d.lock.Unlock()
			return fmt.Errorf("Unable to rewind %s: %v", source, err)
		}
		d.start()
		d.lock.Unlock()
		return nil
	}
	d.lock.Unlock()

	streamer, format, err := d.decode(ctx, source)
	if err != nil {
		d.sendEvent(player.ElementEvent{Type: player.ERROR_EVENT, Source: source, Err: err})
		return err
	}
	if err := ctx.Err(); err != nil {
		streamer.Close()
		return err
	}

	d.lock.Lock()
	defer d.lock.Unlock()

	if d.loadId != loadId {
		streamer.Close()
		return ErrSourceReplaced
	}
	if d.streamer != nil {
		// A concurrent Play decoded this load first, only one chain may reach the speaker
		streamer.Close()
		if d.ctrl != nil && !d.ended {
			speaker.Lock()
			d.ctrl.Paused = false
			speaker.Unlock()
		}
		return nil
	}
	d.streamer = streamer
	d.format = format
	d.start()

	d.sendEvent(player.ElementEvent{Type: player.CAN_PLAY_THROUGH_EVENT, Source: source})
	return nil
}

func (d *SpeakerElement) decode(ctx context.Context, source string) (beep.StreamSeekCloser, beep.Format, error) {
	if strings.HasPrefix(source, TONE_SCHEME+"://") {
		d.lock.RLock()
		toneDuration := d.toneDuration
		d.lock.RUnlock()

		frequency, duration, err := ParseToneSource(source, toneDuration)
		if err != nil {
			return nil, beep.Format{}, err
		}
		streamer, err := NewToneStreamer(d.sampleRate, frequency, duration)
		if err != nil {
			return nil, beep.Format{}, err
		}
		return streamer, beep.Format{SampleRate: d.sampleRate, NumChannels: 2, Precision: 2}, nil
	}

	content, err := d.opener.Open(ctx, source)
	if err != nil {
		return nil, beep.Format{}, err
	}
	return Decode(content)
}

// start builds the playing chain of the loaded stream, d.lock must be held
func (d *SpeakerElement) start() {
	var streamer beep.Streamer = d.streamer
	if d.format.SampleRate != d.sampleRate {
		streamer = beep.Resample(4, d.format.SampleRate, d.sampleRate, streamer)
	}
	if d.tap != nil {
		streamer = d.tap(streamer)
	}
	d.volume = &effects.Volume{Streamer: streamer, Base: 2}
	d.applyVolume()
	d.ctrl = &beep.Ctrl{Streamer: d.volume}
	d.ended = false

	loadId := d.loadId
	source := d.source
	speaker.Play(beep.Seq(d.ctrl, beep.Callback(func() {
		// Called from the speaker goroutine with the speaker lock held
		go d.onEnded(loadId, source)
	})))
}

func (d *SpeakerElement) onEnded(loadId int64, source string) {
	d.lock.Lock()
	if d.loadId != loadId || d.ctrl == nil {
		d.lock.Unlock()
		return
	}
	d.ended = true
	speaker.Lock()
	d.ctrl.Paused = true
	speaker.Unlock()
	d.lock.Unlock()

	d.sendEvent(player.ElementEvent{Type: player.ENDED_EVENT, Source: source})
}

func (d *SpeakerElement) Pause() {
	d.lock.Lock()
	if d.ctrl == nil || d.ended {
		d.lock.Unlock()
		return
	}
	speaker.Lock()
	alreadyPaused := d.ctrl.Paused
	d.ctrl.Paused = true
	speaker.Unlock()
	source := d.source
	d.lock.Unlock()

	if !alreadyPaused {
		d.sendEvent(player.ElementEvent{Type: player.PAUSE_EVENT, Source: source})
	}
}

func (d *SpeakerElement) Paused() bool {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.paused()
}

func (d *SpeakerElement) paused() bool {
	if d.ctrl == nil || d.ended {
		return true
	}
	speaker.Lock()
	defer speaker.Unlock()
	return d.ctrl.Paused
}

func (d *SpeakerElement) CurrentTime() float64 {
	d.lock.RLock()
	defer d.lock.RUnlock()

	if d.streamer == nil {
		return 0
	}
	speaker.Lock()
	position := d.streamer.Position()
	speaker.Unlock()
	return d.format.SampleRate.D(position).Seconds()
}

func (d *SpeakerElement) SetCurrentTime(seconds float64) {
	d.lock.Lock()
	if d.streamer == nil {
		d.lock.Unlock()
		return
	}

	position := d.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	if position < 0 {
		position = 0
	}
	if length := d.streamer.Len(); position > length {
		position = length
	}
	speaker.Lock()
	err := d.streamer.Seek(position)
	speaker.Unlock()
	source := d.source
	d.lock.Unlock()

	if err != nil {
		logrus.Warnf("Unable to seek %s to %.1fs: %v", source, seconds, err)
		return
	}
	d.sendEvent(player.ElementEvent{Type: player.TIME_UPDATE_EVENT, Source: source})
}

func (d *SpeakerElement) Duration() float64 {
	d.lock.RLock()
	defer d.lock.RUnlock()

	if d.streamer == nil {
		return 0
	}
	return d.format.SampleRate.D(d.streamer.Len()).Seconds()
}

func (d *SpeakerElement) Volume() float64 {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.level
}

func (d *SpeakerElement) SetVolume(volume float64) {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.level = math.Max(0, math.Min(1, volume))
	if d.volume != nil {
		speaker.Lock()
		d.applyVolume()
		speaker.Unlock()
	}
}

func (d *SpeakerElement) applyVolume() {
	d.volume.Silent = d.level <= 0
	if !d.volume.Silent {
		d.volume.Volume = math.Log2(d.level)
	}
}

func (d *SpeakerElement) Close() error {
	logrus.Infof("Stop speaker element")

	d.askDone <- true
	<-d.done

	d.lock.Lock()
	defer d.lock.Unlock()
	d.loadId++
	d.clear()
	speaker.Close()
	return nil
}

func (d *SpeakerElement) timeUpdateLoop() {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-d.askDone:
			d.done <- true
			return
		case <-ticker.C:
			d.lock.RLock()
			playing := !d.paused()
			source := d.source
			d.lock.RUnlock()
			if playing {
				d.sendEvent(player.ElementEvent{Type: player.TIME_UPDATE_EVENT, Source: source})
			}
		}
	}
}

// sendEvent drops the event when nobody listens
func (d *SpeakerElement) sendEvent(event player.ElementEvent) {
	select {
	case d.eventChannel <- event:
	default:
		logrus.Debugf("Drop %s event of %s", event.Type, event.Source)
	}
}
