package device

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"github.com/jypelle/solfeggio/internal/player"
	"github.com/sirupsen/logrus"
	"io"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"
)

// VlcElement delegates playback to an external cvlc process, volume goes through the
// ALSA mixer.
type VlcElement struct {
	lock         sync.RWMutex
	eventChannel chan player.ElementEvent

	opener *SourceOpener
	mixer  string

	source       string
	loadId       int64
	content      []byte
	cmd          *exec.Cmd
	paused       bool
	offset       float64
	playingSince time.Time
	level        float64
}

func NewVlcElement(opener *SourceOpener, mixer string) (*VlcElement, error) {
	if _, err := exec.LookPath("cvlc"); err != nil {
		return nil, fmt.Errorf("Unable to find cvlc: %v", err)
	}
	if mixer == "" {
		mixer = "PCM"
	}
	return &VlcElement{
		eventChannel: make(chan player.ElementEvent, 16),
		opener:       opener,
		mixer:        mixer,
		paused:       true,
		level:        1,
	}, nil
}

func (d *VlcElement) EventChannel() chan player.ElementEvent {
	return d.eventChannel
}

func (d *VlcElement) SetSource(url string) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.source = url
}

func (d *VlcElement) Source() string {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.source
}

func (d *VlcElement) Load() {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.loadId++
	d.clear()
	d.content = nil
	d.offset = 0
}

// Play downloads the source on first call so a missing file or a http error fails
// here instead of in cvlc, which would exit silently.
func (d *VlcElement) Play(ctx context.Context) error {
	d.lock.Lock()
	source := d.source
	loadId := d.loadId
	if source == "" {
		d.lock.Unlock()
		return errors.New("No source to play")
	}
	if d.cmd != nil {
		err := d.resume()
		d.lock.Unlock()
		return err
	}
	if d.content == nil {
		d.lock.Unlock()

		if strings.HasPrefix(source, TONE_SCHEME+"://") {
			return fmt.Errorf("vlc backend can't render %s", source)
		}
		content, err := d.fetch(ctx, source)
		if err != nil {
			d.sendEvent(player.ElementEvent{Type: player.ERROR_EVENT, Source: source, Err: err})
			return err
		}

		d.lock.Lock()
		if d.loadId != loadId {
			d.lock.Unlock()
			return ErrSourceReplaced
		}
		if d.content == nil {
			d.content = content
		}
		if d.cmd != nil {
			// Launched by a concurrent Play
			err := d.resume()
			d.lock.Unlock()
			return err
		}
	}
	err := d.launch()
	d.lock.Unlock()
	return err
}

func (d *VlcElement) fetch(ctx context.Context, source string) ([]byte, error) {
	reader, err := d.opener.Open(ctx, source)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(reader)
}

// resume continues a stopped cvlc, d.lock must be held
func (d *VlcElement) resume() error {
	if !d.paused {
		return nil
	}
	if err := d.cmd.Process.Signal(syscall.SIGCONT); err != nil {
		return fmt.Errorf("Unable to resume %s: %v", d.source, err)
	}
	d.paused = false
	d.playingSince = time.Now()
	return nil
}

// launch feeds the downloaded source to cvlc from the current offset, d.lock must be held
func (d *VlcElement) launch() error {
	cmd := exec.Command("cvlc", "--aout=alsa", "--play-and-exit", "--start-time="+strconv.FormatFloat(d.offset, 'f', 1, 64), "-")
	cmd.Stdin = bytes.NewReader(d.content)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("Unable to play %s: %v", d.source, err)
	}
	logrus.Debugf("cvlc started on %s", d.source)
	d.cmd = cmd
	d.paused = false
	d.playingSince = time.Now()
	d.applyVolume()

	d.watch(cmd, d.source)
	return nil
}

// watch reports the natural end of cmd and rewinds, exits of replaced processes are ignored
func (d *VlcElement) watch(cmd *exec.Cmd, source string) {
	go func() {
		_ = cmd.Wait()
		d.lock.Lock()
		if d.cmd != cmd {
			d.lock.Unlock()
			return
		}
		d.offset = 0
		d.cmd = nil
		d.paused = true
		d.lock.Unlock()
		d.sendEvent(player.ElementEvent{Type: player.ENDED_EVENT, Source: source})
	}()
}

func (d *VlcElement) Pause() {
	d.lock.Lock()
	if d.cmd == nil || d.paused {
		d.lock.Unlock()
		return
	}
	if err := d.cmd.Process.Signal(syscall.SIGSTOP); err != nil {
		logrus.Warnf("Unable to pause %s: %v", d.source, err)
		d.lock.Unlock()
		return
	}
	d.paused = true
	d.offset += time.Since(d.playingSince).Seconds()
	source := d.source
	d.lock.Unlock()

	d.sendEvent(player.ElementEvent{Type: player.PAUSE_EVENT, Source: source})
}

func (d *VlcElement) Paused() bool {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.paused
}

func (d *VlcElement) CurrentTime() float64 {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.currentTime()
}

func (d *VlcElement) currentTime() float64 {
	if d.paused {
		return d.offset
	}
	return d.offset + time.Since(d.playingSince).Seconds()
}

// SetCurrentTime restarts cvlc at the requested offset.
func (d *VlcElement) SetCurrentTime(seconds float64) {
	d.lock.Lock()
	defer d.lock.Unlock()

	wasPlaying := d.cmd != nil && !d.paused
	d.clear()
	d.offset = math.Max(0, seconds)
	if wasPlaying {
		if err := d.launch(); err != nil {
			logrus.Warnf("Unable to seek %s: %v", d.source, err)
			return
		}
	}
	source := d.source
	go d.sendEvent(player.ElementEvent{Type: player.TIME_UPDATE_EVENT, Source: source})
}

// Duration is unknown to the vlc backend.
func (d *VlcElement) Duration() float64 {
	return 0
}

func (d *VlcElement) Volume() float64 {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.level
}

func (d *VlcElement) SetVolume(volume float64) {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.level = math.Max(0, math.Min(1, volume))
	d.applyVolume()
}

func (d *VlcElement) applyVolume() {
	cmd := exec.Command("amixer", "set", d.mixer, strconv.FormatInt(int64(math.Round(d.level*100)), 10)+"%")
	if err := cmd.Run(); err != nil {
		logrus.Warnf("Unable to set volume: %v", err)
	}
}

func (d *VlcElement) Close() error {
	logrus.Infof("Stop vlc element")

	d.lock.Lock()
	defer d.lock.Unlock()
	d.clear()
	return nil
}

func (d *VlcElement) clear() {
	if d.cmd != nil {
		if d.paused {
			_ = d.cmd.Process.Signal(syscall.SIGCONT)
		}
		if err := d.cmd.Process.Kill(); err != nil {
			logrus.Errorf("Failed to kill process: %v", err)
		}
		d.cmd = nil
	}
	d.paused = true
}

func (d *VlcElement) sendEvent(event player.ElementEvent) {
	select {
	case d.eventChannel <- event:
	default:
		logrus.Debugf("Drop %s event of %s", event.Type, event.Source)
	}
}
