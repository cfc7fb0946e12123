package device

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/jypelle/solfeggio/internal/player"
)

const testSampleRate = beep.SampleRate(8000)

// writeToneWav writes a 2 seconds 440 Hz wav file and returns its name and content.
func writeToneWav(t *testing.T) (string, []byte) {
	t.Helper()
	tone, err := NewToneStreamer(testSampleRate, 440, 2*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	filename := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(filename)
	if err != nil {
		t.Fatal(err)
	}
	if err := wav.Encode(f, tone, beep.Format{SampleRate: testSampleRate, NumChannels: 2, Precision: 2}); err != nil {
		t.Fatalf("wav.Encode: %v", err)
	}
	f.Close()
	content, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	return filename, content
}

// newTestSpeakerElement builds the element without opening the sound card: the
// speaker mixer accepts streamers without being initialized.
func newTestSpeakerElement(t *testing.T, opener *SourceOpener) *SpeakerElement {
	t.Helper()
	d := &SpeakerElement{
		eventChannel: make(chan player.ElementEvent, 16),
		opener:       opener,
		sampleRate:   testSampleRate,
		toneDuration: time.Second,
		level:        1,
		askDone:      make(chan bool),
		done:         make(chan bool),
	}
	t.Cleanup(d.Load)
	return d
}

// gatedOpener serves content on the slow:// scheme once gate is closed, entered
// receives a value each time a source is requested.
func gatedOpener(content []byte) (opener *SourceOpener, entered chan bool, gate chan bool) {
	entered = make(chan bool, 4)
	gate = make(chan bool)
	opener = NewSourceOpener(nil)
	opener.RegisterScheme("slow", func(source *url.URL) (io.ReadCloser, error) {
		entered <- true
		<-gate
		return io.NopCloser(bytes.NewReader(content)), nil
	})
	return opener, entered, gate
}

func waitElementEvent(t *testing.T, d *SpeakerElement, eventType player.ElementEventType) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev := <-d.eventChannel:
			if ev.Type == eventType {
				return
			}
		case <-timeout:
			t.Fatalf("timeout waiting for %s event", eventType)
		}
	}
}

func TestSpeakerElementPauseResume(t *testing.T) {
	filename, _ := writeToneWav(t)
	d := newTestSpeakerElement(t, NewSourceOpener(nil))

	d.SetSource(filename)
	d.Load()
	if err := d.Play(context.Background()); err != nil {
		t.Fatalf("Play: %v", err)
	}
	waitElementEvent(t, d, player.CAN_PLAY_THROUGH_EVENT)
	if d.Paused() {
		t.Error("Paused = true after Play")
	}
	if got := d.Duration(); got != 2 {
		t.Errorf("Duration = %v, want 2", got)
	}

	d.Pause()
	waitElementEvent(t, d, player.PAUSE_EVENT)
	if !d.Paused() {
		t.Error("Paused = false after Pause")
	}

	if err := d.Play(context.Background()); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if d.Paused() {
		t.Error("Paused = true after resume")
	}
}

func TestSpeakerElementSeekClamps(t *testing.T) {
	filename, _ := writeToneWav(t)
	d := newTestSpeakerElement(t, NewSourceOpener(nil))
	d.SetSource(filename)
	d.Load()
	if err := d.Play(context.Background()); err != nil {
		t.Fatalf("Play: %v", err)
	}

	tests := []struct {
		seconds float64
		want    float64
	}{
		{-3, 0},
		{1.5, 1.5},
		{100, 2},
	}
	for _, tt := range tests {
		d.SetCurrentTime(tt.seconds)
		if got := d.CurrentTime(); got != tt.want {
			t.Errorf("SetCurrentTime(%v): CurrentTime = %v, want %v", tt.seconds, got, tt.want)
		}
	}
}

func TestSpeakerElementRewindsAfterEnd(t *testing.T) {
	filename, _ := writeToneWav(t)
	d := newTestSpeakerElement(t, NewSourceOpener(nil))
	d.SetSource(filename)
	d.Load()
	if err := d.Play(context.Background()); err != nil {
		t.Fatalf("Play: %v", err)
	}
	d.SetCurrentTime(2)

	d.lock.RLock()
	loadId := d.loadId
	d.lock.RUnlock()
	d.onEnded(loadId, filename)
	waitElementEvent(t, d, player.ENDED_EVENT)
	if !d.Paused() {
		t.Error("Paused = false after end")
	}

	if err := d.Play(context.Background()); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if got := d.CurrentTime(); got != 0 {
		t.Errorf("CurrentTime after replay = %v, want 0", got)
	}
	if d.Paused() {
		t.Error("Paused = true after replay")
	}
}

func TestSpeakerElementSourceReplacedWhileDecoding(t *testing.T) {
	_, content := writeToneWav(t)
	opener, entered, gate := gatedOpener(content)
	d := newTestSpeakerElement(t, opener)

	d.SetSource("slow://first")
	d.Load()
	result := make(chan error)
	go func() { result <- d.Play(context.Background()) }()
	<-entered

	d.SetSource("slow://second")
	d.Load()
	close(gate)

	if err := <-result; err != ErrSourceReplaced {
		t.Errorf("Play = %v, want %v", err, ErrSourceReplaced)
	}
	if got := d.Duration(); got != 0 {
		t.Errorf("Duration = %v, want 0 for a replaced source", got)
	}
}

func TestSpeakerElementConcurrentPlayStartsOneStream(t *testing.T) {
	_, content := writeToneWav(t)
	opener, entered, gate := gatedOpener(content)
	d := newTestSpeakerElement(t, opener)

	var chains int32
	d.SetTap(func(streamer beep.Streamer) beep.Streamer {
		atomic.AddInt32(&chains, 1)
		return streamer
	})

	d.SetSource("slow://journey")
	d.Load()
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() { results <- d.Play(context.Background()) }()
	}
	<-entered
	<-entered
	close(gate)

	for i := 0; i < 2; i++ {
		if err := <-results; err != nil {
			t.Errorf("Play: %v", err)
		}
	}
	if got := atomic.LoadInt32(&chains); got != 1 {
		t.Errorf("%d playing chains started, want 1", got)
	}

	d.Pause()
	if !d.Paused() {
		t.Error("Paused = false after Pause")
	}
}
